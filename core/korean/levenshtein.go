package korean

// Distance calculates the edit distance between two strings, operating on
// runes so multi-byte Hangul counts as single edits.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	return DistanceWithThreshold(a, b, max(len(ra), len(rb)))
}

// DistanceWithThreshold calculates the rune-level Levenshtein distance with
// early exit when the distance cannot stay within threshold. Returns
// threshold+1 on early exit. Single-row algorithm, O(min(n,m)) space.
func DistanceWithThreshold(a, b string, threshold int) int {
	ra, rb := []rune(a), []rune(b)

	lenDiff := len(ra) - len(rb)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return threshold + 1
	}

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Keep the shorter string in ra for space efficiency.
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(ra)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(rb); i++ {
		curr := make([]int, len(ra)+1)
		curr[0] = i
		minInRow := curr[0]

		for j := 1; j <= len(ra); j++ {
			cost := 1
			if rb[i-1] == ra[j-1] {
				cost = 0
			}

			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)

			if curr[j] < minInRow {
				minInRow = curr[j]
			}
		}

		if minInRow > threshold {
			return threshold + 1
		}

		prev = curr
	}

	if prev[len(ra)] > threshold {
		return threshold + 1
	}
	return prev[len(ra)]
}
