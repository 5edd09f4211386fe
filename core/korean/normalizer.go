// Package korean provides locale-aware text preprocessing for the routing
// pipeline: postposition stripping, tokenization, bidirectional synonym
// resolution, choseong (leading consonant) extraction, and edit distance.
//
// All functions are pure; the dictionaries are fixed at build time.
package korean

import (
	"sort"
	"strings"
	"unicode"
)

// postpositions are Korean grammatical particles stripped from the end of
// tokens so inflected forms collapse to their stem. Sorted longest-first at
// init so the longest suffix wins.
var postpositions = []string{
	"은", "는", "이", "가", "을", "를", "의", "도", "만", "와", "과", "랑",
	"에", "로", "나",
	"에서", "에게", "한테", "께서", "으로", "이랑", "까지", "부터", "조차",
	"마저", "처럼", "보다", "밖에", "이나", "든지", "라도",
	"해줘", "해주세요", "해봐", "할래",
}

func init() {
	sort.Slice(postpositions, func(i, j int) bool {
		return len(postpositions[i]) > len(postpositions[j])
	})
}

// synonymGroups maps casual or alternate terms to one canonical technical
// term. Lookups work in both directions (see Canonical and SynonymsOf).
var synonymGroups = map[string][]string{
	"리뷰": {"검토", "코드리뷰", "봐줘", "리뷰어", "review"},
	"버그": {"오류", "에러", "장애", "결함", "bug", "error"},
	"배포": {"릴리즈", "출시", "deploy", "release"},
	"수정": {"고치기", "고쳐줘", "픽스", "fix"},
	"설명": {"알려줘", "궁금", "explain"},
	"머지": {"병합", "merge"},
}

// reverseSynonyms maps each alternate term back to its canonical form.
var reverseSynonyms = func() map[string]string {
	rev := make(map[string]string)
	for canonical, alts := range synonymGroups {
		for _, alt := range alts {
			rev[alt] = canonical
		}
	}
	return rev
}()

// minTokenRunes is the shortest token kept by Tokenize.
const minTokenRunes = 2

// Normalizer performs locale-aware normalization of free-text messages.
// The zero value is not usable; construct with NewNormalizer.
type Normalizer struct{}

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize lowercases and trims text, strips postpositions from each
// whitespace-delimited token, and returns the normalized string together with
// the extracted token list.
func (n *Normalizer) Normalize(text string) (string, []string) {
	lowered := strings.ToLower(strings.TrimSpace(text))

	fields := strings.Fields(lowered)
	stripped := make([]string, 0, len(fields))
	for _, f := range fields {
		stripped = append(stripped, StripPostposition(f))
	}
	normalized := strings.Join(stripped, " ")

	return normalized, Tokenize(normalized)
}

// StripPostposition removes the longest matching grammatical suffix from a
// token. The stem must keep at least minTokenRunes runes, otherwise the token
// is returned unchanged.
func StripPostposition(token string) string {
	for _, p := range postpositions {
		if !strings.HasSuffix(token, p) {
			continue
		}
		stem := strings.TrimSuffix(token, p)
		if len([]rune(stem)) >= minTokenRunes {
			return stem
		}
	}
	return token
}

// Tokenize splits normalized text on whitespace and punctuation, discarding
// tokens shorter than two runes.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) >= minTokenRunes {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Canonical resolves a term through the synonym dictionary. Canonical terms
// resolve to themselves; unknown terms return the input unchanged.
func Canonical(term string) string {
	t := strings.ToLower(strings.TrimSpace(term))
	if _, ok := synonymGroups[t]; ok {
		return t
	}
	if canonical, ok := reverseSynonyms[t]; ok {
		return canonical
	}
	return t
}

// SynonymsOf returns every known alternate for a term, looking through the
// dictionary in both directions. Returns nil for unknown terms.
func SynonymsOf(term string) []string {
	canonical := Canonical(term)
	alts, ok := synonymGroups[canonical]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(alts)+1)
	out = append(out, canonical)
	out = append(out, alts...)
	return out
}

// SameMeaning reports whether two terms resolve to the same canonical form.
func SameMeaning(a, b string) bool {
	return Canonical(a) == Canonical(b)
}
