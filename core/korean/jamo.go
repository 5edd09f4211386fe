package korean

import "strings"

// Hangul syllable block range and composition constants. A precomposed
// syllable at code point S decomposes as S = 0xAC00 + (choseong*21 + jungseong)*28 + jongseong.
const (
	hangulBase = 0xAC00
	hangulEnd  = 0xD7A3

	jungseongCount = 21
	jongseongCount = 28
)

// choseongTable lists the 19 leading consonants in code-point order.
var choseongTable = []rune{
	'ㄱ', 'ㄲ', 'ㄴ', 'ㄷ', 'ㄸ', 'ㄹ', 'ㅁ', 'ㅂ', 'ㅃ', 'ㅅ',
	'ㅆ', 'ㅇ', 'ㅈ', 'ㅉ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
}

// LeadingConsonants extracts the choseong of every Hangul syllable block in
// text. Non-Hangul runes pass through unchanged, so mixed-script strings keep
// their Latin characters for substring comparison.
func LeadingConsonants(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		if r >= hangulBase && r <= hangulEnd {
			idx := (r - hangulBase) / (jungseongCount * jongseongCount)
			b.WriteRune(choseongTable[idx])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsHangul reports whether the rune is a precomposed Hangul syllable.
func IsHangul(r rune) bool {
	return r >= hangulBase && r <= hangulEnd
}

// ContainsHangul reports whether text has at least one Hangul syllable.
func ContainsHangul(text string) bool {
	for _, r := range text {
		if IsHangul(r) {
			return true
		}
	}
	return false
}
