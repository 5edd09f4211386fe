package korean_test

import (
	"testing"

	"github.com/naru-ai/naru/core/korean"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"리뷰", "리뷰", 0},
		{"리뷰", "리부", 1},
		{"디버그", "디버깅", 1},
		{"", "abc", 3},
		{"abc", "", 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, korean.Distance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestDistanceWithThreshold_EarlyExit(t *testing.T) {
	// Length difference alone exceeds the threshold.
	assert.Equal(t, 3, korean.DistanceWithThreshold("ab", "abcdef", 2))

	// Actual distance above threshold reports threshold+1.
	assert.Equal(t, 3, korean.DistanceWithThreshold("kitten", "sitting", 2))

	// Within threshold reports the exact distance.
	assert.Equal(t, 1, korean.DistanceWithThreshold("디버그", "디버깅", 2))
}

func TestDistanceWithThreshold_RuneLevel(t *testing.T) {
	// Hangul syllables are three bytes each; distance must count runes.
	assert.Equal(t, 1, korean.DistanceWithThreshold("배포", "배표", 2))
}
