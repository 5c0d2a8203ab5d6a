package dedup

import (
	"github.com/agnivade/levenshtein"
)

// Similarity scores two strings in [0,1] as
// (maxLen - editDistance) / maxLen over the full strings.
// Equal strings (including both empty) score 1; when exactly one side is
// empty the score is 0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	distance := levenshtein.ComputeDistance(a, b)
	maxLen := len([]rune(a))
	if lb := len([]rune(b)); lb > maxLen {
		maxLen = lb
	}
	return float64(maxLen-distance) / float64(maxLen)
}

// URLSimilarity compares two stream URLs after normalization.
func URLSimilarity(a, b string) float64 {
	return Similarity(NormalizeURL(a), NormalizeURL(b))
}
