package resolve

import (
	"math"
	"strings"
)

// Ratio computes a similarity ratio between two strings as
// 2*LCS(a,b)/(len(a)+len(b)) over runes. 1.0 means identical, 0.0 means
// nothing in common.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	lcs := longestCommonSubsequence(ra, rb)
	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}

func longestCommonSubsequence(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// SimilarityScore scores a candidate category name against a search key.
// Both inputs must already be normalized. A whole-word containment of the
// search key inside the candidate earns a bonus, the reverse direction a
// smaller one. The result is capped at 1.0.
func SimilarityScore(search, candidate string) float64 {
	score := Ratio(search, candidate)
	if search != "" && candidate != "" {
		if strings.Contains(padded(candidate), padded(search)) {
			score += 0.2
		} else if strings.Contains(padded(search), padded(candidate)) {
			score += 0.1
		}
	}
	return math.Min(score, 1.0)
}

// Cosine computes cosine similarity between two embedding vectors. Zero
// for mismatched lengths or zero-magnitude inputs.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
