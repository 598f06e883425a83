// Package corpus holds helpers shared by the IndexedCorpus adapters.
package corpus

import (
	"cmp"
	"math"
	"slices"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

// Cosine returns the cosine similarity of two vectors.
// ok is false when the lengths differ or either vector has zero magnitude.
func Cosine(a, b []float32) (score float64, ok bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}

// TopK sorts results by descending score and keeps the first k.
// Ties keep insertion order.
func TopK(results []domain.SearchResult, k int) []domain.SearchResult {
	slices.SortStableFunc(results, func(a, b domain.SearchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	return results
}
