package driven

import (
	"context"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

// IndexedCorpus is the similarity-search store of segments and their embeddings.
// Segments are only ever appended; there is no update or delete path.
type IndexedCorpus interface {
	// Add appends segments. Each segment must carry its embedding.
	// Insertion is not transactional across calls.
	Add(ctx context.Context, segments []domain.Segment) error

	// Search returns up to k segments passing the filter, ordered by descending similarity.
	Search(ctx context.Context, query []float32, k int, filter domain.SegmentFilter) ([]domain.SearchResult, error)

	// Count returns the number of stored segments.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
