package driving

import (
	"context"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

// RetrievalService finds segments relevant to a query.
// Both methods return an empty slice, not an error, when the corpus is empty
// or the embedding capability is unavailable.
type RetrievalService interface {
	// Search performs a version-biased similarity search.
	Search(ctx context.Context, query string, opts domain.RetrievalOptions) ([]domain.SearchResult, error)

	// SearchByControlID returns up to five segments whose control id contains controlID.
	SearchByControlID(ctx context.Context, controlID string) ([]domain.SearchResult, error)
}
