package driving

import (
	"context"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

// IngestService loads benchmark documents into the indexed corpus.
type IngestService interface {
	// LoadDocument parses, preprocesses, embeds and indexes one file.
	// Unsupported formats are rejected before any loader runs.
	LoadDocument(ctx context.Context, path string, format domain.DocumentFormat) (*domain.LoadReport, error)
}
