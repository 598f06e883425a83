package driven

import (
	"context"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

// PostProcessor processes document content to produce segments.
// PostProcessors are chained in a pipeline (cleaning, then splitting).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns segments.
	// A processor that rewrites content (e.g. cleaner) updates doc and passes segments through.
	// A processor that creates segments (e.g. chunker) receives nil and returns new segments.
	Process(ctx context.Context, doc *domain.Document, segments []domain.Segment) ([]domain.Segment, error)
}

// Preprocessor turns control records into segments ready for indexing.
// It is a pure transformation with no network or storage side effects.
type Preprocessor interface {
	// Process runs every record through the pipeline, in order.
	Process(ctx context.Context, records []domain.ControlRecord) ([]domain.Segment, error)
}
