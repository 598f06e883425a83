package driven

import (
	"context"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

// ControlLoader parses one benchmark document format into control records.
// A malformed file yields no records and an error wrapping domain.ErrMalformedDocument.
type ControlLoader interface {
	// Format returns the document format this loader handles.
	Format() domain.DocumentFormat

	// Load reads the file at path. It has no side effects beyond reading.
	Load(ctx context.Context, path string) ([]domain.ControlRecord, error)
}

// LoaderRegistry selects the loader for a format.
type LoaderRegistry interface {
	// Get returns the loader for a format, or domain.ErrUnsupportedFormat.
	Get(format domain.DocumentFormat) (ControlLoader, error)
}
