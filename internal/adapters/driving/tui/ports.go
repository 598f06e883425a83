// Package tui provides an interactive terminal console for asking compliance questions.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/stig-assist/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions.
	Query driving.QueryService

	// Retrieval looks up controls by id.
	Retrieval driving.RetrievalService

	// Ingest loads documents. Optional; the load command reports an error without it.
	Ingest driving.IngestService

	// Health reports liveness. Optional.
	Health driving.HealthService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
