package mcp

import (
	"github.com/custodia-labs/stig-assist/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions.
	Query driving.QueryService

	// Retrieval finds controls.
	Retrieval driving.RetrievalService

	// Ingest loads documents. Optional; load_document fails without it.
	Ingest driving.IngestService
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
