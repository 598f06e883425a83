// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants ask compliance questions and look up controls in the indexed corpus.
package mcp

import "errors"

var (
	// ErrMissingQueryService is returned when the query service is not provided.
	ErrMissingQueryService = errors.New("mcp: query service is required")

	// ErrMissingRetrievalService is returned when the retrieval service is not provided.
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

	// ErrLoadingDisabled is returned by load_document when no ingest service is wired.
	ErrLoadingDisabled = errors.New("mcp: document loading is not enabled")
)
