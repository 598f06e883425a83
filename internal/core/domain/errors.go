package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a document format no loader handles.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrMalformedDocument indicates a document could not be parsed.
	// The whole file is rejected; no records from it are indexed.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrLLMUnavailable indicates the answer generation service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrCorpusUnavailable indicates the indexed corpus cannot be reached.
	ErrCorpusUnavailable = errors.New("indexed corpus unavailable")

	// ErrRateLimited indicates a provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
