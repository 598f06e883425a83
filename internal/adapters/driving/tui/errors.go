package tui

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("tui: query service is required")

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("tui: retrieval service is required")

// ErrLoadingDisabled is returned by the load command when no ingest service is wired.
var ErrLoadingDisabled = errors.New("tui: document loading is not enabled")

// ErrMissingArgument is returned when a command needs an argument.
var ErrMissingArgument = errors.New("missing argument")
