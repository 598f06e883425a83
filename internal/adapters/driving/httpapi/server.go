// Package httpapi exposes the query, load, lookup and health operations as a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/stig-assist/internal/core/ports/driving"
	"github.com/custodia-labs/stig-assist/internal/logger"
)

var (
	// ErrMissingQueryService is returned when the query service is not provided.
	ErrMissingQueryService = errors.New("httpapi: query service is required")

	// ErrMissingRetrievalService is returned when the retrieval service is not provided.
	ErrMissingRetrievalService = errors.New("httpapi: retrieval service is required")

	// ErrMissingIngestService is returned when the ingest service is not provided.
	ErrMissingIngestService = errors.New("httpapi: ingest service is required")

	// ErrMissingHealthService is returned when the health service is not provided.
	ErrMissingHealthService = errors.New("httpapi: health service is required")
)

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	Query     driving.QueryService
	Retrieval driving.RetrievalService
	Ingest    driving.IngestService
	Health    driving.HealthService
}

// Validate ensures all ports are set.
func (p *Ports) Validate() error {
	switch {
	case p.Query == nil:
		return ErrMissingQueryService
	case p.Retrieval == nil:
		return ErrMissingRetrievalService
	case p.Ingest == nil:
		return ErrMissingIngestService
	case p.Health == nil:
		return ErrMissingHealthService
	}
	return nil
}

// Server serves the JSON API.
type Server struct {
	ports *Ports
	mux   *http.ServeMux
}

// NewServer creates a server and registers its routes.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		mux:   http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /query", s.handleQuery)
	s.mux.HandleFunc("POST /load-stig", s.handleLoad)
	s.mux.HandleFunc("GET /search/{stig_id}", s.handleSearch)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run listens on addr and serves until the context is cancelled.
// The ready callback, if set, receives the bound address once listening.
func (s *Server) Run(ctx context.Context, addr string, ready func(net.Addr)) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", listener.Addr())
	if ready != nil {
		ready(listener.Addr())
	}

	err = httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
