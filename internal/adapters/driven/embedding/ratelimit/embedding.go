// Package ratelimit wraps an embedding service with a token bucket limiter
// and a backoff window that opens whenever the provider reports a rate limit.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
	"github.com/custodia-labs/stig-assist/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBurst      = 4
	DefaultBackoff    = 5 * time.Second
	DefaultMaxRetries = 3
)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// Burst is the maximum burst size.
	Burst int
	// Backoff is how long to pause all calls after a rate limit error.
	Backoff time.Duration
	// MaxRetries bounds retries of a rate limited call.
	MaxRetries int
}

// RateLimiter is a token bucket with a shared backoff deadline.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	backoff time.Duration
}

// NewRateLimiter creates a limiter from cfg.
func NewRateLimiter(cfg Config) *RateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, cfg.Burst),
		backoff: cfg.Backoff,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		timer := time.NewTimer(time.Until(retryAt))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError opens the backoff window.
func (r *RateLimiter) RecordRateLimitError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(r.backoff)
}

// Allow reports whether a request can be made immediately.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}

// EmbeddingService decorates another embedding service with rate limiting.
type EmbeddingService struct {
	next       driven.EmbeddingService
	limiter    *RateLimiter
	maxRetries int
}

// Wrap returns next guarded by a limiter built from cfg.
func Wrap(next driven.EmbeddingService, cfg Config) *EmbeddingService {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return &EmbeddingService{
		next:       next,
		limiter:    NewRateLimiter(cfg),
		maxRetries: cfg.MaxRetries,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := s.do(ctx, func() error {
		var err error
		out, err = s.next.Embed(ctx, text)
		return err
	})
	return out, err
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := s.do(ctx, func() error {
		var err error
		out, err = s.next.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}

func (s *EmbeddingService) do(ctx context.Context, call func() error) error {
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err = s.limiter.Wait(ctx); err != nil {
			return err
		}
		err = call()
		if !errors.Is(err, domain.ErrRateLimited) {
			return err
		}
		logger.Warn("embedding provider rate limited (attempt %d/%d)", attempt+1, s.maxRetries+1)
		s.limiter.RecordRateLimitError()
	}
	return err
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.next.Dimensions()
}

// ModelName returns the name of the wrapped embedding model.
func (s *EmbeddingService) ModelName() string {
	return s.next.ModelName()
}

// Ping validates the wrapped service is reachable.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close releases the wrapped service.
func (s *EmbeddingService) Close() error {
	return s.next.Close()
}
