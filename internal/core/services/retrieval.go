package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driving"
	"github.com/custodia-labs/stig-assist/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService wraps similarity search with a release-version preference.
type RetrievalService struct {
	embedder driven.EmbeddingService
	corpus   driven.IndexedCorpus
}

// NewRetrievalService creates a new retrieval service.
// A nil embedder or corpus makes every search return no results.
func NewRetrievalService(embedder driven.EmbeddingService, corpus driven.IndexedCorpus) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		corpus:   corpus,
	}
}

// Search performs a similarity search. With PreferVersion9 set, generation 9
// segments fill the leading slots regardless of score.
func (s *RetrievalService) Search(
	ctx context.Context, query string, opts domain.RetrievalOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q, k=%d, preferVersion9=%t", query, opts.K, opts.PreferVersion9)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	k := opts.K
	if k <= 0 {
		k = domain.DefaultK
	}

	vec, ok, err := s.embedQuery(ctx, query)
	if !ok {
		return []domain.SearchResult{}, err
	}

	if !opts.PreferVersion9 {
		results, err := s.search(ctx, vec, k, opts.Filter)
		logger.Info("Results: %d", len(results))
		return results, err
	}

	preferred, err := s.search(ctx, vec, PreferredSlots(k), domain.SegmentFilter{
		ReleaseVersion: domain.Release9,
	})
	if err != nil {
		return []domain.SearchResult{}, err
	}
	logger.Debug("Version 9 results: %d", len(preferred))

	results := preferred
	if remaining := k - len(preferred); remaining > 0 {
		rest, err := s.search(ctx, vec, remaining, domain.SegmentFilter{
			ExcludeReleaseVersion: domain.Release9,
		})
		if err != nil {
			return []domain.SearchResult{}, err
		}
		logger.Debug("Other version results: %d", len(rest))
		results = append(results, rest...)
	}

	if len(results) > k {
		results = results[:k]
	}
	logger.Info("Results: %d", len(results))
	return results, nil
}

// SearchByControlID returns up to ControlSearchLimit segments whose control id
// contains controlID, ordered by similarity to the id itself.
func (s *RetrievalService) SearchByControlID(ctx context.Context, controlID string) ([]domain.SearchResult, error) {
	logger.Section("Control Lookup")
	logger.Debug("Control: %q", controlID)

	controlID = strings.TrimSpace(controlID)
	if controlID == "" {
		return []domain.SearchResult{}, nil
	}

	vec, ok, err := s.embedQuery(ctx, controlID)
	if !ok {
		return []domain.SearchResult{}, err
	}

	results, err := s.search(ctx, vec, domain.ControlSearchLimit, domain.SegmentFilter{
		ControlIDContains: controlID,
	})
	logger.Info("Results: %d", len(results))
	return results, err
}

// PreferredSlots is the number of leading slots reserved for generation 9: ceil(k/2)+1.
func PreferredSlots(k int) int {
	return (k+1)/2 + 1
}

// embedQuery returns ok=false when no search should run. The error is
// non-nil only for context cancellation.
func (s *RetrievalService) embedQuery(ctx context.Context, text string) ([]float32, bool, error) {
	if s.embedder == nil || s.corpus == nil {
		logger.Warn("Retrieval unavailable: embedder=%t corpus=%t", s.embedder != nil, s.corpus != nil)
		return nil, false, nil
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		logger.Warn("Query embedding failed: %v", err)
		return nil, false, nil
	}
	return vec, true, nil
}

// search absorbs corpus failures into an empty result.
func (s *RetrievalService) search(
	ctx context.Context, vec []float32, k int, filter domain.SegmentFilter,
) ([]domain.SearchResult, error) {
	results, err := s.corpus.Search(ctx, vec, k, filter)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return []domain.SearchResult{}, ctxErr
		}
		logger.Warn("Corpus search failed: %v", err)
		return []domain.SearchResult{}, nil
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return results, nil
}
