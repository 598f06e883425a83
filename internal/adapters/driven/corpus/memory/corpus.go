// Package memory provides an in-process IndexedCorpus for tests and ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/stig-assist/internal/adapters/driven/corpus"
	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
)

// Ensure Corpus implements the interface.
var _ driven.IndexedCorpus = (*Corpus)(nil)

// Corpus is an in-memory implementation of driven.IndexedCorpus.
type Corpus struct {
	mu       sync.RWMutex
	segments []domain.Segment
	ids      map[string]struct{}
}

// NewCorpus creates a new in-memory corpus.
func NewCorpus() *Corpus {
	return &Corpus{
		ids: make(map[string]struct{}),
	}
}

// Add appends segments. Segments whose id already exists are skipped.
func (c *Corpus) Add(_ context.Context, segments []domain.Segment) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range segments {
		seg := segments[i]
		if len(seg.Embedding) == 0 {
			return fmt.Errorf("%w: segment %s has no embedding", domain.ErrInvalidInput, seg.ID)
		}
		if _, ok := c.ids[seg.ID]; ok {
			continue
		}
		seg.Embedding = slices.Clone(seg.Embedding)
		c.segments = append(c.segments, seg)
		c.ids[seg.ID] = struct{}{}
	}
	return nil
}

// Search returns the k most similar segments passing the filter.
func (c *Corpus) Search(
	ctx context.Context, query []float32, k int, filter domain.SegmentFilter,
) ([]domain.SearchResult, error) {
	if k <= 0 || len(query) == 0 {
		return []domain.SearchResult{}, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var results []domain.SearchResult
	for i := range c.segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seg := c.segments[i]
		if !filter.Matches(seg.Metadata) {
			continue
		}
		score, ok := corpus.Cosine(query, seg.Embedding)
		if !ok {
			continue
		}
		seg.Embedding = nil
		results = append(results, domain.SearchResult{Segment: seg, Score: score})
	}

	return corpus.TopK(results, k), nil
}

// Count returns the number of stored segments.
func (c *Corpus) Count(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.segments), nil
}

// Close releases resources.
func (c *Corpus) Close() error {
	return nil
}
