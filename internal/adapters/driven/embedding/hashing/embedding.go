// Package hashing provides an offline embedding service based on feature hashing.
//
// Terms are hashed into a fixed number of signed buckets and weighted by
// sublinear term frequency, so no vocabulary has to be prepared ahead of time
// and segments embedded in one run stay comparable with queries in the next.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the bucket count used when none is configured.
const DefaultDimensions = 512

// ModelName is reported for every hashing embedder.
const ModelName = "feature-hashing"

// EmbeddingService embeds text locally without any network dependency.
type EmbeddingService struct {
	dimensions   int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbeddingService creates a hashing embedder with the given number of buckets.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{
		dimensions: dimensions,
		// Keeps identifiers like RHEL-09-211010 and sshd_config as single tokens.
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:[-_.][\p{L}\p{N}]+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Embed computes the hashed term vector for text, L2 normalised.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, tok := range s.tokenize(text) {
		counts[tok]++
	}

	vec := make([]float64, s.dimensions)
	for term, n := range counts {
		idx, sign := s.bucket(term)
		vec[idx] += sign * (1 + math.Log(float64(n)))
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, s.dimensions)
	if norm == 0 {
		return out, nil
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model.
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds; the embedder has no remote dependency.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// bucket maps a term to its index and sign. The sign comes from a second hash
// bit so collisions tend to cancel rather than accumulate.
func (s *EmbeddingService) bucket(term string) (int, float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(term))
	sum := h.Sum64()
	sign := 1.0
	if sum>>63 == 1 {
		sign = -1.0
	}
	return int(sum % uint64(s.dimensions)), sign
}

func (s *EmbeddingService) tokenize(text string) []string {
	raw := s.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := s.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at",
		"by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that",
		"these", "those", "from", "into", "about", "than", "so", "such", "can", "will", "should",
		"must", "how", "what", "which", "do", "does", "i", "my", "we",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
