package services

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	batchErr  error
	short     bool
	calls     int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	n := len(texts)
	if m.short && n > 0 {
		n--
	}
	result := make([][]float32, n)
	for i := range result {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return len(m.embedding) }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockCorpus implements driven.IndexedCorpus with fixed per-segment scores.
type mockCorpus struct {
	mu        sync.Mutex
	segments  []domain.Segment
	scores    map[string]float64
	searchErr error
	addErr    error
	countErr  error
	searches  []mockSearchCall
}

type mockSearchCall struct {
	k      int
	filter domain.SegmentFilter
}

func (m *mockCorpus) Add(_ context.Context, segments []domain.Segment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.segments = append(m.segments, segments...)
	return nil
}

func (m *mockCorpus) Search(_ context.Context, _ []float32, k int, filter domain.SegmentFilter) ([]domain.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, mockSearchCall{k: k, filter: filter})
	if m.searchErr != nil {
		return nil, m.searchErr
	}

	var results []domain.SearchResult
	for _, seg := range m.segments {
		if filter.Matches(seg.Metadata) {
			results = append(results, domain.SearchResult{Segment: seg, Score: m.scores[seg.ID]})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (m *mockCorpus) Count(_ context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.segments), nil
}

func (m *mockCorpus) Close() error { return nil }

// seg builds a scored test segment.
func (m *mockCorpus) seg(id, controlID string, version domain.ReleaseVersion, score float64) {
	if m.scores == nil {
		m.scores = make(map[string]float64)
	}
	m.segments = append(m.segments, domain.Segment{
		ID:      id,
		Content: "content of " + id,
		Metadata: domain.SegmentMetadata{
			ControlID:      controlID,
			ReleaseVersion: version,
		},
	})
	m.scores[id] = score
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response    string
	generateErr error
	prompts     []string
	opts        []driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string            { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                 { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	template string
	err      error
}

func (m *mockPromptStore) Load(_ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.template, nil
}

func (m *mockPromptStore) Reload() {}

// wordCounter counts whitespace-separated words as tokens.
type wordCounter struct{}

func (wordCounter) Count(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\n' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	data   map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{data: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.data[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	v, _ := m.data[key].(bool)
	return v
}

func (m *mockConfigStore) Keys() []string {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockConfigStore) Save() error  { return nil }
func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return "/tmp/stig-assist/config.toml" }

// mockLoader implements driven.ControlLoader and driven.LoaderRegistry.
type mockLoader struct {
	records []domain.ControlRecord
	err     error
}

func (m *mockLoader) Format() domain.DocumentFormat { return domain.FormatRecordArray }

func (m *mockLoader) Load(_ context.Context, _ string) ([]domain.ControlRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *mockLoader) Get(format domain.DocumentFormat) (driven.ControlLoader, error) {
	if format != domain.FormatRecordArray {
		return nil, domain.ErrUnsupportedFormat
	}
	return m, nil
}

// mockPreprocessor implements driven.Preprocessor with n segments per record.
type mockPreprocessor struct {
	perRecord int
	err       error
}

func (m *mockPreprocessor) Process(_ context.Context, records []domain.ControlRecord) ([]domain.Segment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var segs []domain.Segment
	for _, r := range records {
		for i := 0; i < m.perRecord; i++ {
			meta := domain.NewSegmentMetadata(r)
			meta.ChunkIndex = i
			meta.ChunkCount = m.perRecord
			segs = append(segs, domain.Segment{
				ID:       r.ID + "-" + string(rune('a'+i)),
				Content:  r.Title,
				Metadata: meta,
			})
		}
	}
	return segs, nil
}
