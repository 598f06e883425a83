package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driving"
)

type mockQueryService struct {
	answer  *domain.Answer
	lastReq domain.QueryRequest
}

func (m *mockQueryService) Answer(_ context.Context, req domain.QueryRequest) *domain.Answer {
	m.lastReq = req
	if m.answer != nil {
		return m.answer
	}
	return &domain.Answer{
		Text:            "Enable FIPS with fips-mode-setup --enable.",
		ResolvedVersion: domain.Release9,
		Query:           req.Question,
		Status:          domain.AnswerStatusAnswered,
		Sources:         domain.SourcesFromResults(sampleResults()),
	}
}

type mockRetrievalService struct {
	results  []domain.SearchResult
	err      error
	lastID   string
	lastOpts domain.RetrievalOptions
}

func (m *mockRetrievalService) Search(
	_ context.Context,
	_ string,
	opts domain.RetrievalOptions,
) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockRetrievalService) SearchByControlID(_ context.Context, id string) ([]domain.SearchResult, error) {
	m.lastID = id
	return m.results, m.err
}

type mockIngestService struct {
	loaded []string
	fail   map[string]bool
}

func (m *mockIngestService) LoadDocument(
	_ context.Context,
	path string,
	format domain.DocumentFormat,
) (*domain.LoadReport, error) {
	if m.fail[path] {
		return nil, domain.ErrMalformedDocument
	}
	m.loaded = append(m.loaded, path)
	return &domain.LoadReport{Path: path, Format: format, RecordsLoaded: 1, SegmentsCreated: 2}, nil
}

type mockHealthService struct{}

func (mockHealthService) Check(_ context.Context) domain.Health {
	return domain.Health{Status: domain.HealthStatusOK, Timestamp: time.Unix(1700000000, 0).UTC(), Segments: 4}
}

type mockSettingsService struct {
	values   map[string]string
	settings *domain.AppSettings
	setErr   error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.settings == nil {
		return &domain.AppSettings{}, nil
	}
	return m.settings, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Entries() ([]driving.SettingEntry, error) {
	return []driving.SettingEntry{
		{Key: "llm.provider", Value: "ollama", Source: "default"},
		{Key: "llm.api_key", Value: "", Source: "default"},
	}, nil
}

func (m *mockSettingsService) Path() string {
	return "/tmp/stig-assist/config.toml"
}

type mockValidator struct {
	embeddingErr error
	llmErr       error
	calls        []string
}

func (m *mockValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	m.calls = append(m.calls, "embedding")
	return m.embeddingErr
}

func (m *mockValidator) ValidateLLM(_ *domain.LLMSettings) error {
	m.calls = append(m.calls, "llm")
	return m.llmErr
}

type fixture struct {
	app       *App
	query     *mockQueryService
	retrieval *mockRetrievalService
	ingest    *mockIngestService
	settings  *mockSettingsService
	validator *mockValidator
	closed    int
}

func newFixture() *fixture {
	f := &fixture{
		query:     &mockQueryService{},
		retrieval: &mockRetrievalService{},
		ingest:    &mockIngestService{},
		settings:  &mockSettingsService{},
		validator: &mockValidator{},
	}
	f.app = &App{
		Version:    "1.2.3",
		Settings:   f.settings,
		Validator:  f.validator,
		IsTerminal: func() bool { return false },
		Connect: func(_ context.Context) (*Services, error) {
			return &Services{
				Ingest:    f.ingest,
				Retrieval: f.retrieval,
				Query:     f.query,
				Health:    mockHealthService{},
				Close:     func() { f.closed++ },
			}, nil
		},
	}
	return f
}

// run executes the root command with args and returns combined output.
func (f *fixture) run(stdin string, args ...string) (string, error) {
	root := NewRootCmd(f.app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{{
		Segment: domain.Segment{
			ID:      "seg-1",
			Content: "STIG ID: RHEL-09-671010\nTitle: RHEL 9 must enable FIPS mode.",
			Metadata: domain.SegmentMetadata{
				ControlID:      "RHEL-09-671010",
				Title:          "RHEL 9 must enable FIPS mode.",
				Severity:       domain.SeverityHigh,
				ReleaseVersion: domain.Release9,
			},
		},
		Score: 0.87,
	}}
}

var errBoom = errors.New("boom")
