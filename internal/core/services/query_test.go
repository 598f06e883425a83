package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
)

const testTemplate = "CONTEXT<%s>\nQ<%s>"

func newTestQueryService(corpus *mockCorpus, llm *mockLLMService) *QueryService {
	retrieval := NewRetrievalService(&mockEmbeddingService{embedding: []float32{1}}, corpus)
	var llmSvc driven.LLMService
	if llm != nil {
		llmSvc = llm
	}
	return NewQueryService(retrieval, llmSvc, &mockPromptStore{template: testTemplate}, QueryConfig{
		K:        5,
		Generate: driven.GenerateOptions{MaxTokens: 256, Temperature: 0.1},
	})
}

func TestResolveVersion(t *testing.T) {
	tests := []struct {
		name string
		req  domain.QueryRequest
		want domain.ReleaseVersion
	}{
		{"default", domain.QueryRequest{Question: "q"}, domain.Release9},
		{"explicit hint wins", domain.QueryRequest{ControlID: "RHEL-09-211010", ReleaseVersion: domain.Release8}, domain.Release8},
		{"from control id", domain.QueryRequest{ControlID: "RHEL-08-010010"}, domain.Release8},
		{"lowercase control id", domain.QueryRequest{ControlID: "rhel-08-010010"}, domain.Release8},
		{"control id without token", domain.QueryRequest{ControlID: "V-230221"}, domain.Release9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveVersion(tt.req))
		})
	}
}

func TestQueryService_Answer_FreeTextPrefersVersion9(t *testing.T) {
	corpus := mixedCorpus()
	llm := &mockLLMService{response: "  Configure the banner.  "}
	svc := newTestQueryService(corpus, llm)

	answer := svc.Answer(context.Background(), domain.QueryRequest{Question: "How do I set the SSH banner?"})
	require.NotNil(t, answer)

	assert.Equal(t, domain.AnswerStatusAnswered, answer.Status)
	assert.False(t, answer.Failed())
	assert.NoError(t, answer.Err)
	assert.Equal(t, "Configure the banner.", answer.Text)
	assert.Equal(t, domain.Release9, answer.ResolvedVersion)
	assert.Equal(t, "Question about RHEL 9: How do I set the SSH banner?", answer.Query)

	// Version 9 sources lead even though the version 8 segments score higher.
	require.Len(t, answer.Sources, 5)
	for _, src := range answer.Sources[:4] {
		assert.Equal(t, domain.Release9, src.Metadata.ReleaseVersion)
	}
	assert.Equal(t, domain.Release8, answer.Sources[4].Metadata.ReleaseVersion)

	require.Len(t, llm.prompts, 1)
	assert.True(t, strings.HasPrefix(llm.prompts[0], "CONTEXT<content of c9\n\ncontent of d9"))
	assert.True(t, strings.HasSuffix(llm.prompts[0], "Q<Question about RHEL 9: How do I set the SSH banner?>"))
	assert.Equal(t, 256, llm.opts[0].MaxTokens)
}

func TestQueryService_Answer_FreeTextVersion8Filters(t *testing.T) {
	corpus := mixedCorpus()
	llm := &mockLLMService{response: "ok"}
	svc := newTestQueryService(corpus, llm)

	answer := svc.Answer(context.Background(), domain.QueryRequest{Question: "q", ReleaseVersion: domain.Release8})

	assert.Equal(t, domain.Release8, answer.ResolvedVersion)
	assert.Equal(t, "Question about RHEL 8: q", answer.Query)
	require.Len(t, answer.Sources, 2)
	for _, src := range answer.Sources {
		assert.Equal(t, domain.Release8, src.Metadata.ReleaseVersion)
	}
	last := corpus.searches[len(corpus.searches)-1]
	assert.Equal(t, domain.Release8, last.filter.ReleaseVersion)
}

func TestQueryService_Answer_TargetedControl(t *testing.T) {
	corpus := mixedCorpus()
	for i, id := range []string{"t1", "t2", "t3", "t4"} {
		corpus.seg(id, "RHEL-08-010010", domain.Release8, 0.8-float64(i)/10)
	}
	llm := &mockLLMService{response: "answer"}
	svc := newTestQueryService(corpus, llm)

	answer := svc.Answer(context.Background(), domain.QueryRequest{
		Question:  "How do I check this?",
		ControlID: "RHEL-08-010010",
	})

	assert.Equal(t, domain.AnswerStatusAnswered, answer.Status)
	assert.Equal(t, domain.Release8, answer.ResolvedVersion)
	assert.Equal(t, "Question about STIG RHEL-08-010010 for RHEL 8: How do I check this?", answer.Query)
	assert.Len(t, answer.Sources, 5)

	// Only the first three matches become context.
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "content of a8\n\ncontent of t1\n\ncontent of t2>")
	assert.NotContains(t, prompt, "content of t3")
}

func TestQueryService_Answer_TargetedNoMatchFallsBack(t *testing.T) {
	corpus := mixedCorpus()
	llm := &mockLLMService{response: "answer"}
	svc := newTestQueryService(corpus, llm)

	answer := svc.Answer(context.Background(), domain.QueryRequest{
		Question:  "What is this?",
		ControlID: "RHEL-09-999999",
	})

	assert.Equal(t, domain.Release9, answer.ResolvedVersion)
	assert.Equal(t, "Question about RHEL 9: What is this?", answer.Query)
	assert.NotEmpty(t, answer.Sources)
}

func TestQueryService_Answer_EmptyCorpus(t *testing.T) {
	llm := &mockLLMService{response: "I have no documentation for that."}
	svc := newTestQueryService(&mockCorpus{}, llm)

	answer := svc.Answer(context.Background(), domain.QueryRequest{Question: "anything"})

	assert.Equal(t, domain.AnswerStatusNoContext, answer.Status)
	assert.Empty(t, answer.Sources)
	assert.NotEmpty(t, answer.Text)
}

func TestQueryService_Answer_GenerationFailure(t *testing.T) {
	llm := &mockLLMService{generateErr: errors.New("model not found")}
	svc := newTestQueryService(mixedCorpus(), llm)

	answer := svc.Answer(context.Background(), domain.QueryRequest{
		Question:  "original question",
		ControlID: "RHEL-08-010010",
	})

	assert.True(t, answer.Failed())
	assert.ErrorIs(t, answer.Err, domain.ErrLLMUnavailable)
	assert.True(t, strings.HasPrefix(answer.Text, domain.ErrorAnswerPrefix))
	assert.Contains(t, answer.Text, "model not found")
	assert.Equal(t, domain.Release8, answer.ResolvedVersion)
	assert.Equal(t, "original question", answer.Query)
	assert.NotNil(t, answer.Sources)
	assert.Empty(t, answer.Sources)
}

func TestQueryService_Answer_NoLLM(t *testing.T) {
	svc := newTestQueryService(mixedCorpus(), nil)

	answer := svc.Answer(context.Background(), domain.QueryRequest{Question: "q"})

	assert.True(t, answer.Failed())
	assert.ErrorIs(t, answer.Err, domain.ErrLLMUnavailable)
	assert.Equal(t, domain.Release9, answer.ResolvedVersion)
}

func TestQueryService_Answer_EmptyQuestion(t *testing.T) {
	svc := newTestQueryService(mixedCorpus(), &mockLLMService{response: "x"})

	answer := svc.Answer(context.Background(), domain.QueryRequest{Question: "  "})

	assert.True(t, answer.Failed())
	assert.ErrorIs(t, answer.Err, domain.ErrInvalidInput)
	assert.Equal(t, domain.Release9, answer.ResolvedVersion)
}

func TestQueryService_Answer_RetrievalCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	retrieval := NewRetrievalService(&mockEmbeddingService{embedErr: context.Canceled}, mixedCorpus())
	llm := &mockLLMService{response: "x"}
	svc := NewQueryService(retrieval, llm, nil, QueryConfig{})

	answer := svc.Answer(ctx, domain.QueryRequest{Question: "q"})

	assert.True(t, answer.Failed())
	assert.ErrorIs(t, answer.Err, context.Canceled)
	assert.Empty(t, llm.prompts)
}

func TestQueryService_Template_Fallback(t *testing.T) {
	tests := []struct {
		name    string
		prompts driven.PromptStore
	}{
		{"nil store", nil},
		{"load error", &mockPromptStore{err: errors.New("missing")}},
		{"wrong placeholders", &mockPromptStore{template: "only %s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewQueryService(nil, nil, tt.prompts, QueryConfig{})
			assert.Equal(t, fallbackAnswerTemplate, svc.template())
		})
	}
}

func TestQueryService_BuildContext_TokenBudget(t *testing.T) {
	svc := NewQueryService(nil, nil, nil, QueryConfig{ContextTokens: 5})
	svc.SetTokenCounter(wordCounter{})

	results := []domain.SearchResult{
		{Segment: domain.Segment{Content: "one two three four five six"}},
		{Segment: domain.Segment{Content: "seven"}},
	}

	// The first segment is always kept even when it alone exceeds the budget.
	assert.Equal(t, "one two three four five six", svc.buildContext(results))

	svc.config.ContextTokens = 10
	assert.Equal(t, "one two three four five six\n\nseven", svc.buildContext(results))
}

func TestQueryService_BuildContext_NoCounter(t *testing.T) {
	svc := NewQueryService(nil, nil, nil, QueryConfig{ContextTokens: 1})

	results := []domain.SearchResult{
		{Segment: domain.Segment{Content: "a b c"}},
		{Segment: domain.Segment{Content: "d e f"}},
	}
	assert.Equal(t, "a b c\n\nd e f", svc.buildContext(results))
}

func TestDefaultQueryConfig(t *testing.T) {
	cfg := DefaultQueryConfig(domain.DefaultAppSettings())
	assert.Equal(t, domain.DefaultK, cfg.K)
	assert.Equal(t, 3000, cfg.ContextTokens)
	assert.Equal(t, 1024, cfg.Generate.MaxTokens)
	assert.InDelta(t, 0.1, cfg.Generate.Temperature, 1e-9)
}
