package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driving"
	"github.com/custodia-labs/stig-assist/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// targetedContextLimit is how many control matches become prompt context.
const targetedContextLimit = 3

// fallbackAnswerTemplate is used when no prompt store is configured or the
// stored template cannot be read.
const fallbackAnswerTemplate = `Use the following STIG documentation to answer the question.

Context:
%s

Question: %s

Answer:`

// QueryConfig tunes retrieval depth and generation.
type QueryConfig struct {
	// K is the free-text retrieval depth.
	K int

	// ContextTokens caps the prompt context. Zero disables trimming.
	ContextTokens int

	// Generate is passed to the LLM.
	Generate driven.GenerateOptions
}

// DefaultQueryConfig derives query settings from application settings.
func DefaultQueryConfig(settings domain.AppSettings) QueryConfig {
	return QueryConfig{
		K:             settings.Query.K,
		ContextTokens: settings.Query.ContextTokens,
		Generate: driven.GenerateOptions{
			MaxTokens:   settings.LLM.MaxTokens,
			Temperature: settings.LLM.Temperature,
		},
	}
}

// QueryService answers questions with version-aware retrieval and an LLM.
type QueryService struct {
	retrieval driving.RetrievalService
	llm       driven.LLMService
	prompts   driven.PromptStore
	tokens    driven.TokenCounter
	config    QueryConfig
}

// NewQueryService creates a new query orchestrator.
// The llm and prompts parameters are optional (can be nil); without an LLM
// every answer is a labelled failure.
func NewQueryService(
	retrieval driving.RetrievalService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	config QueryConfig,
) *QueryService {
	if config.K <= 0 {
		config.K = domain.DefaultK
	}
	return &QueryService{
		retrieval: retrieval,
		llm:       llm,
		prompts:   prompts,
		config:    config,
	}
}

// SetTokenCounter enables token-budget trimming of the prompt context.
func (s *QueryService) SetTokenCounter(tokens driven.TokenCounter) {
	s.tokens = tokens
}

// ResolveVersion picks the preferred generation: an explicit hint wins, then
// the generation encoded in the control id, then the default.
func ResolveVersion(req domain.QueryRequest) domain.ReleaseVersion {
	if req.ReleaseVersion.IsKnown() {
		return req.ReleaseVersion
	}
	if req.ControlID != "" {
		if v := domain.InferReleaseVersion(req.ControlID); v.IsKnown() {
			return v
		}
	}
	return domain.DefaultReleaseVersion
}

// Answer runs one question through retrieval and generation.
// It never returns nil and never returns a raw error.
func (s *QueryService) Answer(ctx context.Context, req domain.QueryRequest) *domain.Answer {
	logger.Section("Answer Question")
	logger.Debug("Question: %q, control: %q, version hint: %q", req.Question, req.ControlID, req.ReleaseVersion)

	answer := &domain.Answer{
		ResolvedVersion: domain.DefaultReleaseVersion,
		Query:           req.Question,
		Sources:         []domain.Source{},
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return fail(answer, req, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput))
	}

	version := ResolveVersion(req)
	answer.ResolvedVersion = version
	logger.Info("Resolved version: %s", version)

	annotated, contextResults, sources, err := s.retrieve(ctx, question, strings.TrimSpace(req.ControlID), version)
	if err != nil {
		return fail(answer, req, err)
	}

	if s.llm == nil {
		return fail(answer, req, domain.ErrLLMUnavailable)
	}

	prompt := fmt.Sprintf(s.template(), s.buildContext(contextResults), annotated)
	logger.Debug("Prompt: %d chars, %d context segments", len(prompt), len(contextResults))

	text, err := s.llm.Generate(ctx, prompt, s.config.Generate)
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return fail(answer, req, fmt.Errorf("%w: %v", domain.ErrLLMUnavailable, err))
	}

	answer.Text = strings.TrimSpace(text)
	answer.Sources = domain.SourcesFromResults(sources)
	answer.Query = annotated
	answer.Status = domain.AnswerStatusAnswered
	if len(sources) == 0 {
		answer.Status = domain.AnswerStatusNoContext
	}

	logger.Info("Answered with %d sources", len(answer.Sources))
	return answer
}

// retrieve runs the targeted or free-text path. It returns the annotated
// question, the results used as context and the results reported as sources.
func (s *QueryService) retrieve(
	ctx context.Context, question, controlID string, version domain.ReleaseVersion,
) (string, []domain.SearchResult, []domain.SearchResult, error) {
	if s.retrieval == nil {
		return "", nil, nil, domain.ErrCorpusUnavailable
	}

	if controlID != "" {
		matches, err := s.retrieval.SearchByControlID(ctx, controlID)
		if err != nil {
			return "", nil, nil, err
		}
		if len(matches) > 0 {
			logger.Debug("Targeted path: %d matches for %s", len(matches), controlID)
			annotated := fmt.Sprintf("Question about STIG %s for RHEL %s: %s", controlID, version, question)
			return annotated, matches[:min(targetedContextLimit, len(matches))], matches, nil
		}
		logger.Debug("No matches for %s, falling back to free-text retrieval", controlID)
	}

	annotated := fmt.Sprintf("Question about RHEL %s: %s", version, question)

	opts := domain.RetrievalOptions{K: s.config.K}
	if version == domain.Release9 {
		opts.PreferVersion9 = true
	} else {
		opts.Filter = domain.SegmentFilter{ReleaseVersion: version}
	}

	results, err := s.retrieval.Search(ctx, annotated, opts)
	if err != nil {
		return "", nil, nil, err
	}
	return annotated, results, results, nil
}

// buildContext joins segment contents with blank lines, keeping whole
// segments within the token budget. The first segment is always kept.
func (s *QueryService) buildContext(results []domain.SearchResult) string {
	parts := make([]string, 0, len(results))
	used := 0

	for i := range results {
		content := results[i].Segment.Content
		if s.tokens != nil && s.config.ContextTokens > 0 && i > 0 {
			n := s.tokens.Count(content)
			if used+n > s.config.ContextTokens {
				logger.Debug("Context budget reached after %d segments", i)
				break
			}
			used += n
		} else if s.tokens != nil {
			used += s.tokens.Count(content)
		}
		parts = append(parts, content)
	}

	return strings.Join(parts, "\n\n")
}

func (s *QueryService) template() string {
	if s.prompts == nil {
		return fallbackAnswerTemplate
	}
	tmpl, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil || strings.Count(tmpl, "%s") != 2 {
		logger.Warn("Answer prompt unusable, using built-in template: %v", err)
		return fallbackAnswerTemplate
	}
	return tmpl
}

// fail degrades an answer to a labelled error result.
func fail(answer *domain.Answer, req domain.QueryRequest, err error) *domain.Answer {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("Query cancelled: %v", err)
	} else {
		logger.Error("Query failed: %v", err)
	}

	answer.Text = domain.ErrorAnswerPrefix + err.Error()
	answer.Sources = []domain.Source{}
	answer.Query = req.Question
	answer.Status = domain.AnswerStatusFailed
	answer.Err = err
	return answer
}
