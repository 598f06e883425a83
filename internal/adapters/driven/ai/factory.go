// Package ai provides factory functions for creating AI service and corpus adapters.
package ai

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/custodia-labs/stig-assist/internal/adapters/driven/corpus/memory"
	"github.com/custodia-labs/stig-assist/internal/adapters/driven/corpus/milvus"
	"github.com/custodia-labs/stig-assist/internal/adapters/driven/corpus/sqlite"
	hashingembed "github.com/custodia-labs/stig-assist/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/stig-assist/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/stig-assist/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/stig-assist/internal/adapters/driven/embedding/ratelimit"
	anthropicllm "github.com/custodia-labs/stig-assist/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/stig-assist/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/stig-assist/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
	"github.com/custodia-labs/stig-assist/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService // Nil when unconfigured or unreachable.
	Corpus           driven.IndexedCorpus
	Warnings         []string // Non-fatal issues that disabled a service.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		_ = r.EmbeddingService.Close()
	}
	if r.Corpus != nil {
		_ = r.Corpus.Close()
	}
	if r.LLMService != nil {
		_ = r.LLMService.Close()
	}
}

// Initialise builds every driven service named by settings.
//
// The corpus is mandatory: failing to open it is an error wrapping
// domain.ErrCorpusUnavailable. Embedding and LLM problems are recorded as
// warnings and leave the service nil, so queries degrade instead of the
// process refusing to start.
func Initialise(ctx context.Context, settings *domain.AppSettings, homeDir string) (*InitResult, error) {
	result := &InitResult{}

	embedder, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.EmbeddingService = embedder

	dims := settings.Embedding.Dimensions
	if embedder != nil {
		dims = embedder.Dimensions()
	}

	corpus, err := CreateCorpus(ctx, &settings.Corpus, dims, homeDir)
	if err != nil {
		result.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrCorpusUnavailable, err)
	}
	result.Corpus = corpus

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.LLMService = llm

	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	return result, nil
}

// CreateCorpus opens the IndexedCorpus selected by settings.
// dims sizes a newly created Milvus collection; sqlite and memory accept any size.
func CreateCorpus(
	ctx context.Context,
	settings *domain.CorpusSettings,
	dims int,
	homeDir string,
) (driven.IndexedCorpus, error) {
	switch settings.Backend {
	case domain.CorpusSQLite, "":
		dir := settings.Dir
		if dir == "" && homeDir != "" {
			dir = filepath.Join(homeDir, "corpus")
		}
		return sqlite.NewStore(dir)

	case domain.CorpusMemory:
		return memory.NewCorpus(), nil

	case domain.CorpusMilvus:
		return milvus.New(ctx, milvus.Config{
			Address:    settings.MilvusAddress,
			Collection: settings.Collection,
			Dimensions: dims,
		})

	default:
		return nil, fmt.Errorf("unsupported corpus backend: %s", settings.Backend)
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'stig-assist config set embedding.provider ...' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'stig-assist config set llm.provider ...' to fix",
			domain.ErrLLMUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Remote providers are wrapped in a rate limiter when RequestsPerSecond is set.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderHashing:
		// Local; never throttled.
		return hashingembed.NewEmbeddingService(settings.Dimensions), nil

	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings)
		if err != nil {
			return nil, err
		}

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use hashing, ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}

	if settings.RequestsPerSecond > 0 {
		svc = ratelimit.Wrap(svc, ratelimit.Config{RequestsPerSecond: settings.RequestsPerSecond})
	}
	return svc, nil
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
// An explicit dimension setting shortens text-embedding-3 vectors.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := settings.Dimensions
	if known := domain.EmbeddingDimensions()[settings.Model]; known != 0 && dimensions > known {
		dimensions = known
	}

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
