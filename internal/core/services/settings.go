package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyCorpusBackend    = "corpus.backend"
	keyCorpusDir        = "corpus.dir"
	keyMilvusAddress    = "corpus.milvus_address"
	keyCorpusCollection = "corpus.collection"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedDims        = "embedding.dimensions"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMMaxTokens     = "llm.max_tokens"
	keyLLMTemperature   = "llm.temperature"
	keyChunkSize        = "preprocess.chunk_size"
	keyChunkOverlap     = "preprocess.overlap"
	keyQueryK           = "query.k"
	keyContextTokens    = "query.context_tokens"
	keyServerAddress    = "server.address"
)

// Environment variables consulted when the config file leaves a value empty.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOllamaHost   = "OLLAMA_HOST"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindSecret
)

type settingKey struct {
	key  string
	kind keyKind
}

// knownKeys lists every settable key in display order.
var knownKeys = []settingKey{
	{keyCorpusBackend, kindString},
	{keyCorpusDir, kindString},
	{keyMilvusAddress, kindString},
	{keyCorpusCollection, kindString},
	{keyEmbedProvider, kindString},
	{keyEmbedModel, kindString},
	{keyEmbedBaseURL, kindString},
	{keyEmbedAPIKey, kindSecret},
	{keyEmbedDims, kindInt},
	{keyEmbedRPS, kindFloat},
	{keyLLMProvider, kindString},
	{keyLLMModel, kindString},
	{keyLLMBaseURL, kindString},
	{keyLLMAPIKey, kindSecret},
	{keyLLMMaxTokens, kindInt},
	{keyLLMTemperature, kindFloat},
	{keyChunkSize, kindInt},
	{keyChunkOverlap, kindInt},
	{keyQueryK, kindInt},
	{keyContextTokens, kindInt},
	{keyServerAddress, kindString},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// WithEnv replaces the environment lookup. Used by tests.
func (s *SettingsService) WithEnv(getenv func(string) string) *SettingsService {
	s.getenv = getenv
	return s
}

// Path returns the config file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings, _, err := s.resolve()
	return settings, err
}

// resolve builds settings and reports which keys came from the environment.
func (s *SettingsService) resolve() (*domain.AppSettings, map[string]bool, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Corpus: domain.CorpusSettings{
			Backend:       s.getBackend(defaults.Corpus.Backend),
			Dir:           s.configStore.GetString(keyCorpusDir), // Empty means the default under the app home
			MilvusAddress: s.configStore.GetString(keyMilvusAddress),
			Collection:    s.getString(keyCorpusCollection, defaults.Corpus.Collection),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.getInt(keyEmbedDims, 0),
			RequestsPerSecond: s.getFloat(keyEmbedRPS, defaults.Embedding.RequestsPerSecond),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			MaxTokens:   s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
		},
		Preprocess: domain.PreprocessSettings{
			ChunkSize: s.getInt(keyChunkSize, defaults.Preprocess.ChunkSize),
			Overlap:   s.getInt(keyChunkOverlap, defaults.Preprocess.Overlap),
		},
		Query: domain.QuerySettings{
			K:             s.getInt(keyQueryK, defaults.Query.K),
			ContextTokens: s.getInt(keyContextTokens, defaults.Query.ContextTokens),
		},
		Server: domain.ServerSettings{
			Address: s.getString(keyServerAddress, defaults.Server.Address),
		},
	}

	// Models default per provider, so they resolve after the provider.
	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	if settings.Embedding.Dimensions <= 0 {
		settings.Embedding.Dimensions = defaults.Embedding.Dimensions
		if dims, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
			settings.Embedding.Dimensions = dims
		}
	}

	fromEnv := s.applyEnv(settings)

	if settings.Corpus.Backend == domain.CorpusMilvus && settings.Corpus.MilvusAddress == "" {
		return nil, nil, fmt.Errorf("%w: %s is required for the milvus backend", domain.ErrInvalidInput, keyMilvusAddress)
	}

	return settings, fromEnv, nil
}

// applyEnv fills empty provider credentials and endpoints from the environment.
// It returns the keys it filled.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) map[string]bool {
	filled := make(map[string]bool)

	fillKey := func(key string, dst *string, provider domain.AIProvider) {
		if *dst != "" {
			return
		}
		switch provider {
		case domain.AIProviderOpenAI:
			*dst = s.getenv(EnvOpenAIKey)
		case domain.AIProviderAnthropic:
			*dst = s.getenv(EnvAnthropicKey)
		}
		filled[key] = *dst != ""
	}
	fillKey(keyEmbedAPIKey, &settings.Embedding.APIKey, settings.Embedding.Provider)
	fillKey(keyLLMAPIKey, &settings.LLM.APIKey, settings.LLM.Provider)

	if host := s.getenv(EnvOllamaHost); host != "" {
		if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = host
			filled[keyEmbedBaseURL] = true
		}
		if settings.LLM.Provider == domain.AIProviderOllama && settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = host
			filled[keyLLMBaseURL] = true
		}
	}

	return filled
}

// Set validates and persists a single key.
func (s *SettingsService) Set(key, value string) error {
	idx := slices.IndexFunc(knownKeys, func(k settingKey) bool {
		return k.key == key
	})
	if idx < 0 {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	value = strings.TrimSpace(value)
	var stored any = value

	switch knownKeys[idx].kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		stored = f
	}

	if err := validateEnum(key, value); err != nil {
		return err
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func validateEnum(key, value string) error {
	switch key {
	case keyCorpusBackend:
		if !domain.CorpusBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid corpus backend %q", domain.ErrInvalidInput, value)
		}
	case keyEmbedProvider:
		p := domain.AIProvider(value)
		if !p.IsValid() || p == domain.AIProviderAnthropic {
			return fmt.Errorf("%w: invalid embedding provider %q", domain.ErrInvalidInput, value)
		}
	case keyLLMProvider:
		p := domain.AIProvider(value)
		if !p.IsValid() || p == domain.AIProviderHashing {
			return fmt.Errorf("%w: invalid llm provider %q", domain.ErrInvalidInput, value)
		}
	}
	return nil
}

// Entries returns the effective value of every known key, secrets masked.
func (s *SettingsService) Entries() ([]driving.SettingEntry, error) {
	settings, fromEnv, err := s.resolve()
	if err != nil {
		return nil, err
	}

	effective := map[string]string{
		keyCorpusBackend:    string(settings.Corpus.Backend),
		keyCorpusDir:        settings.Corpus.Dir,
		keyMilvusAddress:    settings.Corpus.MilvusAddress,
		keyCorpusCollection: settings.Corpus.Collection,
		keyEmbedProvider:    settings.Embedding.Provider.String(),
		keyEmbedModel:       settings.Embedding.Model,
		keyEmbedBaseURL:     settings.Embedding.BaseURL,
		keyEmbedAPIKey:      settings.Embedding.APIKey,
		keyEmbedDims:        strconv.Itoa(settings.Embedding.Dimensions),
		keyEmbedRPS:         strconv.FormatFloat(settings.Embedding.RequestsPerSecond, 'g', -1, 64),
		keyLLMProvider:      settings.LLM.Provider.String(),
		keyLLMModel:         settings.LLM.Model,
		keyLLMBaseURL:       settings.LLM.BaseURL,
		keyLLMAPIKey:        settings.LLM.APIKey,
		keyLLMMaxTokens:     strconv.Itoa(settings.LLM.MaxTokens),
		keyLLMTemperature:   strconv.FormatFloat(settings.LLM.Temperature, 'g', -1, 64),
		keyChunkSize:        strconv.Itoa(settings.Preprocess.ChunkSize),
		keyChunkOverlap:     strconv.Itoa(settings.Preprocess.Overlap),
		keyQueryK:           strconv.Itoa(settings.Query.K),
		keyContextTokens:    strconv.Itoa(settings.Query.ContextTokens),
		keyServerAddress:    settings.Server.Address,
	}

	entries := make([]driving.SettingEntry, 0, len(knownKeys))
	for _, k := range knownKeys {
		value := effective[k.key]
		source := "default"
		if _, ok := s.configStore.Get(k.key); ok {
			source = "file"
		} else if fromEnv[k.key] {
			source = "env"
		}
		if k.kind == kindSecret {
			value = maskSecret(value)
		}
		entries = append(entries, driving.SettingEntry{Key: k.key, Value: value, Source: source})
	}
	return entries, nil
}

// maskSecret keeps the last four characters of a credential.
func maskSecret(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if val := s.configStore.GetInt(key); val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.CorpusBackend) domain.CorpusBackend {
	val := domain.CorpusBackend(s.configStore.GetString(keyCorpusBackend))
	if !val.IsValid() {
		return defaultVal
	}
	return val
}
