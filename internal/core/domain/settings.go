package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderHashing is the built-in offline feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHashing, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderHashing:
		return "Feature hashing (built-in, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// CorpusBackend identifies the IndexedCorpus implementation.
type CorpusBackend string

// Available corpus backends.
const (
	CorpusSQLite CorpusBackend = "sqlite"
	CorpusMemory CorpusBackend = "memory"
	CorpusMilvus CorpusBackend = "milvus"
)

// IsValid returns true if the backend is recognised.
func (b CorpusBackend) IsValid() bool {
	switch b {
	case CorpusSQLite, CorpusMemory, CorpusMilvus:
		return true
	default:
		return false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	Provider   AIProvider
	Model      string
	BaseURL    string
	APIKey     string
	Dimensions int

	// RequestsPerSecond throttles remote providers; zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	Provider    AIProvider
	Model       string
	BaseURL     string
	APIKey      string
	MaxTokens   int
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHashing {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// CorpusSettings holds IndexedCorpus configuration.
type CorpusSettings struct {
	Backend       CorpusBackend
	Dir           string
	MilvusAddress string
	Collection    string
}

// PreprocessSettings holds splitter configuration.
type PreprocessSettings struct {
	ChunkSize int
	Overlap   int
}

// QuerySettings holds orchestrator configuration.
type QuerySettings struct {
	K             int
	ContextTokens int
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	Address string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Corpus     CorpusSettings
	Embedding  EmbeddingSettings
	LLM        LLMSettings
	Preprocess PreprocessSettings
	Query      QuerySettings
	Server     ServerSettings
}

// DefaultAppSettings returns settings that work offline except for answer generation,
// which defaults to a local Ollama model.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Corpus: CorpusSettings{
			Backend:    CorpusSQLite,
			Collection: "stig_controls",
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderHashing,
			Dimensions: 512,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOllama,
			Model:       DefaultLLMModels()[AIProviderOllama],
			MaxTokens:   1024,
			Temperature: 0.1,
		},
		Preprocess: PreprocessSettings{
			ChunkSize: 1000,
			Overlap:   200,
		},
		Query: QuerySettings{
			K:             DefaultK,
			ContextTokens: 3000,
		},
		Server: ServerSettings{
			Address: ":8000",
		},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
