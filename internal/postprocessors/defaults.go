package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
	"github.com/custodia-labs/stig-assist/internal/postprocessors/chunker"
	"github.com/custodia-labs/stig-assist/internal/postprocessors/cleaner"
)

// Config names the processors to run and their settings.
type Config struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration keyed by processor name.
	ProcessorConfigs map[string]map[string]any
}

// DefaultConfig cleans then splits with the given chunk size and overlap.
func DefaultConfig(chunkSize, overlap int) Config {
	return Config{
		Processors: []string{"cleaner", "chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": chunkSize,
				"overlap":    overlap,
			},
		},
	}
}

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("cleaner", buildCleaner)
	r.Register("chunker", buildChunker)
}

// Build assembles a pipeline from configuration.
func Build(r *Registry, cfg Config) (*Pipeline, error) {
	if len(cfg.Processors) == 0 {
		return nil, fmt.Errorf("no processors configured")
	}

	pipeline := NewPipeline()
	for _, name := range cfg.Processors {
		processor, err := r.Build(name, cfg.ProcessorConfigs[name])
		if err != nil {
			return nil, err
		}
		pipeline.Add(processor)
	}
	return pipeline, nil
}

// NewDefaultPipeline is the standard clean-then-split preprocessor.
func NewDefaultPipeline(chunkSize, overlap int) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return Build(r, DefaultConfig(chunkSize, overlap))
}

func buildCleaner(_ map[string]any) (driven.PostProcessor, error) {
	return cleaner.New(), nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if size := getIntFromConfig(cfg, "chunk_size"); size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if _, ok := cfg["overlap"]; ok {
			opts = append(opts, chunker.WithOverlap(getIntFromConfig(cfg, "overlap")))
		}
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
