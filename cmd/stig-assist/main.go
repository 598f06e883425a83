// Command stig-assist answers RHEL STIG compliance questions over indexed benchmarks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/stig-assist/internal/adapters/driven/ai"
	"github.com/custodia-labs/stig-assist/internal/adapters/driven/config/file"
	"github.com/custodia-labs/stig-assist/internal/adapters/driven/tokenizer"
	"github.com/custodia-labs/stig-assist/internal/adapters/driving/cli"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driving"
	"github.com/custodia-labs/stig-assist/internal/core/services"
	"github.com/custodia-labs/stig-assist/internal/loaders"
	"github.com/custodia-labs/stig-assist/internal/logger"
	"github.com/custodia-labs/stig-assist/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{Version: version}
	defer app.Close()

	store, err := file.NewConfigStore("")
	if err != nil {
		logger.Warn("config store unavailable: %v", err)
	} else {
		settings := services.NewSettingsService(store)
		app.Settings = settings
		app.Validator = ai.NewConfigValidator()
		app.Connect = connector(settings)
	}

	if err := cli.NewRootCmd(app).ExecuteContext(ctx); err != nil {
		app.Close()
		stop()
		os.Exit(1)
	}
}

// connector wires the driven adapters behind the driving services.
func connector(settingsSvc driving.SettingsService) cli.Connector {
	return func(ctx context.Context) (*cli.Services, error) {
		settings, err := settingsSvc.Get()
		if err != nil {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}

		home, err := file.HomeDir()
		if err != nil {
			return nil, err
		}

		adapters, err := ai.Initialise(ctx, settings, home)
		if err != nil {
			return nil, err
		}

		pipeline, err := postprocessors.NewDefaultPipeline(settings.Preprocess.ChunkSize, settings.Preprocess.Overlap)
		if err != nil {
			adapters.Close()
			return nil, fmt.Errorf("failed to build preprocessor: %w", err)
		}

		ingest := services.NewIngestService(loaders.NewDefaultRegistry(), pipeline, adapters.EmbeddingService, adapters.Corpus)
		retrieval := services.NewRetrievalService(adapters.EmbeddingService, adapters.Corpus)

		prompts, err := file.NewPromptStore("")
		if err != nil {
			logger.Warn("prompt store unavailable, using built-in template: %v", err)
		}
		query := services.NewQueryService(retrieval, adapters.LLMService, promptStore(prompts), services.DefaultQueryConfig(*settings))
		query.SetTokenCounter(tokenCounter(settings.LLM.Model))

		return &cli.Services{
			Ingest:    ingest,
			Retrieval: retrieval,
			Query:     query,
			Health:    services.NewHealthService(adapters.Corpus),
			Close:     adapters.Close,
		}, nil
	}
}

func promptStore(s *file.PromptStore) driven.PromptStore {
	if s == nil {
		return nil
	}
	return s
}

// tokenCounter loads the tiktoken encoding for model, or estimates when the
// encoding cannot be fetched.
func tokenCounter(model string) driven.TokenCounter {
	counter, err := tokenizer.ForModel(model)
	if err != nil {
		logger.Debug("tiktoken unavailable, estimating tokens: %v", err)
		return tokenizer.Approximate{}
	}
	return counter
}
