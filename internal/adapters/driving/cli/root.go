// Package cli provides the cobra command tree for stig-assist.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driving"
	"github.com/custodia-labs/stig-assist/internal/logger"
)

// ErrNotConfigured is returned when a command needs a component the App lacks.
var ErrNotConfigured = errors.New("not configured")

// Services are the driving ports that need the corpus and AI providers.
type Services struct {
	Ingest    driving.IngestService
	Retrieval driving.RetrievalService
	Query     driving.QueryService
	Health    driving.HealthService

	// Close releases the driven services behind the ports. May be nil.
	Close func()
}

// Connector builds the services on first use.
type Connector func(ctx context.Context) (*Services, error)

// App holds everything the commands depend on.
// The composition root fills it once; commands never construct services themselves.
type App struct {
	// Version is printed by the version command.
	Version string

	// Settings reads and writes configuration without opening the corpus.
	Settings driving.SettingsService

	// Validator pings AI providers after config changes. Optional.
	Validator driven.AIConfigValidator

	// Connect builds the corpus-backed services.
	Connect Connector

	// IsTerminal reports whether stdin is a terminal. Defaults to x/term.
	IsTerminal func() bool

	services *Services
}

// connect builds the services once and caches the result for the lifetime of the command.
func (a *App) connect(ctx context.Context) (*Services, error) {
	if a.services != nil {
		return a.services, nil
	}
	if a.Connect == nil {
		return nil, fmt.Errorf("services: %w", ErrNotConfigured)
	}
	svc, err := a.Connect(ctx)
	if err != nil {
		return nil, err
	}
	a.services = svc
	return svc, nil
}

// Close releases the services if they were connected.
func (a *App) Close() {
	if a.services != nil && a.services.Close != nil {
		a.services.Close()
	}
	a.services = nil
}

func (a *App) stdinIsTerminal() bool {
	if a.IsTerminal != nil {
		return a.IsTerminal()
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// NewRootCmd builds the command tree around app.
func NewRootCmd(app *App) *cobra.Command {
	var (
		verbose bool
		envFile string
	)

	root := &cobra.Command{
		Use:   "stig-assist",
		Short: "RHEL STIG compliance assistant",
		Long: `stig-assist indexes DISA STIG benchmarks for RHEL 8 and RHEL 9 and answers
compliance questions with retrieval-augmented generation.

RHEL 9 controls are preferred unless a question targets RHEL 8.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger.SetVerbose(verbose)
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("loading %s: %w", envFile, err)
				}
				logger.Debug("loaded environment from %s", envFile)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			app.Close()
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file")

	root.AddCommand(
		newLoadCmd(app),
		newAskCmd(app),
		newFindCmd(app),
		newSearchCmd(app),
		newHealthCmd(app),
		newServeCmd(app),
		newMCPCmd(app),
		newWatchCmd(app),
		newInteractiveCmd(app),
		newConfigCmd(app),
		newVersionCmd(app),
	)

	return root
}
