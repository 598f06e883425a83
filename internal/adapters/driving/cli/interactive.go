package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stig-assist/internal/adapters/driving/tui"
)

// ErrNotTerminal is returned when the console is started without a terminal.
var ErrNotTerminal = errors.New("interactive mode requires a terminal")

func newInteractiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"tui"},
		Short:   "Launch the interactive console",
		Long: `Launch an interactive console for asking questions and looking up controls.

Commands:
  query <question>     Ask a question
  query9 <question>    Ask a RHEL 9 specific question
  query8 <question>    Ask a RHEL 8 specific question
  search <stig_id>     Find controls by id
  load <file_path>     Load a benchmark file
  health               Check system health
  help                 Show help
  exit                 Leave the console`,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if !app.stdinIsTerminal() {
				return ErrNotTerminal
			}

			// Report panics with a stack trace.
			defer func() {
				if r := recover(); r != nil {
					fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
					fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
					err = fmt.Errorf("TUI panic: %v", r)
				}
			}()

			svc, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			console, err := tui.NewApp(&tui.Ports{
				Query:     svc.Query,
				Retrieval: svc.Retrieval,
				Ingest:    svc.Ingest,
				Health:    svc.Health,
			})
			if err != nil {
				return fmt.Errorf("failed to create TUI: %w", err)
			}

			if err := console.WithContext(cmd.Context()).Run(); err != nil {
				return fmt.Errorf("TUI error: %w", err)
			}
			return nil
		},
	}
}
