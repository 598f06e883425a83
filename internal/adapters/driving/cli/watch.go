package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stig-assist/internal/connectors/filesystem"
	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/logger"
)

func newWatchCmd(app *App) *cobra.Command {
	var (
		settle  time.Duration
		initial bool
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Load benchmark files as they appear",
		Long: `Watches a directory tree and loads new or rewritten .xml, .json, .yaml and .yml
files once their writes settle. Hidden files and directories are ignored.

With --initial, files already present are loaded before watching starts.
Stops on interrupt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			conn := filesystem.New(args[0], filesystem.WithSettle(settle))
			defer conn.Close() //nolint:errcheck

			report := func(r *domain.LoadReport) {
				cmd.Printf("Loaded %s: %d controls, %d chunks\n", r.Path, r.RecordsLoaded, r.SegmentsCreated)
			}

			if initial {
				existing, err := conn.Scan(ctx)
				if err != nil {
					return fmt.Errorf("scanning %s: %w", conn.RootPath(), err)
				}
				loadCandidates(ctx, svc.Ingest, existing, report)
			}

			events, err := conn.Watch(ctx)
			if err != nil {
				return fmt.Errorf("watching %s: %w", conn.RootPath(), err)
			}
			cmd.Printf("Watching %s for benchmark files (ctrl+c to stop)\n", conn.RootPath())

			for c := range events {
				logger.Debug("change detected: %s", c.Path)
				loadCandidates(ctx, svc.Ingest, []filesystem.Candidate{c}, report)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&settle, "settle", filesystem.DefaultSettle, "quiet period before a changed file is loaded")
	cmd.Flags().BoolVar(&initial, "initial", true, "load existing files before watching")
	return cmd
}
