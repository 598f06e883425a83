package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stig-assist/internal/connectors/filesystem"
	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driving"
	"github.com/custodia-labs/stig-assist/internal/logger"
)

func newLoadCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "load <path>...",
		Short: "Load STIG benchmark files",
		Long: `Loads XCCDF (.xml), JSON (.json) and YAML (.yaml, .yml) benchmarks into the corpus.

Directories are scanned recursively; hidden files and directories are skipped.
A file that fails to parse is not indexed; the remaining files are still loaded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			var candidates []filesystem.Candidate
			for _, arg := range args {
				found, err := filesystem.New(arg).Scan(cmd.Context())
				if err != nil {
					return fmt.Errorf("%s: %w", arg, err)
				}
				candidates = append(candidates, found...)
			}
			if len(candidates) == 0 {
				cmd.Println("No benchmark files found.")
				return nil
			}

			reports, failed := loadCandidates(cmd.Context(), svc.Ingest, candidates, func(r *domain.LoadReport) {
				if !asJSON {
					cmd.Printf("Loaded %s: %d controls, %d chunks\n", r.Path, r.RecordsLoaded, r.SegmentsCreated)
				}
			})

			if asJSON {
				if err := printJSON(cmd, reports); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed to load", failed, len(candidates))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output load reports as JSON")
	return cmd
}

// loadCandidates loads each file in turn. Failures are logged and counted.
func loadCandidates(
	ctx context.Context,
	ingest driving.IngestService,
	candidates []filesystem.Candidate,
	onLoaded func(*domain.LoadReport),
) ([]domain.LoadReport, int) {
	reports := make([]domain.LoadReport, 0, len(candidates))
	failed := 0

	for _, c := range candidates {
		if ctx.Err() != nil {
			failed += len(candidates) - len(reports) - failed
			break
		}
		report, err := ingest.LoadDocument(ctx, c.Path, c.Format)
		if err != nil {
			logger.Error("failed to load %s: %v", c.Path, err)
			failed++
			continue
		}
		reports = append(reports, *report)
		if onLoaded != nil {
			onLoaded(report)
		}
	}
	return reports, failed
}
