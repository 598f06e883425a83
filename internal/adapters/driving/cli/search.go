package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

func newSearchCmd(app *App) *cobra.Command {
	var (
		k         int
		rhel      string
		noPrefer9 bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Similarity search over indexed controls",
		Long: `Finds the controls most similar to the query without generating an answer.

By default the leading slots are reserved for RHEL 9 controls. Use --rhel to
restrict results to one version, or --no-prefer9 for a plain ranking.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			opts := domain.RetrievalOptions{K: k, PreferVersion9: !noPrefer9}
			if v := domain.ParseReleaseVersion(rhel); v.IsKnown() {
				opts.PreferVersion9 = false
				opts.Filter.ReleaseVersion = v
			}

			query := strings.Join(args, " ")
			results, err := svc.Retrieval.Search(cmd.Context(), query, opts)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if asJSON {
				return printJSON(cmd, results)
			}
			printResults(cmd, "Results:", results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&k, "top-k", "k", domain.DefaultK, "number of results")
	cmd.Flags().StringVar(&rhel, "rhel", "", "only return controls for this RHEL version")
	cmd.Flags().BoolVar(&noPrefer9, "no-prefer9", false, "do not reserve slots for RHEL 9 controls")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")

	return cmd
}
