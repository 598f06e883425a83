package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

func newFindCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "find <stig-id>",
		Short: "Find controls by id",
		Long: `Lists indexed segments whose control id contains the given text.
The match is a case-sensitive substring match, so "RHEL-08-0100" finds every
control in that range.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			controlID := args[0]
			results, err := svc.Retrieval.SearchByControlID(cmd.Context(), controlID)
			if err != nil {
				return fmt.Errorf("lookup failed: %w", err)
			}

			if asJSON {
				return printJSON(cmd, struct {
					ControlID string          `json:"stig_id"`
					Results   []domain.Source `json:"results"`
				}{controlID, domain.SourcesFromResults(results)})
			}
			printResults(cmd, "Results for STIG ID: "+controlID, results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")
	return cmd
}
