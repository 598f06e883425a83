package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check system health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			h := svc.Health.Check(cmd.Context())
			if asJSON {
				return printJSON(cmd, h)
			}
			cmd.Printf("Status: %s\n", h.Status)
			cmd.Printf("Timestamp: %s\n", h.Timestamp.Format(time.RFC3339))
			cmd.Printf("Segments: %d\n", h.Segments)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
