package cli

import (
	"github.com/spf13/cobra"
)

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			v := app.Version
			if v == "" {
				v = "dev"
			}
			cmd.Printf("stig-assist version %s\n", v)
		},
	}
}
