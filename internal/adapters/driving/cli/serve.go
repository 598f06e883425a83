package cli

import (
	"net"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stig-assist/internal/adapters/driving/httpapi"
)

// defaultServeAddr is used when neither --addr nor server.address is set.
const defaultServeAddr = ":8000"

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Serves the JSON API:

  POST /query                 {question, stig_id?, rhel_version?}
  POST /load-stig?file_path=  load a benchmark file from the server's filesystem
  GET  /search/{stig_id}      controls whose id contains stig_id
  GET  /health                liveness probe

The address defaults to the server.address setting.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = serverAddress(app)
			}

			svc, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			server, err := httpapi.NewServer(&httpapi.Ports{
				Query:     svc.Query,
				Retrieval: svc.Retrieval,
				Ingest:    svc.Ingest,
				Health:    svc.Health,
			})
			if err != nil {
				return err
			}

			return server.Run(cmd.Context(), addr, func(bound net.Addr) {
				cmd.Printf("HTTP API listening on http://%s\n", bound)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.address, else :8000)")
	return cmd
}

func serverAddress(app *App) string {
	if app.Settings != nil {
		if settings, err := app.Settings.Get(); err == nil && settings.Server.Address != "" {
			return settings.Server.Address
		}
	}
	return defaultServeAddr
}
