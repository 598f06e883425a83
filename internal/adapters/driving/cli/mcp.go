package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stig-assist/internal/adapters/driving/mcp"
)

func newMCPCmd(app *App) *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol server for AI assistant integration.

Tools: answer_question, find_control, search_controls, load_document.
Resources: stig://controls/{controlId}

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default, for desktop assistants)
  stig-assist mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  stig-assist mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "stig-assist": {
        "command": "/path/to/stig-assist",
        "args": ["mcp", "serve"]
      }
    }
  }`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			port, err := cmd.Flags().GetInt("port")
			if err != nil {
				return fmt.Errorf("getting port flag: %w", err)
			}

			svc, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(&mcp.Ports{
				Query:     svc.Query,
				Retrieval: svc.Retrieval,
				Ingest:    svc.Ingest,
			})
			if err != nil {
				return err
			}

			if port > 0 {
				addr := fmt.Sprintf(":%d", port)
				fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
				return server.RunHTTP(cmd.Context(), addr)
			}

			return server.Run(cmd.Context())
		},
	}

	serveCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(serveCmd)
	return mcpCmd
}
