package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newConfigCmd(app *App) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage application settings",
		Long: `View and change settings stored in config.toml.

Environment variables OPENAI_API_KEY, ANTHROPIC_API_KEY and OLLAMA_HOST fill
values the file leaves empty.`,
	}

	configCmd.AddCommand(
		newConfigShowCmd(app),
		newConfigSetCmd(app),
		newConfigPathCmd(app),
	)
	return configCmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.Settings == nil {
				return fmt.Errorf("settings service: %w", ErrNotConfigured)
			}

			entries, err := app.Settings.Entries()
			if err != nil {
				return fmt.Errorf("failed to get settings: %w", err)
			}

			if asJSON {
				return printJSON(cmd, entries)
			}

			cmd.Printf("Config file: %s\n\n", app.Settings.Path())
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tVALUE\tSOURCE")
			for _, e := range entries {
				value := e.Value
				if value == "" {
					value = "(not set)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Key, value, e.Source)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output settings as JSON")
	return cmd
}

func newConfigSetCmd(app *App) *cobra.Command {
	var skipValidate bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Long: `Validates and saves one setting.

Pass "-" as the value to read it from stdin; input is hidden on a terminal,
which keeps API keys out of shell history.

After changing an embedding.* or llm.* key the provider is pinged and a
warning is printed if it cannot be reached.`,
		Example: `  stig-assist config set llm.provider openai
  stig-assist config set llm.api_key -
  stig-assist config set query.k 8`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Settings == nil {
				return fmt.Errorf("settings service: %w", ErrNotConfigured)
			}

			key, value := args[0], args[1]
			if value == "-" {
				if app.stdinIsTerminal() {
					cmd.Printf("Enter value for %s: ", key)
				}
				value = readSecret(app, cmd.InOrStdin())
				if app.stdinIsTerminal() {
					cmd.Println()
				}
			}

			if err := app.Settings.Set(key, value); err != nil {
				return fmt.Errorf("failed to set %s: %w", key, err)
			}
			cmd.Printf("Set %s\n", key)

			if !skipValidate {
				validateProvider(cmd, app, key)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipValidate, "no-validate", false, "skip the provider connectivity check")
	return cmd
}

func newConfigPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.Settings == nil {
				return fmt.Errorf("settings service: %w", ErrNotConfigured)
			}
			cmd.Println(app.Settings.Path())
			return nil
		},
	}
}

// validateProvider pings the provider a changed key belongs to and prints a warning on failure.
func validateProvider(cmd *cobra.Command, app *App, key string) {
	if app.Validator == nil {
		return
	}
	section, _, _ := strings.Cut(key, ".")
	if section != "embedding" && section != "llm" {
		return
	}

	settings, err := app.Settings.Get()
	if err != nil {
		cmd.Printf("Warning: %v\n", err)
		return
	}

	switch section {
	case "embedding":
		err = app.Validator.ValidateEmbedding(&settings.Embedding)
	case "llm":
		err = app.Validator.ValidateLLM(&settings.LLM)
	}
	if err != nil {
		cmd.Printf("Warning: %v\n", err)
		return
	}
	cmd.Printf("%s settings validated.\n", section)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(app *App, in io.Reader) string {
	if f, ok := in.(*os.File); ok && app.stdinIsTerminal() {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	reader := bufio.NewReader(in)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
