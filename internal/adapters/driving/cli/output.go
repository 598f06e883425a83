package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

const (
	// answerSourcesShown caps the sources listed under an answer.
	answerSourcesShown = 3

	// previewLength caps result previews.
	previewLength = 200
)

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printAnswer(cmd *cobra.Command, a *domain.Answer) {
	cmd.Printf("Question: %s\n", a.Query)
	cmd.Printf("RHEL Version Focus: %s\n", a.ResolvedVersion)
	cmd.Println()
	cmd.Println("Answer:")
	cmd.Println(a.Text)

	if len(a.Sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Printf("Sources (%d found):\n", len(a.Sources))
	for i, src := range a.Sources {
		if i == answerSourcesShown {
			break
		}
		cmd.Printf("  %d. STIG ID: %s\n", i+1, src.Metadata.ControlID)
		cmd.Printf("     Severity: %s\n", src.Metadata.Severity)
		cmd.Printf("     Title: %s\n", src.Metadata.Title)
	}
}

func printResults(cmd *cobra.Command, heading string, results []domain.SearchResult) {
	cmd.Println(heading)
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println()
	for i := range results {
		m := results[i].Segment.Metadata
		cmd.Printf("  [%d] %s (RHEL %s, %s)", i+1, m.ControlID, versionLabel(m.ReleaseVersion), m.Severity)
		if results[i].Score != 0 {
			cmd.Printf(" %.2f", results[i].Score)
		}
		cmd.Println()
		if m.Title != "" {
			cmd.Printf("      %s\n", m.Title)
		}
		cmd.Printf("      %s\n", preview(results[i].Segment.Content))
	}
}

func versionLabel(v domain.ReleaseVersion) string {
	if !v.IsKnown() {
		return "?"
	}
	return v.String()
}

func preview(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	r := []rune(content)
	if len(r) <= previewLength {
		return content
	}
	return string(r[:previewLength]) + "..."
}
