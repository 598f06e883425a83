package tui

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/stig-assist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

const (
	// sourcesShown caps the sources listed under an answer.
	sourcesShown = 3

	// previewLength caps the content preview of a lookup result.
	previewLength = 200
)

const helpText = `Commands:
  query <question>     Ask a question (RHEL 9 unless the question names a RHEL 8 control)
  query9 <question>    Ask a RHEL 9 specific question
  query8 <question>    Ask a RHEL 8 specific question
  search <stig_id>     Find controls whose id contains the text
  load <file_path>     Load an XCCDF, JSON or YAML benchmark
  health               Check system health
  clear                Clear the transcript
  help                 Show this help
  exit                 Leave the console

A control id such as RHEL-09-211010 inside a question is used as the target control.`

func renderAnswer(s *styles.Styles, a *domain.Answer) string {
	var b strings.Builder

	if a.Failed() {
		b.WriteString(s.Error.Render(a.Text))
		return b.String()
	}

	b.WriteString(s.Subtitle.Render("Answer"))
	b.WriteString(" ")
	b.WriteString(s.Release(a.ResolvedVersion).Render("RHEL " + a.ResolvedVersion.String()))
	b.WriteString("\n")
	b.WriteString(s.Answer.Render(a.Text))

	if len(a.Sources) == 0 {
		b.WriteString("\n")
		b.WriteString(s.Muted.Render("No indexed controls matched; answer is not grounded in a benchmark."))
		return b.String()
	}

	b.WriteString("\n\n")
	b.WriteString(s.Subtitle.Render(fmt.Sprintf("Sources (%d found)", len(a.Sources))))
	for i, src := range a.Sources {
		if i == sourcesShown {
			break
		}
		b.WriteString("\n")
		b.WriteString(renderControlLine(s, i+1, src.Metadata))
	}
	return b.String()
}

func renderControls(s *styles.Styles, controlID string, results []domain.SearchResult) string {
	var b strings.Builder

	b.WriteString(s.Subtitle.Render("Results for " + controlID))
	if len(results) == 0 {
		b.WriteString("\n")
		b.WriteString(s.Muted.Render("No results found."))
		return b.String()
	}

	for i := range results {
		b.WriteString("\n")
		b.WriteString(renderControlLine(s, i+1, results[i].Segment.Metadata))
		b.WriteString("\n")
		b.WriteString(s.Muted.Render("   " + preview(results[i].Segment.Content)))
	}
	return b.String()
}

func renderControlLine(s *styles.Styles, n int, m domain.SegmentMetadata) string {
	return fmt.Sprintf("%d. %s %s %s %s",
		n,
		s.Normal.Render(m.ControlID),
		s.Release(m.ReleaseVersion).Render("["+releaseLabel(m.ReleaseVersion)+"]"),
		s.Severity(m.Severity).Render(string(m.Severity)),
		m.Title,
	)
}

func renderLoad(s *styles.Styles, msg string, report *domain.LoadReport) string {
	return s.Success.Render(fmt.Sprintf("%s: %d controls, %d chunks",
		msg, report.RecordsLoaded, report.SegmentsCreated))
}

func renderHealth(s *styles.Styles, h domain.Health) string {
	line := fmt.Sprintf("status: %s  time: %s", h.Status, h.Timestamp.Format("2006-01-02 15:04:05"))
	if h.Segments > 0 {
		line += fmt.Sprintf("  segments: %d", h.Segments)
	}
	return s.Success.Render(line)
}

func releaseLabel(v domain.ReleaseVersion) string {
	if !v.IsKnown() {
		return "RHEL ?"
	}
	return "RHEL " + v.String()
}

func preview(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	r := []rune(content)
	if len(r) <= previewLength {
		return content
	}
	return string(r[:previewLength]) + "..."
}
