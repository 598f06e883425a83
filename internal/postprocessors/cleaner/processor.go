// Package cleaner provides text normalisation ahead of splitting.
package cleaner

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

var (
	// disallowed matches anything outside word characters, whitespace and - . , : ; ( ).
	disallowed = regexp.MustCompile(`[^\p{L}\p{N}_\s\-.,:;()]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Clean collapses whitespace, strips characters outside the allow-list and
// uppercases control identifiers. Clean(Clean(x)) == Clean(x).
func Clean(text string) string {
	text = disallowed.ReplaceAllString(text, " ")
	text = whitespace.ReplaceAllString(text, " ")
	text = domain.CanonicalControlID(text)
	return strings.TrimSpace(text)
}

// Processor rewrites document content in place. It implements the PostProcessor interface.
type Processor struct{}

// New creates a cleaner processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "cleaner"
}

// Process cleans doc.Content and passes segments through unchanged.
func (p *Processor) Process(_ context.Context, doc *domain.Document, segments []domain.Segment) ([]domain.Segment, error) {
	doc.Content = Clean(doc.Content)
	for i := range segments {
		segments[i].Content = Clean(segments[i].Content)
	}
	return segments, nil
}
