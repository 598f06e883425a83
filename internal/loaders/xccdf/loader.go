// Package xccdf loads rules from XCCDF benchmark documents.
//
// Rules are found at any depth and matched by local name, so both the
// 1.1 and 1.2 namespaces (and un-namespaced documents) are accepted.
package xccdf

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.ControlLoader = (*Loader)(nil)

// Loader parses XCCDF XML files.
type Loader struct{}

// New creates a new XCCDF loader.
func New() *Loader {
	return &Loader{}
}

// Format returns the document format this loader handles.
func (l *Loader) Format() domain.DocumentFormat {
	return domain.FormatXCCDF
}

// rule mirrors the parts of an XCCDF Rule element that become a control.
// Tags carry no namespace so any XCCDF version matches.
type rule struct {
	ID          string   `xml:"id,attr"`
	Severity    string   `xml:"severity,attr"`
	Title       string   `xml:"title"`
	Description string   `xml:"description"`
	Version     string   `xml:"version"`
	Checks      []check  `xml:"check"`
	FixText     []string `xml:"fixtext"`
	Idents      []string `xml:"ident"`
}

type check struct {
	Content string `xml:"check-content"`
}

// Load reads every Rule element in the file.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.ControlRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return l.decode(ctx, f, path)
}

func (l *Loader) decode(ctx context.Context, r io.Reader, path string) ([]domain.ControlRecord, error) {
	dec := xml.NewDecoder(r)
	// DISA benchmarks declare encodings the decoder does not know; content is ASCII-safe.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var (
		records  []domain.ControlRecord
		sawStart bool
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedDocument, path, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawStart = true
		if start.Name.Local != "Rule" {
			continue
		}

		var ru rule
		if err := dec.DecodeElement(&ru, &start); err != nil {
			return nil, fmt.Errorf("%w: %s: rule: %v", domain.ErrMalformedDocument, path, err)
		}
		records = append(records, ru.toRecord(path))
	}

	if !sawStart {
		return nil, fmt.Errorf("%w: %s: no root element", domain.ErrMalformedDocument, path)
	}
	return records, nil
}

func (ru rule) toRecord(path string) domain.ControlRecord {
	id := strings.TrimSpace(ru.ID)
	ruleVersion := strings.TrimSpace(ru.Version)

	version := domain.InferReleaseVersion(id)
	if !version.IsKnown() {
		version = domain.InferReleaseVersion(ruleVersion)
	}

	return domain.ControlRecord{
		ID:             id,
		Title:          strings.TrimSpace(ru.Title),
		Description:    strings.TrimSpace(ru.Description),
		CheckProcedure: firstCheck(ru.Checks),
		FixProcedure:   firstText(ru.FixText),
		Severity:       domain.ParseSeverity(ru.Severity),
		ReleaseVersion: version,
		RuleVersion:    ruleVersion,
		References:     trimAll(ru.Idents),
		SourcePath:     path,
	}
}

func firstCheck(checks []check) string {
	for _, c := range checks {
		if s := strings.TrimSpace(c.Content); s != "" {
			return s
		}
	}
	return ""
}

func firstText(values []string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
