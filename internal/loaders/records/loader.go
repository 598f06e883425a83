// Package records loads record-array documents: a mapping with a
// "controls" sequence, encoded as JSON or YAML.
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.ControlLoader = (*Loader)(nil)

// Loader parses JSON and YAML record arrays.
type Loader struct{}

// New creates a new record-array loader.
func New() *Loader {
	return &Loader{}
}

// Format returns the document format this loader handles.
func (l *Loader) Format() domain.DocumentFormat {
	return domain.FormatRecordArray
}

// document is the top-level mapping. Version and ReleaseDate are accepted and ignored.
type document struct {
	Version     scalar   `json:"version" yaml:"version"`
	ReleaseDate scalar   `json:"release_date" yaml:"release_date"`
	RHELVersion scalar   `json:"rhel_version" yaml:"rhel_version"`
	Controls    *[]entry `json:"controls" yaml:"controls"`
}

type entry struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Severity    string   `json:"severity" yaml:"severity"`
	Description string   `json:"description" yaml:"description"`
	Check       string   `json:"check" yaml:"check"`
	Fix         string   `json:"fix" yaml:"fix"`
	Version     scalar   `json:"version" yaml:"version"`
	Category    string   `json:"category" yaml:"category"`
	References  []string `json:"references" yaml:"references"`
}

// Load reads the file, choosing JSON or YAML by extension.
// A decode or type error fails the whole file; missing fields take defaults.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.ControlRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedDocument, path, err)
	}
	if doc.Controls == nil {
		return nil, fmt.Errorf("%w: %s: missing controls", domain.ErrMalformedDocument, path)
	}

	defaultVersion := domain.ParseReleaseVersion(string(doc.RHELVersion))

	records := make([]domain.ControlRecord, 0, len(*doc.Controls))
	for _, e := range *doc.Controls {
		id := strings.TrimSpace(e.ID)

		version := domain.ParseReleaseVersion(string(e.Version))
		if !version.IsKnown() {
			version = defaultVersion
		}

		records = append(records, domain.ControlRecord{
			ID:             id,
			Title:          e.Title,
			Description:    e.Description,
			CheckProcedure: e.Check,
			FixProcedure:   e.Fix,
			Severity:       domain.ParseSeverity(e.Severity),
			ReleaseVersion: version,
			Category:       e.Category,
			References:     e.References,
			SourcePath:     path,
		})
	}

	return records, nil
}

func decode(path string, data []byte) (*document, error) {
	var doc document

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, fmt.Errorf("empty document")
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}

	return &doc, nil
}

// scalar accepts a string or number, so `version: 9` and `"version": "9"` agree.
type scalar string

// UnmarshalJSON implements json.Unmarshaler.
func (s *scalar) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = scalar(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = scalar(num.String())
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected scalar value", node.Line)
	}
	if node.Tag == "!!null" {
		*s = ""
		return nil
	}
	*s = scalar(node.Value)
	return nil
}
