package domain

import (
	"path/filepath"
	"strings"
)

// DocumentFormat identifies the structure of a benchmark document.
type DocumentFormat string

// Supported document formats.
const (
	// FormatXCCDF is rule-based structured markup (XCCDF XML).
	FormatXCCDF DocumentFormat = "xccdf"

	// FormatRecordArray is a mapping with a "controls" sequence (JSON or YAML).
	FormatRecordArray DocumentFormat = "records"
)

// IsValid returns true if the format is recognised.
func (f DocumentFormat) IsValid() bool {
	return f == FormatXCCDF || f == FormatRecordArray
}

// String returns the string representation.
func (f DocumentFormat) String() string {
	return string(f)
}

// FormatFromPath selects a format from a file extension.
func FormatFromPath(path string) (DocumentFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXCCDF, nil
	case ".json", ".yaml", ".yml":
		return FormatRecordArray, nil
	default:
		return "", ErrUnsupportedFormat
	}
}
