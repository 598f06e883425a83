package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity is the impact category of a control.
type Severity string

// Severity levels used by DISA benchmarks.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// DefaultSeverity is applied when a control does not declare one.
const DefaultSeverity = SeverityMedium

// IsValid returns true if the severity is recognised.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

// ParseSeverity normalises a raw severity value.
// Empty or unrecognised values map to DefaultSeverity.
func ParseSeverity(raw string) Severity {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return DefaultSeverity
	}
	return s
}

// ReleaseVersion is the major OS generation a control applies to.
// The zero value means the generation is unknown.
type ReleaseVersion string

// Known release generations.
const (
	ReleaseUnknown ReleaseVersion = ""
	Release8       ReleaseVersion = "8"
	Release9       ReleaseVersion = "9"
)

// DefaultReleaseVersion is the generation preferred when nothing else decides.
const DefaultReleaseVersion = Release9

// String returns the string representation.
func (v ReleaseVersion) String() string {
	return string(v)
}

// IsKnown returns true if the generation is set.
func (v ReleaseVersion) IsKnown() bool {
	return v != ReleaseUnknown
}

// PriorityRank orders generations for display: 1 for 9, 2 for 8, 3 otherwise.
func (v ReleaseVersion) PriorityRank() int {
	switch v {
	case Release9:
		return 1
	case Release8:
		return 2
	default:
		return 3
	}
}

// ParseReleaseVersion normalises a version hint such as "9", "09" or "RHEL 9".
func ParseReleaseVersion(raw string) ReleaseVersion {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ReleaseUnknown
	}
	if m := digitsPattern.FindString(raw); m != "" {
		return ReleaseVersion(trimLeadingZeros(m))
	}
	return ReleaseUnknown
}

var (
	// familyMajorPattern finds a "<FAMILY>-<NN>-" token, e.g. "RHEL-09-".
	familyMajorPattern = regexp.MustCompile(`(?i)[a-z]+-(\d{2})-`)

	// ControlIDPattern matches a full control identifier such as "RHEL-08-010010".
	ControlIDPattern = regexp.MustCompile(`(?i)[a-z]+-\d+-\d+`)

	digitsPattern = regexp.MustCompile(`\d+`)
)

// InferReleaseVersion extracts the major generation from a control identifier.
// Returns ReleaseUnknown if no family-major token is present.
func InferReleaseVersion(id string) ReleaseVersion {
	m := familyMajorPattern.FindStringSubmatch(id)
	if m == nil {
		return ReleaseUnknown
	}
	return ReleaseVersion(trimLeadingZeros(m[1]))
}

// DetectControlID returns the first control identifier found in free text, uppercased.
func DetectControlID(text string) string {
	return strings.ToUpper(ControlIDPattern.FindString(text))
}

// CanonicalControlID uppercases every control identifier inside s and leaves
// the rest untouched.
func CanonicalControlID(s string) string {
	return ControlIDPattern.ReplaceAllStringFunc(s, strings.ToUpper)
}

func trimLeadingZeros(s string) string {
	t := strings.TrimLeft(s, "0")
	if t == "" {
		return "0"
	}
	return t
}

// ControlRecord is one regulatory control parsed from a benchmark document.
// It is transient: the preprocessor consumes it and only its segments persist.
type ControlRecord struct {
	// ID is the stable identifier (rule id attribute or record id).
	ID string `json:"id"`

	// Title is the short rule statement.
	Title string `json:"title"`

	// Description explains the vulnerability being addressed.
	Description string `json:"description"`

	// CheckProcedure describes how to verify compliance.
	CheckProcedure string `json:"check"`

	// FixProcedure describes how to remediate.
	FixProcedure string `json:"fix"`

	// Severity defaults to medium when absent.
	Severity Severity `json:"severity"`

	// ReleaseVersion is the OS generation the control applies to.
	ReleaseVersion ReleaseVersion `json:"version,omitempty"`

	// RuleVersion is the benchmark's human-facing STIG id (XCCDF <version>), if any.
	RuleVersion string `json:"rule_version,omitempty"`

	// Category is an optional grouping label from record-array documents.
	Category string `json:"category,omitempty"`

	// References lists related standards (CCI, NIST controls).
	References []string `json:"references,omitempty"`

	// SourcePath is the file the record was loaded from.
	SourcePath string `json:"source"`
}

// ApplyDefaults fills missing optional fields.
func (r *ControlRecord) ApplyDefaults() {
	r.Severity = ParseSeverity(string(r.Severity))
}

// Render produces the fixed-layout text body used for splitting.
func (r *ControlRecord) Render() string {
	body := fmt.Sprintf(`STIG ID: %s
Title: %s
Severity: %s

Description:
%s

Check Procedure:
%s

Fix/Implementation:
%s`, r.ID, r.Title, r.Severity, r.Description, r.CheckProcedure, r.FixProcedure)
	return strings.TrimSpace(body)
}
