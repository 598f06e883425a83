package domain

import "strings"

// SegmentFilter restricts a similarity search. Zero fields do not filter.
type SegmentFilter struct {
	// ReleaseVersion keeps only segments of this generation.
	ReleaseVersion ReleaseVersion

	// ExcludeReleaseVersion drops segments of this generation.
	// Segments with an unknown generation are kept.
	ExcludeReleaseVersion ReleaseVersion

	// ControlIDContains keeps segments whose control id contains this substring.
	ControlIDContains string
}

// IsZero returns true if the filter keeps every segment.
func (f SegmentFilter) IsZero() bool {
	return f == SegmentFilter{}
}

// Matches reports whether a segment's metadata passes the filter.
func (f SegmentFilter) Matches(m SegmentMetadata) bool {
	if f.ReleaseVersion.IsKnown() && m.ReleaseVersion != f.ReleaseVersion {
		return false
	}
	if f.ExcludeReleaseVersion.IsKnown() && m.ReleaseVersion == f.ExcludeReleaseVersion {
		return false
	}
	if f.ControlIDContains != "" && !strings.Contains(m.ControlID, f.ControlIDContains) {
		return false
	}
	return true
}

// SearchResult is a segment with its similarity to the query.
type SearchResult struct {
	// Segment is the matched unit.
	Segment Segment `json:"segment"`

	// Score is the cosine similarity, higher is closer.
	Score float64 `json:"score"`
}

// RetrievalOptions configures a version-biased search.
type RetrievalOptions struct {
	// K is the number of results wanted.
	K int

	// PreferVersion9 reserves leading slots for generation 9 segments.
	PreferVersion9 bool

	// Filter applies when PreferVersion9 is false.
	Filter SegmentFilter
}

// DefaultK is the free-text retrieval depth.
const DefaultK = 5

// ControlSearchLimit is the number of matches returned for a control id lookup.
const ControlSearchLimit = 5
