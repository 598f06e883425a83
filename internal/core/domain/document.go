package domain

// SegmentType tags every segment produced from a control.
const SegmentType = "stig_control"

// Document is the rendered body of one ControlRecord, ready for preprocessing.
type Document struct {
	// ID identifies the parent record within one load.
	ID string

	// Content is the text to clean and split.
	Content string

	// Record is the control the content was rendered from.
	Record ControlRecord
}

// NewDocument renders a record into a document.
func NewDocument(record ControlRecord) *Document {
	record.ApplyDefaults()
	return &Document{
		ID:      record.ID,
		Content: record.Render(),
		Record:  record,
	}
}

// SegmentMetadata is the typed metadata attached to every segment.
// All fields except ChunkIndex and ChunkCount are shared by the segments of one record.
type SegmentMetadata struct {
	ControlID      string         `json:"stig_id"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	CheckProcedure string         `json:"check,omitempty"`
	FixProcedure   string         `json:"fix,omitempty"`
	Severity       Severity       `json:"severity"`
	ReleaseVersion ReleaseVersion `json:"rhel_version"`
	RuleVersion    string         `json:"rule_version,omitempty"`
	Category       string         `json:"category,omitempty"`
	References     []string       `json:"references,omitempty"`
	SourcePath     string         `json:"source"`
	Type           string         `json:"type"`
	PriorityRank   int            `json:"priority"`
	ChunkIndex     int            `json:"chunk_id"`
	ChunkCount     int            `json:"total_chunks"`
}

// NewSegmentMetadata copies a record's fields and derives the priority rank.
// The control id is canonicalised the same way the cleaner rewrites content.
// ChunkIndex and ChunkCount are assigned once the split is known.
func NewSegmentMetadata(record ControlRecord) SegmentMetadata {
	return SegmentMetadata{
		ControlID:      CanonicalControlID(record.ID),
		Title:          record.Title,
		Description:    record.Description,
		CheckProcedure: record.CheckProcedure,
		FixProcedure:   record.FixProcedure,
		Severity:       ParseSeverity(string(record.Severity)),
		ReleaseVersion: record.ReleaseVersion,
		RuleVersion:    record.RuleVersion,
		Category:       record.Category,
		References:     record.References,
		SourcePath:     record.SourcePath,
		Type:           SegmentType,
		PriorityRank:   record.ReleaseVersion.PriorityRank(),
	}
}

// Segment is a bounded slice of a control's rendered text.
// Segments are append-only once added to the corpus.
type Segment struct {
	// ID is unique across the corpus.
	ID string `json:"id"`

	// Content is the cleaned text, at most about one chunk size long.
	Content string `json:"content"`

	// Metadata is the typed copy of the parent record plus chunk position.
	Metadata SegmentMetadata `json:"metadata"`

	// Embedding is the vector for Content, set during ingestion.
	Embedding []float32 `json:"-"`
}
