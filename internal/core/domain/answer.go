package domain

import "time"

// QueryRequest is one natural-language question.
type QueryRequest struct {
	// Question is the user's text.
	Question string `json:"question"`

	// ControlID optionally targets one control, e.g. "RHEL-08-010010".
	ControlID string `json:"stig_id,omitempty"`

	// ReleaseVersion optionally forces the preferred generation.
	ReleaseVersion ReleaseVersion `json:"rhel_version,omitempty"`
}

// AnswerStatus distinguishes the outcomes of a query.
type AnswerStatus string

// Query outcomes.
const (
	// AnswerStatusAnswered means generation succeeded with retrieved context.
	AnswerStatusAnswered AnswerStatus = "answered"

	// AnswerStatusNoContext means generation succeeded but nothing was retrieved.
	AnswerStatusNoContext AnswerStatus = "no_context"

	// AnswerStatusFailed means retrieval or generation failed; Answer holds the error text.
	AnswerStatusFailed AnswerStatus = "failed"
)

// ErrorAnswerPrefix labels degraded answers.
const ErrorAnswerPrefix = "Error processing query: "

// Source is one retrieved segment returned alongside an answer.
type Source struct {
	Content  string          `json:"content"`
	Metadata SegmentMetadata `json:"metadata"`
}

// SourcesFromResults converts search results to answer sources.
func SourcesFromResults(results []SearchResult) []Source {
	sources := make([]Source, len(results))
	for i := range results {
		sources[i] = Source{
			Content:  results[i].Segment.Content,
			Metadata: results[i].Segment.Metadata,
		}
	}
	return sources
}

// Answer is the result of a question. It is always populated, even on failure.
type Answer struct {
	// Text is the generated answer, or a labelled error message.
	Text string `json:"answer"`

	// ResolvedVersion is the generation the answer focused on.
	ResolvedVersion ReleaseVersion `json:"rhel_version_focus"`

	// Sources are the segments used as context.
	Sources []Source `json:"sources"`

	// Query is the annotated question sent downstream, or the original on failure.
	Query string `json:"query"`

	// Status classifies the outcome.
	Status AnswerStatus `json:"status"`

	// Err is the underlying failure when Status is failed.
	Err error `json:"-"`
}

// Failed reports whether the answer is a degraded error result.
func (a *Answer) Failed() bool {
	return a.Status == AnswerStatusFailed
}

// LoadReport summarises one document load.
type LoadReport struct {
	Path            string         `json:"path"`
	Format          DocumentFormat `json:"format"`
	RecordsLoaded   int            `json:"records_loaded"`
	SegmentsCreated int            `json:"chunks_created"`
}

// Health is the liveness probe result.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Segments  int       `json:"segments,omitempty"`
}

// HealthStatusOK is the status token of a live process.
const HealthStatusOK = "healthy"
