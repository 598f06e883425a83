package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

// AnswerInput is the input schema for the answer_question tool.
type AnswerInput struct {
	Question    string `json:"question" jsonschema:"the compliance question to answer"`
	ControlID   string `json:"stig_id,omitempty" jsonschema:"optional control id to target, e.g. RHEL-09-211010"`
	RHELVersion string `json:"rhel_version,omitempty" jsonschema:"optional RHEL generation to focus on (8 or 9)"`
}

// AnswerOutput is the output schema for the answer_question tool.
type AnswerOutput struct {
	Answer       string          `json:"answer"`
	VersionFocus string          `json:"rhel_version_focus"`
	Status       string          `json:"status"`
	Query        string          `json:"query"`
	Sources      []ControlOutput `json:"sources"`
}

// FindInput is the input schema for the find_control tool.
type FindInput struct {
	ControlID string `json:"stig_id" jsonschema:"control id or fragment to match, e.g. RHEL-08-010"`
}

// SearchInput is the input schema for the search_controls tool.
type SearchInput struct {
	Query       string `json:"query" jsonschema:"free text describing the controls to find"`
	K           int    `json:"k,omitempty" jsonschema:"number of results to return (default 5)"`
	RHELVersion string `json:"rhel_version,omitempty" jsonschema:"restrict results to one RHEL generation"`
	PreferRHEL9 *bool  `json:"prefer_rhel9,omitempty" jsonschema:"reserve leading slots for RHEL 9 controls (default true)"`
}

// ControlsOutput is the output schema for the lookup tools.
type ControlsOutput struct {
	Results []ControlOutput `json:"results"`
	Count   int             `json:"count"`
}

// ControlOutput represents a single retrieved segment.
type ControlOutput struct {
	ControlID   string  `json:"stig_id"`
	Title       string  `json:"title"`
	Severity    string  `json:"severity"`
	RHELVersion string  `json:"rhel_version"`
	Source      string  `json:"source,omitempty"`
	Score       float64 `json:"score,omitempty"`
	Content     string  `json:"content"`
}

// LoadInput is the input schema for the load_document tool.
type LoadInput struct {
	FilePath string `json:"file_path" jsonschema:"path to an XCCDF, JSON or YAML benchmark file"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "answer_question",
		Description: "Answer a RHEL STIG compliance question using the indexed benchmarks",
	}, s.handleAnswer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_control",
		Description: "Find indexed segments whose control id contains the given text",
	}, s.handleFind)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_controls",
		Description: "Similarity search over indexed controls, biased towards RHEL 9",
	}, s.handleSearch)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "load_document",
			Description: "Load and index a benchmark document from the local filesystem",
		}, s.handleLoad)
	}
}

// handleAnswer handles the answer_question tool invocation.
// Degraded answers are returned as results, not protocol errors.
func (s *Server) handleAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	if input.Question == "" {
		return nil, AnswerOutput{}, fmt.Errorf("question: %w", domain.ErrInvalidInput)
	}

	answer := s.ports.Query.Answer(ctx, domain.QueryRequest{
		Question:       input.Question,
		ControlID:      input.ControlID,
		ReleaseVersion: domain.ParseReleaseVersion(input.RHELVersion),
	})

	output := AnswerOutput{
		Answer:       answer.Text,
		VersionFocus: answer.ResolvedVersion.String(),
		Status:       string(answer.Status),
		Query:        answer.Query,
		Sources:      make([]ControlOutput, len(answer.Sources)),
	}
	for i, src := range answer.Sources {
		output.Sources[i] = toControlOutput(src.Metadata, src.Content, 0)
	}

	if answer.Failed() {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: answer.Text}},
		}, output, nil
	}
	return nil, output, nil
}

// handleFind handles the find_control tool invocation.
func (s *Server) handleFind(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindInput,
) (*mcp.CallToolResult, ControlsOutput, error) {
	if input.ControlID == "" {
		return nil, ControlsOutput{}, fmt.Errorf("stig_id: %w", domain.ErrInvalidInput)
	}

	results, err := s.ports.Retrieval.SearchByControlID(ctx, input.ControlID)
	if err != nil {
		return nil, ControlsOutput{}, err
	}
	return nil, toControlsOutput(results), nil
}

// handleSearch handles the search_controls tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, ControlsOutput, error) {
	if input.Query == "" {
		return nil, ControlsOutput{}, fmt.Errorf("query: %w", domain.ErrInvalidInput)
	}

	opts := domain.RetrievalOptions{
		K:              input.K,
		PreferVersion9: true,
	}
	if opts.K <= 0 {
		opts.K = domain.DefaultK
	}
	if input.PreferRHEL9 != nil {
		opts.PreferVersion9 = *input.PreferRHEL9
	}
	if v := domain.ParseReleaseVersion(input.RHELVersion); v.IsKnown() {
		opts.PreferVersion9 = false
		opts.Filter.ReleaseVersion = v
	}

	results, err := s.ports.Retrieval.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, ControlsOutput{}, err
	}
	return nil, toControlsOutput(results), nil
}

// handleLoad handles the load_document tool invocation.
func (s *Server) handleLoad(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LoadInput,
) (*mcp.CallToolResult, domain.LoadReport, error) {
	if s.ports.Ingest == nil {
		return nil, domain.LoadReport{}, ErrLoadingDisabled
	}

	format, err := domain.FormatFromPath(input.FilePath)
	if err != nil {
		return nil, domain.LoadReport{}, fmt.Errorf("%s: %w", input.FilePath, err)
	}

	report, err := s.ports.Ingest.LoadDocument(ctx, input.FilePath, format)
	if err != nil {
		return nil, domain.LoadReport{}, err
	}
	return nil, *report, nil
}

func toControlsOutput(results []domain.SearchResult) ControlsOutput {
	output := ControlsOutput{
		Results: make([]ControlOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = toControlOutput(results[i].Segment.Metadata, results[i].Segment.Content, results[i].Score)
	}
	return output
}

func toControlOutput(m domain.SegmentMetadata, content string, score float64) ControlOutput {
	return ControlOutput{
		ControlID:   m.ControlID,
		Title:       m.Title,
		Severity:    string(m.Severity),
		RHELVersion: m.ReleaseVersion.String(),
		Source:      m.SourcePath,
		Score:       score,
		Content:     content,
	}
}
