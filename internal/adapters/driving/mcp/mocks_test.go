package mcp

import (
	"context"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer  *domain.Answer
	lastReq domain.QueryRequest
}

func (m *mockQueryService) Answer(_ context.Context, req domain.QueryRequest) *domain.Answer {
	m.lastReq = req
	return m.answer
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results  []domain.SearchResult
	err      error
	lastOpts domain.RetrievalOptions
	lastID   string
}

func (m *mockRetrievalService) Search(
	_ context.Context,
	_ string,
	opts domain.RetrievalOptions,
) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockRetrievalService) SearchByControlID(_ context.Context, id string) ([]domain.SearchResult, error) {
	m.lastID = id
	return m.results, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report *domain.LoadReport
	err    error
}

func (m *mockIngestService) LoadDocument(
	_ context.Context,
	path string,
	format domain.DocumentFormat,
) (*domain.LoadReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &domain.LoadReport{Path: path, Format: format}, nil
}

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{
			Segment: domain.Segment{
				ID:      "seg-1",
				Content: "STIG ID: RHEL-09-211010",
				Metadata: domain.SegmentMetadata{
					ControlID:      "RHEL-09-211010",
					Title:          "RHEL 9 must be a vendor-supported release.",
					Severity:       domain.SeverityHigh,
					ReleaseVersion: domain.Release9,
				},
			},
			Score: 0.92,
		},
	}
}
