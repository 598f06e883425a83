package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

func newTestServer(t *testing.T, q *mockQueryService, r *mockRetrievalService, in *mockIngestService) *Server {
	t.Helper()
	ports := &Ports{Query: q, Retrieval: r}
	if in != nil {
		ports.Ingest = in
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestHandleAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with sources", func(t *testing.T) {
		query := &mockQueryService{answer: &domain.Answer{
			Text:            "Enable FIPS mode.",
			ResolvedVersion: domain.Release9,
			Status:          domain.AnswerStatusAnswered,
			Query:           "fips [Focus on RHEL 9]",
			Sources:         domain.SourcesFromResults(sampleResults()),
		}}
		server := newTestServer(t, query, &mockRetrievalService{}, nil)

		result, output, err := server.handleAnswer(ctx, nil, AnswerInput{
			Question:    "fips",
			ControlID:   "RHEL-09-211010",
			RHELVersion: "8",
		})
		require.NoError(t, err)
		assert.Nil(t, result)
		assert.Equal(t, "Enable FIPS mode.", output.Answer)
		assert.Equal(t, "9", output.VersionFocus)
		assert.Equal(t, "answered", output.Status)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "RHEL-09-211010", output.Sources[0].ControlID)

		assert.Equal(t, "RHEL-09-211010", query.lastReq.ControlID)
		assert.Equal(t, domain.Release8, query.lastReq.ReleaseVersion)
	})

	t.Run("failed answer is flagged as tool error", func(t *testing.T) {
		query := &mockQueryService{answer: &domain.Answer{
			Text:   domain.ErrorAnswerPrefix + "boom",
			Status: domain.AnswerStatusFailed,
			Query:  "q",
		}}
		server := newTestServer(t, query, &mockRetrievalService{}, nil)

		result, output, err := server.handleAnswer(ctx, nil, AnswerInput{Question: "q"})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.IsError)
		assert.Equal(t, "failed", output.Status)
		assert.Empty(t, output.Sources)
	})

	t.Run("empty question is rejected", func(t *testing.T) {
		server := newTestServer(t, &mockQueryService{}, &mockRetrievalService{}, nil)
		_, _, err := server.handleAnswer(ctx, nil, AnswerInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestHandleFind(t *testing.T) {
	ctx := context.Background()

	t.Run("returns matches", func(t *testing.T) {
		retrieval := &mockRetrievalService{results: sampleResults()}
		server := newTestServer(t, &mockQueryService{}, retrieval, nil)

		_, output, err := server.handleFind(ctx, nil, FindInput{ControlID: "RHEL-09-2110"})
		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "high", output.Results[0].Severity)
		assert.Equal(t, "RHEL-09-2110", retrieval.lastID)
	})

	t.Run("no matches returns empty list", func(t *testing.T) {
		server := newTestServer(t, &mockQueryService{}, &mockRetrievalService{}, nil)
		_, output, err := server.handleFind(ctx, nil, FindInput{ControlID: "NOPE"})
		require.NoError(t, err)
		assert.Zero(t, output.Count)
		assert.Empty(t, output.Results)
	})

	t.Run("empty id is rejected", func(t *testing.T) {
		server := newTestServer(t, &mockQueryService{}, &mockRetrievalService{}, nil)
		_, _, err := server.handleFind(ctx, nil, FindInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestHandleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to k=5 preferring RHEL 9", func(t *testing.T) {
		retrieval := &mockRetrievalService{results: sampleResults()}
		server := newTestServer(t, &mockQueryService{}, retrieval, nil)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "ssh"})
		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.InDelta(t, 0.92, output.Results[0].Score, 1e-9)
		assert.Equal(t, domain.DefaultK, retrieval.lastOpts.K)
		assert.True(t, retrieval.lastOpts.PreferVersion9)
	})

	t.Run("version restricts and disables bias", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server := newTestServer(t, &mockQueryService{}, retrieval, nil)

		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "ssh", K: 3, RHELVersion: "8"})
		require.NoError(t, err)
		assert.Equal(t, 3, retrieval.lastOpts.K)
		assert.False(t, retrieval.lastOpts.PreferVersion9)
		assert.Equal(t, domain.Release8, retrieval.lastOpts.Filter.ReleaseVersion)
	})

	t.Run("prefer flag can be turned off", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server := newTestServer(t, &mockQueryService{}, retrieval, nil)

		off := false
		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "ssh", PreferRHEL9: &off})
		require.NoError(t, err)
		assert.False(t, retrieval.lastOpts.PreferVersion9)
	})

	t.Run("retrieval error is returned", func(t *testing.T) {
		retrieval := &mockRetrievalService{err: errors.New("corpus down")}
		server := newTestServer(t, &mockQueryService{}, retrieval, nil)

		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "ssh"})
		assert.EqualError(t, err, "corpus down")
	})
}

func TestHandleLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("loads by extension", func(t *testing.T) {
		server := newTestServer(t, &mockQueryService{}, &mockRetrievalService{}, &mockIngestService{})

		_, report, err := server.handleLoad(ctx, nil, LoadInput{FilePath: "/tmp/rhel9.xml"})
		require.NoError(t, err)
		assert.Equal(t, domain.FormatXCCDF, report.Format)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		server := newTestServer(t, &mockQueryService{}, &mockRetrievalService{}, &mockIngestService{})

		_, _, err := server.handleLoad(ctx, nil, LoadInput{FilePath: "/tmp/notes.txt"})
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	})

	t.Run("disabled without ingest", func(t *testing.T) {
		server := newTestServer(t, &mockQueryService{}, &mockRetrievalService{}, nil)

		_, _, err := server.handleLoad(ctx, nil, LoadInput{FilePath: "/tmp/rhel9.xml"})
		assert.ErrorIs(t, err, ErrLoadingDisabled)
	})
}
