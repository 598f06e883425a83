package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractControlID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid control URI", uri: "stig://controls/RHEL-09-211010", expected: "RHEL-09-211010"},
		{name: "invalid prefix", uri: "file://controls/RHEL-09-211010", expected: ""},
		{name: "nested path", uri: "stig://controls/a/b", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractControlID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestHandleControlResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns matching segments", func(t *testing.T) {
		retrieval := &mockRetrievalService{results: sampleResults()}
		server := newTestServer(t, &mockQueryService{}, retrieval, nil)

		result, err := server.handleControlResource(ctx, makeReadResourceRequest("stig://controls/RHEL-09-211010"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"stig_id": "RHEL-09-211010"`)
		assert.Equal(t, "RHEL-09-211010", retrieval.lastID)
	})

	t.Run("no matches is not found", func(t *testing.T) {
		server := newTestServer(t, &mockQueryService{}, &mockRetrievalService{}, nil)

		_, err := server.handleControlResource(ctx, makeReadResourceRequest("stig://controls/NOPE"))
		assert.Error(t, err)
	})

	t.Run("bad URI is not found", func(t *testing.T) {
		server := newTestServer(t, &mockQueryService{}, &mockRetrievalService{}, nil)

		_, err := server.handleControlResource(ctx, makeReadResourceRequest("stig://other"))
		assert.Error(t, err)
	})
}
