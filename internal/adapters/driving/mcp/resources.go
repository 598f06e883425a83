package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for control resources.
	uriScheme = "stig://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "controls/{controlId}",
		Name:        "control",
		Description: "Indexed segments of a specific control",
		MIMEType:    "application/json",
	}, s.handleControlResource)
}

// handleControlResource returns the segments matching a control id.
func (s *Server) handleControlResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// stig://controls/{controlId}
	controlID := extractControlID(req.Params.URI)
	if controlID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	results, err := s.ports.Retrieval.SearchByControlID(ctx, controlID)
	if err != nil {
		return nil, fmt.Errorf("finding control: %w", err)
	}
	if len(results) == 0 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(toControlsOutput(results), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling control: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractControlID extracts the control id from a URI like stig://controls/{controlId}.
func extractControlID(uri string) string {
	const prefix = uriScheme + "controls/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
