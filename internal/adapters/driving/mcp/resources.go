package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Sercha Chat resources.
	uriScheme = "sercha-chat://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "filters",
		Name:        "file-filters",
		Description: "File type filters accepted by search_files and the qualifiers they add",
		MIMEType:    "application/json",
	}, s.handleFiltersResource)

	if s.ports.History != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "teams/{teamId}/recent",
			Name:        "recent-searches",
			Description: "Recent search terms of a team, newest first",
			MIMEType:    "application/json",
		}, s.handleRecentResource)
	}
}

// handleFiltersResource lists every file filter.
func (s *Server) handleFiltersResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type filterInfo struct {
		Name      string `json:"name"`
		Label     string `json:"label"`
		Qualifier string `json:"qualifier"`
	}

	filters := domain.AllFileFilters()
	infos := make([]filterInfo, len(filters))
	for i, f := range filters {
		infos[i] = filterInfo{
			Name:      f.String(),
			Label:     f.Label(),
			Qualifier: f.Extensions(),
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// handleRecentResource returns the recent searches of a team.
func (s *Server) handleRecentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	teamID := extractTeamID(req.Params.URI)
	if teamID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	recent, err := s.ports.History.Recent(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing recent searches: %w", err)
	}

	return jsonResource(req.Params.URI, recent)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractTeamID extracts the team ID from a URI like sercha-chat://teams/{teamId}/recent.
func extractTeamID(uri string) string {
	const prefix = uriScheme + "teams/"
	const suffix = "/recent"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
