package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// SearchMessagesInput is the input schema for the search_messages tool.
type SearchMessagesInput struct {
	Query  string `json:"query" jsonschema:"the text to search for in messages"`
	TeamID string `json:"team_id,omitempty" jsonschema:"team to search (default: the configured team)"`
}

// SearchMessagesOutput is the output schema for the search_messages tool.
type SearchMessagesOutput struct {
	PostIDs []string `json:"post_ids"`
	Count   int      `json:"count"`
}

// SearchFilesInput is the input schema for the search_files tool.
type SearchFilesInput struct {
	Query  string `json:"query" jsonschema:"the text to search for in file names"`
	TeamID string `json:"team_id,omitempty" jsonschema:"team to search (default: the configured team)"`
	Filter string `json:"filter,omitempty" jsonschema:"file type: all, documents, spreadsheets, presentations, code, images, videos, audio or other"`
}

// SearchFilesOutput is the output schema for the search_files tool.
type SearchFilesOutput struct {
	Files      []FileOutput `json:"files"`
	ChannelIDs []string     `json:"channel_ids"`
	Count      int          `json:"count"`
}

// FileOutput represents a single file result.
type FileOutput struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	ChannelID string `json:"channel_id"`
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at,omitempty"`
}

// RecentSearchesInput is the input schema for the recent_searches tool.
type RecentSearchesInput struct {
	TeamID string `json:"team_id" jsonschema:"team whose recent searches to list"`
}

// RecentSearchesOutput is the output schema for the recent_searches tool.
type RecentSearchesOutput struct {
	Terms []string `json:"terms"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolSearchMessages,
		Description: "Search chat messages in a team and return matching post IDs in relevance order",
	}, s.handleSearchMessages)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolSearchFiles,
		Description: "Search files shared in a team, optionally restricted to a file type",
	}, s.handleSearchFiles)

	if s.ports.History != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        ToolRecentSearches,
			Description: "List the most recent search terms used in a team",
		}, s.handleRecentSearches)
	}
}

// handleSearchMessages handles the search_messages tool invocation.
func (s *Server) handleSearchMessages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchMessagesInput,
) (*mcp.CallToolResult, SearchMessagesOutput, error) {
	outcome, err := s.ports.Sessions.NewSession(input.TeamID).Submit(ctx, input.Query)
	if err != nil {
		return nil, SearchMessagesOutput{}, err
	}

	ids := outcome.Results.PostIDs
	if ids == nil {
		ids = []string{}
	}
	return nil, SearchMessagesOutput{PostIDs: ids, Count: len(ids)}, nil
}

// handleSearchFiles handles the search_files tool invocation.
func (s *Server) handleSearchFiles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchFilesInput,
) (*mcp.CallToolResult, SearchFilesOutput, error) {
	filter, err := domain.ParseFileFilter(input.Filter)
	if err != nil {
		return nil, SearchFilesOutput{}, err
	}

	session := s.ports.Sessions.NewSession(input.TeamID)
	outcome, err := session.Submit(ctx, input.Query)
	if err != nil {
		return nil, SearchFilesOutput{}, err
	}
	if filter != domain.FilterAll && outcome.Status == domain.OutcomeCommitted {
		if outcome, err = session.ChangeFilter(ctx, filter); err != nil {
			return nil, SearchFilesOutput{}, err
		}
	}

	results := outcome.Results
	if outcome.Status != domain.OutcomeCommitted {
		results = domain.EmptyResultSet()
	}

	output := SearchFilesOutput{
		Files:      make([]FileOutput, len(results.Files)),
		ChannelIDs: domain.UniqueStrings(results.FileChannelIDs),
		Count:      len(results.Files),
	}
	for i, f := range results.Files {
		output.Files[i] = FileOutput{
			ID:        f.ID,
			PostID:    f.PostID,
			ChannelID: f.ChannelID,
			Name:      f.Name,
			Extension: f.Extension,
			Size:      f.Size,
		}
		if !f.CreatedAt.IsZero() {
			output.Files[i].CreatedAt = f.CreatedAt.Format(time.RFC3339)
		}
	}
	return nil, output, nil
}

// handleRecentSearches handles the recent_searches tool invocation.
func (s *Server) handleRecentSearches(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecentSearchesInput,
) (*mcp.CallToolResult, RecentSearchesOutput, error) {
	recent, err := s.ports.History.Recent(ctx, input.TeamID)
	if err != nil {
		return nil, RecentSearchesOutput{}, fmt.Errorf("listing recent searches: %w", err)
	}

	terms := make([]string, len(recent))
	for i, r := range recent {
		terms[i] = r.Term
	}
	return nil, RecentSearchesOutput{Terms: terms}, nil
}
