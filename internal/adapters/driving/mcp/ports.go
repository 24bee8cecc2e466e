package mcp

import (
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Sessions creates one orchestrator per tool call.
	Sessions driving.SearchSessions

	// History lists recent searches. Optional.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Sessions == nil {
		return ErrMissingSearchSessions
	}
	return nil
}
