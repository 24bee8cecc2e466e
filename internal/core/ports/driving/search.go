package driving

import (
	"context"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// SearchOrchestrator owns the state of one search screen.
//
// Searches are committed atomically; a response superseded by a newer
// request is discarded. Backend failures degrade to empty results and are
// never returned as errors.
type SearchOrchestrator interface {
	// Submit runs a full search for text on the current team.
	// Blank text cancels the search instead.
	Submit(ctx context.Context, text string) (domain.Outcome, error)

	// ChangeFilter re-fetches files for the last searched text under filter.
	ChangeFilter(ctx context.Context, filter domain.FileFilter) (domain.Outcome, error)

	// ChangeTeam re-runs the last searched text on another team,
	// keeping the active file filter.
	ChangeTeam(ctx context.Context, teamID string) (domain.Outcome, error)

	// Cancel clears the query and results.
	Cancel()

	// SetQuery records the text and cursor of the search box.
	SetQuery(text string, cursor int)

	// SelectTab switches the visible result category.
	SelectTab(tab domain.Tab)

	// Snapshot returns a copy of the current state.
	Snapshot() domain.Snapshot

	// Subscribe registers fn to receive every new state.
	// Call the returned function to unsubscribe.
	Subscribe(fn func(domain.Snapshot)) func()
}

// SearchSessions creates independent orchestrators for one-shot callers
// such as the CLI and MCP tools, so concurrent requests never supersede
// each other.
type SearchSessions interface {
	// NewSession returns an orchestrator starting on teamID.
	NewSession(teamID string) SearchOrchestrator
}
