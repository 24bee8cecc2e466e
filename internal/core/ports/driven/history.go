package driven

import (
	"context"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// HistoryStore persists recently searched terms per server and team.
type HistoryStore interface {
	// Record stores a term. Repeating a term moves it to the front.
	Record(ctx context.Context, serverURL, teamID, term string) error

	// List returns up to limit terms, newest first.
	List(ctx context.Context, serverURL, teamID string, limit int) ([]domain.RecentSearch, error)

	// Remove deletes a recorded term by ID.
	// Returns domain.ErrNotFound if no such entry exists.
	Remove(ctx context.Context, id string) error
}
