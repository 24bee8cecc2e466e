package driving

import (
	"context"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// HistoryService exposes recent searches.
type HistoryService interface {
	// Recent returns the configured number of recent searches for a team.
	Recent(ctx context.Context, teamID string) ([]domain.RecentSearch, error)

	// Remove deletes a recent search.
	Remove(ctx context.Context, id string) error
}
