package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// Record stores a term. Repeating a term for the same team refreshes its
// timestamp and keeps its ID.
func (h *historyStore) Record(ctx context.Context, serverURL, teamID, term string) error {
	_, err := h.store.db.ExecContext(ctx, `
		INSERT INTO recent_searches (id, server_url, team_id, term, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(server_url, team_id, term) DO UPDATE SET
			created_at = excluded.created_at
	`, uuid.New().String(), serverURL, teamID, term, millis(h.store.now()))
	if err != nil {
		return fmt.Errorf("recording search: %w", err)
	}
	return nil
}

// List returns up to limit terms for a team, newest first.
// A non-positive limit returns every term.
func (h *historyStore) List(
	ctx context.Context, serverURL, teamID string, limit int,
) ([]domain.RecentSearch, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := h.store.db.QueryContext(ctx, `
		SELECT id, server_url, team_id, term, created_at
		FROM recent_searches
		WHERE server_url = ? AND team_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, serverURL, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent searches: %w", err)
	}
	defer rows.Close()

	result := make([]domain.RecentSearch, 0)
	for rows.Next() {
		var r domain.RecentSearch
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.ServerURL, &r.TeamID, &r.Term, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning recent search: %w", err)
		}
		r.CreatedAt = fromMillis(createdAt)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recent searches: %w", err)
	}
	return result, nil
}

// Remove deletes a recorded term by ID.
func (h *historyStore) Remove(ctx context.Context, id string) error {
	res, err := h.store.db.ExecContext(ctx, "DELETE FROM recent_searches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting recent search: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting recent search: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
