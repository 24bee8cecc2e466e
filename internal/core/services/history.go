package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService lists and prunes recent searches for one server.
type HistoryService struct {
	store     driven.HistoryStore
	serverURL string
	limit     int
}

// NewHistoryService creates a history service.
// The store is optional (can be nil); without it no history is returned.
func NewHistoryService(store driven.HistoryStore, serverURL string, limit int) *HistoryService {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	return &HistoryService{store: store, serverURL: serverURL, limit: limit}
}

// Recent returns recent searches for a team, newest first.
func (s *HistoryService) Recent(ctx context.Context, teamID string) ([]domain.RecentSearch, error) {
	if s.store == nil {
		return []domain.RecentSearch{}, nil
	}

	recent, err := s.store.List(ctx, s.serverURL, teamID, s.limit)
	if err != nil {
		return nil, fmt.Errorf("list recent searches: %w", err)
	}
	if recent == nil {
		recent = []domain.RecentSearch{}
	}
	return recent, nil
}

// Remove deletes a recent search.
func (s *HistoryService) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", domain.ErrInvalidInput)
	}
	if s.store == nil {
		return domain.ErrNotFound
	}
	if err := s.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove recent search: %w", err)
	}
	return nil
}
