package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
// It backs tests and runs where the database cannot be opened.
type HistoryStore struct {
	mu      sync.RWMutex
	entries []domain.RecentSearch // oldest first
	now     func() time.Time
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{now: time.Now}
}

// Record stores a term. Repeating a term for the same team moves it to the front.
func (s *HistoryStore) Record(_ context.Context, serverURL, teamID, term string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.ServerURL == serverURL && e.TeamID == teamID && e.Term == term {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}

	s.entries = append(s.entries, domain.RecentSearch{
		ID:        uuid.New().String(),
		ServerURL: serverURL,
		TeamID:    teamID,
		Term:      term,
		CreatedAt: s.now(),
	})
	return nil
}

// List returns up to limit terms for a team, newest first.
func (s *HistoryStore) List(_ context.Context, serverURL, teamID string, limit int) ([]domain.RecentSearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.RecentSearch, 0)
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.ServerURL != serverURL || e.TeamID != teamID {
			continue
		}
		result = append(result, e)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// Remove deletes a recorded term by ID.
func (s *HistoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
