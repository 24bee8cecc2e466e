package services

import (
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
)

// Ensure SessionFactory implements the interface.
var _ driving.SearchSessions = (*SessionFactory)(nil)

// SessionFactory creates orchestrators sharing one set of backends.
type SessionFactory struct {
	posts   driven.PostSearcher
	files   driven.FileSearcher
	history driven.HistoryStore
	cfg     OrchestratorConfig
}

// NewSessionFactory creates a factory. cfg.TeamID is the default team
// for sessions created with an empty team.
func NewSessionFactory(
	posts driven.PostSearcher,
	files driven.FileSearcher,
	history driven.HistoryStore,
	cfg OrchestratorConfig,
) *SessionFactory {
	return &SessionFactory{posts: posts, files: files, history: history, cfg: cfg}
}

// NewSession returns a fresh orchestrator starting on teamID.
func (f *SessionFactory) NewSession(teamID string) driving.SearchOrchestrator {
	cfg := f.cfg
	if teamID != "" {
		cfg.TeamID = teamID
	}
	cfg.OnCancel = nil
	return NewOrchestrator(f.posts, f.files, f.history, cfg)
}
