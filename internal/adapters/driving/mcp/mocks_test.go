package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
)

// mockSessions is a mock implementation of driving.SearchSessions.
type mockSessions struct {
	session *mockOrchestrator
	teams   []string
}

func (m *mockSessions) NewSession(teamID string) driving.SearchOrchestrator {
	m.teams = append(m.teams, teamID)
	if m.session == nil {
		m.session = &mockOrchestrator{}
	}
	return m.session
}

// mockOrchestrator is a mock implementation of driving.SearchOrchestrator.
type mockOrchestrator struct {
	submitOutcome domain.Outcome
	filterOutcome domain.Outcome
	err           error

	submitted []string
	filters   []domain.FileFilter
}

func (m *mockOrchestrator) Submit(_ context.Context, text string) (domain.Outcome, error) {
	m.submitted = append(m.submitted, text)
	return m.submitOutcome, m.err
}

func (m *mockOrchestrator) ChangeFilter(_ context.Context, filter domain.FileFilter) (domain.Outcome, error) {
	m.filters = append(m.filters, filter)
	return m.filterOutcome, m.err
}

func (m *mockOrchestrator) ChangeTeam(_ context.Context, _ string) (domain.Outcome, error) {
	return m.submitOutcome, m.err
}

func (m *mockOrchestrator) Cancel()                  {}
func (m *mockOrchestrator) SetQuery(_ string, _ int) {}
func (m *mockOrchestrator) SelectTab(_ domain.Tab)   {}

func (m *mockOrchestrator) Snapshot() domain.Snapshot {
	return domain.Snapshot{}
}

func (m *mockOrchestrator) Subscribe(_ func(domain.Snapshot)) func() {
	return func() {}
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	recent []domain.RecentSearch
	err    error
	teams  []string
}

func (m *mockHistoryService) Recent(_ context.Context, teamID string) ([]domain.RecentSearch, error) {
	m.teams = append(m.teams, teamID)
	return m.recent, m.err
}

func (m *mockHistoryService) Remove(_ context.Context, _ string) error {
	return m.err
}

func committed(results domain.ResultSet) domain.Outcome {
	return domain.Outcome{Status: domain.OutcomeCommitted, Results: results}
}
