package domain

import (
	"fmt"
	"strings"
)

// Tab identifies which result category is visible.
type Tab int

// Result tabs.
const (
	TabMessages Tab = iota
	TabFiles
)

// String returns the lower-case name of the tab.
func (t Tab) String() string {
	switch t {
	case TabMessages:
		return "messages"
	case TabFiles:
		return "files"
	default:
		return fmt.Sprintf("tab(%d)", int(t))
	}
}

// ParseTab converts a tab name into a Tab.
func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "messages":
		return TabMessages, nil
	case "files":
		return TabFiles, nil
	default:
		return TabMessages, fmt.Errorf("%w: unknown tab %q", ErrInvalidInput, s)
	}
}

// State is the phase of the search screen.
// A cancelled search returns to StateInitial.
type State int

// Search states.
const (
	StateInitial State = iota
	StateLoading
	StateResults
)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateLoading:
		return "loading"
	case StateResults:
		return "results"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is an immutable copy of the search screen state.
type Snapshot struct {
	// Version increases with every state change.
	Version uint64

	State  State
	Tab    Tab
	Filter FileFilter
	Query  RawQuery

	// LastSearched is the query text the current Results correspond to.
	LastSearched string

	// TeamID is the team searches run against.
	TeamID string

	// Loading is set while a full search runs and no results are shown.
	Loading bool

	// ResultsLoading is set while a full search runs over visible results.
	ResultsLoading bool

	// FilesLoading is set while a filter-only re-fetch runs.
	FilesLoading bool

	Results ResultSet
}

// Busy returns true if any search is in flight.
func (s Snapshot) Busy() bool {
	return s.Loading || s.ResultsLoading || s.FilesLoading
}

// OutcomeStatus describes how a search call ended.
type OutcomeStatus int

// Outcome statuses.
const (
	// OutcomeCommitted means the results were applied to the state.
	OutcomeCommitted OutcomeStatus = iota

	// OutcomeCancelled means the query was blank and the state was reset.
	OutcomeCancelled

	// OutcomeSuperseded means a newer request won and the results were discarded.
	OutcomeSuperseded
)

// String returns the lower-case name of the status.
func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeCommitted:
		return "committed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeSuperseded:
		return "superseded"
	default:
		return fmt.Sprintf("outcome(%d)", int(s))
	}
}

// Outcome is the result of a search call.
type Outcome struct {
	Status OutcomeStatus

	// Results is the committed result set; empty unless Status is OutcomeCommitted.
	Results ResultSet
}
