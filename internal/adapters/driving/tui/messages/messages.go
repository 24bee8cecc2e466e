// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// StateChanged carries a new snapshot published by the search orchestrator.
type StateChanged struct {
	Snapshot domain.Snapshot
}

// DebounceElapsed fires after the search box has been idle.
// Seq identifies the keystroke that scheduled it; stale ticks are ignored.
type DebounceElapsed struct {
	Seq int
}

// SearchCompleted is sent when a submit, filter or team change returns.
type SearchCompleted struct {
	Outcome domain.Outcome
	Err     error
}

// RecentLoaded carries the recent searches of the current team.
type RecentLoaded struct {
	Searches []domain.RecentSearch
	Err      error
}

// RecentRemoved signals a recent search was deleted.
type RecentRemoved struct {
	ID  string
	Err error
}

// CapabilitiesChanged is sent when the server-granted file permissions change.
type CapabilitiesChanged struct {
	Capabilities domain.Capabilities
}

// FileActionCompleted carries the outcome of a file option.
type FileActionCompleted struct {
	Option domain.FileOption
	File   domain.FileInfo

	// Result is the saved path for downloads and the URL for public links.
	Result string
	Err    error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the search box with its result tabs.
	ViewSearch ViewType = iota
	// ViewSettings is the settings editor.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// SettingsSaved signals a setting was written.
type SettingsSaved struct {
	Key string
	Err error
}
