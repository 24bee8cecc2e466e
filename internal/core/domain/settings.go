package domain

import (
	"fmt"
	"time"
)

// Backend selects where searches are executed.
type Backend string

// Available backends.
const (
	// BackendRemote searches the chat server over its HTTP API.
	BackendRemote Backend = "remote"

	// BackendLocal searches the offline SQLite index.
	BackendLocal Backend = "local"
)

// IsValid returns true if the backend is recognised.
func (b Backend) IsValid() bool {
	return b == BackendRemote || b == BackendLocal
}

// ParseBackend converts a backend name into a Backend.
// The empty string maps to BackendRemote.
func ParseBackend(s string) (Backend, error) {
	if s == "" {
		return BackendRemote, nil
	}
	b := Backend(s)
	if !b.IsValid() {
		return BackendRemote, fmt.Errorf("%w: unknown backend %q", ErrInvalidInput, s)
	}
	return b, nil
}

// ServerSettings holds the chat server connection.
type ServerSettings struct {
	URL    string
	Token  string
	TeamID string
}

// SearchSettings tunes search execution.
type SearchSettings struct {
	Backend       Backend
	Timeout       time.Duration
	Debounce      time.Duration
	HistoryLimit  int
	RatePerSecond float64
}

// FileSettings holds file capabilities and the download target.
type FileSettings struct {
	Capabilities Capabilities
	DownloadDir  string
}

// Settings is the complete application configuration.
type Settings struct {
	Server ServerSettings
	Search SearchSettings
	Files  FileSettings
}

// Default setting values.
const (
	DefaultTimeout       = 15 * time.Second
	DefaultDebounce      = 400 * time.Millisecond
	DefaultHistoryLimit  = 20
	DefaultRatePerSecond = 5.0
)

// DefaultSettings returns settings with every default applied.
func DefaultSettings() Settings {
	return Settings{
		Search: SearchSettings{
			Backend:       BackendRemote,
			Timeout:       DefaultTimeout,
			Debounce:      DefaultDebounce,
			HistoryLimit:  DefaultHistoryLimit,
			RatePerSecond: DefaultRatePerSecond,
		},
		Files: FileSettings{
			Capabilities: Capabilities{CanDownloadFiles: true},
		},
	}
}
