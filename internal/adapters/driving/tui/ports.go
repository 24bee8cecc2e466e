// Package tui provides an interactive terminal user interface for sercha-chat.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search owns the state of the search screen.
	Search driving.SearchOrchestrator

	// History lists and removes recent searches. Optional.
	History driving.HistoryService

	// Files performs file options on file results. Optional.
	Files driving.FileActionService

	// Settings reads and writes the configuration. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchOrchestrator
	}
	return nil
}
