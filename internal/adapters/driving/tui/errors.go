package tui

import "errors"

// ErrMissingSearchOrchestrator is returned when the search orchestrator is not provided.
var ErrMissingSearchOrchestrator = errors.New("tui: search orchestrator is required")

// ErrInvalidPorts is returned when no ports are given.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
