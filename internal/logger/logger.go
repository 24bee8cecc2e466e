// Package logger provides verbose logging for Sercha Chat.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to trace search submissions, commits and
// discarded responses. Warnings are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing and for the TUI,
// which owns the terminal while running.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func write(always bool, level, scope, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose && !always {
		return
	}
	if scope != "" {
		format = scope + ": " + format
	}
	fmt.Fprintf(output, "["+level+"] "+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(false, "DEBUG", "", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(false, "INFO", "", format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	write(true, "WARN", "", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Scoped prefixes every message with a component name.
type Scoped struct {
	scope string
}

// Named returns a logger for one component.
func Named(scope string) Scoped {
	return Scoped{scope: scope}
}

// Debug prints a scoped message if verbose mode is enabled.
func (l Scoped) Debug(format string, args ...any) {
	write(false, "DEBUG", l.scope, format, args...)
}

// Info prints a scoped informational message if verbose mode is enabled.
func (l Scoped) Info(format string, args ...any) {
	write(false, "INFO", l.scope, format, args...)
}

// Warn prints a scoped warning.
func (l Scoped) Warn(format string, args ...any) {
	write(true, "WARN", l.scope, format, args...)
}
