// Package cli provides the command-line interface for sercha-chat.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-chat/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var verbose bool

// Services injected by main before Execute.
var (
	searchSessions  driving.SearchSessions
	historyService  driving.HistoryService
	fileService     driving.FileActionService
	settingsService driving.SettingsService
	indexService    driving.IndexService
)

// Services groups the driving ports used by the commands.
// Any field may be nil; commands needing it then fail with a clear error.
type Services struct {
	Sessions driving.SearchSessions
	History  driving.HistoryService
	Files    driving.FileActionService
	Settings driving.SettingsService
	Index    driving.IndexService
}

var errNotConfigured = errors.New("not configured")

var rootCmd = &cobra.Command{
	Use:   "sercha-chat",
	Short: "Search messages and files on a chat server",
	Long: `sercha-chat searches the messages and files of a chat team from the
terminal, either against the server's search API or an offline index.

Run without arguments to open the interactive search screen.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// SetServices sets the services used by the commands.
func SetServices(s Services) {
	searchSessions = s.Sessions
	historyService = s.History
	fileService = s.Files
	settingsService = s.Settings
	indexService = s.Index
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command with a background context.
// Prefer ExecuteContext for signal-aware execution.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context,
// enabling graceful shutdown when the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
