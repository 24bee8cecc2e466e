package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui"
	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-chat/internal/logger"
)

// tuiLogFile receives log lines in verbose mode while the screen is in use.
const tuiLogFile = "sercha-chat-debug.log"

// TUIConfig holds configuration for the interactive search screen.
type TUIConfig struct {
	Search   driving.SearchOrchestrator
	History  driving.HistoryService
	Files    driving.FileActionService
	Settings driving.SettingsService

	// Capabilities delivers permission changes picked up from the config file.
	Capabilities <-chan domain.Capabilities
}

var tuiConfig *TUIConfig

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive search screen",
	Long: `Launch the interactive search screen.

Results update as you type. Controls:
  Tab       - Switch between messages and files
  f / F     - Next / previous file filter
  Ctrl+T    - Change team
  Enter     - Search now / open file options
  Esc       - Cancel the search in flight
  Ctrl+P    - Settings
  ?         - Toggle help
  q         - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

// SetTUIConfig sets the configuration for the TUI command.
func SetTUIConfig(config *TUIConfig) {
	tuiConfig = config
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if tuiConfig == nil {
		return fmt.Errorf("search screen %w", errNotConfigured)
	}

	app, err := tui.NewApp(&tui.Ports{
		Search:   tuiConfig.Search,
		History:  tuiConfig.History,
		Files:    tuiConfig.Files,
		Settings: tuiConfig.Settings,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(cmd.Context()).WithCapabilityUpdates(tuiConfig.Capabilities)

	restore := redirectLogs()
	defer restore()

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// redirectLogs keeps log lines off the screen while the TUI owns it.
func redirectLogs() func() {
	reset := func() { logger.SetOutput(os.Stderr) }
	if !logger.IsVerbose() {
		logger.SetOutput(io.Discard)
		return reset
	}
	f, err := tea.LogToFile(tuiLogFile, "")
	if err != nil {
		logger.SetOutput(io.Discard)
		return reset
	}
	logger.SetOutput(f)
	return func() {
		reset()
		f.Close()
	}
}
