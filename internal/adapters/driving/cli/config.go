package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-chat/internal/core/services"
)

var revealSecret bool

// readSecret prompts for a value without echoing it.
var readSecret = readPassword

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change settings",
	Long: `View and change the settings stored in ~/.sercha-chat/config.toml.

Permission settings (files.*) are picked up by a running search screen
as soon as the file changes.`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Changes one setting. When setting server.token without a value the
token is read from a hidden prompt.`,
	Example: `  sercha-chat config set server.url https://chat.example.com
  sercha-chat config set server.token
  sercha-chat config set search.debounce_ms 250`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

func init() {
	configGetCmd.Flags().BoolVar(&revealSecret, "reveal", false, "print secrets unmasked")
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return fmt.Errorf("settings service %w", errNotConfigured)
	}

	keys := settingsService.Keys()
	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}
	for _, k := range keys {
		value, err := settingsService.Value(k)
		if err != nil {
			return err
		}
		cmd.Printf("  %-*s  %s\n", width, k, displayValue(k, value, false))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return fmt.Errorf("settings service %w", errNotConfigured)
	}
	value, err := settingsService.Value(args[0])
	if err != nil {
		return err
	}
	cmd.Println(displayValue(args[0], value, revealSecret))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return fmt.Errorf("settings service %w", errNotConfigured)
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case isSecretKey(key):
		cmd.Printf("Enter value for %s: ", key)
		value = readSecret()
		cmd.Println()
	default:
		return fmt.Errorf("a value is required for %s", key)
	}

	if err := settingsService.Set(key, value); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

func isSecretKey(key string) bool {
	return key == services.KeyServerToken
}

func displayValue(key, value string, reveal bool) string {
	if value == "" {
		return "(not set)"
	}
	if isSecretKey(key) && !reveal {
		return maskSecret(value)
	}
	return value
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

func readPassword() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
