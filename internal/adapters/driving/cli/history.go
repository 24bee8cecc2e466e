package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	historyTeam string
	historyJSON bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent searches",
	Long:  `Lists the recent searches of a team, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a recent search",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRemove,
}

func init() {
	historyCmd.Flags().StringVarP(&historyTeam, "team", "t", "", "team to list (default: server.team_id)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.AddCommand(historyRemoveCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return fmt.Errorf("history service %w", errNotConfigured)
	}

	team := historyTeam
	if team == "" && settingsService != nil {
		team = settingsService.Get().Server.TeamID
	}

	recent, err := historyService.Recent(cmd.Context(), team)
	if err != nil {
		return fmt.Errorf("listing recent searches: %w", err)
	}

	if historyJSON {
		data, err := json.MarshalIndent(recent, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(recent) == 0 {
		cmd.Println("No recent searches.")
		return nil
	}
	for _, r := range recent {
		cmd.Printf("  %-36s  %-30s  %s\n", r.ID, r.Term, humanize.Time(r.CreatedAt))
	}
	return nil
}

func runHistoryRemove(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return fmt.Errorf("history service %w", errNotConfigured)
	}
	if err := historyService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("removing recent search: %w", err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}
