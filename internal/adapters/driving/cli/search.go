package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
)

var (
	searchTeam   string
	searchFilter string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search messages and files",
	Long: `Searches the messages and files of a team in one go.

Words are matched as typed; quote a phrase to match it exactly. Use --filter
to restrict files to one family of file types (documents, spreadsheets,
presentations, code, images, videos, audio or other). Messages are never
filtered.`,
	Example: `  sercha-chat search "release notes"
  sercha-chat search budget --filter spreadsheets
  sercha-chat search roadmap --team 8xk3 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchTeam, "team", "t", "", "team to search (default: server.team_id)")
	searchCmd.Flags().StringVarP(&searchFilter, "filter", "f", "all", "file type filter")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchSessions == nil {
		return fmt.Errorf("search service %w", errNotConfigured)
	}

	filter, err := domain.ParseFileFilter(searchFilter)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	ctx := cmd.Context()
	session := searchSessions.NewSession(searchTeam)
	defer waitForSession(session)

	out, err := session.Submit(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrNoTeam) {
			return fmt.Errorf("%w: pass --team or run 'sercha-chat config set server.team_id <id>'", err)
		}
		return fmt.Errorf("search failed: %w", err)
	}
	if out.Status == domain.OutcomeCommitted && filter != domain.FilterAll {
		out, err = session.ChangeFilter(ctx, filter)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
	}

	if out.Status != domain.OutcomeCommitted {
		cmd.Println("Nothing to search for.")
		return nil
	}

	if searchJSON {
		return outputSearchJSON(cmd, out.Results)
	}
	outputSearchTable(cmd, out.Results, filter)
	return nil
}

// waitForSession lets background work such as history writes finish
// before the process exits.
func waitForSession(session driving.SearchOrchestrator) {
	if w, ok := session.(interface{ Wait() }); ok {
		w.Wait()
	}
}

func outputSearchJSON(cmd *cobra.Command, results domain.ResultSet) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results domain.ResultSet, filter domain.FileFilter) {
	if results.IsEmpty() {
		cmd.Println("No results found.")
		return
	}

	cmd.Printf("Messages (%d):\n", len(results.PostIDs))
	for i, id := range results.PostIDs {
		cmd.Printf("  [%d] %s\n", i+1, id)
	}
	cmd.Println()

	if filter == domain.FilterAll {
		cmd.Printf("Files (%d):\n", len(results.Files))
	} else {
		cmd.Printf("Files (%d, %s):\n", len(results.Files), filter.Label())
	}
	for i, f := range results.Files {
		cmd.Printf("  [%d] %s (%s)\n", i+1, f.Name, humanize.Bytes(uint64(max(f.Size, 0))))
		cmd.Printf("      ID: %s  Channel: %s\n", f.ID, f.ChannelID)
	}
}
