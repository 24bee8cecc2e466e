package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [file|-]",
	Short: "Load a JSON export into the offline index",
	Long: `Loads posts and files from a JSON export into the offline index used
when search.backend is "local". Pass - to read from stdin.

Records with an id already in the index replace the stored copy.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return fmt.Errorf("index service %w", errNotConfigured)
	}

	var r io.Reader
	if args[0] == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening export: %w", err)
		}
		defer f.Close()
		r = f
	}

	stats, err := indexService.Import(cmd.Context(), r)
	if err != nil {
		return err
	}
	cmd.Printf("Imported %d posts and %d files.\n", stats.Posts, stats.Files)
	return nil
}
