package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

var downloadName string

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Act on file results",
}

var filesDownloadCmd = &cobra.Command{
	Use:   "download [file-id]",
	Short: "Download a file",
	Long: `Downloads a file into files.download_dir (default ~/Downloads).
An existing file is never overwritten; a numbered name is used instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runFilesDownload,
}

var filesLinkCmd = &cobra.Command{
	Use:   "link [file-id]",
	Short: "Print a public link to a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilesLink,
}

func init() {
	filesDownloadCmd.Flags().StringVar(&downloadName, "name", "", "file name to save as (default: file id)")
	filesCmd.AddCommand(filesDownloadCmd)
	filesCmd.AddCommand(filesLinkCmd)
	rootCmd.AddCommand(filesCmd)
}

func runFilesDownload(cmd *cobra.Command, args []string) error {
	if fileService == nil {
		return fmt.Errorf("file service %w", errNotConfigured)
	}
	path, err := fileService.Download(cmd.Context(), domain.FileInfo{ID: args[0], Name: downloadName})
	if err != nil {
		return err
	}
	cmd.Printf("Saved %s\n", path)
	return nil
}

func runFilesLink(cmd *cobra.Command, args []string) error {
	if fileService == nil {
		return fmt.Errorf("file service %w", errNotConfigured)
	}
	link, err := fileService.PublicLink(cmd.Context(), domain.FileInfo{ID: args[0]})
	if err != nil {
		return err
	}
	cmd.Println(link)
	return nil
}
