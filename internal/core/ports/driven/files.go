package driven

import (
	"context"
	"io"
)

// FileTransfer fetches file content and links from the chat server.
type FileTransfer interface {
	// Download streams the file content into w.
	Download(ctx context.Context, serverURL, fileID string, w io.Writer) error

	// PublicLink returns a shareable link for the file.
	PublicLink(ctx context.Context, serverURL, fileID string) (string, error)
}
