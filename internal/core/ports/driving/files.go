package driving

import (
	"context"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// FileActionService performs file options on file results.
type FileActionService interface {
	// Options returns the options allowed by the current capabilities.
	Options() []domain.FileOption

	// Download saves the file into the download directory and returns its path.
	Download(ctx context.Context, file domain.FileInfo) (string, error)

	// PublicLink returns a shareable link for the file.
	PublicLink(ctx context.Context, file domain.FileInfo) (string, error)

	// SetCapabilities replaces the current capabilities.
	SetCapabilities(caps domain.Capabilities)
}
