package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// IndexWriter loads exported posts and files into the offline index.
type IndexWriter interface {
	// Import reads a JSON export and stores its rows under serverURL.
	// Malformed input returns domain.ErrInvalidInput.
	Import(ctx context.Context, serverURL string, r io.Reader) (domain.ImportStats, error)
}
