package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// IndexService fills the offline index used by the local backend.
type IndexService interface {
	// Import loads a JSON export for the configured server.
	Import(ctx context.Context, r io.Reader) (domain.ImportStats, error)
}
