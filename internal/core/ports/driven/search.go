package driven

import (
	"context"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// PostSearcher searches messages.
// Implementations may return a nil Order for no results.
type PostSearcher interface {
	// SearchPosts returns matching post identifiers in relevance order.
	SearchPosts(ctx context.Context, serverURL, teamID string, req domain.SearchRequest) (domain.PostSearchResult, error)
}

// FileSearcher searches files attached to messages.
type FileSearcher interface {
	// SearchFiles returns matching files and the channels that own them.
	SearchFiles(ctx context.Context, serverURL, teamID string, req domain.SearchRequest) (domain.FileSearchResult, error)
}
