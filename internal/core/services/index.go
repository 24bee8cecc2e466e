package services

import (
	"context"
	"fmt"
	"io"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-chat/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService imports exports into the offline index of one server.
type IndexService struct {
	writer    driven.IndexWriter
	serverURL string
}

// NewIndexService creates an index service.
func NewIndexService(writer driven.IndexWriter, serverURL string) *IndexService {
	return &IndexService{writer: writer, serverURL: serverURL}
}

// Import loads a JSON export for the configured server.
func (s *IndexService) Import(ctx context.Context, r io.Reader) (domain.ImportStats, error) {
	if s.serverURL == "" {
		return domain.ImportStats{}, domain.ErrNoServer
	}

	stats, err := s.writer.Import(ctx, s.serverURL, r)
	if err != nil {
		return domain.ImportStats{}, fmt.Errorf("import: %w", err)
	}

	logger.Info("Imported %d posts and %d files for %s", stats.Posts, stats.Files, s.serverURL)
	return stats, nil
}
