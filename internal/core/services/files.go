package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-chat/internal/logger"
)

// Ensure FileActionService implements the interface.
var _ driving.FileActionService = (*FileActionService)(nil)

// maxNameAttempts bounds the search for a free download file name.
const maxNameAttempts = 100

// FileActionService performs file options gated by capabilities.
type FileActionService struct {
	transfer    driven.FileTransfer
	serverURL   string
	downloadDir string

	mu   sync.RWMutex
	caps domain.Capabilities
}

// NewFileActionService creates a file action service.
// If downloadDir is empty, files go to ~/Downloads.
func NewFileActionService(
	transfer driven.FileTransfer,
	serverURL, downloadDir string,
	caps domain.Capabilities,
) *FileActionService {
	return &FileActionService{
		transfer:    transfer,
		serverURL:   serverURL,
		downloadDir: downloadDir,
		caps:        caps,
	}
}

// Options returns the options allowed by the current capabilities.
func (s *FileActionService) Options() []domain.FileOption {
	return s.capabilities().FileOptions()
}

// SetCapabilities replaces the current capabilities.
func (s *FileActionService) SetCapabilities(caps domain.Capabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caps = caps
}

// Download saves the file into the download directory and returns its path.
// An existing file is never overwritten; a numbered name is chosen instead.
func (s *FileActionService) Download(ctx context.Context, file domain.FileInfo) (string, error) {
	if !s.capabilities().CanDownloadFiles {
		return "", fmt.Errorf("download: %w", domain.ErrForbidden)
	}
	if s.transfer == nil {
		return "", fmt.Errorf("download: %w", domain.ErrUnavailable)
	}

	dir, err := s.resolveDownloadDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".sercha-download-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	if err := s.transfer.Download(ctx, s.serverURL, file.ID, tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("download %s: %w", file.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	target, err := reserveName(dir, downloadName(file))
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(target) //nolint:errcheck // drop the empty reservation
		return "", fmt.Errorf("moving download into place: %w", err)
	}

	logger.Info("Downloaded %s to %s", file.ID, target)
	return target, nil
}

// PublicLink returns a shareable link for the file.
func (s *FileActionService) PublicLink(ctx context.Context, file domain.FileInfo) (string, error) {
	if !s.capabilities().PublicLinkEnabled {
		return "", fmt.Errorf("public link: %w", domain.ErrForbidden)
	}
	if s.transfer == nil {
		return "", fmt.Errorf("public link: %w", domain.ErrUnavailable)
	}

	link, err := s.transfer.PublicLink(ctx, s.serverURL, file.ID)
	if err != nil {
		return "", fmt.Errorf("public link %s: %w", file.ID, err)
	}
	return link, nil
}

func (s *FileActionService) capabilities() domain.Capabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caps
}

func (s *FileActionService) resolveDownloadDir() (string, error) {
	if s.downloadDir != "" {
		return s.downloadDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, "Downloads"), nil
}

// downloadName strips any directory part from the server-provided name.
func downloadName(file domain.FileInfo) string {
	name := filepath.Base(strings.ReplaceAll(file.Name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = file.ID
		if file.Extension != "" {
			name += "." + file.Extension
		}
	}
	return name
}

// reserveName creates an empty file in dir for name, or for the first
// numbered variant that does not exist yet, and returns its path.
// Creation is exclusive, so concurrent callers never get the same path.
func reserveName(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(dir, name)
	for i := 1; i <= maxNameAttempts; i++ {
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			if err := f.Close(); err != nil {
				return "", fmt.Errorf("reserving %s: %w", candidate, err)
			}
			return candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("reserving %s: %w", candidate, err)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
	}
	return "", fmt.Errorf("no free file name for %q in %s", name, dir)
}
