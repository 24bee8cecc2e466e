package chatapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

var _ driven.FileTransfer = (*Client)(nil)

// Download streams a file's content into w.
func (c *Client) Download(ctx context.Context, serverURL, fileID string, w io.Writer) error {
	target, err := endpoint(serverURL, "files", fileID)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("reading file %s: %w", fileID, err)
	}
	return nil
}

// PublicLink returns the shareable link for a file.
// The server answers 501 when public links are disabled.
func (c *Client) PublicLink(ctx context.Context, serverURL, fileID string) (string, error) {
	target, err := endpoint(serverURL, "files", fileID, "link")
	if err != nil {
		return "", err
	}

	var out struct {
		Link string `json:"link"`
	}
	if err := c.doJSON(ctx, http.MethodGet, target, nil, &out); err != nil {
		return "", err
	}
	if out.Link == "" {
		return "", fmt.Errorf("empty link for file %s", fileID)
	}
	return out.Link, nil
}
