package chatapi

import (
	"context"
	"net/http"
	"time"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

// searchPageSize is the number of results requested per search.
const searchPageSize = 100

var (
	_ driven.PostSearcher = (*Client)(nil)
	_ driven.FileSearcher = (*Client)(nil)
)

// searchBody is the request body shared by post and file search.
type searchBody struct {
	Terms                  string `json:"terms"`
	IsOrSearch             bool   `json:"is_or_search"`
	TimeZoneOffset         int    `json:"time_zone_offset"`
	IncludeDeletedChannels bool   `json:"include_deleted_channels"`
	Page                   int    `json:"page"`
	PerPage                int    `json:"per_page"`
}

func newSearchBody(req domain.SearchRequest) searchBody {
	_, offset := time.Now().Zone()
	return searchBody{
		Terms:          req.Terms,
		IsOrSearch:     req.IsOrSearch,
		TimeZoneOffset: offset,
		PerPage:        searchPageSize,
	}
}

// postList is the post search response. Posts are not needed: the order
// identifies them.
type postList struct {
	Order []string `json:"order"`
}

// fileInfo is a file as returned by the server.
type fileInfo struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	ChannelID string `json:"channel_id"`
	Name      string `json:"name"`
	Extension string `json:"extension"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	CreateAt  int64  `json:"create_at"`
}

func (f fileInfo) toDomain() domain.FileInfo {
	info := domain.FileInfo{
		ID:        f.ID,
		PostID:    f.PostID,
		ChannelID: f.ChannelID,
		Name:      f.Name,
		Extension: f.Extension,
		MimeType:  f.MimeType,
		Size:      f.Size,
	}
	if f.CreateAt > 0 {
		info.CreatedAt = time.UnixMilli(f.CreateAt).UTC()
	}
	return info
}

// fileInfoList is the file search response.
type fileInfoList struct {
	Order     []string            `json:"order"`
	FileInfos map[string]fileInfo `json:"file_infos"`
}

// SearchPosts searches messages in a team.
func (c *Client) SearchPosts(
	ctx context.Context, serverURL, teamID string, req domain.SearchRequest,
) (domain.PostSearchResult, error) {
	target, err := endpoint(serverURL, "teams", teamID, "posts", "search")
	if err != nil {
		return domain.PostSearchResult{}, err
	}

	var list postList
	if err := c.doJSON(ctx, http.MethodPost, target, newSearchBody(req), &list); err != nil {
		return domain.PostSearchResult{}, err
	}
	return domain.PostSearchResult{Order: list.Order}, nil
}

// SearchFiles searches files in a team. Files listed in the order but
// missing from the info map are skipped.
func (c *Client) SearchFiles(
	ctx context.Context, serverURL, teamID string, req domain.SearchRequest,
) (domain.FileSearchResult, error) {
	target, err := endpoint(serverURL, "teams", teamID, "files", "search")
	if err != nil {
		return domain.FileSearchResult{}, err
	}

	var list fileInfoList
	if err := c.doJSON(ctx, http.MethodPost, target, newSearchBody(req), &list); err != nil {
		return domain.FileSearchResult{}, err
	}

	files := make([]domain.FileInfo, 0, len(list.Order))
	channels := make([]string, 0, len(list.Order))
	for _, id := range list.Order {
		info, ok := list.FileInfos[id]
		if !ok {
			continue
		}
		files = append(files, info.toDomain())
		channels = append(channels, info.ChannelID)
	}

	return domain.FileSearchResult{
		Files:      files,
		ChannelIDs: domain.UniqueStrings(channels),
	}, nil
}
