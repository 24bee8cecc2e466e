package domain

import "time"

// FileInfo describes a file attached to a post.
type FileInfo struct {
	// ID is the server-assigned file identifier.
	ID string `json:"id"`

	// PostID is the post the file is attached to.
	PostID string `json:"post_id"`

	// ChannelID is the channel owning the post.
	ChannelID string `json:"channel_id"`

	// Name is the original file name.
	Name string `json:"name"`

	// Extension is the lower-case extension without the dot.
	Extension string `json:"extension"`

	// MimeType is the detected content type.
	MimeType string `json:"mime_type,omitempty"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// CreatedAt is when the file was uploaded.
	CreatedAt time.Time `json:"created_at"`
}

// PostSearchResult is the response of a post search.
type PostSearchResult struct {
	// Order holds post identifiers in server relevance order.
	Order []string
}

// FileSearchResult is the response of a file search.
type FileSearchResult struct {
	// Files holds the matching files in server order.
	Files []FileInfo

	// ChannelIDs holds the channels owning the matching files.
	ChannelIDs []string
}

// ResultSet is the aggregated outcome of the last committed search.
// Slices are never nil so callers can range and marshal without checks.
type ResultSet struct {
	// PostIDs holds unique post identifiers in relevance order.
	PostIDs []string `json:"post_ids"`

	// Files holds the matching files for the active filter.
	Files []FileInfo `json:"files"`

	// FileChannelIDs holds the distinct channels of Files.
	FileChannelIDs []string `json:"file_channel_ids"`
}

// EmptyResultSet returns a result set with empty, non-nil slices.
func EmptyResultSet() ResultSet {
	return ResultSet{
		PostIDs:        []string{},
		Files:          []FileInfo{},
		FileChannelIDs: []string{},
	}
}

// IsEmpty returns true if neither posts nor files matched.
func (r ResultSet) IsEmpty() bool {
	return len(r.PostIDs) == 0 && len(r.Files) == 0
}

// Clone returns a deep copy so snapshots never share backing arrays.
func (r ResultSet) Clone() ResultSet {
	return ResultSet{
		PostIDs:        append([]string{}, r.PostIDs...),
		Files:          append([]FileInfo{}, r.Files...),
		FileChannelIDs: append([]string{}, r.FileChannelIDs...),
	}
}

// UniqueStrings drops empty and repeated values, keeping first-seen order.
// The result is never nil.
func UniqueStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
