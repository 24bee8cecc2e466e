package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
)

// maxIndexResults caps the rows returned by one offline search.
const maxIndexResults = 200

// Index searches an offline copy of posts and files.
// It serves as both searchers when the local backend is selected.
type Index struct {
	store *Store
}

var (
	_ driven.PostSearcher = (*Index)(nil)
	_ driven.FileSearcher = (*Index)(nil)
	_ driven.IndexWriter  = (*Index)(nil)
)

// ExportPost is a post in an import document.
type ExportPost struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"team_id"`
	ChannelID string    `json:"channel_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportFile is a file in an import document.
type ExportFile struct {
	domain.FileInfo
	TeamID string `json:"team_id"`
}

// Export is the JSON document accepted by Import.
type Export struct {
	Posts []ExportPost `json:"posts"`
	Files []ExportFile `json:"files"`
}

// SearchPosts matches post messages against the words of the request,
// newest first. File qualifiers do not apply to posts.
func (x *Index) SearchPosts(
	ctx context.Context, serverURL, teamID string, req domain.SearchRequest,
) (domain.PostSearchResult, error) {
	terms := domain.ParseTerms(req.Terms)
	if len(terms.Words) == 0 {
		return domain.PostSearchResult{Order: []string{}}, nil
	}

	where, args := wordClause("message", terms.Words, req.IsOrSearch)
	query := `SELECT id FROM posts WHERE server_url = ? AND team_id = ? AND ` + where +
		` ORDER BY created_at DESC, id LIMIT ?`
	args = append([]any{serverURL, teamID}, args...)
	args = append(args, maxIndexResults)

	rows, err := x.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.PostSearchResult{}, fmt.Errorf("searching posts: %w", err)
	}
	defer rows.Close()

	order := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return domain.PostSearchResult{}, fmt.Errorf("scanning post: %w", err)
		}
		order = append(order, id)
	}
	if err := rows.Err(); err != nil {
		return domain.PostSearchResult{}, fmt.Errorf("iterating posts: %w", err)
	}
	return domain.PostSearchResult{Order: order}, nil
}

// SearchFiles matches file names against the words of the request and
// applies ext: and -ext: qualifiers, newest first.
func (x *Index) SearchFiles(
	ctx context.Context, serverURL, teamID string, req domain.SearchRequest,
) (domain.FileSearchResult, error) {
	empty := domain.FileSearchResult{Files: []domain.FileInfo{}, ChannelIDs: []string{}}

	terms := domain.ParseTerms(req.Terms)
	if len(terms.Words) == 0 && len(terms.Include) == 0 {
		return empty, nil
	}

	query := `SELECT id, post_id, channel_id, name, extension, mime_type, size, created_at
		FROM files WHERE server_url = ? AND team_id = ?`
	args := []any{serverURL, teamID}
	if len(terms.Words) > 0 {
		where, wordArgs := wordClause("name", terms.Words, req.IsOrSearch)
		query += ` AND ` + where
		args = append(args, wordArgs...)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := x.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.FileSearchResult{}, fmt.Errorf("searching files: %w", err)
	}
	defer rows.Close()

	result := empty
	var channels []string
	for rows.Next() {
		var f domain.FileInfo
		var createdAt int64
		if err := rows.Scan(&f.ID, &f.PostID, &f.ChannelID, &f.Name, &f.Extension,
			&f.MimeType, &f.Size, &createdAt); err != nil {
			return domain.FileSearchResult{}, fmt.Errorf("scanning file: %w", err)
		}
		if !terms.AllowsExtension(f.Extension) {
			continue
		}
		f.CreatedAt = fromMillis(createdAt)
		result.Files = append(result.Files, f)
		channels = append(channels, f.ChannelID)
		if len(result.Files) == maxIndexResults {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return domain.FileSearchResult{}, fmt.Errorf("iterating files: %w", err)
	}

	result.ChannelIDs = domain.UniqueStrings(channels)
	return result, nil
}

// Import loads an Export document for serverURL in one transaction.
// Existing rows with the same ID are replaced.
func (x *Index) Import(ctx context.Context, serverURL string, r io.Reader) (domain.ImportStats, error) {
	var doc Export
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return domain.ImportStats{}, fmt.Errorf("%w: decoding export: %v", domain.ErrInvalidInput, err)
	}

	tx, err := x.store.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ImportStats{}, fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var stats domain.ImportStats
	for _, p := range doc.Posts {
		if p.ID == "" || p.TeamID == "" {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO posts (id, server_url, team_id, channel_id, message, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.ID, serverURL, p.TeamID, p.ChannelID, p.Message, millis(p.CreatedAt))
		if err != nil {
			return domain.ImportStats{}, fmt.Errorf("importing post %s: %w", p.ID, err)
		}
		stats.Posts++
	}

	for _, f := range doc.Files {
		if f.ID == "" || f.TeamID == "" {
			continue
		}
		ext := strings.TrimPrefix(strings.ToLower(f.Extension), ".")
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO files
				(id, server_url, team_id, post_id, channel_id, name, extension, mime_type, size, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, f.ID, serverURL, f.TeamID, f.PostID, f.ChannelID, f.Name, ext, f.MimeType, f.Size,
			millis(f.CreatedAt))
		if err != nil {
			return domain.ImportStats{}, fmt.Errorf("importing file %s: %w", f.ID, err)
		}
		stats.Files++
	}

	if err := tx.Commit(); err != nil {
		return domain.ImportStats{}, fmt.Errorf("committing import: %w", err)
	}
	return stats, nil
}

// wordClause builds a parenthesised LIKE condition over column for words,
// joined with OR or AND.
func wordClause(column string, words []string, or bool) (string, []any) {
	joiner := " AND "
	if or {
		joiner = " OR "
	}
	parts := make([]string, len(words))
	args := make([]any, len(words))
	for i, w := range words {
		parts[i] = column + ` LIKE ? ESCAPE '\'`
		args[i] = likePattern(w)
	}
	return "(" + strings.Join(parts, joiner) + ")", args
}
