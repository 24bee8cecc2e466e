// Package chatapi is an HTTP client for the chat server's REST API (v4).
//
// It implements the driven search ports (PostSearcher, FileSearcher) and
// FileTransfer. Requests carry the configured access token as a bearer
// token, a per-request X-Request-ID, and pass through a client-side rate
// limiter that backs off when the server answers 429.
//
// Endpoints used:
//
//	POST /api/v4/teams/{team_id}/posts/search
//	POST /api/v4/teams/{team_id}/files/search
//	GET  /api/v4/files/{file_id}
//	GET  /api/v4/files/{file_id}/link
package chatapi
