package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoTeam indicates a search was attempted without a team.
	ErrNoTeam = errors.New("no team selected")

	// ErrNoServer indicates the chat server URL is not configured.
	ErrNoServer = errors.New("server url not configured")

	// Remote Errors.

	// ErrUnauthorized indicates the server rejected the access token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the operation is not permitted for this user,
	// either by the server or by the current file capabilities.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates the search backend could not be reached.
	ErrUnavailable = errors.New("search backend unavailable")
)
