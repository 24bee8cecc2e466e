package chatapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// APIError represents a non-2xx response from the chat server.
type APIError struct {
	StatusCode int
	ID         string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.ID != "" {
		return fmt.Sprintf("chat api: %d %s (%s)", e.StatusCode, msg, e.ID)
	}
	return fmt.Sprintf("chat api: %d %s", e.StatusCode, msg)
}

// Unwrap maps the status code onto a domain error so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return domain.ErrForbidden
	case e.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case e.StatusCode == http.StatusNotImplemented:
		// Feature disabled by the server, such as public links.
		return domain.ErrForbidden
	case e.StatusCode == http.StatusBadRequest:
		return domain.ErrInvalidInput
	case e.StatusCode >= 500:
		return domain.ErrUnavailable
	default:
		return nil
	}
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}
