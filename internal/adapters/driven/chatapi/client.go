package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/logger"
)

const (
	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 << 10

	apiPrefix = "/api/v4"
)

var log = logger.Named("chatapi")

// Config configures a Client.
type Config struct {
	// Token is the personal access or session token.
	Token string

	// RatePerSecond limits request throughput. Zero disables limiting.
	RatePerSecond float64

	// UserAgent is sent with every request.
	UserAgent string

	// BaseTransport is the transport under the auth layer. Defaults to
	// http.DefaultTransport.
	BaseTransport http.RoundTripper
}

// Client talks to the chat server's REST API.
// Requests are bounded by their context only, so downloads of large files
// are not cut short.
type Client struct {
	http        *http.Client
	rateLimiter *RateLimiter
	userAgent   string
}

// NewClient creates a client. An empty token sends unauthenticated requests.
func NewClient(cfg Config) *Client {
	base := cfg.BaseTransport
	if base == nil {
		base = http.DefaultTransport
	}

	var transport http.RoundTripper = base
	if cfg.Token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}),
			Base:   base,
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "sercha-chat"
	}

	return &Client{
		http:        &http.Client{Transport: transport},
		rateLimiter: NewRateLimiter(cfg.RatePerSecond),
		userAgent:   userAgent,
	}
}

// endpoint joins the server URL with an API path.
func endpoint(serverURL string, segments ...string) (string, error) {
	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if serverURL == "" {
		return "", domain.ErrNoServer
	}
	if _, err := url.Parse(serverURL); err != nil {
		return "", fmt.Errorf("%w: server url: %v", domain.ErrInvalidInput, err)
	}

	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return serverURL + apiPrefix + "/" + strings.Join(escaped, "/"), nil
}

// do sends a request and returns the response for 2xx statuses.
// Any other status is returned as an *APIError with the body closed.
func (c *Client) do(ctx context.Context, method, target string, body any) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug("%s %s (%s)", method, target, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: requestID}
	var payload struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	if data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); readErr == nil {
		if json.Unmarshal(data, &payload) == nil {
			apiErr.ID = payload.ID
			apiErr.Message = payload.Message
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		c.rateLimiter.RecordRateLimitError(retryAfter(resp.Header.Get("Retry-After")))
	}

	log.Debug("%s %s failed: %v", method, target, apiErr)
	return nil, apiErr
}

// doJSON sends a request and decodes a JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, target string, body, out any) error {
	resp, err := c.do(ctx, method, target, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
