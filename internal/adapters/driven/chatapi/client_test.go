package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// recordedRequest captures what the fake server received.
type recordedRequest struct {
	Method    string
	Path      string
	Auth      string
	RequestID string
	Body      searchBody
}

// fakeServer serves canned responses per path and records requests.
type fakeServer struct {
	mu       sync.Mutex
	requests []recordedRequest
	handlers map[string]http.HandlerFunc
}

func newFakeServer(t *testing.T, handlers map[string]http.HandlerFunc) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{handlers: handlers}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			Auth:      r.Header.Get("Authorization"),
			RequestID: r.Header.Get("X-Request-ID"),
		}
		if r.Body != nil && r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		fs.mu.Lock()
		fs.requests = append(fs.requests, rec)
		fs.mu.Unlock()

		h, ok := fs.handlers[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"id":"api.context.404.app_error","message":"Sorry, we could not find the page."}`))
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return fs, srv
}

func (f *fakeServer) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest{}, f.requests...)
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestClient_SearchPosts(t *testing.T) {
	fs, srv := newFakeServer(t, map[string]http.HandlerFunc{
		"/api/v4/teams/team1/posts/search": jsonHandler(`{"order":["p1","p2"],"posts":{"p1":{},"p2":{}}}`),
	})
	client := NewClient(Config{Token: "tok"})

	got, err := client.SearchPosts(context.Background(), srv.URL+"/", "team1",
		domain.SearchRequest{Terms: "hello", IsOrSearch: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, got.Order)

	reqs := fs.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "Bearer tok", reqs[0].Auth)
	assert.NotEmpty(t, reqs[0].RequestID)
	assert.Equal(t, "hello", reqs[0].Body.Terms)
	assert.True(t, reqs[0].Body.IsOrSearch)
	assert.Equal(t, searchPageSize, reqs[0].Body.PerPage)
}

func TestClient_SearchFiles(t *testing.T) {
	fs, srv := newFakeServer(t, map[string]http.HandlerFunc{
		"/api/v4/teams/team1/files/search": jsonHandler(`{
			"order": ["f2", "f1", "ghost", "f3"],
			"file_infos": {
				"f1": {"id": "f1", "post_id": "p1", "channel_id": "c1", "name": "a.png", "extension": "png", "size": 5, "create_at": 1767261600000},
				"f2": {"id": "f2", "post_id": "p2", "channel_id": "c2", "name": "b.pdf", "extension": "pdf", "mime_type": "application/pdf"},
				"f3": {"id": "f3", "post_id": "p3", "channel_id": "c1", "name": "c.png", "extension": "png"}
			}
		}`),
	})
	client := NewClient(Config{})

	req := domain.Normalize("cat", domain.FilterImages)
	got, err := client.SearchFiles(context.Background(), srv.URL, "team1", req)

	require.NoError(t, err)
	require.Len(t, got.Files, 3)
	assert.Equal(t, "f2", got.Files[0].ID)
	assert.Equal(t, "application/pdf", got.Files[0].MimeType)
	assert.Equal(t, "f1", got.Files[1].ID)
	assert.Equal(t, int64(5), got.Files[1].Size)
	assert.Equal(t, time.UnixMilli(1767261600000).UTC(), got.Files[1].CreatedAt)
	assert.True(t, got.Files[0].CreatedAt.IsZero())
	assert.Equal(t, []string{"c2", "c1"}, got.ChannelIDs)

	reqs := fs.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, req.Terms, reqs[0].Body.Terms)
	assert.Empty(t, reqs[0].Auth, "no token, no auth header")
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrForbidden},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusBadRequest, domain.ErrInvalidInput},
		{http.StatusNotImplemented, domain.ErrForbidden},
		{http.StatusBadGateway, domain.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			_, srv := newFakeServer(t, map[string]http.HandlerFunc{
				"/api/v4/teams/team1/posts/search": func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(`{"id":"app.error","message":"nope"}`))
				},
			})

			_, err := NewClient(Config{}).SearchPosts(context.Background(), srv.URL, "team1",
				domain.SearchRequest{Terms: "x"})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "app.error", apiErr.ID)
			assert.Equal(t, "nope", apiErr.Message)
			assert.NotEmpty(t, apiErr.RequestID)
		})
	}
}

func TestClient_RateLimitedBacksOff(t *testing.T) {
	_, srv := newFakeServer(t, map[string]http.HandlerFunc{
		"/api/v4/teams/team1/posts/search": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
		},
	})
	client := NewClient(Config{})

	_, err := client.SearchPosts(context.Background(), srv.URL, "team1", domain.SearchRequest{Terms: "x"})
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	// The next request waits for the backoff and gives up with the context.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.SearchPosts(ctx, srv.URL, "team1", domain.SearchRequest{Terms: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_NoServer(t *testing.T) {
	client := NewClient(Config{})

	_, err := client.SearchPosts(context.Background(), "", "team1", domain.SearchRequest{Terms: "x"})
	assert.ErrorIs(t, err, domain.ErrNoServer)

	_, err = client.SearchFiles(context.Background(), "  ", "team1", domain.SearchRequest{Terms: "x"})
	assert.ErrorIs(t, err, domain.ErrNoServer)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(Config{}).SearchPosts(context.Background(), url, "team1", domain.SearchRequest{Terms: "x"})

	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestClient_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	_, srv := newFakeServer(t, map[string]http.HandlerFunc{
		"/api/v4/teams/team1/posts/search": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		},
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NewClient(Config{}).SearchPosts(ctx, srv.URL, "team1", domain.SearchRequest{Terms: "x"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Download(t *testing.T) {
	_, srv := newFakeServer(t, map[string]http.HandlerFunc{
		"/api/v4/files/f1": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("file body"))
		},
	})

	var buf bytes.Buffer
	err := NewClient(Config{Token: "tok"}).Download(context.Background(), srv.URL, "f1", &buf)

	require.NoError(t, err)
	assert.Equal(t, "file body", buf.String())
}

func TestClient_DownloadNotFound(t *testing.T) {
	_, srv := newFakeServer(t, nil)

	var buf bytes.Buffer
	err := NewClient(Config{}).Download(context.Background(), srv.URL, "missing", &buf)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, buf.Len())
}

func TestClient_PublicLink(t *testing.T) {
	_, srv := newFakeServer(t, map[string]http.HandlerFunc{
		"/api/v4/files/f1/link": jsonHandler(`{"link":"https://chat.example.com/files/f1/public?h=abc"}`),
		"/api/v4/files/f2/link": jsonHandler(`{}`),
	})
	client := NewClient(Config{})

	link, err := client.PublicLink(context.Background(), srv.URL, "f1")
	require.NoError(t, err)
	assert.Equal(t, "https://chat.example.com/files/f1/public?h=abc", link)

	_, err = client.PublicLink(context.Background(), srv.URL, "f2")
	assert.Error(t, err)
}

func TestEndpoint_EscapesSegments(t *testing.T) {
	got, err := endpoint("https://chat.example.com/", "teams", "a/b", "posts", "search")

	require.NoError(t, err)
	assert.Equal(t, "https://chat.example.com/api/v4/teams/a%2Fb/posts/search", got)
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, retryAfter("5"))
	assert.Equal(t, time.Duration(0), retryAfter(""))
	assert.Equal(t, time.Duration(0), retryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}

func TestRateLimiter_Unlimited(t *testing.T) {
	r := NewRateLimiter(0)

	for i := 0; i < 100; i++ {
		require.NoError(t, r.Wait(context.Background()))
	}
}
