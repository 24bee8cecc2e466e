package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// --- Mock implementations ---

type searchCall struct {
	serverURL string
	teamID    string
	req       domain.SearchRequest
}

// mockPostSearcher implements driven.PostSearcher for testing.
type mockPostSearcher struct {
	mu         sync.Mutex
	calls      []searchCall
	SearchFunc func(ctx context.Context, teamID string, req domain.SearchRequest) (domain.PostSearchResult, error)
}

func (m *mockPostSearcher) SearchPosts(
	ctx context.Context, serverURL, teamID string, req domain.SearchRequest,
) (domain.PostSearchResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, searchCall{serverURL: serverURL, teamID: teamID, req: req})
	m.mu.Unlock()
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, teamID, req)
	}
	return domain.PostSearchResult{}, nil
}

func (m *mockPostSearcher) Calls() []searchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]searchCall{}, m.calls...)
}

// mockFileSearcher implements driven.FileSearcher for testing.
type mockFileSearcher struct {
	mu         sync.Mutex
	calls      []searchCall
	SearchFunc func(ctx context.Context, teamID string, req domain.SearchRequest) (domain.FileSearchResult, error)
}

func (m *mockFileSearcher) SearchFiles(
	ctx context.Context, serverURL, teamID string, req domain.SearchRequest,
) (domain.FileSearchResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, searchCall{serverURL: serverURL, teamID: teamID, req: req})
	m.mu.Unlock()
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, teamID, req)
	}
	return domain.FileSearchResult{}, nil
}

func (m *mockFileSearcher) Calls() []searchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]searchCall{}, m.calls...)
}

// mockHistoryStore implements driven.HistoryStore for testing.
type mockHistoryStore struct {
	mu        sync.Mutex
	recorded  []searchCall
	recordErr error
}

func (m *mockHistoryStore) Record(_ context.Context, serverURL, teamID, term string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, searchCall{serverURL: serverURL, teamID: teamID, req: domain.SearchRequest{Terms: term}})
	return m.recordErr
}

func (m *mockHistoryStore) List(_ context.Context, _, _ string, _ int) ([]domain.RecentSearch, error) {
	return nil, nil
}

func (m *mockHistoryStore) Remove(_ context.Context, _ string) error {
	return nil
}

func (m *mockHistoryStore) Recorded() []searchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]searchCall{}, m.recorded...)
}

// snapshotRecorder collects published snapshots.
type snapshotRecorder struct {
	mu    sync.Mutex
	snaps []domain.Snapshot
}

func (r *snapshotRecorder) record(s domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *snapshotRecorder) all() []domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Snapshot{}, r.snaps...)
}

func newTestOrchestrator(
	posts *mockPostSearcher, files *mockFileSearcher, history *mockHistoryStore,
) *Orchestrator {
	o := NewOrchestrator(posts, files, nil, OrchestratorConfig{
		ServerURL: "https://chat.example.com",
		TeamID:    "team1",
	})
	// A nil *mockHistoryStore must not become a non-nil interface.
	if history != nil {
		o.history = history
	}
	return o
}

func staticPosts(order ...string) *mockPostSearcher {
	return &mockPostSearcher{
		SearchFunc: func(_ context.Context, _ string, _ domain.SearchRequest) (domain.PostSearchResult, error) {
			return domain.PostSearchResult{Order: order}, nil
		},
	}
}

func staticFiles(files ...domain.FileInfo) *mockFileSearcher {
	return &mockFileSearcher{
		SearchFunc: func(_ context.Context, _ string, _ domain.SearchRequest) (domain.FileSearchResult, error) {
			return domain.FileSearchResult{Files: files}, nil
		},
	}
}

// --- Submit ---

func TestOrchestrator_SubmitBlankCancels(t *testing.T) {
	posts := staticPosts("p1")
	files := staticFiles()
	cancelled := 0
	o := NewOrchestrator(posts, files, nil, OrchestratorConfig{
		TeamID:   "team1",
		OnCancel: func() { cancelled++ },
	})

	for _, text := range []string{"", "   "} {
		out, err := o.Submit(context.Background(), text)

		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeCancelled, out.Status)
	}

	assert.Empty(t, posts.Calls())
	assert.Empty(t, files.Calls())
	assert.Equal(t, 2, cancelled)

	snap := o.Snapshot()
	assert.Equal(t, domain.StateInitial, snap.State)
	assert.Empty(t, snap.LastSearched)
	assert.Empty(t, snap.Query.Text)
	assert.Equal(t, domain.FilterAll, snap.Filter)
	assert.Equal(t, "team1", snap.TeamID)
}

func TestOrchestrator_SubmitCommitsBothResults(t *testing.T) {
	posts := staticPosts("p1", "p2")
	files := &mockFileSearcher{
		SearchFunc: func(_ context.Context, _ string, _ domain.SearchRequest) (domain.FileSearchResult, error) {
			return domain.FileSearchResult{Files: []domain.FileInfo{}, ChannelIDs: []string{}}, nil
		},
	}
	o := newTestOrchestrator(posts, files, nil)

	out, err := o.Submit(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCommitted, out.Status)
	assert.Equal(t, domain.ResultSet{
		PostIDs:        []string{"p1", "p2"},
		Files:          []domain.FileInfo{},
		FileChannelIDs: []string{},
	}, out.Results)

	snap := o.Snapshot()
	assert.Equal(t, "hello", snap.LastSearched)
	assert.Equal(t, domain.StateResults, snap.State)
	assert.False(t, snap.Busy())
	assert.Equal(t, out.Results, snap.Results)

	require.Len(t, posts.Calls(), 1)
	require.Len(t, files.Calls(), 1)
	assert.Equal(t, searchCall{
		serverURL: "https://chat.example.com",
		teamID:    "team1",
		req:       domain.SearchRequest{Terms: "hello", IsOrSearch: true},
	}, posts.Calls()[0])
	assert.Equal(t, "hello", files.Calls()[0].req.Terms)
}

func TestOrchestrator_SubmitFileFailureDegrades(t *testing.T) {
	posts := staticPosts("p1")
	files := &mockFileSearcher{
		SearchFunc: func(_ context.Context, _ string, _ domain.SearchRequest) (domain.FileSearchResult, error) {
			return domain.FileSearchResult{}, errors.New("connection refused")
		},
	}
	o := newTestOrchestrator(posts, files, nil)

	out, err := o.Submit(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCommitted, out.Status)
	assert.Equal(t, []string{"p1"}, out.Results.PostIDs)
	assert.NotNil(t, out.Results.Files)
	assert.Empty(t, out.Results.Files)
}

func TestOrchestrator_SubmitPostFailureDegrades(t *testing.T) {
	posts := &mockPostSearcher{
		SearchFunc: func(_ context.Context, _ string, _ domain.SearchRequest) (domain.PostSearchResult, error) {
			return domain.PostSearchResult{}, domain.ErrUnavailable
		},
	}
	files := staticFiles(domain.FileInfo{ID: "f1", ChannelID: "c1"}, domain.FileInfo{ID: "f2", ChannelID: "c1"})
	o := newTestOrchestrator(posts, files, nil)

	out, err := o.Submit(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []string{}, out.Results.PostIDs)
	assert.Len(t, out.Results.Files, 2)
	assert.Equal(t, []string{"c1"}, out.Results.FileChannelIDs)
}

func TestOrchestrator_SubmitNilResultsBecomeEmpty(t *testing.T) {
	o := newTestOrchestrator(&mockPostSearcher{}, &mockFileSearcher{}, nil)

	out, err := o.Submit(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, domain.EmptyResultSet(), out.Results)
}

func TestOrchestrator_SubmitDeduplicatesPostIDs(t *testing.T) {
	o := newTestOrchestrator(staticPosts("p1", "p2", "p1"), staticFiles(), nil)

	out, err := o.Submit(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, out.Results.PostIDs)
}

func TestOrchestrator_SubmitResetsFilter(t *testing.T) {
	files := staticFiles()
	o := newTestOrchestrator(staticPosts("p1"), files, nil)
	ctx := context.Background()

	_, err := o.Submit(ctx, "cat")
	require.NoError(t, err)
	_, err = o.ChangeFilter(ctx, domain.FilterImages)
	require.NoError(t, err)

	_, err = o.Submit(ctx, "dog")
	require.NoError(t, err)

	assert.Equal(t, domain.FilterAll, o.Snapshot().Filter)
	calls := files.Calls()
	assert.Equal(t, "dog", calls[len(calls)-1].req.Terms)
}

func TestOrchestrator_SubmitWithoutTeam(t *testing.T) {
	posts := staticPosts("p1")
	o := NewOrchestrator(posts, staticFiles(), nil, OrchestratorConfig{})

	_, err := o.Submit(context.Background(), "hello")

	assert.ErrorIs(t, err, domain.ErrNoTeam)
	assert.Empty(t, posts.Calls())
}

func TestOrchestrator_SubmitRecordsHistory(t *testing.T) {
	history := &mockHistoryStore{}
	o := newTestOrchestrator(staticPosts("p1"), staticFiles(), history)

	_, err := o.Submit(context.Background(), "hello")
	require.NoError(t, err)
	o.Wait()

	recorded := history.Recorded()
	require.Len(t, recorded, 1)
	assert.Equal(t, "team1", recorded[0].teamID)
	assert.Equal(t, "hello", recorded[0].req.Terms)
	assert.Equal(t, "https://chat.example.com", recorded[0].serverURL)
}

func TestOrchestrator_HistoryFailureIsIgnored(t *testing.T) {
	history := &mockHistoryStore{recordErr: errors.New("disk full")}
	o := newTestOrchestrator(staticPosts("p1"), staticFiles(), history)

	out, err := o.Submit(context.Background(), "hello")
	o.Wait()

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCommitted, out.Status)
	assert.Equal(t, []string{"p1"}, out.Results.PostIDs)
}

// TestOrchestrator_LoadingFlags tests the loading flag used before and after results exist
func TestOrchestrator_LoadingFlags(t *testing.T) {
	o := newTestOrchestrator(staticPosts("p1"), staticFiles(), nil)
	rec := &snapshotRecorder{}
	o.Subscribe(rec.record)
	ctx := context.Background()

	_, err := o.Submit(ctx, "first")
	require.NoError(t, err)

	var sawLoading bool
	for _, s := range rec.all() {
		if s.State == domain.StateLoading {
			sawLoading = true
			assert.True(t, s.Loading)
			assert.False(t, s.ResultsLoading)
		}
	}
	assert.True(t, sawLoading)

	rec.mu.Lock()
	rec.snaps = nil
	rec.mu.Unlock()

	_, err = o.Submit(ctx, "second")
	require.NoError(t, err)

	var sawResultsLoading bool
	for _, s := range rec.all() {
		if s.State == domain.StateLoading {
			sawResultsLoading = true
			assert.False(t, s.Loading)
			assert.True(t, s.ResultsLoading)
			assert.Equal(t, []string{"p1"}, s.Results.PostIDs, "previous results stay visible")
			assert.Equal(t, "first", s.LastSearched)
		}
	}
	assert.True(t, sawResultsLoading)
}

// TestOrchestrator_StaleSubmitDiscarded tests that a slow earlier search never overwrites a newer one
func TestOrchestrator_StaleSubmitDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	posts := &mockPostSearcher{
		SearchFunc: func(_ context.Context, _ string, req domain.SearchRequest) (domain.PostSearchResult, error) {
			if req.Terms == "first" {
				close(started)
				<-release
				return domain.PostSearchResult{Order: []string{"old"}}, nil
			}
			return domain.PostSearchResult{Order: []string{"new"}}, nil
		},
	}
	files := &mockFileSearcher{
		SearchFunc: func(_ context.Context, _ string, req domain.SearchRequest) (domain.FileSearchResult, error) {
			return domain.FileSearchResult{Files: []domain.FileInfo{{ID: req.Terms}}}, nil
		},
	}
	o := newTestOrchestrator(posts, files, nil)
	ctx := context.Background()

	firstDone := make(chan domain.Outcome, 1)
	go func() {
		out, err := o.Submit(ctx, "first")
		assert.NoError(t, err)
		firstDone <- out
	}()
	<-started

	second, err := o.Submit(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCommitted, second.Status)

	close(release)
	first := <-firstDone
	assert.Equal(t, domain.OutcomeSuperseded, first.Status)

	snap := o.Snapshot()
	assert.Equal(t, "second", snap.LastSearched)
	assert.Equal(t, []string{"new"}, snap.Results.PostIDs)
	require.Len(t, snap.Results.Files, 1)
	assert.Equal(t, "second", snap.Results.Files[0].ID)
	assert.Equal(t, domain.StateResults, snap.State)
	assert.False(t, snap.Busy())
}

// TestOrchestrator_SupersededRequestIsCancelled tests that the older request context is cancelled
func TestOrchestrator_SupersededRequestIsCancelled(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	posts := &mockPostSearcher{
		SearchFunc: func(ctx context.Context, _ string, req domain.SearchRequest) (domain.PostSearchResult, error) {
			if req.Terms == "slow" {
				close(started)
				<-ctx.Done()
				close(cancelled)
				return domain.PostSearchResult{}, ctx.Err()
			}
			return domain.PostSearchResult{Order: []string{"p"}}, nil
		},
	}
	o := newTestOrchestrator(posts, staticFiles(), nil)

	done := make(chan domain.Outcome, 1)
	go func() {
		out, _ := o.Submit(context.Background(), "slow")
		done <- out
	}()
	<-started

	_, err := o.Submit(context.Background(), "fast")
	require.NoError(t, err)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("superseded request was not cancelled")
	}
	assert.Equal(t, domain.OutcomeSuperseded, (<-done).Status)
	assert.Equal(t, "fast", o.Snapshot().LastSearched)
}

func TestOrchestrator_CallerContextCancelled(t *testing.T) {
	posts := &mockPostSearcher{
		SearchFunc: func(ctx context.Context, _ string, _ domain.SearchRequest) (domain.PostSearchResult, error) {
			<-ctx.Done()
			return domain.PostSearchResult{}, ctx.Err()
		},
	}
	o := newTestOrchestrator(posts, staticFiles(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	_, err := o.Submit(ctx, "hello")

	assert.ErrorIs(t, err, context.Canceled)
	snap := o.Snapshot()
	assert.False(t, snap.Busy())
	assert.Equal(t, domain.StateInitial, snap.State)
	assert.Empty(t, snap.LastSearched)
}

func TestOrchestrator_BackendTimeoutDegrades(t *testing.T) {
	posts := &mockPostSearcher{
		SearchFunc: func(ctx context.Context, _ string, _ domain.SearchRequest) (domain.PostSearchResult, error) {
			<-ctx.Done()
			return domain.PostSearchResult{}, ctx.Err()
		},
	}
	o := NewOrchestrator(posts, staticFiles(domain.FileInfo{ID: "f1"}), nil, OrchestratorConfig{
		TeamID:  "team1",
		Timeout: 20 * time.Millisecond,
	})

	out, err := o.Submit(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCommitted, out.Status)
	assert.Empty(t, out.Results.PostIDs)
	assert.Len(t, out.Results.Files, 1)
}

// --- ChangeFilter ---

func TestOrchestrator_ChangeFilterRefetchesFilesOnly(t *testing.T) {
	posts := staticPosts("p1", "p2")
	files := &mockFileSearcher{
		SearchFunc: func(_ context.Context, _ string, req domain.SearchRequest) (domain.FileSearchResult, error) {
			if req.Terms == "cat" {
				return domain.FileSearchResult{Files: []domain.FileInfo{{ID: "doc", ChannelID: "c1"}}}, nil
			}
			return domain.FileSearchResult{
				Files:      []domain.FileInfo{{ID: "img", ChannelID: "c2"}},
				ChannelIDs: []string{"c2"},
			}, nil
		},
	}
	o := newTestOrchestrator(posts, files, nil)
	ctx := context.Background()

	_, err := o.Submit(ctx, "cat")
	require.NoError(t, err)

	// Editing the box must not change what the filter re-queries.
	o.SetQuery("cats and dogs", 4)

	out, err := o.ChangeFilter(ctx, domain.FilterImages)

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCommitted, out.Status)
	assert.Len(t, posts.Calls(), 1, "posts are not re-fetched")

	calls := files.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "cat "+domain.FilterImages.Extensions(), calls[1].req.Terms)
	assert.True(t, calls[1].req.IsOrSearch)

	snap := o.Snapshot()
	assert.Equal(t, []string{"p1", "p2"}, snap.Results.PostIDs)
	assert.Equal(t, []domain.FileInfo{{ID: "img", ChannelID: "c2"}}, snap.Results.Files)
	assert.Equal(t, []string{"c2"}, snap.Results.FileChannelIDs)
	assert.Equal(t, domain.FilterImages, snap.Filter)
	assert.Equal(t, "cat", snap.LastSearched)
	assert.Equal(t, domain.StateResults, snap.State)
	assert.False(t, snap.FilesLoading)
}

func TestOrchestrator_ChangeFilterFailureStillUpdatesFilter(t *testing.T) {
	fail := false
	files := &mockFileSearcher{
		SearchFunc: func(_ context.Context, _ string, _ domain.SearchRequest) (domain.FileSearchResult, error) {
			if fail {
				return domain.FileSearchResult{}, errors.New("boom")
			}
			return domain.FileSearchResult{Files: []domain.FileInfo{{ID: "f1"}}}, nil
		},
	}
	o := newTestOrchestrator(staticPosts("p1"), files, nil)
	ctx := context.Background()

	_, err := o.Submit(ctx, "cat")
	require.NoError(t, err)
	fail = true

	out, err := o.ChangeFilter(ctx, domain.FilterAudio)

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCommitted, out.Status)
	snap := o.Snapshot()
	assert.Equal(t, domain.FilterAudio, snap.Filter)
	assert.Empty(t, snap.Results.Files)
	assert.Equal(t, []string{"p1"}, snap.Results.PostIDs)
}

func TestOrchestrator_ChangeFilterWithoutSearch(t *testing.T) {
	files := staticFiles()
	o := newTestOrchestrator(staticPosts(), files, nil)

	out, err := o.ChangeFilter(context.Background(), domain.FilterCode)

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCancelled, out.Status)
	assert.Empty(t, files.Calls())
	assert.Equal(t, domain.FilterCode, o.Snapshot().Filter)
}

// TestOrchestrator_StaleFilterDiscarded tests that an older filter response loses to a newer one
func TestOrchestrator_StaleFilterDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	imagesTerms := domain.Normalize("cat", domain.FilterImages).Terms
	files := &mockFileSearcher{
		SearchFunc: func(_ context.Context, _ string, req domain.SearchRequest) (domain.FileSearchResult, error) {
			if req.Terms == imagesTerms {
				close(started)
				<-release
				return domain.FileSearchResult{Files: []domain.FileInfo{{ID: "img"}}}, nil
			}
			return domain.FileSearchResult{Files: []domain.FileInfo{{ID: "doc"}}}, nil
		},
	}
	o := newTestOrchestrator(staticPosts("p1"), files, nil)
	ctx := context.Background()
	_, err := o.Submit(ctx, "cat")
	require.NoError(t, err)

	done := make(chan domain.Outcome, 1)
	go func() {
		out, _ := o.ChangeFilter(ctx, domain.FilterImages)
		done <- out
	}()
	<-started

	_, err = o.ChangeFilter(ctx, domain.FilterDocuments)
	require.NoError(t, err)
	close(release)

	assert.Equal(t, domain.OutcomeSuperseded, (<-done).Status)
	snap := o.Snapshot()
	assert.Equal(t, domain.FilterDocuments, snap.Filter)
	assert.Equal(t, []domain.FileInfo{{ID: "doc"}}, snap.Results.Files)
	assert.False(t, snap.FilesLoading)
}

// TestOrchestrator_FilterDuringSearchAppliedOnCommit tests a filter chosen while a full search runs
func TestOrchestrator_FilterDuringSearchAppliedOnCommit(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	files := &mockFileSearcher{
		SearchFunc: func(_ context.Context, _ string, req domain.SearchRequest) (domain.FileSearchResult, error) {
			if req.Terms == "cat" {
				close(started)
				<-release
				return domain.FileSearchResult{Files: []domain.FileInfo{{ID: "any"}}}, nil
			}
			return domain.FileSearchResult{Files: []domain.FileInfo{{ID: "img"}}}, nil
		},
	}
	o := newTestOrchestrator(staticPosts("p1"), files, nil)
	ctx := context.Background()

	done := make(chan domain.Outcome, 1)
	go func() {
		out, err := o.Submit(ctx, "cat")
		assert.NoError(t, err)
		done <- out
	}()
	<-started

	deferred, err := o.ChangeFilter(ctx, domain.FilterImages)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuperseded, deferred.Status)
	assert.Equal(t, domain.FilterImages, o.Snapshot().Filter)

	close(release)
	out := <-done

	assert.Equal(t, domain.OutcomeCommitted, out.Status)
	assert.Equal(t, []string{"p1"}, out.Results.PostIDs)
	assert.Equal(t, []domain.FileInfo{{ID: "img"}}, out.Results.Files)

	calls := files.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "cat "+domain.FilterImages.Extensions(), calls[1].req.Terms)
	assert.Equal(t, domain.FilterImages, o.Snapshot().Filter)
}

// --- ChangeTeam ---

func TestOrchestrator_ChangeTeamKeepsFilter(t *testing.T) {
	posts := staticPosts("p1")
	files := staticFiles()
	o := newTestOrchestrator(posts, files, nil)
	ctx := context.Background()

	_, err := o.Submit(ctx, "cat")
	require.NoError(t, err)
	_, err = o.ChangeFilter(ctx, domain.FilterImages)
	require.NoError(t, err)

	out, err := o.ChangeTeam(ctx, "team2")

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCommitted, out.Status)

	postCalls := posts.Calls()
	require.Len(t, postCalls, 2)
	assert.Equal(t, "team2", postCalls[1].teamID)
	assert.Equal(t, "cat", postCalls[1].req.Terms)

	fileCalls := files.Calls()
	last := fileCalls[len(fileCalls)-1]
	assert.Equal(t, "team2", last.teamID)
	assert.Equal(t, "cat "+domain.FilterImages.Extensions(), last.req.Terms)

	snap := o.Snapshot()
	assert.Equal(t, domain.FilterImages, snap.Filter)
	assert.Equal(t, "team2", snap.TeamID)
	assert.Equal(t, "cat", snap.LastSearched)
}

func TestOrchestrator_ChangeTeamReplacesResults(t *testing.T) {
	posts := &mockPostSearcher{
		SearchFunc: func(_ context.Context, teamID string, _ domain.SearchRequest) (domain.PostSearchResult, error) {
			return domain.PostSearchResult{Order: []string{teamID + "-post"}}, nil
		},
	}
	o := newTestOrchestrator(posts, staticFiles(), nil)
	ctx := context.Background()

	_, err := o.Submit(ctx, "cat")
	require.NoError(t, err)
	out, err := o.ChangeTeam(ctx, "team2")

	require.NoError(t, err)
	assert.Equal(t, []string{"team2-post"}, out.Results.PostIDs)
}

func TestOrchestrator_ChangeTeamBeforeSearch(t *testing.T) {
	posts := staticPosts("p1")
	cancelled := 0
	o := NewOrchestrator(posts, staticFiles(), nil, OrchestratorConfig{
		TeamID:   "team1",
		OnCancel: func() { cancelled++ },
	})
	o.SetQuery("do", 2)

	out, err := o.ChangeTeam(context.Background(), "team2")

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCancelled, out.Status)
	assert.Empty(t, posts.Calls())
	assert.Zero(t, cancelled)

	snap := o.Snapshot()
	assert.Equal(t, "team2", snap.TeamID)
	assert.Equal(t, "do", snap.Query.Text)
}

// blockingPosts blocks the post search for block until release is closed.
func blockingPosts(block string, started, release chan struct{}) *mockPostSearcher {
	return &mockPostSearcher{
		SearchFunc: func(_ context.Context, teamID string, req domain.SearchRequest) (domain.PostSearchResult, error) {
			if req.Terms == block && teamID == "team1" {
				close(started)
				<-release
			}
			return domain.PostSearchResult{Order: []string{teamID + "-" + req.Terms}}, nil
		},
	}
}

func TestOrchestrator_ChangeTeamDuringFirstSearch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	posts := blockingPosts("dog", started, release)
	cancelled := 0
	o := NewOrchestrator(posts, staticFiles(), nil, OrchestratorConfig{
		TeamID:   "team1",
		OnCancel: func() { cancelled++ },
	})
	ctx := context.Background()

	done := make(chan domain.Outcome, 1)
	go func() {
		out, err := o.Submit(ctx, "dog")
		assert.NoError(t, err)
		done <- out
	}()
	<-started

	out, err := o.ChangeTeam(ctx, "team2")
	require.NoError(t, err)
	close(release)

	assert.Equal(t, domain.OutcomeCommitted, out.Status)
	assert.Equal(t, []string{"team2-dog"}, out.Results.PostIDs)
	assert.Equal(t, domain.OutcomeSuperseded, (<-done).Status)
	assert.Zero(t, cancelled)

	calls := posts.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "team2", calls[1].teamID)
	assert.Equal(t, "dog", calls[1].req.Terms)

	snap := o.Snapshot()
	assert.Equal(t, domain.StateResults, snap.State)
	assert.Equal(t, "team2", snap.TeamID)
	assert.Equal(t, "dog", snap.LastSearched)
	assert.Equal(t, "dog", snap.Query.Text)
	assert.Equal(t, []string{"team2-dog"}, snap.Results.PostIDs)
}

func TestOrchestrator_ChangeTeamDuringLaterSearch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	posts := blockingPosts("dog", started, release)
	o := newTestOrchestrator(posts, staticFiles(), nil)
	ctx := context.Background()

	_, err := o.Submit(ctx, "cat")
	require.NoError(t, err)

	done := make(chan domain.Outcome, 1)
	go func() {
		out, err := o.Submit(ctx, "dog")
		assert.NoError(t, err)
		done <- out
	}()
	<-started

	out, err := o.ChangeTeam(ctx, "team2")
	require.NoError(t, err)
	close(release)

	assert.Equal(t, domain.OutcomeCommitted, out.Status)
	assert.Equal(t, []string{"team2-dog"}, out.Results.PostIDs)
	assert.Equal(t, domain.OutcomeSuperseded, (<-done).Status)

	calls := posts.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "dog", calls[2].req.Terms)
	assert.Equal(t, "dog", o.Snapshot().LastSearched)
}

// --- Cancel, query and tabs ---

func TestOrchestrator_CancelClearsState(t *testing.T) {
	hookCalls := 0
	o := NewOrchestrator(staticPosts("p1"), staticFiles(domain.FileInfo{ID: "f"}), nil, OrchestratorConfig{
		TeamID:   "team1",
		OnCancel: func() { hookCalls++ },
	})
	ctx := context.Background()

	o.SetQuery("cat", 3)
	_, err := o.Submit(ctx, "cat")
	require.NoError(t, err)
	_, err = o.ChangeFilter(ctx, domain.FilterImages)
	require.NoError(t, err)
	o.SelectTab(domain.TabFiles)

	o.Cancel()

	snap := o.Snapshot()
	assert.Equal(t, domain.StateInitial, snap.State)
	assert.Equal(t, domain.RawQuery{}, snap.Query)
	assert.Empty(t, snap.LastSearched)
	assert.Equal(t, domain.FilterAll, snap.Filter)
	assert.Equal(t, domain.EmptyResultSet(), snap.Results)
	assert.Equal(t, domain.TabFiles, snap.Tab)
	assert.Equal(t, "team1", snap.TeamID)
	assert.Equal(t, 1, hookCalls)
}

func TestOrchestrator_CancelDiscardsInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	posts := &mockPostSearcher{
		SearchFunc: func(_ context.Context, _ string, _ domain.SearchRequest) (domain.PostSearchResult, error) {
			close(started)
			<-release
			return domain.PostSearchResult{Order: []string{"p1"}}, nil
		},
	}
	o := newTestOrchestrator(posts, staticFiles(), nil)

	done := make(chan domain.Outcome, 1)
	go func() {
		out, _ := o.Submit(context.Background(), "cat")
		done <- out
	}()
	<-started
	o.Cancel()
	close(release)

	assert.Equal(t, domain.OutcomeSuperseded, (<-done).Status)
	assert.Equal(t, domain.StateInitial, o.Snapshot().State)
	assert.Empty(t, o.Snapshot().Results.PostIDs)
}

func TestOrchestrator_SetQueryClampsCursor(t *testing.T) {
	o := newTestOrchestrator(staticPosts(), staticFiles(), nil)

	o.SetQuery("héllo", 42)
	assert.Equal(t, domain.RawQuery{Text: "héllo", Cursor: 5}, o.Snapshot().Query)

	o.SetQuery("abc", -1)
	assert.Equal(t, 0, o.Snapshot().Query.Cursor)
}

func TestOrchestrator_SubmitSetsQueryText(t *testing.T) {
	o := newTestOrchestrator(staticPosts(), staticFiles(), nil)

	_, err := o.Submit(context.Background(), "cat")

	require.NoError(t, err)
	assert.Equal(t, domain.RawQuery{Text: "cat", Cursor: 3}, o.Snapshot().Query)
}

func TestOrchestrator_SelectTabIndependentOfSearch(t *testing.T) {
	files := staticFiles()
	o := newTestOrchestrator(staticPosts(), files, nil)

	o.SelectTab(domain.TabFiles)

	assert.Equal(t, domain.TabFiles, o.Snapshot().Tab)
	assert.Empty(t, files.Calls())
}

// --- Subscriptions ---

func TestOrchestrator_SubscribeVersionsIncrease(t *testing.T) {
	o := newTestOrchestrator(staticPosts("p1"), staticFiles(), nil)
	rec := &snapshotRecorder{}
	o.Subscribe(rec.record)

	o.SetQuery("c", 1)
	_, err := o.Submit(context.Background(), "cat")
	require.NoError(t, err)
	o.SelectTab(domain.TabFiles)

	snaps := rec.all()
	require.NotEmpty(t, snaps)
	for i := 1; i < len(snaps); i++ {
		assert.GreaterOrEqual(t, snaps[i].Version, snaps[i-1].Version)
	}
	assert.Equal(t, domain.TabFiles, snaps[len(snaps)-1].Tab)
}

func TestOrchestrator_Unsubscribe(t *testing.T) {
	o := newTestOrchestrator(staticPosts(), staticFiles(), nil)
	rec := &snapshotRecorder{}
	unsubscribe := o.Subscribe(rec.record)

	o.SetQuery("a", 1)
	unsubscribe()
	o.SetQuery("ab", 2)

	assert.Len(t, rec.all(), 1)
}

func TestOrchestrator_SnapshotIsCopy(t *testing.T) {
	o := newTestOrchestrator(staticPosts("p1"), staticFiles(), nil)
	_, err := o.Submit(context.Background(), "cat")
	require.NoError(t, err)

	snap := o.Snapshot()
	snap.Results.PostIDs[0] = "mutated"

	assert.Equal(t, []string{"p1"}, o.Snapshot().Results.PostIDs)
}

func TestOrchestrator_NilSearchersDegrade(t *testing.T) {
	o := NewOrchestrator(nil, nil, nil, OrchestratorConfig{TeamID: "team1"})

	out, err := o.Submit(context.Background(), "cat")

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCommitted, out.Status)
	assert.True(t, out.Results.IsEmpty())
}
