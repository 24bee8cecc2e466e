package services

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-chat/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.SearchOrchestrator = (*Orchestrator)(nil)

// historyTimeout bounds a single recent-search write.
const historyTimeout = 5 * time.Second

var orchestratorLog = logger.Named("orchestrator")

// OrchestratorConfig configures an Orchestrator.
type OrchestratorConfig struct {
	// ServerURL is passed through to every backend call.
	ServerURL string

	// TeamID is the initial team.
	TeamID string

	// Timeout bounds each backend call. Zero means no timeout.
	Timeout time.Duration

	// OnCancel is called after the search is cancelled, either explicitly
	// or by submitting blank text. Optional.
	OnCancel func()
}

// Orchestrator is the state machine behind a search screen.
//
// A full search dispatches the post and file searches together and commits
// both once they settle. Every commit is guarded by an epoch: the full-search
// epoch changes on Submit, ChangeTeam and Cancel, the file epoch additionally
// changes on ChangeFilter. A response whose epoch is no longer current is
// dropped and its request context cancelled.
//
// Subscribers are called synchronously with monotonically increasing
// snapshots and must not call back into the Orchestrator from the callback.
type Orchestrator struct {
	posts     driven.PostSearcher
	files     driven.FileSearcher
	history   driven.HistoryStore
	serverURL string
	timeout   time.Duration
	onCancel  func()

	mu          sync.Mutex
	state       domain.Snapshot
	epoch       uint64
	fileEpoch   uint64
	cancelFull  context.CancelFunc
	cancelFiles context.CancelFunc

	// pendingText is the text of the running full search, if any.
	pendingText string

	notifyMu    sync.Mutex
	listenersMu sync.Mutex
	listeners   map[int]func(domain.Snapshot)
	nextID      int

	background sync.WaitGroup
}

// NewOrchestrator creates a search orchestrator.
// The history store is optional (can be nil).
func NewOrchestrator(
	posts driven.PostSearcher,
	files driven.FileSearcher,
	history driven.HistoryStore,
	cfg OrchestratorConfig,
) *Orchestrator {
	return &Orchestrator{
		posts:     posts,
		files:     files,
		history:   history,
		serverURL: cfg.ServerURL,
		timeout:   cfg.Timeout,
		onCancel:  cfg.OnCancel,
		state: domain.Snapshot{
			State:   domain.StateInitial,
			Tab:     domain.TabMessages,
			Filter:  domain.FilterAll,
			TeamID:  cfg.TeamID,
			Results: domain.EmptyResultSet(),
		},
		listeners: make(map[int]func(domain.Snapshot)),
	}
}

// Submit runs a full search for text on the current team.
// The file filter is reset to all file types.
func (o *Orchestrator) Submit(ctx context.Context, text string) (domain.Outcome, error) {
	o.mu.Lock()
	if o.state.Query.Text != text {
		o.state.Query = domain.RawQuery{Text: text, Cursor: utf8.RuneCountInString(text)}
	}
	teamID := o.state.TeamID
	o.mu.Unlock()

	return o.search(ctx, text, teamID, true)
}

// ChangeTeam re-runs the last searched text against teamID.
// Unlike Submit the active file filter is kept. While a full search is
// running its text is the one re-run. With nothing searched only the team
// is updated.
func (o *Orchestrator) ChangeTeam(ctx context.Context, teamID string) (domain.Outcome, error) {
	o.mu.Lock()
	text := o.state.LastSearched
	if o.cancelFull != nil {
		text = o.pendingText
	}
	if domain.Normalize(text, domain.FilterAll).IsEmpty() {
		o.state.TeamID = teamID
		o.state.Version++
		o.mu.Unlock()
		o.publish()
		orchestratorLog.Debug("team change to %q, nothing to re-run", teamID)
		return domain.Outcome{Status: domain.OutcomeCancelled, Results: domain.EmptyResultSet()}, nil
	}
	o.mu.Unlock()

	orchestratorLog.Debug("team change to %q, re-running %q", teamID, text)
	return o.search(ctx, text, teamID, false)
}

// search performs the fork-join full search shared by Submit and ChangeTeam.
func (o *Orchestrator) search(
	ctx context.Context, text, teamID string, resetFilter bool,
) (domain.Outcome, error) {
	postReq := domain.Normalize(text, domain.FilterAll)
	if postReq.IsEmpty() {
		o.mu.Lock()
		o.state.TeamID = teamID
		o.mu.Unlock()
		o.Cancel()
		return domain.Outcome{Status: domain.OutcomeCancelled, Results: domain.EmptyResultSet()}, nil
	}
	if teamID == "" {
		return domain.Outcome{}, domain.ErrNoTeam
	}

	o.mu.Lock()
	filter := o.state.Filter
	if resetFilter {
		filter = domain.FilterAll
	}
	fileReq := domain.Normalize(text, filter)

	o.epoch++
	o.fileEpoch++
	epoch := o.epoch
	o.stopInFlightLocked()
	runCtx, cancel := context.WithCancel(ctx)
	o.cancelFull = cancel
	o.pendingText = text

	showing := o.state.State == domain.StateResults || o.state.ResultsLoading
	o.state.State = domain.StateLoading
	o.state.Loading = !showing
	o.state.ResultsLoading = showing
	o.state.FilesLoading = false
	o.state.Filter = filter
	o.state.TeamID = teamID
	o.state.Version++
	o.mu.Unlock()
	o.publish()

	logger.Section("Search")
	orchestratorLog.Debug("epoch %d: team=%q posts=%q files=%q", epoch, teamID, postReq.Terms, fileReq.Terms)

	o.recordHistory(ctx, teamID, text)

	var (
		wg      sync.WaitGroup
		postIDs []string
		found   domain.FileSearchResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		postIDs = o.searchPosts(runCtx, teamID, postReq)
	}()
	go func() {
		defer wg.Done()
		found = o.searchFiles(runCtx, teamID, fileReq)
	}()
	wg.Wait()
	cancel()

	if err := ctx.Err(); err != nil {
		o.settleFull(epoch)
		return domain.Outcome{}, fmt.Errorf("search: %w", err)
	}

	o.mu.Lock()
	if o.epoch != epoch {
		current := o.epoch
		o.mu.Unlock()
		orchestratorLog.Debug("epoch %d: discarded, superseded by %d", epoch, current)
		return domain.Outcome{Status: domain.OutcomeSuperseded, Results: domain.EmptyResultSet()}, nil
	}

	o.cancelFull = nil
	o.pendingText = ""
	o.state.State = domain.StateResults
	o.state.Loading = false
	o.state.ResultsLoading = false
	o.state.LastSearched = text
	o.state.Results = domain.ResultSet{
		PostIDs:        postIDs,
		Files:          found.Files,
		FileChannelIDs: found.ChannelIDs,
	}

	// The filter was changed while this search ran; its files no longer match.
	pending := o.state.Filter
	refetch := pending != filter
	if refetch {
		o.state.Results.Files = []domain.FileInfo{}
		o.state.Results.FileChannelIDs = []string{}
		o.state.FilesLoading = true
	}
	o.state.Version++
	committed := o.state.Results.Clone()
	o.mu.Unlock()
	o.publish()

	orchestratorLog.Info("epoch %d: committed %d posts, %d files", epoch, len(committed.PostIDs), len(committed.Files))

	if refetch {
		return o.ChangeFilter(ctx, pending)
	}
	return domain.Outcome{Status: domain.OutcomeCommitted, Results: committed}, nil
}

// ChangeFilter re-fetches files for the last searched text under filter.
// Posts are never touched. The filter is applied immediately; when a full
// search is still running, that search applies it on commit instead.
func (o *Orchestrator) ChangeFilter(ctx context.Context, filter domain.FileFilter) (domain.Outcome, error) {
	o.mu.Lock()
	o.state.Filter = filter
	o.state.Version++

	if o.cancelFull != nil {
		o.mu.Unlock()
		o.publish()
		orchestratorLog.Debug("filter %s deferred to running search", filter)
		return domain.Outcome{Status: domain.OutcomeSuperseded, Results: domain.EmptyResultSet()}, nil
	}

	req := domain.Normalize(o.state.LastSearched, filter)
	if req.IsEmpty() {
		o.mu.Unlock()
		o.publish()
		return domain.Outcome{Status: domain.OutcomeCancelled, Results: domain.EmptyResultSet()}, nil
	}

	o.fileEpoch++
	fileEpoch := o.fileEpoch
	if o.cancelFiles != nil {
		o.cancelFiles()
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.cancelFiles = cancel
	teamID := o.state.TeamID
	o.state.FilesLoading = true
	o.mu.Unlock()
	o.publish()

	orchestratorLog.Debug("file epoch %d: filter=%s files=%q", fileEpoch, filter, req.Terms)

	found := o.searchFiles(runCtx, teamID, req)
	cancel()

	if err := ctx.Err(); err != nil {
		o.settleFiles(fileEpoch)
		return domain.Outcome{}, fmt.Errorf("change filter: %w", err)
	}

	o.mu.Lock()
	if o.fileEpoch != fileEpoch {
		o.mu.Unlock()
		orchestratorLog.Debug("file epoch %d: discarded", fileEpoch)
		return domain.Outcome{Status: domain.OutcomeSuperseded, Results: domain.EmptyResultSet()}, nil
	}

	o.cancelFiles = nil
	o.state.FilesLoading = false
	o.state.Results.Files = found.Files
	o.state.Results.FileChannelIDs = found.ChannelIDs
	o.state.Version++
	committed := o.state.Results.Clone()
	o.mu.Unlock()
	o.publish()

	return domain.Outcome{Status: domain.OutcomeCommitted, Results: committed}, nil
}

// Cancel clears the query, the last searched text and the results,
// and resets the filter. The team and the selected tab are kept.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	o.epoch++
	o.fileEpoch++
	o.stopInFlightLocked()

	o.state = domain.Snapshot{
		Version: o.state.Version + 1,
		State:   domain.StateInitial,
		Tab:     o.state.Tab,
		Filter:  domain.FilterAll,
		TeamID:  o.state.TeamID,
		Results: domain.EmptyResultSet(),
	}
	o.mu.Unlock()
	o.publish()

	orchestratorLog.Debug("cancelled")
	if o.onCancel != nil {
		o.onCancel()
	}
}

// SetQuery records the text and cursor of the search box.
// The cursor is clamped to the text.
func (o *Orchestrator) SetQuery(text string, cursor int) {
	if n := utf8.RuneCountInString(text); cursor > n {
		cursor = n
	}
	if cursor < 0 {
		cursor = 0
	}

	o.mu.Lock()
	o.state.Query = domain.RawQuery{Text: text, Cursor: cursor}
	o.state.Version++
	o.mu.Unlock()
	o.publish()
}

// SelectTab switches the visible result category.
func (o *Orchestrator) SelectTab(tab domain.Tab) {
	o.mu.Lock()
	if o.state.Tab == tab {
		o.mu.Unlock()
		return
	}
	o.state.Tab = tab
	o.state.Version++
	o.mu.Unlock()
	o.publish()
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() domain.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := o.state
	snap.Results = o.state.Results.Clone()
	return snap
}

// Subscribe registers fn to receive every new state.
func (o *Orchestrator) Subscribe(fn func(domain.Snapshot)) func() {
	o.listenersMu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	o.listenersMu.Unlock()

	return func() {
		o.listenersMu.Lock()
		delete(o.listeners, id)
		o.listenersMu.Unlock()
	}
}

// Wait blocks until background work such as history writes has finished.
func (o *Orchestrator) Wait() {
	o.background.Wait()
}

// publish delivers the latest snapshot to every subscriber.
// Holding notifyMu while taking the snapshot keeps deliveries ordered.
func (o *Orchestrator) publish() {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	o.listenersMu.Lock()
	fns := make([]func(domain.Snapshot), 0, len(o.listeners))
	for _, fn := range o.listeners {
		fns = append(fns, fn)
	}
	o.listenersMu.Unlock()

	if len(fns) == 0 {
		return
	}
	snap := o.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}

// stopInFlightLocked cancels running requests. Caller must hold mu.
func (o *Orchestrator) stopInFlightLocked() {
	if o.cancelFull != nil {
		o.cancelFull()
		o.cancelFull = nil
		o.pendingText = ""
	}
	if o.cancelFiles != nil {
		o.cancelFiles()
		o.cancelFiles = nil
	}
}

// settleFull clears loading flags after the caller gave up on a full search.
func (o *Orchestrator) settleFull(epoch uint64) {
	o.mu.Lock()
	if o.epoch != epoch {
		o.mu.Unlock()
		return
	}
	o.cancelFull = nil
	o.pendingText = ""
	if o.state.ResultsLoading {
		o.state.State = domain.StateResults
	} else {
		o.state.State = domain.StateInitial
	}
	o.state.Loading = false
	o.state.ResultsLoading = false
	o.state.Version++
	o.mu.Unlock()
	o.publish()
}

// settleFiles clears the file loading flag after the caller gave up on a re-fetch.
func (o *Orchestrator) settleFiles(fileEpoch uint64) {
	o.mu.Lock()
	if o.fileEpoch != fileEpoch {
		o.mu.Unlock()
		return
	}
	o.cancelFiles = nil
	o.state.FilesLoading = false
	o.state.Version++
	o.mu.Unlock()
	o.publish()
}

// searchPosts runs the post search, degrading any failure to no results.
func (o *Orchestrator) searchPosts(ctx context.Context, teamID string, req domain.SearchRequest) []string {
	if o.posts == nil {
		orchestratorLog.Warn("post search unavailable: searcher is nil")
		return []string{}
	}

	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	res, err := o.posts.SearchPosts(ctx, o.serverURL, teamID, req)
	if err != nil {
		orchestratorLog.Warn("post search failed: %v", err)
		return []string{}
	}
	return domain.UniqueStrings(res.Order)
}

// searchFiles runs the file search, degrading any failure to no results.
func (o *Orchestrator) searchFiles(
	ctx context.Context, teamID string, req domain.SearchRequest,
) domain.FileSearchResult {
	empty := domain.FileSearchResult{Files: []domain.FileInfo{}, ChannelIDs: []string{}}
	if o.files == nil {
		orchestratorLog.Warn("file search unavailable: searcher is nil")
		return empty
	}

	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	res, err := o.files.SearchFiles(ctx, o.serverURL, teamID, req)
	if err != nil {
		orchestratorLog.Warn("file search failed: %v", err)
		return empty
	}

	files := res.Files
	if files == nil {
		files = []domain.FileInfo{}
	}
	channels := res.ChannelIDs
	if len(channels) == 0 {
		for i := range files {
			channels = append(channels, files[i].ChannelID)
		}
	}
	return domain.FileSearchResult{Files: files, ChannelIDs: domain.UniqueStrings(channels)}
}

// recordHistory stores the term in the background. Failures are logged only.
func (o *Orchestrator) recordHistory(ctx context.Context, teamID, term string) {
	if o.history == nil {
		return
	}

	o.background.Add(1)
	go func() {
		defer o.background.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
		defer cancel()

		if err := o.history.Record(ctx, o.serverURL, teamID, term); err != nil {
			orchestratorLog.Warn("recording recent search: %v", err)
		}
	}()
}

func (o *Orchestrator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}
