// Package search provides the main search view for the TUI.
package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
)

// Focus identifies which part of the view receives keys.
type Focus int

const (
	// FocusInput sends keys to the search box.
	FocusInput Focus = iota
	// FocusResults sends keys to the result list.
	FocusResults
	// FocusTeam sends keys to the team prompt.
	FocusTeam
)

// OptionsMenu is the file options overlay.
type OptionsMenu struct {
	File     domain.FileInfo
	Options  []domain.FileOption
	Selected int
}

// Services groups the driving ports the view talks to.
// Search is required; the others may be nil.
type Services struct {
	Search  driving.SearchOrchestrator
	History driving.HistoryService
	Files   driving.FileActionService
}

// View is the search screen: search box, result tabs, file filter and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	teamInput *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar

	search  driving.SearchOrchestrator
	history driving.HistoryService
	files   driving.FileActionService
	ctx     context.Context

	// debounce is the idle time before typing submits; zero disables it.
	debounce time.Duration
	// seq is bumped on every edit so only the latest debounce tick submits.
	seq int

	snapshot domain.Snapshot
	recent   []domain.RecentSearch
	menu     *OptionsMenu
	focus    Focus

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, svc Services, debounce time.Duration) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:    s,
		keymap:    km,
		input:     input.NewSearchInput(s),
		teamInput: input.NewLabelledInput(s, "Team: ", "team id"),
		list:      list.NewResultList(s),
		statusbar: status.NewBar(s, km),
		search:    svc.Search,
		history:   svc.History,
		files:     svc.Files,
		ctx:       context.Background(),
		debounce:  debounce,
		width:     80,
		height:    24,
		focus:     FocusInput,
	}
	v.teamInput.Blur()
	if v.search != nil {
		v.apply(v.search.Snapshot())
	}
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view and loads recent searches.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.loadRecent())
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.StateChanged:
		// Deliveries can arrive out of order; the version decides.
		if msg.Snapshot.Version >= v.snapshot.Version {
			v.apply(msg.Snapshot)
		}
		return v, nil

	case messages.DebounceElapsed:
		if msg.Seq != v.seq {
			return v, nil
		}
		return v, v.submit(v.input.Value())

	case messages.SearchCompleted:
		return v, v.handleSearchCompleted(msg)

	case messages.RecentLoaded:
		if msg.Err != nil {
			v.showError(msg.Err)
			return v, nil
		}
		v.recent = msg.Searches
		v.refreshList()
		return v, nil

	case messages.RecentRemoved:
		if msg.Err != nil {
			v.showError(msg.Err)
			return v, nil
		}
		return v, v.loadRecent()

	case messages.CapabilitiesChanged:
		v.handleCapabilitiesChanged(msg.Capabilities)
		return v, nil

	case messages.FileActionCompleted:
		v.handleFileActionCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.showError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	switch v.focus {
	case FocusInput:
		v.input, cmd = v.input.Update(msg)
	case FocusTeam:
		v.teamInput, cmd = v.teamInput.Update(msg)
	case FocusResults:
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.menu != nil {
		return v.handleMenuKey(msg)
	}

	switch v.focus {
	case FocusTeam:
		return v.handleTeamKey(msg)
	case FocusResults:
		return v.handleResultsKey(msg)
	default:
		return v.handleInputKey(msg)
	}
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case k == "esc":
		if v.input.Value() == "" && v.snapshot.State == domain.StateInitial {
			return v, nil
		}
		v.seq++
		v.input.Reset()
		v.search.Cancel()
		v.apply(v.search.Snapshot())
		return v, v.loadRecent()

	case k == "enter":
		v.seq++
		return v, v.submit(v.input.Value())

	case keymap.Matches(k, v.keymap.NextTab):
		v.toggleTab()
		return v, nil

	case k == "down":
		if !v.list.IsEmpty() {
			v.setFocus(FocusResults)
		}
		return v, nil

	case k == "ctrl+f":
		return v, v.cycleFilter(1)

	case keymap.Matches(k, v.keymap.Team):
		v.setFocus(FocusTeam)
		v.teamInput.SetValue(v.snapshot.TeamID)
		return v, nil

	case keymap.Matches(k, v.keymap.Settings):
		return v, viewChanged(messages.ViewSettings)
	}

	change, cmd := v.input.Edit(msg)
	if change == input.Unchanged {
		return v, cmd
	}

	q := v.input.Query()
	v.search.SetQuery(q.Text, q.Cursor)
	v.snapshot = v.search.Snapshot()
	if change == input.CursorMoved {
		return v, cmd
	}
	v.seq++
	return v, tea.Batch(cmd, v.scheduleDebounce())
}

func (v *View) handleResultsKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case k == "esc" || keymap.Matches(k, v.keymap.NewSearch):
		v.setFocus(FocusInput)
		return v, nil

	case k == "up" || k == "k":
		if v.list.Selected() == 0 {
			v.setFocus(FocusInput)
			return v, nil
		}
		v.list.MoveUp()
		return v, nil

	case keymap.Matches(k, v.keymap.Down):
		v.list.MoveDown()
		return v, nil

	case keymap.Matches(k, v.keymap.NextTab):
		v.toggleTab()
		return v, nil

	case keymap.Matches(k, v.keymap.NextFilter):
		return v, v.cycleFilter(1)

	case keymap.Matches(k, v.keymap.PrevFilter):
		return v, v.cycleFilter(-1)

	case keymap.Matches(k, v.keymap.Options):
		return v.activate()

	case keymap.Matches(k, v.keymap.Remove):
		return v, v.removeRecent()

	case keymap.Matches(k, v.keymap.Team):
		v.setFocus(FocusTeam)
		v.teamInput.SetValue(v.snapshot.TeamID)
		return v, nil

	case keymap.Matches(k, v.keymap.Settings):
		return v, viewChanged(messages.ViewSettings)

	case keymap.Matches(k, v.keymap.Help):
		return v, viewChanged(messages.ViewHelp)

	case k == "q":
		return v, tea.Quit
	}
	return v, nil
}

func (v *View) handleTeamKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.setFocus(FocusInput)
		return v, nil
	case "enter":
		team := strings.TrimSpace(v.teamInput.Value())
		v.setFocus(FocusInput)
		if team == "" || team == v.snapshot.TeamID {
			return v, nil
		}
		v.statusbar.SetTeam(team)
		return v, v.changeTeam(team)
	}
	var cmd tea.Cmd
	v.teamInput, cmd = v.teamInput.Update(msg)
	return v, cmd
}

func (v *View) handleMenuKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.menu.Selected > 0 {
			v.menu.Selected--
		}
	case "down", "j":
		if v.menu.Selected < len(v.menu.Options)-1 {
			v.menu.Selected++
		}
	case "enter":
		if len(v.menu.Options) == 0 {
			v.menu = nil
			return v, nil
		}
		opt := v.menu.Options[v.menu.Selected]
		file := v.menu.File
		v.menu = nil
		if opt == domain.FileOptionOpen {
			v.showPost(file)
			return v, nil
		}
		return v, v.runFileOption(opt, file)
	case "esc", "q":
		v.menu = nil
	}
	return v, nil
}

// activate acts on the selected row: re-run a recent search or open
// the options of a file.
func (v *View) activate() (*View, tea.Cmd) {
	if v.snapshot.State == domain.StateInitial {
		i := v.list.Selected()
		if i < 0 || i >= len(v.recent) {
			return v, nil
		}
		term := v.recent[i].Term
		v.input.SetValue(term)
		v.setFocus(FocusInput)
		v.seq++
		return v, v.submit(term)
	}

	if v.snapshot.Tab != domain.TabFiles || v.files == nil {
		return v, nil
	}
	i := v.list.Selected()
	if i < 0 || i >= len(v.snapshot.Results.Files) {
		return v, nil
	}
	v.menu = &OptionsMenu{
		File:    v.snapshot.Results.Files[i],
		Options: v.files.Options(),
	}
	return v, nil
}

func (v *View) handleCapabilitiesChanged(caps domain.Capabilities) {
	if v.files == nil {
		return
	}
	v.files.SetCapabilities(caps)
	if v.menu == nil {
		return
	}

	// Re-open the menu with the new options, keeping the cursor on the
	// same option when it survived.
	current := v.menu.Options[v.menu.Selected]
	v.menu = &OptionsMenu{File: v.menu.File, Options: v.files.Options()}
	for i, opt := range v.menu.Options {
		if opt == current {
			v.menu.Selected = i
		}
	}
}

func (v *View) handleFileActionCompleted(msg messages.FileActionCompleted) {
	if msg.Err != nil {
		v.showError(fmt.Errorf("%s: %w", msg.Option.Label(), msg.Err))
		return
	}
	v.err = nil
	switch msg.Option {
	case domain.FileOptionDownload:
		v.statusbar.SetMessage("Saved " + msg.Result)
	default:
		v.statusbar.SetMessage(msg.Result)
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) tea.Cmd {
	if msg.Err != nil {
		// A cancelled context means the view is closing.
		if errors.Is(msg.Err, context.Canceled) {
			return nil
		}
		v.showError(msg.Err)
		return nil
	}

	v.err = nil
	v.apply(v.search.Snapshot())
	if msg.Outcome.Status == domain.OutcomeCancelled {
		return v.loadRecent()
	}
	return nil
}

// apply makes a snapshot the visible state.
func (v *View) apply(snap domain.Snapshot) {
	v.snapshot = snap
	v.statusbar.SetTeam(snap.TeamID)

	switch {
	case snap.Busy():
		v.statusbar.SetState(status.StateSearching)
	case v.err != nil:
		v.statusbar.SetState(status.StateError)
	case snap.State == domain.StateResults:
		v.statusbar.SetState(status.StateResults)
		v.statusbar.SetCounts(len(snap.Results.PostIDs), len(snap.Results.Files))
	default:
		v.statusbar.Clear()
	}

	if snap.State != domain.StateResults {
		v.menu = nil
	}
	v.refreshList()
}

// refreshList rebuilds the rows for the current state and tab,
// keeping the cursor where possible.
func (v *View) refreshList() {
	selected := v.list.Selected()

	switch {
	case v.snapshot.State == domain.StateInitial:
		v.list.SetEmptyText("No recent searches")
		v.list.SetItems(recentItems(v.recent))
	case v.snapshot.Loading:
		v.list.SetEmptyText("Searching...")
		v.list.SetItems(nil)
	case v.snapshot.Tab == domain.TabFiles:
		v.list.SetEmptyText("No files match " + v.snapshot.Filter.Label())
		v.list.SetItems(fileItems(v.snapshot.Results.Files))
	default:
		v.list.SetEmptyText("No messages")
		v.list.SetItems(postItems(v.snapshot.Results.PostIDs))
	}

	v.list.SetSelected(selected)
	if v.focus == FocusResults && v.list.IsEmpty() {
		v.setFocus(FocusInput)
	}
}

func recentItems(recent []domain.RecentSearch) []list.Item {
	items := make([]list.Item, 0, len(recent))
	for _, r := range recent {
		items = append(items, list.Item{Title: r.Term, Meta: humanize.Time(r.CreatedAt)})
	}
	return items
}

func postItems(ids []string) []list.Item {
	items := make([]list.Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, list.Item{Title: "Post " + id})
	}
	return items
}

func fileItems(files []domain.FileInfo) []list.Item {
	items := make([]list.Item, 0, len(files))
	for _, f := range files {
		meta := humanize.Bytes(uint64(max(f.Size, 0)))
		if f.Extension != "" {
			meta = strings.ToUpper(f.Extension) + " " + meta
		}
		detail := "in channel " + f.ChannelID
		if !f.CreatedAt.IsZero() {
			detail += ", " + humanize.Time(f.CreatedAt)
		}
		items = append(items, list.Item{Title: f.Name, Meta: meta, Detail: detail})
	}
	return items
}

func (v *View) toggleTab() {
	tab := domain.TabFiles
	if v.snapshot.Tab == domain.TabFiles {
		tab = domain.TabMessages
	}
	v.search.SelectTab(tab)
	v.menu = nil
	v.apply(v.search.Snapshot())
}

// cycleFilter moves the file filter by step through the filter list
// and re-fetches files.
func (v *View) cycleFilter(step int) tea.Cmd {
	filters := domain.AllFileFilters()
	idx := 0
	for i, f := range filters {
		if f == v.snapshot.Filter {
			idx = i
		}
	}
	next := filters[(idx+step+len(filters))%len(filters)]

	search, ctx := v.search, v.ctx
	return func() tea.Msg {
		out, err := search.ChangeFilter(ctx, next)
		return messages.SearchCompleted{Outcome: out, Err: err}
	}
}

func (v *View) scheduleDebounce() tea.Cmd {
	if v.debounce <= 0 {
		return nil
	}
	seq := v.seq
	return tea.Tick(v.debounce, func(time.Time) tea.Msg {
		return messages.DebounceElapsed{Seq: seq}
	})
}

func (v *View) submit(text string) tea.Cmd {
	v.menu = nil
	search, ctx := v.search, v.ctx
	return func() tea.Msg {
		out, err := search.Submit(ctx, text)
		return messages.SearchCompleted{Outcome: out, Err: err}
	}
}

func (v *View) changeTeam(team string) tea.Cmd {
	search, ctx := v.search, v.ctx
	return func() tea.Msg {
		out, err := search.ChangeTeam(ctx, team)
		return messages.SearchCompleted{Outcome: out, Err: err}
	}
}

func (v *View) loadRecent() tea.Cmd {
	if v.history == nil {
		return nil
	}
	history, ctx, team := v.history, v.ctx, v.snapshot.TeamID
	return func() tea.Msg {
		searches, err := history.Recent(ctx, team)
		return messages.RecentLoaded{Searches: searches, Err: err}
	}
}

func (v *View) removeRecent() tea.Cmd {
	if v.history == nil || v.snapshot.State != domain.StateInitial {
		return nil
	}
	i := v.list.Selected()
	if i < 0 || i >= len(v.recent) {
		return nil
	}
	history, ctx, id := v.history, v.ctx, v.recent[i].ID
	return func() tea.Msg {
		return messages.RecentRemoved{ID: id, Err: history.Remove(ctx, id)}
	}
}

func (v *View) runFileOption(opt domain.FileOption, file domain.FileInfo) tea.Cmd {
	files, ctx := v.files, v.ctx
	return func() tea.Msg {
		msg := messages.FileActionCompleted{Option: opt, File: file}
		switch opt {
		case domain.FileOptionDownload:
			msg.Result, msg.Err = files.Download(ctx, file)
		case domain.FileOptionPublicLink:
			msg.Result, msg.Err = files.PublicLink(ctx, file)
		}
		return msg
	}
}

// showPost switches to the Messages tab with the file's post selected.
func (v *View) showPost(file domain.FileInfo) {
	v.search.SelectTab(domain.TabMessages)
	v.err = nil
	v.apply(v.search.Snapshot())

	where := "Post " + file.PostID + " in channel " + file.ChannelID
	i := slices.Index(v.snapshot.Results.PostIDs, file.PostID)
	if file.PostID == "" || i < 0 {
		v.statusbar.SetMessage(where + " is not among the message results")
		return
	}
	v.list.SetSelected(i)
	v.setFocus(FocusResults)
	v.statusbar.SetMessage(where)
}

func viewChanged(view messages.ViewType) tea.Cmd {
	return func() tea.Msg {
		return messages.ViewChanged{View: view}
	}
}

func (v *View) showError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) setFocus(f Focus) {
	v.focus = f
	v.input.Blur()
	v.teamInput.Blur()
	switch f {
	case FocusInput:
		v.input.Focus()
	case FocusTeam:
		v.teamInput.Focus()
	case FocusResults:
	}
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("Sercha Chat"), "")

	if v.focus == FocusTeam {
		sections = append(sections, v.teamInput.View(), "")
	} else {
		sections = append(sections, v.input.View(), "")
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.snapshot.State == domain.StateInitial {
		sections = append(sections, v.styles.Subtitle.Render("Recent searches"), "")
	} else {
		sections = append(sections, v.renderTabs(), "")
	}
	sections = append(sections, v.list.View())

	if v.menu != nil {
		sections = append(sections, "", v.renderMenu())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderTabs() string {
	msgs := fmt.Sprintf("Messages (%d)", len(v.snapshot.Results.PostIDs))
	files := fmt.Sprintf("Files (%d)", len(v.snapshot.Results.Files))

	if v.snapshot.Tab == domain.TabFiles {
		msgs = v.styles.Tab.Render(msgs)
		files = v.styles.ActiveTab.Render(files)
	} else {
		msgs = v.styles.ActiveTab.Render(msgs)
		files = v.styles.Tab.Render(files)
	}

	parts := []string{msgs, files}
	if v.snapshot.Tab == domain.TabFiles {
		label := v.snapshot.Filter.Label()
		if v.snapshot.FilesLoading {
			label += " ..."
		}
		parts = append(parts, v.styles.Filter.Render(label))
	}
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (v *View) renderMenu() string {
	lines := make([]string, 0, len(v.menu.Options)+1)
	lines = append(lines, v.styles.Subtitle.Render(v.menu.File.Name))
	for i, opt := range v.menu.Options {
		if i == v.menu.Selected {
			lines = append(lines, v.styles.Selected.Render("> "+opt.Label()))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+opt.Label()))
		}
	}
	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.teamInput.SetWidth(width)
	v.list.SetDimensions(width, height-12)
	v.statusbar.SetWidth(width)
}

// SetDebounce changes the idle time before typing submits.
func (v *View) SetDebounce(d time.Duration) {
	v.debounce = d
}

// Snapshot returns the state the view currently shows.
func (v *View) Snapshot() domain.Snapshot {
	return v.snapshot
}

// Query returns the text of the search box.
func (v *View) Query() string {
	return v.input.Value()
}

// Focus returns which part of the view receives keys.
func (v *View) Focus() Focus {
	return v.focus
}

// Menu returns the open file options menu, or nil.
func (v *View) Menu() *OptionsMenu {
	return v.menu
}

// Recent returns the loaded recent searches.
func (v *View) Recent() []domain.RecentSearch {
	return v.recent
}

// SelectedIndex returns the index of the selected row.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}
