package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// debounceKey is the setting that changes the search-as-you-type delay.
const debounceKey = "search.debounce_ms"

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	searchView   *search.View
	settingsView *settings.View
	currentView  messages.ViewType

	// capabilities delivers server permission changes while running.
	capabilities <-chan domain.Capabilities

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	debounce := domain.DefaultDebounce
	if ports.Settings != nil {
		debounce = ports.Settings.Get().Search.Debounce
	}

	searchView := search.NewView(s, km, search.Services{
		Search:  ports.Search,
		History: ports.History,
		Files:   ports.Files,
	}, debounce)

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		help:         help.New(),
		searchView:   searchView,
		settingsView: settings.NewView(s, ports.Settings),
		currentView:  messages.ViewSearch,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	return a
}

// WithCapabilityUpdates makes the app apply capability changes read from ch.
func (a *App) WithCapabilityUpdates(ch <-chan domain.Capabilities) *App {
	a.capabilities = ch
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("sercha-chat"),
		a.searchView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewSettings:
			a.settingsView, cmd = a.settingsView.Update(msg)
		case messages.ViewHelp:
			switch msg.String() {
			case "esc", "q", "?":
				a.currentView = messages.ViewSearch
			}
		case messages.ViewSearch:
			a.searchView, cmd = a.searchView.Update(msg)
		}
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewSettings {
			if a.ports.Settings == nil {
				a.currentView = messages.ViewSearch
				return a, nil
			}
			a.settingsView.Reset()
			return a, a.settingsView.Init()
		}
		return a, nil

	case messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		if msg.Err == nil && msg.Key == debounceKey {
			a.searchView.SetDebounce(a.ports.Settings.Get().Search.Debounce)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Search results and timers keep flowing while other views are shown.
	a.searchView, cmd = a.searchView.Update(msg)
	if a.currentView == messages.ViewSettings {
		var settingsCmd tea.Cmd
		a.settingsView, settingsCmd = a.settingsView.Update(msg)
		cmd = tea.Batch(cmd, settingsCmd)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.searchView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + "\n\n" +
		a.help.FullHelpView(a.keymap.FullHelp()) + "\n\n" +
		a.styles.Help.Render("[esc] back to search")
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))

	// Send blocks until the event loop reads it, and snapshots are also
	// published from inside Update, so deliveries run on their own goroutine.
	unsubscribe := a.ports.Search.Subscribe(func(snap domain.Snapshot) {
		go p.Send(messages.StateChanged{Snapshot: snap})
	})
	defer unsubscribe()

	if a.capabilities != nil {
		go func() {
			for caps := range a.capabilities {
				p.Send(messages.CapabilitiesChanged{Capabilities: caps})
			}
		}()
	}

	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// SearchView returns the search view.
func (a *App) SearchView() *search.View {
	return a.searchView
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width
	a.searchView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
