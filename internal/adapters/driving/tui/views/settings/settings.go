// Package settings provides the settings editor view for the TUI.
package settings

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
)

// secretKeys are edited and shown masked.
var secretKeys = map[string]bool{
	"server.token": true,
}

// View lists every setting and edits one at a time.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	keys     []string
	values   map[string]string
	selected int
	editing  bool
	input    textinput.Model
	err      error
	saved    string

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	input := textinput.New()
	input.CharLimit = 512

	return &View{
		styles:          s,
		settingsService: settingsService,
		values:          make(map[string]string),
		input:           input,
	}
}

// Init reloads the settings.
func (v *View) Init() tea.Cmd {
	v.load()
	return nil
}

// Reset leaves edit mode and clears messages.
func (v *View) Reset() {
	v.editing = false
	v.input.Blur()
	v.err = nil
	v.saved = ""
}

func (v *View) load() {
	if v.settingsService == nil {
		return
	}
	v.keys = v.settingsService.Keys()
	for _, k := range v.keys {
		val, err := v.settingsService.Value(k)
		if err != nil {
			v.err = err
			continue
		}
		v.values[k] = val
	}
	if v.selected >= len(v.keys) {
		v.selected = 0
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.saved = msg.Key
		v.load()
		return v, nil

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleListKey(msg)
	}

	return v, nil
}

func (v *View) handleListKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSearch}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.keys)-1 {
			v.selected++
		}
	case "enter":
		if len(v.keys) == 0 {
			return v, nil
		}
		key := v.keys[v.selected]
		v.editing = true
		v.saved = ""
		v.input.EchoMode = textinput.EchoNormal
		if secretKeys[key] {
			v.input.EchoMode = textinput.EchoPassword
		}
		v.input.SetValue(v.values[key])
		v.input.CursorEnd()
		return v, v.input.Focus()
	}
	return v, nil
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.editing = false
		v.input.Blur()
		return v, nil
	case "enter":
		key := v.keys[v.selected]
		value := strings.TrimSpace(v.input.Value())
		v.editing = false
		v.input.Blur()
		svc := v.settingsService
		return v, func() tea.Msg {
			return messages.SettingsSaved{Key: key, Err: svc.Set(key, value)}
		}
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// View renders the settings list.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	width := 0
	for _, k := range v.keys {
		width = max(width, len(k))
	}

	for i, k := range v.keys {
		value := v.values[k]
		if secretKeys[k] {
			value = Mask(value)
		}
		if value == "" {
			value = "(not set)"
		}
		if v.editing && i == v.selected {
			b.WriteString("> " + padRight(k, width) + "  " + v.input.View())
		} else {
			line := padRight(k, width) + "  " + value
			if i == v.selected {
				b.WriteString(v.styles.Selected.Render("> " + line))
			} else {
				b.WriteString(v.styles.Normal.Render("  " + line))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.saved != "":
		b.WriteString(v.styles.Success.Render("Saved " + v.saved))
	}
	b.WriteString("\n")

	if v.editing {
		b.WriteString(v.styles.Help.Render("[Enter] Save  [Esc] Discard"))
	} else {
		b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Edit  [Esc] Back"))
	}
	return b.String()
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.Width = width / 2
}

// Selected returns the selected row index.
func (v *View) Selected() int {
	return v.selected
}

// Editing returns whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the last save error.
func (v *View) Err() error {
	return v.err
}
