// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

// Change reports what a key press did to the input.
type Change int

// Changes, from least to most significant.
const (
	Unchanged Change = iota
	CursorMoved
	TextChanged
)

// SearchInput wraps a bubbles textinput with a label.
type SearchInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewSearchInput creates the search box.
func NewSearchInput(s *styles.Styles) *SearchInput {
	return NewLabelledInput(s, "Search: ", "Search messages and files...")
}

// NewLabelledInput creates a focused input with a label and placeholder.
func NewLabelledInput(s *styles.Styles, label, placeholder string) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	return &SearchInput{
		textinput: ti,
		styles:    s,
		label:     label,
		width:     50,
	}
}

// Init initialises the search input.
func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	return s, cmd
}

// Edit applies msg and reports whether the text or only the cursor moved.
func (s *SearchInput) Edit(msg tea.Msg) (Change, tea.Cmd) {
	before := s.Query()
	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	after := s.Query()

	switch {
	case after.Text != before.Text:
		return TextChanged, cmd
	case after.Cursor != before.Cursor:
		return CursorMoved, cmd
	default:
		return Unchanged, cmd
	}
}

// Query returns the text and cursor as a domain query.
func (s *SearchInput) Query() domain.RawQuery {
	return domain.RawQuery{Text: s.textinput.Value(), Cursor: s.textinput.Position()}
}

// View renders the input with its label.
func (s *SearchInput) View() string {
	label := s.styles.Title.Render(s.label)
	input := s.styles.InputField.Render(s.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, input)
}

// Value returns the current input value.
func (s *SearchInput) Value() string {
	return s.textinput.Value()
}

// SetValue sets the input value and moves the cursor to the end.
func (s *SearchInput) SetValue(value string) {
	s.textinput.SetValue(value)
	s.textinput.CursorEnd()
}

// Position returns the cursor position in runes.
func (s *SearchInput) Position() int {
	return s.textinput.Position()
}

// Focus sets focus on the input.
func (s *SearchInput) Focus() tea.Cmd {
	return s.textinput.Focus()
}

// Blur removes focus from the input.
func (s *SearchInput) Blur() {
	s.textinput.Blur()
}

// Focused returns whether the input is focused.
func (s *SearchInput) Focused() bool {
	return s.textinput.Focused()
}

// SetWidth sets the width of the input.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	inputWidth := width - lipgloss.Width(s.label) - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	s.textinput.Width = inputWidth
}

// Width returns the current width.
func (s *SearchInput) Width() int {
	return s.width
}

// Reset clears the input.
func (s *SearchInput) Reset() {
	s.textinput.Reset()
}
