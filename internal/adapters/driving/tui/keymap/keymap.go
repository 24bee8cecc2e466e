// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the search box, or cancels the search from it.
	Back key.Binding

	// Search submits the query without waiting for the debounce.
	Search key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Select confirms a selection.
	Select key.Binding

	// NextTab switches between the messages and files tabs.
	NextTab key.Binding

	// NextFilter cycles the file filter forwards.
	NextFilter key.Binding

	// PrevFilter cycles the file filter backwards.
	PrevFilter key.Binding

	// Team prompts for another team to search.
	Team key.Binding

	// NewSearch focuses the search box from the results.
	NewSearch key.Binding

	// Options opens the file options menu on a file result.
	Options key.Binding

	// Remove deletes the selected recent search.
	Remove key.Binding

	// Settings opens the settings editor.
	Settings key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Search: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "messages/files"),
		),
		NextFilter: key.NewBinding(
			key.WithKeys("f", "ctrl+f"),
			key.WithHelp("f", "next filter"),
		),
		PrevFilter: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "prev filter"),
		),
		Team: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "team"),
		),
		NewSearch: key.NewBinding(
			key.WithKeys("n", "/"),
			key.WithHelp("/", "new search"),
		),
		Options: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("enter", "file options"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
		Settings: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "settings"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Team, k.Settings, k.Back}
}

// ResultsHelp returns keybindings for the results view.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewSearch, k.NextTab, k.NextFilter, k.Options, k.Quit}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Back, k.Team, k.Settings},
		{k.Up, k.Down, k.NextTab, k.NewSearch},
		{k.NextFilter, k.PrevFilter, k.Options, k.Remove},
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
