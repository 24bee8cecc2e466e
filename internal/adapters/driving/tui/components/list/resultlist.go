// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/tui/styles"
)

// Item is one row of a result list.
type Item struct {
	// Title is the main line.
	Title string

	// Meta is shown right of the title, dimmed.
	Meta string

	// Detail is an optional second line.
	Detail string
}

// ResultList displays rows in a navigable list.
type ResultList struct {
	items    []Item
	empty    string
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		empty:  "No results",
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the visible window of rows around the selection.
func (r *ResultList) View() string {
	if len(r.items) == 0 {
		return r.styles.Muted.Render(r.empty)
	}

	// Rows take up to two lines.
	visible := r.height / 2
	if visible < 1 {
		visible = 1
	}

	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := start + visible
	if end > len(r.items) {
		end = len(r.items)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, r.renderItem(i, r.items[i]))
	}
	return strings.Join(lines, "\n")
}

func (r *ResultList) renderItem(index int, item Item) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	maxTitle := r.width - len(item.Meta) - 6
	if maxTitle < 10 {
		maxTitle = 10
	}
	title := truncate(item.Title, maxTitle)

	var line string
	if index == r.selected {
		line = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxTitle, title, item.Meta))
	} else {
		line = r.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxTitle, title)) +
			r.styles.Muted.Render(item.Meta)
	}

	if item.Detail == "" {
		return line
	}
	return line + "\n" + r.styles.Muted.Render("    "+truncate(item.Detail, r.width-6))
}

func truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetItems replaces the rows and resets the selection.
func (r *ResultList) SetItems(items []Item) {
	r.items = items
	r.selected = 0
}

// SetEmptyText sets the text shown when there are no rows.
func (r *ResultList) SetEmptyText(text string) {
	r.empty = text
}

// Items returns the current rows.
func (r *ResultList) Items() []Item {
	return r.items
}

// Selected returns the index of the selected row.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.items) {
		r.selected = index
	}
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.items)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of rows.
func (r *ResultList) Count() int {
	return len(r.items)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.items) == 0
}
