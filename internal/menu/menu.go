// Package menu implements the general-purpose selection menu used by the
// line editor for completion.
package menu

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Entry pairs a rendered preview with the underlying item it stands for.
type Entry[T any] struct {
	Preview string
	Item    T
}

// Menu is a column-major, wrap-around selection list.
type Menu[T any] struct {
	entries       []Entry[T]
	cursor        int
	active        bool
	maxRows       int
	columnPadding int
	limit         int

	SelectedStyle   lipgloss.Style
	UnselectedStyle lipgloss.Style
}

// New returns an empty Menu with the default layout (5 rows, 2-column
// padding, 20-entry render limit).
func New[T any]() *Menu[T] {
	return &Menu[T]{
		maxRows:       5,
		columnPadding: 2,
		limit:         20,
		SelectedStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("15")).
			Foreground(lipgloss.Color("0")),
		UnselectedStyle: lipgloss.NewStyle(),
	}
}

// NewWithLimit is New but overriding the render limit.
func NewWithLimit[T any](limit int) *Menu[T] {
	m := New[T]()
	m.limit = limit
	return m
}

// Next advances the cursor, wrapping to the first entry.
func (m *Menu[T]) Next() {
	if len(m.entries) == 0 {
		return
	}
	if m.cursor == len(m.entries)-1 {
		m.cursor = 0
	} else {
		m.cursor++
	}
}

// Previous retreats the cursor, wrapping to the last entry.
func (m *Menu[T]) Previous() {
	if len(m.entries) == 0 {
		return
	}
	if m.cursor == 0 {
		m.cursor = len(m.entries) - 1
	} else {
		m.cursor--
	}
}

// Accept deactivates the menu and returns the current selection.
func (m *Menu[T]) Accept() (T, bool) {
	m.Deactivate()
	return m.CurrentSelection()
}

// CurrentSelection returns the item under the cursor, if any.
func (m *Menu[T]) CurrentSelection() (T, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		var zero T
		return zero, false
	}
	return m.entries[m.cursor].Item, true
}

// Cursor returns the current cursor position.
func (m *Menu[T]) Cursor() int { return m.cursor }

// IsActive reports whether the menu is currently displayed.
func (m *Menu[T]) IsActive() bool { return m.active }

// Activate turns the menu on, unless it has no entries.
func (m *Menu[T]) Activate() { m.active = len(m.entries) > 0 }

// Deactivate hides the menu.
func (m *Menu[T]) Deactivate() { m.active = false }

// Items returns the menu's current entries.
func (m *Menu[T]) Items() []Entry[T] { return m.entries }

// SetItems replaces the menu's entries and resets the cursor.
func (m *Menu[T]) SetItems(entries []Entry[T]) {
	m.entries = entries
	m.cursor = 0
}

// RequiredLines reports how many terminal rows the menu needs: one per row
// Render returns, plus one for the line being edited above it.
func (m *Menu[T]) RequiredLines() int {
	n := len(m.entries)
	if n > m.maxRows {
		n = m.maxRows
	}
	return n + 1
}

// Render lays the menu out column-major, respecting limit/maxRows/
// columnPadding, and returns the rendered lines (one per row).
func (m *Menu[T]) Render() []string {
	items := m.entries
	if len(items) > m.limit {
		items = items[:m.limit]
	}
	if len(items) == 0 {
		return nil
	}

	rows := m.maxRows
	if rows <= 0 {
		rows = 1
	}
	if len(items) < rows {
		rows = len(items)
	}
	numCols := (len(items) + rows - 1) / rows

	// Build the grid unstyled first so column widths ignore ANSI codes,
	// then style each cell in a second pass.
	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, numCols)
	}

	idx := 0
	colWidths := make([]int, numCols)
	for col := 0; col < numCols; col++ {
		for row := 0; row < rows && idx < len(items); row++ {
			cell := items[idx].Preview
			grid[row][col] = cell
			if w := runewidth.StringWidth(cell); w > colWidths[col] {
				colWidths[col] = w
			}
			idx++
		}
	}

	lines := make([]string, rows)
	idx = 0
	for col := 0; col < numCols; col++ {
		for row := 0; row < rows; row++ {
			if idx >= len(items) {
				continue
			}
			cell := grid[row][col]
			style := m.UnselectedStyle
			if idx == m.cursor {
				style = m.SelectedStyle
			}
			pad := colWidths[col] - runewidth.StringWidth(cell)
			if col < numCols-1 {
				pad += m.columnPadding
			}
			lines[row] += style.Render(cell) + strings.Repeat(" ", pad)
			idx++
		}
	}
	return lines
}
