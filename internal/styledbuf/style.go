// Package styledbuf implements StyledBuf, the character-parallel styled
// string type used by the prompt, highlighter and painter.
package styledbuf

import "github.com/charmbracelet/lipgloss"

// Style is a record of foreground, background and attribute bits for a
// single character. Empty Style (the zero value) renders as plain text.
type Style struct {
	Foreground lipgloss.Color
	Background lipgloss.Color
	Bold       bool
	Italic     bool
	Underline  bool
	Reverse    bool
	Dim        bool
	Blink      bool
	Hidden     bool
	CrossedOut bool
}

// Lipgloss converts a Style into a lipgloss.Style for rendering.
func (s Style) Lipgloss() lipgloss.Style {
	ls := lipgloss.NewStyle()
	if s.Foreground != "" {
		ls = ls.Foreground(s.Foreground)
	}
	if s.Background != "" {
		ls = ls.Background(s.Background)
	}
	return ls.
		Bold(s.Bold).
		Italic(s.Italic).
		Underline(s.Underline).
		Reverse(s.Reverse).
		Faint(s.Dim).
		Blink(s.Blink).
		Strikethrough(s.CrossedOut)
}

// Fg returns a copy of s with the foreground color set.
func (s Style) Fg(c lipgloss.Color) Style { s.Foreground = c; return s }

// Bg returns a copy of s with the background color set.
func (s Style) Bg(c lipgloss.Color) Style { s.Background = c; return s }
