// Package highlight implements the Highlighter interface: given the
// current line, produce a styled rendering of it.
package highlight

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/coshell/coshell/internal/styledbuf"
)

// Highlighter turns a raw line into a StyledBuf.
type Highlighter interface {
	Highlight(line string) *styledbuf.StyledBuf
}

// Default colors the entire line a single style.
type Default struct {
	Style styledbuf.Style
}

// NewDefault returns a Default highlighter styled green.
func NewDefault() *Default {
	return &Default{Style: styledbuf.Style{Foreground: lipgloss.Color("2")}}
}

func (d *Default) Highlight(line string) *styledbuf.StyledBuf {
	buf := styledbuf.Empty()
	buf.Push(line, d.Style)
	return buf
}

// Theme is a pluggable layer that mutates a StyledBuf in place to apply
// a particular visual treatment; themes stack in registration order.
type Theme interface {
	Apply(buf *styledbuf.StyledBuf, line string)
}

// Syntax runs auto-styling followed by each registered Theme, in order.
type Syntax struct {
	Auto   styledbuf.Style
	Themes []Theme
}

// NewSyntax returns a Syntax highlighter with the default shell theme
// registered.
func NewSyntax() *Syntax {
	return &Syntax{Themes: []Theme{NewShellTheme()}}
}

// PushTheme appends a Theme to the pipeline.
func (s *Syntax) PushTheme(t Theme) { s.Themes = append(s.Themes, t) }

func (s *Syntax) Highlight(line string) *styledbuf.StyledBuf {
	buf := styledbuf.New(line)
	buf.ApplyStyle(s.Auto)
	for _, t := range s.Themes {
		t.Apply(buf, line)
	}
	return buf
}

// ShellTheme colors command words, reserved words, and quoted strings
// based on a minimal shell lexer.
type ShellTheme struct {
	CmdStyle      styledbuf.Style
	StringStyle   styledbuf.Style
	ReservedStyle styledbuf.Style
}

// NewShellTheme returns the default palette: blue commands, green
// strings, yellow reserved words.
func NewShellTheme() *ShellTheme {
	return &ShellTheme{
		CmdStyle:      styledbuf.Style{Foreground: lipgloss.Color("4")},
		StringStyle:   styledbuf.Style{Foreground: lipgloss.Color("2")},
		ReservedStyle: styledbuf.Style{Foreground: lipgloss.Color("3")},
	}
}

func (t *ShellTheme) Apply(buf *styledbuf.StyledBuf, line string) {
	isCmd := true
	for _, tok := range Lex(line) {
		switch tok.Kind {
		case Word:
			if isCmd {
				buf.ApplyStyleInRange(tok.Start, tok.End, t.CmdStyle)
				isCmd = false
			}
			if strings.HasPrefix(tok.Text, "'") || strings.HasPrefix(tok.Text, "\"") {
				buf.ApplyStyleInRange(tok.Start, tok.End, t.StringStyle)
			}
		case If, Then, Else, Elif, Do, Done, Case, Esac, While, Until, For, In, Fi:
			buf.ApplyStyleInRange(tok.Start, tok.End, t.ReservedStyle)
		}
		switch tok.Kind {
		case If, Then, Else, Elif, Do, Case, AndIf, OrIf, Semi, DSemi, Amp, Pipe:
			isCmd = true
		}
	}
}
