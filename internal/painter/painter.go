// Package painter implements the terminal renderer: it paints the prompt,
// current line, and active menu to the screen each time the line editor's
// event loop ticks.
package painter

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/term"

	"github.com/coshell/coshell/internal/styledbuf"
)

// MenuView is the subset of menu.Menu[T]'s methods Paint needs; any
// instantiation of menu.Menu[T] satisfies it regardless of T.
type MenuView interface {
	IsActive() bool
	RequiredLines() int
	Render() []string
}

// Painter owns the output stream and the running layout state needed to
// repaint the line in place on every keystroke.
type Painter struct {
	out         io.Writer
	fd          int
	termWidth   int
	termHeight  int
	promptLine  int
	numNewlines int
}

// New returns a Painter writing to os.Stdout.
func New() *Painter {
	return &Painter{out: os.Stdout, fd: int(os.Stdout.Fd())}
}

// NewWithOutput returns a Painter writing to an arbitrary stream, for
// tests capturing output.
func NewWithOutput(out io.Writer, fd int) *Painter {
	return &Painter{out: out, fd: fd}
}

// Init clears the internal layout state and measures the terminal,
// advancing the recorded prompt line past any partial line the cursor
// currently sits on.
func (p *Painter) Init() error {
	p.promptLine = 0
	w, h, err := term.GetSize(p.fd)
	if err != nil {
		w, h = 80, 24
	}
	p.termWidth, p.termHeight = w, h
	return nil
}

// Resize updates the cached terminal size without resetting the layout
// state Init owns, for a mid-session SIGWINCH notification.
func (p *Painter) Resize(w, h int) {
	p.termWidth, p.termHeight = w, h
}

// Paint renders the left/right prompt, the current styled line, and the
// active menu (if any), then positions the cursor at cursorIdx.
func (p *Painter) Paint(prLeft, prRight *styledbuf.StyledBuf, m MenuView, line *styledbuf.StyledBuf, cursorIdx int) error {
	var b strings.Builder
	b.WriteString("\033[?25l") // hide cursor

	if m != nil && m.IsActive() {
		required := m.RequiredLines()
		remaining := p.termHeight - p.promptLine
		if required > remaining {
			extra := required - remaining
			b.WriteString(ansiScrollUp(extra))
			p.promptLine -= extra
			if p.promptLine < 0 {
				p.promptLine = 0
			}
		}
	}

	totalNewlines := prLeft.CountNewlines() + line.CountNewlines()
	if p.numNewlines < totalNewlines {
		p.numNewlines = totalNewlines
	}

	row := p.promptLine - p.numNewlines
	if row < 0 {
		row = 0
	}
	b.WriteString(ansiMoveTo(0, row))
	b.WriteString("\033[J") // clear from cursor down

	b.WriteString(prLeft.Render())

	leftSpace := 0
	if totalNewlines == 0 {
		leftSpace += prLeft.ContentWidth()
	}

	lastLine := line.Content()
	if i := strings.LastIndexByte(lastLine, '\n'); i >= 0 {
		lastLine = lastLine[i+1:]
	}
	runes := []rune(lastLine)
	if cursorIdx > len(runes) {
		cursorIdx = len(runes)
	}
	// Grapheme-aware width, so combining marks and wide characters place
	// the cursor on the right column.
	leftSpace += uniseg.StringWidth(string(runes[:cursorIdx]))

	rightRendered := false
	for _, ln := range line.Lines() {
		for _, span := range ln {
			if span.Char == '\n' {
				if !rightRendered {
					b.WriteString(p.renderRight(prRight))
					rightRendered = true
				}
				b.WriteString("\r")
			}
			b.WriteString(span.Style.Lipgloss().Render(string(span.Char)))
		}
	}
	if !rightRendered {
		b.WriteString(p.renderRight(prRight))
	}

	if m != nil && m.IsActive() {
		menuLines := m.Render()
		for _, ln := range menuLines {
			b.WriteString("\n" + ln)
		}
		if len(menuLines) > 0 {
			b.WriteString("\033[" + strconv.Itoa(len(menuLines)) + "A") // back up to the edited line
		}
	}

	b.WriteString(ansiMoveToColumn(leftSpace))
	b.WriteString("\033[?25h") // show cursor

	_, err := io.WriteString(p.out, b.String())
	return err
}

func (p *Painter) renderRight(right *styledbuf.StyledBuf) string {
	space := p.termWidth - right.ContentWidth()
	if space < 0 {
		space = 0
	}
	return ansiMoveToColumn(space) + right.Render()
}

// Newline resets the multi-line tracking and advances the terminal by one
// line, used once the line editor accepts a line.
func (p *Painter) Newline() error {
	p.numNewlines = 0
	_, err := io.WriteString(p.out, "\r\n")
	return err
}

func ansiMoveTo(col, row int) string {
	return "\033[" + strconv.Itoa(row+1) + ";" + strconv.Itoa(col+1) + "H"
}

func ansiMoveToColumn(col int) string {
	return "\033[" + strconv.Itoa(col+1) + "G"
}

func ansiScrollUp(n int) string {
	if n <= 0 {
		return ""
	}
	return "\033[" + strconv.Itoa(n) + "S"
}
