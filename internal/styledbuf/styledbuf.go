package styledbuf

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// StyledBuf is a character-parallel styled string: one Style per
// character, index-aligned. Content is stored as runes internally so the
// alignment holds for non-ASCII text too.
type StyledBuf struct {
	runes  []rune
	styles []Style
}

// Empty returns an empty StyledBuf.
func Empty() *StyledBuf { return &StyledBuf{} }

// New returns a StyledBuf holding content with the zero Style throughout.
func New(content string) *StyledBuf {
	b := Empty()
	b.Push(content, Style{})
	return b
}

// Push appends content, all styled with style.
func (b *StyledBuf) Push(content string, style Style) {
	rs := []rune(content)
	b.runes = append(b.runes, rs...)
	for range rs {
		b.styles = append(b.styles, style)
	}
}

// PushBuf appends another StyledBuf's content and styles, preserving
// per-character alignment.
func (b *StyledBuf) PushBuf(other *StyledBuf) {
	b.runes = append(b.runes, other.runes...)
	b.styles = append(b.styles, other.styles...)
}

// Content returns the buffer's raw text.
func (b *StyledBuf) Content() string { return string(b.runes) }

// Len returns the number of characters held.
func (b *StyledBuf) Len() int { return len(b.runes) }

// ContentWidth returns the visual (terminal column) width of the content.
func (b *StyledBuf) ContentWidth() int { return runewidth.StringWidth(string(b.runes)) }

// CountNewlines returns how many '\n' characters the content contains.
func (b *StyledBuf) CountNewlines() int {
	n := 0
	for _, r := range b.runes {
		if r == '\n' {
			n++
		}
	}
	return n
}

// ApplyStyle sets style on every character in the buffer.
func (b *StyledBuf) ApplyStyle(style Style) {
	for i := range b.styles {
		b.styles[i] = style
	}
}

// ApplyStyleAt sets style on the character at index.
func (b *StyledBuf) ApplyStyleAt(index int, style Style) {
	if index >= 0 && index < len(b.styles) {
		b.styles[index] = style
	}
}

// ApplyStyleInRange sets style on every character in [lo, hi).
func (b *StyledBuf) ApplyStyleInRange(lo, hi int, style Style) {
	for i := lo; i < hi && i < len(b.styles); i++ {
		if i >= 0 {
			b.styles[i] = style
		}
	}
}

// SliceFrom returns the suffix of b starting at the character index start.
// Returns an empty buffer if start is out of range.
func (b *StyledBuf) SliceFrom(start int) *StyledBuf {
	if start >= len(b.runes) {
		return Empty()
	}
	if start < 0 {
		start = 0
	}
	out := &StyledBuf{}
	out.runes = append(out.runes, b.runes[start:]...)
	out.styles = append(out.styles, b.styles[start:]...)
	return out
}

// Span is one rendered character plus its style.
type Span struct {
	Char  rune
	Style Style
}

// Spans returns every character paired with its style.
func (b *StyledBuf) Spans() []Span {
	out := make([]Span, len(b.runes))
	for i, r := range b.runes {
		out[i] = Span{Char: r, Style: b.styles[i]}
	}
	return out
}

// Lines splits the buffer on '\n', returning each line's spans.
func (b *StyledBuf) Lines() [][]Span {
	var lines [][]Span
	var cur []Span
	for i, r := range b.runes {
		if r == '\n' {
			lines = append(lines, cur)
			cur = nil
			continue
		}
		cur = append(cur, Span{Char: r, Style: b.styles[i]})
	}
	lines = append(lines, cur)
	return lines
}

// Render converts the buffer to an ANSI string via lipgloss, running
// adjacent same-style spans together to minimize escape sequences.
func (b *StyledBuf) Render() string {
	var out strings.Builder
	spans := b.Spans()
	i := 0
	for i < len(spans) {
		j := i + 1
		for j < len(spans) && spans[j].Style == spans[i].Style {
			j++
		}
		var run strings.Builder
		for k := i; k < j; k++ {
			run.WriteRune(spans[k].Char)
		}
		out.WriteString(spans[i].Style.Lipgloss().Render(run.String()))
		i = j
	}
	return out.String()
}

// String implements fmt.Stringer.
func (b *StyledBuf) String() string { return b.Content() }

// FromIter concatenates several StyledBufs into one.
func FromIter(parts ...*StyledBuf) *StyledBuf {
	out := Empty()
	for _, p := range parts {
		out.PushBuf(p)
	}
	return out
}
