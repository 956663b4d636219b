package painter

import (
	"strings"
	"testing"

	"github.com/coshell/coshell/internal/styledbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMenu struct {
	active bool
	lines  []string
}

func (m fakeMenu) IsActive() bool     { return m.active }
func (m fakeMenu) RequiredLines() int { return len(m.lines) }
func (m fakeMenu) Render() []string   { return m.lines }

func TestPaintWritesHideShowCursor(t *testing.T) {
	var buf strings.Builder
	p := NewWithOutput(&buf, -1)
	p.termWidth, p.termHeight = 80, 24

	left := styledbuf.New("$ ")
	right := styledbuf.Empty()
	line := styledbuf.New("echo hi")

	require.NoError(t, p.Paint(left, right, nil, line, 3))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\033[?25l"))
	assert.True(t, strings.HasSuffix(out, "\033[?25h"))
	assert.Contains(t, out, "echo hi")
}

func TestPaintRendersActiveMenu(t *testing.T) {
	var buf strings.Builder
	p := NewWithOutput(&buf, -1)
	p.termWidth, p.termHeight = 80, 24

	left := styledbuf.New("$ ")
	right := styledbuf.Empty()
	line := styledbuf.Empty()
	m := fakeMenu{active: true, lines: []string{"a  b", "c  d"}}

	require.NoError(t, p.Paint(left, right, m, line, 0))
	assert.Contains(t, buf.String(), "a  b")
}

func TestNewlineResetsTracking(t *testing.T) {
	var buf strings.Builder
	p := NewWithOutput(&buf, -1)
	p.numNewlines = 3
	require.NoError(t, p.Newline())
	assert.Equal(t, 0, p.numNewlines)
	assert.Equal(t, "\r\n", buf.String())
}
