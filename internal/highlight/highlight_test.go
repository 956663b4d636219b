package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexWordsAndOperators(t *testing.T) {
	toks := Lex("ls -la && echo 'hi there'")
	require.Len(t, toks, 5)
	assert.Equal(t, "ls", toks[0].Text)
	assert.Equal(t, Word, toks[0].Kind)
	assert.Equal(t, AndIf, toks[2].Kind)
	assert.Equal(t, "'hi there'", toks[4].Text)
}

func TestLexReservedWords(t *testing.T) {
	toks := Lex("if true; then echo yes; fi")
	var kinds []TokenKind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Contains(t, kinds, If)
	assert.Contains(t, kinds, Then)
	assert.Contains(t, kinds, Fi)
}

func TestDefaultHighlighterStylesWholeLine(t *testing.T) {
	h := NewDefault()
	buf := h.Highlight("echo hi")
	assert.Equal(t, "echo hi", buf.Content())
}

func TestShellThemeStylesCommandWordOnce(t *testing.T) {
	h := NewSyntax()
	buf := h.Highlight("echo hi && ls")
	assert.Equal(t, "echo hi && ls", buf.Content())

	spans := buf.Spans()
	require.NotEmpty(t, spans)
	// "echo" (first word) should carry the command style; "ls" after &&
	// should too, since && resets is_cmd.
	cmdStyle := NewShellTheme().CmdStyle
	assert.Equal(t, cmdStyle, spans[0].Style)
}
