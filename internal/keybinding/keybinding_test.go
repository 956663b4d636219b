package keybinding

import (
	"testing"

	"github.com/coshell/coshell/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpace(t *testing.T) {
	evt, err := Parse("<space>")
	require.NoError(t, err)
	assert.Equal(t, KeyEvent{Code: KeyCode{Char: ' '}, Mods: ModNone}, evt)
}

func TestParseEsc(t *testing.T) {
	evt, err := Parse("<esc>")
	require.NoError(t, err)
	assert.Equal(t, KeyEvent{Code: KeyCode{Named: NamedEsc}, Mods: ModNone}, evt)
}

func TestParsePlainChar(t *testing.T) {
	evt, err := Parse("c")
	require.NoError(t, err)
	assert.Equal(t, Char('c', ModNone), evt)

	evt, err = Parse("C")
	require.NoError(t, err)
	assert.Equal(t, Char('C', ModNone), evt)
}

func TestParseCtrlC(t *testing.T) {
	for _, s := range []string{"C-c", "Ctrl-c"} {
		evt, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, Char('c', ModCtrl), evt)
	}
}

func TestParseCtrlShiftC(t *testing.T) {
	for _, s := range []string{"C-S-c", "Ctrl-Shift-c"} {
		evt, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, Char('c', ModCtrl|ModShift), evt)
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse("")
	assert.Same(t, ErrEmptyKeybinding, err)
}

func TestParseUnknownMod(t *testing.T) {
	_, err := Parse("Foo-c")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "UnknownMod", pe.Kind)
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse("C-<bogus>")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "UnknownKey", pe.Kind)
}

type fakeShell struct{ Name string }

func TestKeybindingsInsertAndHandle(t *testing.T) {
	kb := NewKeybindings[*fakeShell]()
	store := state.NewStore()
	var ran bool

	require.NoError(t, kb.Insert("C-c", "interrupt", func(sh *fakeShell) error {
		ran = true
		assert.Equal(t, "sh", sh.Name)
		return nil
	}))

	evt, err := Parse("Ctrl-c")
	require.NoError(t, err)
	matched, err := kb.Handle(&fakeShell{Name: "sh"}, store, evt)
	require.NoError(t, err)
	assert.True(t, matched)
	assert.True(t, ran)

	info, ok := kb.GetInfo("C-c")
	require.True(t, ok)
	assert.Equal(t, "interrupt", info)
}

func TestKeybindingsHandleUnboundChord(t *testing.T) {
	kb := NewKeybindings[*fakeShell]()
	store := state.NewStore()
	evt, err := Parse("C-x")
	require.NoError(t, err)
	matched, err := kb.Handle(&fakeShell{}, store, evt)
	require.NoError(t, err)
	assert.False(t, matched)
}
