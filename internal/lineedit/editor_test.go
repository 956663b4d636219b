package lineedit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coshell/coshell/internal/completion"
	"github.com/coshell/coshell/internal/keybinding"
	"github.com/coshell/coshell/internal/painter"
	"github.com/coshell/coshell/internal/state"
)

type editorCtx struct{}

type fakeEvents struct {
	events []Event
	i      int
}

func keys(evts ...Event) *fakeEvents { return &fakeEvents{events: evts} }

func (f *fakeEvents) Next() (Event, error) {
	if f.i >= len(f.events) {
		return Event{}, errNoEventSource
	}
	e := f.events[f.i]
	f.i++
	return e, nil
}

func charEvt(c rune) Event  { return Event{Kind: EventKey, Key: keybinding.Char(c, keybinding.ModNone)} }
func namedEvt(n string) Event {
	return Event{Kind: EventKey, Key: keybinding.Named(n, keybinding.ModNone)}
}
func ctrlEvt(c rune) Event { return Event{Kind: EventKey, Key: keybinding.Char(c, keybinding.ModCtrl)} }

type fakeHistory struct{ lines []string }

func (h *fakeHistory) Add(line string) { h.lines = append(h.lines, line) }
func (h *fakeHistory) Lines() []string { return h.lines }

type emptyFS struct{}

func (emptyFS) HomeDir() string                               { return "/home/u" }
func (emptyFS) WorkingDir() string                             { return "/home/u" }
func (emptyFS) ReadDir(string) ([]completion.DirEntry, error) { return nil, nil }
func (emptyFS) IsDir(string) bool                              { return false }

func newTestEditor(t *testing.T, evts *fakeEvents) *Editor[editorCtx] {
	t.Helper()
	var buf bytes.Buffer
	return New[editorCtx](Config[editorCtx]{
		Events:  evts,
		Painter: painter.NewWithOutput(&buf, 0),
		History: &fakeHistory{},
	})
}

func TestReadLineAcceptsSimpleLine(t *testing.T) {
	evts := keys(charEvt('h'), charEvt('i'), namedEvt(keybinding.NamedEnter))
	ed := newTestEditor(t, evts)
	store := state.NewStore()

	line, err := ed.ReadLine(editorCtx{}, store)
	require.NoError(t, err)
	require.Equal(t, "hi", line)
}

func TestReadLineCtrlCAbortsToEmptyLine(t *testing.T) {
	evts := keys(charEvt('h'), charEvt('i'), ctrlEvt('c'))
	ed := newTestEditor(t, evts)
	store := state.NewStore()

	line, err := ed.ReadLine(editorCtx{}, store)
	require.NoError(t, err)
	require.Equal(t, "", line)
}

func TestReadLineCtrlDOnEmptyLineReturnsEOF(t *testing.T) {
	evts := keys(ctrlEvt('d'))
	ed := newTestEditor(t, evts)
	store := state.NewStore()

	_, err := ed.ReadLine(editorCtx{}, store)
	require.ErrorIs(t, err, ErrEOF)
}

func TestReadLineQueuedLineAutoRuns(t *testing.T) {
	ed := newTestEditor(t, keys())
	ed.QueueLine("echo hi")
	store := state.NewStore()

	line, err := ed.ReadLine(editorCtx{}, store)
	require.NoError(t, err)
	require.Equal(t, "echo hi", line)
}

func TestReadLineTabAcceptsSoleCompletion(t *testing.T) {
	engine := completion.NewEngine(emptyFS{})
	engine.Register(completion.Rule{
		Pred: func(completion.Context) bool { return true },
		Action: func(completion.Context) []completion.Completion {
			return []completion.Completion{{Value: "world", AddSpace: true, ReplaceMethod: completion.Replace}}
		},
	})

	var buf bytes.Buffer
	ed := New[editorCtx](Config[editorCtx]{
		Events:     keys(charEvt('w'), namedEvt(keybinding.NamedTab), namedEvt(keybinding.NamedEnter)),
		Painter:    painter.NewWithOutput(&buf, 0),
		Completion: engine,
		History:    &fakeHistory{},
	})
	store := state.NewStore()

	line, err := ed.ReadLine(editorCtx{}, store)
	require.NoError(t, err)
	require.Equal(t, "world ", line)
}

func TestReadLineViDeleteWord(t *testing.T) {
	evts := keys(
		charEvt('h'), charEvt('i'), charEvt(' '), charEvt('t'), charEvt('h'), charEvt('e'), charEvt('r'), charEvt('e'),
		namedEvt(keybinding.NamedEsc),
		charEvt('0'),
		charEvt('d'), charEvt('w'),
		charEvt('i'),
		namedEvt(keybinding.NamedEnter),
	)
	ed := newTestEditor(t, evts)
	store := state.NewStore()

	line, err := ed.ReadLine(editorCtx{}, store)
	require.NoError(t, err)
	require.Equal(t, "there", line)
}

func TestReadLineAbbreviationExpandsOnSpace(t *testing.T) {
	abbrevs := NewAbbreviations()
	abbrevs.Insert("gco", "git checkout")

	var buf bytes.Buffer
	ed := New[editorCtx](Config[editorCtx]{
		Events:        keys(charEvt('g'), charEvt('c'), charEvt('o'), charEvt(' '), namedEvt(keybinding.NamedEnter)),
		Painter:       painter.NewWithOutput(&buf, 0),
		History:       &fakeHistory{},
		Abbreviations: abbrevs,
	})
	store := state.NewStore()

	line, err := ed.ReadLine(editorCtx{}, store)
	require.NoError(t, err)
	require.Equal(t, "git checkout ", line)
}

func TestReadLineHistoryUpRecallsPreviousEntry(t *testing.T) {
	hist := &fakeHistory{lines: []string{"first", "second"}}
	var buf bytes.Buffer
	ed := New[editorCtx](Config[editorCtx]{
		Events:  keys(namedEvt(keybinding.NamedUp), namedEvt(keybinding.NamedEnter)),
		Painter: painter.NewWithOutput(&buf, 0),
		History: hist,
	})
	store := state.NewStore()

	line, err := ed.ReadLine(editorCtx{}, store)
	require.NoError(t, err)
	require.Equal(t, "second", line)
}
