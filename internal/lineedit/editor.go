package lineedit

// Editor's ReadLine is the event loop that turns a stream of terminal
// Events into one accepted command line, wiring together the buffer,
// history, completion menu, highlighter, suggester, keybindings and
// painter.

import (
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/coshell/coshell/internal/buffer"
	"github.com/coshell/coshell/internal/completion"
	"github.com/coshell/coshell/internal/highlight"
	"github.com/coshell/coshell/internal/hooks"
	"github.com/coshell/coshell/internal/keybinding"
	"github.com/coshell/coshell/internal/menu"
	"github.com/coshell/coshell/internal/painter"
	"github.com/coshell/coshell/internal/prompt"
	"github.com/coshell/coshell/internal/queue"
	"github.com/coshell/coshell/internal/state"
	"github.com/coshell/coshell/internal/styledbuf"
	"github.com/coshell/coshell/internal/suggest"
)

// ErrEOF is returned by ReadLine when Ctrl-D is pressed on an empty line,
// mirroring a POSIX shell's EOF-on-stdin exit path. Callers (ShellLoop)
// should treat it as a request to exit rather than a failure.
var ErrEOF = errors.New("lineedit: eof")

var errNoEventSource = errors.New("lineedit: no event source configured")

// Config bundles every dependency ReadLine needs. C is the shell-reference
// type threaded through hooks and keybindings.
type Config[C any] struct {
	Hooks       *hooks.Registry[C]
	Keys        *keybinding.Keybindings[C]
	Completion  *completion.Engine
	Highlighter highlight.Highlighter
	Suggester   suggest.Suggester
	History     History
	Prompt      *prompt.Prompt[C]
	Painter     *painter.Painter
	Queue       *queue.Queue[C]
	Events      EventSource
	Term        TermGuard
	Clipboard   Clipboard

	Abbreviations *Abbreviations
	Snippets      map[string]Snippet
	SnippetKey    keybinding.KeyEvent

	// NeedsLineCheck reports whether a would-be command line is an
	// incomplete continuation (an open quote, a trailing backslash), in which
	// case Enter starts a new buffer line instead of accepting.
	NeedsLineCheck func(string) bool

	// SpawnEditor opens $EDITOR on seed and returns its saved contents,
	// backing the vi `v` action.
	SpawnEditor func(seed string) (string, error)
}

// Editor is LineEditor: Config plus the per-instance completion menu and
// undo/redo stack, reused across ReadLine calls.
type Editor[C any] struct {
	cfg           Config[C]
	menu          *menu.Menu[completion.Completion]
	history       *buffer.History
	normalPending []rune
	queuedLine    *string
}

// New returns an Editor ready to call ReadLine on.
func New[C any](cfg Config[C]) *Editor[C] {
	if cfg.Hooks == nil {
		cfg.Hooks = hooks.NewRegistry[C]()
	}
	return &Editor[C]{cfg: cfg, menu: menu.New[completion.Completion](), history: buffer.NewHistory()}
}

// QueueLine preloads text into the next ReadLine call, which returns it
// immediately without waiting on input, used by e.g. a "run last
// command" binding or `history run`.
func (e *Editor[C]) QueueLine(text string) {
	e.queuedLine = &text
}

// ReadLine runs the event loop until a line is accepted (or an error, or
// Ctrl-D on empty input) and returns it.
func (e *Editor[C]) ReadLine(ctx C, store *state.Store) (string, error) {
	release := func() {}
	if e.cfg.Term != nil {
		r, err := e.cfg.Term.Acquire()
		if err != nil {
			return "", err
		}
		var once sync.Once
		release = func() { once.Do(r) }
	}
	defer release()

	if e.cfg.Painter != nil {
		_ = e.cfg.Painter.Init()
	}

	cb := buffer.New()
	lines := ""
	e.history.Clear()
	e.menu.Deactivate()
	e.normalPending = nil

	state.Insert(store, CurrentWord(""))
	state.Insert(store, HistoryInd{Kind: HistoryPrompt})
	state.Insert(store, SavedLine(""))
	state.Insert(store, hooks.ModeInsert)
	state.Insert(store, LineContents{CB: cb, Lines: lines})

	autoRun := false
	if e.queuedLine != nil {
		_ = cb.Insert(buffer.Front(), *e.queuedLine)
		e.queuedLine = nil
		autoRun = true
	}

	for {
		state.Insert(store, CurrentWord(computeCurrentWord(cb)))
		state.Insert(store, LineContents{CB: cb, Lines: lines})

		full := lines + cb.AsStr()
		var styled *styledbuf.StyledBuf
		if e.cfg.Highlighter != nil {
			styled = e.cfg.Highlighter.Highlight(cb.AsStr())
		} else {
			styled = styledbuf.New(cb.AsStr())
		}
		e.appendGhost(styled, cb, full)

		if e.cfg.Painter != nil && e.cfg.Prompt != nil {
			left := e.cfg.Prompt.Left.Render(ctx, store)
			right := e.cfg.Prompt.Right.Render(ctx, store)
			_ = e.cfg.Painter.Paint(left, right, e.menu, styled, cb.Cursor())
		}

		if autoRun {
			e.history.Clear()
			if e.cfg.Painter != nil {
				_ = e.cfg.Painter.Newline()
			}
			e.recordHistory(full)
			return full, nil
		}

		if e.cfg.Events == nil {
			return "", errNoEventSource
		}
		evt, err := e.cfg.Events.Next()
		if err != nil {
			return "", err
		}

		if evt.Kind == EventKey && e.cfg.Keys != nil {
			matched, herr := e.cfg.Keys.Handle(ctx, store, evt.Key)
			if herr != nil {
				return "", herr
			}
			if matched {
				e.drainQueue(ctx, store)
				continue
			}
		}

		consumed, finished, line, uerr := e.handleUniversal(ctx, store, evt, cb, &lines)
		if uerr != nil {
			return "", uerr
		}
		if finished {
			e.recordHistory(line)
			return line, nil
		}
		if consumed {
			e.drainQueue(ctx, store)
			continue
		}
		if evt.Kind != EventKey {
			continue
		}

		switch {
		case e.menu.IsActive():
			e.handleMenuKey(ctx, store, cb, evt.Key)
		case currentMode(store) == hooks.ModeNormal:
			e.handleNormalKey(ctx, store, cb, evt.Key)
		default:
			e.handleInsertKey(ctx, store, cb, evt.Key)
		}

		e.drainQueue(ctx, store)
	}
}

// recordHistory appends an accepted non-empty line to the history back
// end.
func (e *Editor[C]) recordHistory(line string) {
	if e.cfg.History != nil && strings.TrimSpace(line) != "" {
		e.cfg.History.Add(line)
	}
}

func (e *Editor[C]) drainQueue(ctx C, store *state.Store) {
	if e.cfg.Queue != nil {
		e.cfg.Queue.Drain(ctx, store)
	}
}

// handleUniversal handles the keys and events that behave identically
// regardless of line-edit mode: resize, paste, Ctrl-C, Enter,
// Ctrl-D/Ctrl-J, and right-arrow suggestion acceptance.
func (e *Editor[C]) handleUniversal(ctx C, store *state.Store, evt Event, cb *buffer.CursorBuffer, lines *string) (consumed, finished bool, line string, err error) {
	switch evt.Kind {
	case EventResize:
		if e.cfg.Painter != nil {
			e.cfg.Painter.Resize(evt.Width, evt.Height)
		}
		return true, false, "", nil
	case EventPaste:
		_ = cb.Insert(buffer.Cursor(), evt.Paste)
		return true, false, "", nil
	}

	key := evt.Key

	if key.Mods&keybinding.ModCtrl != 0 {
		switch key.Code.Char {
		case 'c':
			cb.Clear()
			*lines = ""
			e.history.Clear()
			if e.cfg.Painter != nil {
				_ = e.cfg.Painter.Newline()
			}
			return true, true, "", nil
		case 'd':
			if cb.IsEmpty() && *lines == "" {
				return false, false, "", ErrEOF
			}
			c, f, l := e.acceptLine(cb, lines)
			return c, f, l, nil
		case 'j':
			c, f, l := e.acceptLine(cb, lines)
			return c, f, l, nil
		}
	}

	if key.Code.Named == keybinding.NamedEnter && !e.menu.IsActive() {
		c, f, l := e.acceptLine(cb, lines)
		return c, f, l, nil
	}

	if key.Code.Named == keybinding.NamedRight && key.Mods == keybinding.ModNone && !e.menu.IsActive() {
		if e.cfg.Suggester != nil && e.cfg.History != nil {
			full := *lines + cb.AsStr()
			if sug, ok := e.cfg.Suggester.Suggest(full, e.cfg.History); ok && len(sug) > len(full) {
				cb.Clear()
				_ = cb.Insert(buffer.Front(), sug[len(*lines):])
				return true, false, "", nil
			}
		}
	}

	return false, false, "", nil
}

// acceptLine implements Enter/Ctrl-J: either accept the full command, or
// (if it is an incomplete continuation) fold the current line into Lines
// and keep reading.
func (e *Editor[C]) acceptLine(cb *buffer.CursorBuffer, lines *string) (consumed, finished bool, line string) {
	full := *lines + cb.AsStr()
	e.history.Clear()
	if e.cfg.Painter != nil {
		_ = e.cfg.Painter.Newline()
	}
	if e.cfg.NeedsLineCheck != nil && e.cfg.NeedsLineCheck(full) {
		*lines = full + "\n"
		cb.Clear()
		return true, false, ""
	}
	return false, true, full
}

func (e *Editor[C]) appendGhost(styled *styledbuf.StyledBuf, cb *buffer.CursorBuffer, full string) {
	if e.menu.IsActive() {
		if sel, ok := e.menu.CurrentSelection(); ok {
			cur := computeCurrentWord(cb)
			accept := sel.Accept()
			if len(accept) > len(cur) {
				styled.Push(accept[len(cur):], ghostStyle)
			}
		}
		return
	}
	if e.cfg.Suggester == nil || e.cfg.History == nil {
		return
	}
	if sug, ok := e.cfg.Suggester.Suggest(full, e.cfg.History); ok && len(sug) > len(full) {
		styled.Push(sug[len(full):], suggestionStyle)
	}
}

var ghostStyle = styledbuf.Style{Dim: true}
var suggestionStyle = styledbuf.Style{Dim: true}

func currentMode(store *state.Store) hooks.LineMode {
	v, release, err := state.Borrow[hooks.LineMode](store)
	if err != nil {
		return hooks.ModeInsert
	}
	defer release()
	return *v
}

func (e *Editor[C]) switchMode(ctx C, store *state.Store, mode hooks.LineMode) {
	state.Insert(store, mode)
	_ = hooks.Emit[hooks.LineModeSwitch, C](e.cfg.Hooks, ctx, store, hooks.LineModeSwitch{Mode: mode})
}

// handleInsertKey applies one key event in Insert mode.
func (e *Editor[C]) handleInsertKey(ctx C, store *state.Store, cb *buffer.CursorBuffer, key keybinding.KeyEvent) {
	if e.cfg.SnippetKey != (keybinding.KeyEvent{}) && key == e.cfg.SnippetKey {
		e.tryExpandSnippet(cb)
		return
	}

	switch key.Code.Named {
	case keybinding.NamedTab:
		e.triggerCompletion(cb)
		return
	case keybinding.NamedLeft:
		_ = cb.MoveCursor(buffer.RelAt(-1))
		return
	case keybinding.NamedRight:
		_ = cb.MoveCursor(buffer.RelAt(1))
		return
	case keybinding.NamedUp:
		e.historyUp(store, cb)
		return
	case keybinding.NamedDown:
		e.historyDown(store, cb)
		return
	case keybinding.NamedBackspace:
		if cb.Cursor() > 0 {
			_ = cb.Delete(buffer.RelAt(-1), buffer.Cursor())
		}
		return
	case keybinding.NamedDelete:
		_ = cb.Delete(buffer.Cursor(), buffer.RelAt(1))
		return
	case keybinding.NamedEsc:
		e.history.Snapshot(cb)
		e.switchMode(ctx, store, hooks.ModeNormal)
		return
	}

	if key.Code.Char == 0 {
		return
	}

	if key.Mods&keybinding.ModCtrl != 0 {
		switch key.Code.Char {
		case 'a':
			_ = cb.MoveCursor(buffer.Front())
		case 'e':
			_ = cb.MoveCursor(buffer.Back(cb))
		case 'w':
			text := []rune(cb.AsStr())
			start, _ := wordBounds(text, cb.Cursor())
			for start > 0 && unicode.IsSpace(text[start-1]) {
				start--
			}
			_ = cb.Delete(buffer.AbsAt(start), buffer.Cursor())
		}
		return
	}

	if key.Code.Char == ' ' {
		e.maybeExpandAbbreviation(cb)
	}
	_ = cb.Insert(buffer.Cursor(), string(key.Code.Char))
}

func (e *Editor[C]) historyUp(store *state.Store, cb *buffer.CursorBuffer) {
	if e.cfg.History == nil {
		return
	}
	hlines := e.cfg.History.Lines()
	if len(hlines) == 0 {
		return
	}
	ind, release, err := state.BorrowMut[HistoryInd](store)
	if err != nil {
		return
	}
	defer release()
	if ind.Kind == HistoryPrompt {
		state.Insert(store, SavedLine(cb.AsStr()))
	}
	*ind = ind.Up(len(hlines))
	cb.Clear()
	_ = cb.Insert(buffer.Front(), hlines[len(hlines)-1-ind.Index])
}

func (e *Editor[C]) historyDown(store *state.Store, cb *buffer.CursorBuffer) {
	ind, release, err := state.BorrowMut[HistoryInd](store)
	if err != nil {
		return
	}
	defer release()
	*ind = ind.Down()
	cb.Clear()
	if ind.Kind == HistoryPrompt {
		if saved, release2, err := state.Borrow[SavedLine](store); err == nil {
			defer release2()
			_ = cb.Insert(buffer.Front(), string(*saved))
		}
		return
	}
	if e.cfg.History == nil {
		return
	}
	hlines := e.cfg.History.Lines()
	if ind.Index >= 0 && ind.Index < len(hlines) {
		_ = cb.Insert(buffer.Front(), hlines[len(hlines)-1-ind.Index])
	}
}

func (e *Editor[C]) triggerCompletion(cb *buffer.CursorBuffer) {
	if e.cfg.Completion == nil {
		return
	}
	ctx := completionContext(cb)
	cur, _ := ctx.CurWord()
	completions := e.cfg.Completion.Complete(ctx)
	entries := make([]menu.Entry[completion.Completion], len(completions))
	for i, c := range completions {
		entries[i] = menu.Entry[completion.Completion]{Preview: c.DisplayText(), Item: c}
	}
	e.menu.SetItems(entries)
	switch len(completions) {
	case 0:
		e.menu.Deactivate()
	case 1:
		applyCompletion(cb, cur, completions[0])
		e.menu.Deactivate()
	default:
		e.menu.Activate()
	}
}

func completionContext(cb *buffer.CursorBuffer) completion.Context {
	text := cb.Slice(0, cb.Cursor())
	words := strings.Split(text, " ")
	args := make([]string, 0, len(words))
	for i, w := range words {
		if w == "" && i != len(words)-1 {
			continue
		}
		args = append(args, w)
	}
	if len(args) == 0 {
		args = []string{""}
	}
	return completion.Context{Args: args, ArgNum: len(args) - 1}
}

func applyCompletion(cb *buffer.CursorBuffer, cur string, comp completion.Completion) {
	text := comp.Accept()
	if comp.ReplaceMethod == completion.Replace {
		width := len([]rune(cur))
		end := cb.Cursor()
		start := end - width
		if start < 0 {
			start = 0
		}
		_ = cb.Delete(buffer.AbsAt(start), buffer.AbsAt(end))
		_ = cb.Insert(buffer.AbsAt(start), text)
		return
	}
	_ = cb.Insert(buffer.Cursor(), text)
}

func (e *Editor[C]) handleMenuKey(ctx C, store *state.Store, cb *buffer.CursorBuffer, key keybinding.KeyEvent) {
	switch key.Code.Named {
	case keybinding.NamedEnter:
		if comp, ok := e.menu.Accept(); ok {
			cur := computeCurrentWord(cb)
			applyCompletion(cb, cur, comp)
		}
		return
	case keybinding.NamedEsc:
		e.menu.Deactivate()
		return
	case keybinding.NamedDown:
		e.menu.Next()
		return
	case keybinding.NamedUp:
		e.menu.Previous()
		return
	case keybinding.NamedTab:
		if key.Mods&keybinding.ModShift != 0 {
			e.menu.Previous()
		} else {
			e.menu.Next()
		}
		return
	}

	e.menu.Deactivate()
	if currentMode(store) == hooks.ModeNormal {
		e.handleNormalKey(ctx, store, cb, key)
	} else {
		e.handleInsertKey(ctx, store, cb, key)
	}
}

// handleNormalKey accumulates key.Code.Char runes into the pending vi
// command buffer and executes it once parseViCommand reports it complete.
func (e *Editor[C]) handleNormalKey(ctx C, store *state.Store, cb *buffer.CursorBuffer, key keybinding.KeyEvent) {
	if key.Code.Named != "" {
		return
	}
	if len(e.normalPending) == 0 && key.Code.Char == 'i' {
		e.switchMode(ctx, store, hooks.ModeInsert)
		return
	}

	e.normalPending = append(e.normalPending, key.Code.Char)
	res, err := parseViCommand(e.normalPending)
	if err != nil {
		e.normalPending = nil
		return
	}
	if !res.ok {
		return
	}

	e.execViAction(res.action, cb)
	if res.action.Kind != ViUndo && res.action.Kind != ViRedo {
		e.history.Snapshot(cb)
	}
	e.normalPending = nil
}

func (e *Editor[C]) execViAction(a ViAction, cb *buffer.CursorBuffer) {
	switch a.Kind {
	case ViMove:
		for i := 0; i < a.Repeat; i++ {
			_ = cb.MoveCursor(motionLoc(cb, a.Motion, a.Find))
		}
	case ViDeleteChar:
		_ = cb.Delete(buffer.Cursor(), buffer.RelAt(a.Repeat))
	case ViDelete:
		target := motionLoc(cb, a.Motion, a.Find)
		_ = cb.Delete(buffer.Cursor(), target)
	case ViYank:
		target := motionLoc(cb, a.Motion, a.Find)
		lo, hi := e.cursorRange(cb, target)
		if e.cfg.Clipboard != nil {
			_ = e.cfg.Clipboard.Copy(cb.Slice(lo, hi))
		}
	case ViPaste, ViPasteBefore:
		if e.cfg.Clipboard == nil {
			return
		}
		text, err := e.cfg.Clipboard.Paste()
		if err != nil || text == "" {
			return
		}
		if a.Kind == ViPaste {
			_ = cb.Insert(buffer.After(), text)
		} else {
			_ = cb.Insert(buffer.Cursor(), text)
		}
	case ViUndo:
		e.history.Undo(cb)
	case ViRedo:
		e.history.Redo(cb)
	case ViToggleCase:
		for i := 0; i < a.Repeat; i++ {
			c, ok := cb.CharAt(buffer.Cursor())
			if !ok {
				break
			}
			_ = cb.InsertInplace(buffer.Cursor(), toggleCase(c))
			_ = cb.MoveCursor(buffer.RelAt(1))
		}
	case ViUpperCase, ViLowerCase:
		target := motionLoc(cb, a.Motion, a.Find)
		lo, hi := e.cursorRange(cb, target)
		text := cb.Slice(lo, hi)
		changed := strings.ToLower(text)
		if a.Kind == ViUpperCase {
			changed = strings.ToUpper(text)
		}
		_ = cb.Delete(buffer.AbsAt(lo), buffer.AbsAt(hi))
		_ = cb.Insert(buffer.AbsAt(lo), changed)
	case ViEditor:
		if e.cfg.SpawnEditor == nil {
			return
		}
		out, err := e.cfg.SpawnEditor(cb.AsStr())
		if err != nil {
			return
		}
		cb.Clear()
		_ = cb.Insert(buffer.Front(), strings.TrimSpace(out))
	}
}

func (e *Editor[C]) cursorRange(cb *buffer.CursorBuffer, target buffer.Location) (int, int) {
	cur := cb.Cursor()
	t, err := cb.ToAbsolute(target)
	if err != nil {
		return cur, cur
	}
	if t < cur {
		return t, cur
	}
	return cur, t
}

func toggleCase(r rune) string {
	if unicode.IsUpper(r) {
		return strings.ToLower(string(r))
	}
	return strings.ToUpper(string(r))
}

func motionLoc(cb *buffer.CursorBuffer, m Motion, find rune) buffer.Location {
	switch m {
	case MotionLeft:
		return buffer.RelAt(-1)
	case MotionRight:
		return buffer.RelAt(1)
	case MotionStart:
		return buffer.Front()
	case MotionEnd:
		return buffer.Back(cb)
	case MotionWord:
		return wordForwardLoc(cb)
	case MotionBack:
		return wordBackLoc(cb)
	case MotionFind:
		if loc, ok := buffer.Find(cb, buffer.After(), func(r rune) bool { return r == find }); ok {
			return loc
		}
		return buffer.Cursor()
	}
	return buffer.Cursor()
}

func wordForwardLoc(cb *buffer.CursorBuffer) buffer.Location {
	text := []rune(cb.AsStr())
	i, n := cb.Cursor(), len(text)
	for i < n && !unicode.IsSpace(text[i]) {
		i++
	}
	for i < n && unicode.IsSpace(text[i]) {
		i++
	}
	return buffer.AbsAt(i)
}

func wordBackLoc(cb *buffer.CursorBuffer) buffer.Location {
	text := []rune(cb.AsStr())
	i := cb.Cursor()
	for i > 0 && unicode.IsSpace(text[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(text[i-1]) {
		i--
	}
	return buffer.AbsAt(i)
}

func wordBounds(text []rune, cursor int) (int, int) {
	start := cursor
	for start > 0 && !unicode.IsSpace(text[start-1]) {
		start--
	}
	end := cursor
	for end < len(text) && !unicode.IsSpace(text[end]) {
		end++
	}
	return start, end
}

func computeCurrentWord(cb *buffer.CursorBuffer) string {
	text := []rune(cb.AsStr())
	start, end := wordBounds(text, cb.Cursor())
	return string(text[start:end])
}

func (e *Editor[C]) maybeExpandAbbreviation(cb *buffer.CursorBuffer) {
	if e.cfg.Abbreviations == nil {
		return
	}
	text := []rune(cb.AsStr())
	start, end := wordBounds(text, cb.Cursor())
	word := string(text[start:end])
	if word == "" {
		return
	}
	if expansion, ok := e.cfg.Abbreviations.Expand(word); ok {
		_ = cb.Delete(buffer.AbsAt(start), buffer.AbsAt(end))
		_ = cb.Insert(buffer.AbsAt(start), expansion)
	}
}

func (e *Editor[C]) tryExpandSnippet(cb *buffer.CursorBuffer) {
	if e.cfg.Snippets == nil {
		return
	}
	text := []rune(cb.AsStr())
	start, end := wordBounds(text, cb.Cursor())
	word := string(text[start:end])
	snip, ok := e.cfg.Snippets[word]
	if !ok {
		return
	}
	if snip.Position == SnippetCommand && strings.TrimSpace(string(text[:start])) != "" {
		return
	}
	_ = cb.Delete(buffer.AbsAt(start), buffer.AbsAt(end))
	_ = cb.Insert(buffer.AbsAt(start), snip.Value)
}
