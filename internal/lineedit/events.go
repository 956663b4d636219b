package lineedit

import (
	"bufio"
	"io"

	"github.com/coshell/coshell/internal/keybinding"
)

// EventKind tags Event's variant.
type EventKind int

const (
	EventKey EventKind = iota
	EventPaste
	EventResize
)

// Event is a decoded terminal event: a key chord, a bracketed paste, or a
// terminal resize.
type Event struct {
	Kind   EventKind
	Key    keybinding.KeyEvent
	Paste  string
	Width  int
	Height int
}

// EventSource produces one Event at a time, blocking until one is
// available.
type EventSource interface {
	Next() (Event, error)
}

var bracketedPasteStart = []byte("\x1b[200~")
var bracketedPasteEnd = []byte("\x1b[201~")

// EventReader adapts a Reader plus a resize-notification channel into an
// EventSource, decoding the bracketed-paste escape sequence into a single
// Paste event instead of a run of Key events.
type EventReader struct {
	rd     *Reader
	buf    *bufio.Reader
	resize <-chan [2]int
}

// NewEventReader wraps r for key/paste decoding; resize, if non-nil,
// delivers [width,height] pairs whenever the terminal is resized.
func NewEventReader(r io.Reader, resize <-chan [2]int) *EventReader {
	buf := bufio.NewReader(r)
	return &EventReader{rd: newReaderFromBufio(buf), buf: buf, resize: resize}
}

// Next returns the next decoded event, preferring a pending resize
// notification over blocking on terminal input.
func (e *EventReader) Next() (Event, error) {
	if e.resize != nil {
		select {
		case sz := <-e.resize:
			return Event{Kind: EventResize, Width: sz[0], Height: sz[1]}, nil
		default:
		}
	}

	if e.looksLikePasteStart() {
		text, err := e.readPasteBody()
		return Event{Kind: EventPaste, Paste: text}, err
	}

	key, err := e.rd.ReadKey()
	return Event{Kind: EventKey, Key: key}, err
}

func (e *EventReader) looksLikePasteStart() bool {
	peek, err := e.buf.Peek(len(bracketedPasteStart))
	if err != nil {
		return false
	}
	for i, b := range bracketedPasteStart {
		if peek[i] != b {
			return false
		}
	}
	return true
}

func (e *EventReader) readPasteBody() (string, error) {
	if _, err := e.buf.Discard(len(bracketedPasteStart)); err != nil {
		return "", err
	}
	var out []byte
	for {
		b, err := e.buf.ReadByte()
		if err != nil {
			return string(out), err
		}
		out = append(out, b)
		if len(out) >= len(bracketedPasteEnd) && endsWith(out, bracketedPasteEnd) {
			return string(out[:len(out)-len(bracketedPasteEnd)]), nil
		}
	}
}

func endsWith(b, suffix []byte) bool {
	if len(b) < len(suffix) {
		return false
	}
	tail := b[len(b)-len(suffix):]
	for i, c := range suffix {
		if tail[i] != c {
			return false
		}
	}
	return true
}
