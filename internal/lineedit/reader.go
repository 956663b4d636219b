package lineedit

import (
	"bufio"
	"bytes"
	"io"

	"github.com/coshell/coshell/internal/keybinding"
)

// Reader decodes a raw byte stream (a terminal in raw mode) into
// keybinding.KeyEvents, handling ANSI escape sequences for arrows and
// friends and Ctrl+letter combinations.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// newReaderFromBufio wraps an already-buffered reader without adding a
// second layer of buffering, so callers sharing the same bufio.Reader (to
// Peek/Discard ahead of it, e.g. for bracketed-paste detection) see a
// consistent byte stream.
func newReaderFromBufio(b *bufio.Reader) *Reader {
	return &Reader{r: b}
}

// ReadKey blocks until one key event is available.
func (rd *Reader) ReadKey() (keybinding.KeyEvent, error) {
	b, err := rd.r.ReadByte()
	if err != nil {
		return keybinding.KeyEvent{}, err
	}

	seq := []byte{b}
	if b == 0x1B {
		for i := 0; i < 10 && rd.r.Buffered() > 0; i++ {
			nb, err := rd.r.ReadByte()
			if err != nil {
				break
			}
			seq = append(seq, nb)
			if (nb >= 'A' && nb <= 'Z') || (nb >= 'a' && nb <= 'z') || nb == '~' {
				break
			}
		}
	}

	if evt, ok := parseSeq(seq); ok {
		return evt, nil
	}

	if b >= 0x80 {
		if err := rd.r.UnreadByte(); err != nil {
			return keybinding.KeyEvent{}, err
		}
		r, _, err := rd.r.ReadRune()
		if err != nil {
			return keybinding.KeyEvent{}, err
		}
		return keybinding.Char(r, keybinding.ModNone), nil
	}

	if b >= 32 && b <= 126 {
		return keybinding.Char(rune(b), keybinding.ModNone), nil
	}

	// Unrecognized control byte: retry.
	return rd.ReadKey()
}

func parseSeq(data []byte) (keybinding.KeyEvent, bool) {
	if len(data) == 0 {
		return keybinding.KeyEvent{}, false
	}

	if len(data) == 1 {
		b := data[0]
		switch b {
		case 0x0D, 0x0A:
			return keybinding.Named(keybinding.NamedEnter, keybinding.ModNone), true
		case 0x7F, 0x08:
			return keybinding.Named(keybinding.NamedBackspace, keybinding.ModNone), true
		case 0x09:
			return keybinding.Named(keybinding.NamedTab, keybinding.ModNone), true
		case 0x1B:
			return keybinding.Named(keybinding.NamedEsc, keybinding.ModNone), true
		case 0x20:
			return keybinding.Char(' ', keybinding.ModNone), true
		}
		if b >= 1 && b <= 26 && b != 0x08 && b != 0x09 && b != 0x0A && b != 0x0D {
			return keybinding.Char(rune('a'+b-1), keybinding.ModCtrl), true
		}
		if b >= 32 && b <= 126 {
			return keybinding.Char(rune(b), keybinding.ModNone), true
		}
		return keybinding.KeyEvent{}, false
	}

	if data[0] == 0x1B && len(data) == 3 && data[1] == '[' {
		switch data[2] {
		case 'A':
			return keybinding.Named(keybinding.NamedUp, keybinding.ModNone), true
		case 'B':
			return keybinding.Named(keybinding.NamedDown, keybinding.ModNone), true
		case 'C':
			return keybinding.Named(keybinding.NamedRight, keybinding.ModNone), true
		case 'D':
			return keybinding.Named(keybinding.NamedLeft, keybinding.ModNone), true
		}
	}

	if data[0] == 0x1B && len(data) >= 4 && data[1] == '[' && data[len(data)-1] == '~' {
		if bytes.Equal(data, []byte{0x1B, '[', '3', '~'}) {
			return keybinding.Named(keybinding.NamedDelete, keybinding.ModNone), true
		}
	}

	return keybinding.KeyEvent{}, false
}
