package buffer

import "strings"

// CursorBuffer is a sequence of characters plus a cursor index in [0, len].
// Operations are in terms of characters (runes), not bytes, so cursor math
// stays correct on multi-byte content.
//
// The zero value is a valid empty buffer with the cursor at 0.
type CursorBuffer struct {
	runes  []rune
	cursor int
}

// New returns an empty CursorBuffer.
func New() *CursorBuffer { return &CursorBuffer{} }

// FromText returns a CursorBuffer seeded with text, cursor at the front.
func FromText(text string) *CursorBuffer {
	return &CursorBuffer{runes: []rune(text)}
}

// Cursor returns the current cursor index.
func (cb *CursorBuffer) Cursor() int { return cb.cursor }

// Len returns the number of characters in the buffer.
func (cb *CursorBuffer) Len() int { return len(cb.runes) }

// IsEmpty reports whether the buffer holds no characters.
func (cb *CursorBuffer) IsEmpty() bool { return len(cb.runes) == 0 }

func (cb *CursorBuffer) boundsCheck(i int) bool { return i >= 0 && i <= len(cb.runes) }

// ToAbsolute resolves loc to an absolute index, bounds-checked against the
// current buffer length and cursor.
func (cb *CursorBuffer) ToAbsolute(loc Location) (int, error) {
	switch loc.Kind {
	case Abs:
		if !cb.boundsCheck(loc.Val) {
			return 0, ErrInvalidAbsolute{loc.Val}
		}
		return loc.Val, nil
	default: // Rel
		abs := cb.cursor + loc.Val
		if !cb.boundsCheck(abs) {
			return 0, ErrInvalidRelative{loc.Val}
		}
		return abs, nil
	}
}

// MoveCursor moves the cursor to loc.
func (cb *CursorBuffer) MoveCursor(loc Location) error {
	abs, err := cb.ToAbsolute(loc)
	if err != nil {
		return err
	}
	cb.cursor = abs
	return nil
}

// Insert inserts text at loc and leaves the cursor immediately after it,
// counted in characters.
func (cb *CursorBuffer) Insert(loc Location, text string) error {
	abs, err := cb.ToAbsolute(loc)
	if err != nil {
		return err
	}
	ins := []rune(text)
	cb.runes = append(cb.runes[:abs], append(append([]rune{}, ins...), cb.runes[abs:]...)...)
	cb.cursor = abs + len(ins)
	return nil
}

// InsertInplace overwrites the text at loc with text, without moving the
// cursor to follow it.
func (cb *CursorBuffer) InsertInplace(loc Location, text string) error {
	abs, err := cb.ToAbsolute(loc)
	if err != nil {
		return err
	}
	ins := []rune(text)
	end := abs + len(ins)
	if end > len(cb.runes) {
		end = len(cb.runes)
	}
	cb.runes = append(append(append([]rune{}, cb.runes[:abs]...), ins...), cb.runes[end:]...)
	return nil
}

// Delete removes the range [start, end) (auto-normalized so the lower bound
// always precedes the higher one) and moves the cursor to the lower bound.
func (cb *CursorBuffer) Delete(start, end Location) error {
	lo, hi, err := cb.locationRange(start, end)
	if err != nil {
		return err
	}
	cb.runes = append(cb.runes[:lo], cb.runes[hi:]...)
	cb.cursor = lo
	return nil
}

// DeleteBefore deletes the range ending at start and beginning at end,
// i.e. Delete with the arguments swapped.
func (cb *CursorBuffer) DeleteBefore(start, end Location) error {
	return cb.Delete(end, start)
}

func (cb *CursorBuffer) locationRange(start, end Location) (int, int, error) {
	s, err := cb.ToAbsolute(start)
	if err != nil {
		return 0, 0, err
	}
	e, err := cb.ToAbsolute(end)
	if err != nil {
		return 0, 0, err
	}
	if s <= e {
		return s, e, nil
	}
	return e, s, nil
}

// Slice returns the characters in [lo, hi).
func (cb *CursorBuffer) Slice(lo, hi int) string {
	if lo < 0 {
		lo = 0
	}
	if hi > len(cb.runes) {
		hi = len(cb.runes)
	}
	if lo >= hi {
		return ""
	}
	return string(cb.runes[lo:hi])
}

// CharsFrom returns the characters from loc to the end of the buffer.
func (cb *CursorBuffer) CharsFrom(loc Location) ([]rune, error) {
	abs, err := cb.ToAbsolute(loc)
	if err != nil {
		return nil, err
	}
	out := make([]rune, len(cb.runes)-abs)
	copy(out, cb.runes[abs:])
	return out, nil
}

// Clear empties the buffer and resets the cursor.
func (cb *CursorBuffer) Clear() {
	cb.runes = cb.runes[:0]
	cb.cursor = 0
}

// CharAt returns the character at loc, or false if loc does not resolve to
// an in-bounds index (the last valid index holds no character: it is the
// position after the last rune).
func (cb *CursorBuffer) CharAt(loc Location) (rune, bool) {
	abs, err := cb.ToAbsolute(loc)
	if err != nil || abs >= len(cb.runes) {
		return 0, false
	}
	return cb.runes[abs], true
}

// AsStr returns the full contents of the buffer.
func (cb *CursorBuffer) AsStr() string { return string(cb.runes) }

// Snapshot captures (content, cursor) for BufferHistory.
func (cb *CursorBuffer) Snapshot() Snapshot { return Snapshot{Content: cb.AsStr(), Cursor: cb.cursor} }

// Restore loads a Snapshot into the buffer.
func (cb *CursorBuffer) Restore(s Snapshot) {
	cb.runes = []rune(s.Content)
	cb.cursor = s.Cursor
	if cb.cursor > len(cb.runes) {
		cb.cursor = len(cb.runes)
	}
}

// String implements fmt.Stringer for debugging.
func (cb *CursorBuffer) String() string {
	var b strings.Builder
	b.WriteString(cb.AsStr())
	return b.String()
}
