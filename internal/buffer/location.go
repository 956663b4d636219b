// Package buffer implements CursorBuffer: a text buffer with a cursor and a
// location algebra, plus BufferHistory, the editor's undo/redo stack.
package buffer

import "fmt"

// LocKind tags the two flavors a Location can take.
type LocKind int

const (
	// Abs anchors a Location to an absolute character index into the buffer.
	Abs LocKind = iota
	// Rel anchors a Location relative to the current cursor position.
	Rel
)

// Location is a tagged absolute-or-relative position into a CursorBuffer.
// The zero value is Location{Kind: Abs} which is NOT the cursor — use
// Cursor() for that. Resolve with CursorBuffer.ToAbsolute.
type Location struct {
	Kind LocKind
	Val  int
}

// Cursor is the location at the cursor, Rel(0).
func Cursor() Location { return Location{Rel, 0} }

// Before is the location just before the cursor, Rel(-1).
func Before() Location { return Location{Rel, -1} }

// After is the location just after the cursor, Rel(1).
func After() Location { return Location{Rel, 1} }

// Front is the location at the beginning of the buffer, Abs(0).
func Front() Location { return Location{Abs, 0} }

// Back returns the location at the end of cb, Abs(cb.Len()).
func Back(cb *CursorBuffer) Location { return Location{Abs, cb.Len()} }

// AbsAt builds an absolute Location.
func AbsAt(i int) Location { return Location{Abs, i} }

// RelAt builds a Location relative to the cursor.
func RelAt(i int) Location { return Location{Rel, i} }

// Add combines two locations: Abs+Rel=Abs, Rel+Rel=Rel, Abs+Abs=Abs
// (sums the absolute indices).
func (l Location) Add(r Location) Location {
	switch {
	case l.Kind == Abs && r.Kind == Abs:
		return Location{Abs, l.Val + r.Val}
	case l.Kind == Abs && r.Kind == Rel:
		return Location{Abs, l.Val + r.Val}
	case l.Kind == Rel && r.Kind == Abs:
		return Location{Abs, l.Val + r.Val}
	default:
		return Location{Rel, l.Val + r.Val}
	}
}

// Find returns the location of the first char matching pred at or after
// start, scanning forward. Returns ok=false when nothing matches.
func Find(cb *CursorBuffer, start Location, pred func(rune) bool) (Location, bool) {
	runes, err := cb.CharsFrom(start)
	if err != nil {
		return Location{}, false
	}
	for i, r := range runes {
		if pred(r) {
			return start.Add(RelAt(i)), true
		}
	}
	return Location{}, false
}

// FindChar is Find specialized to a literal rune.
func FindChar(cb *CursorBuffer, start Location, c rune) (Location, bool) {
	return Find(cb, start, func(r rune) bool { return r == c })
}

// FindBack returns the location of the first char matching pred scanning
// backward from start (exclusive of start itself).
func FindBack(cb *CursorBuffer, start Location, pred func(rune) bool) (Location, bool) {
	abs, err := cb.ToAbsolute(start)
	if err != nil {
		return Location{}, false
	}
	runes := cb.runes[:abs]
	for i := len(runes) - 1; i >= 0; i-- {
		if pred(runes[i]) {
			return start.Add(RelAt(-(abs - i))), true
		}
	}
	return Location{}, false
}

// FindCharBack is FindBack specialized to a literal rune.
func FindCharBack(cb *CursorBuffer, start Location, c rune) (Location, bool) {
	return FindBack(cb, start, func(r rune) bool { return r == c })
}

// ErrInvalidAbsolute reports an absolute location outside [0, len].
type ErrInvalidAbsolute struct{ Index int }

func (e ErrInvalidAbsolute) Error() string {
	return fmt.Sprintf("invalid absolute index %d", e.Index)
}

// ErrInvalidRelative reports a relative offset that resolves outside [0, len].
type ErrInvalidRelative struct{ Offset int }

func (e ErrInvalidRelative) Error() string {
	return fmt.Sprintf("invalid relative offset %d", e.Offset)
}
