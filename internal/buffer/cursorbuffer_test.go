package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertSetsCursorToCharCount(t *testing.T) {
	cb := New()
	require.NoError(t, cb.Insert(Cursor(), "hello world"))
	assert.Equal(t, "hello world", cb.AsStr())
	assert.Equal(t, 11, cb.Cursor())
}

func TestInsertThenDeleteFrontToBackEmpties(t *testing.T) {
	cb := New()
	require.NoError(t, cb.Insert(Cursor(), "hello world"))
	require.NoError(t, cb.Delete(Front(), Back(cb)))
	assert.Equal(t, "", cb.AsStr())
	assert.Equal(t, 0, cb.Cursor())
}

func TestDeleteBeforeMirrorsDelete(t *testing.T) {
	cb := FromText("hello world")
	require.NoError(t, cb.MoveCursor(Back(cb)))
	require.NoError(t, cb.Delete(Front(), AbsAt(6)))
	assert.Equal(t, "world", cb.AsStr())
	assert.Equal(t, 0, cb.Cursor())

	require.NoError(t, cb.DeleteBefore(Back(cb), AbsAt(2)))
	assert.Equal(t, "wo", cb.AsStr())
	assert.Equal(t, 2, cb.Cursor())
}

func TestToAbsoluteBounds(t *testing.T) {
	cb := FromText("hello")
	_, err := cb.ToAbsolute(AbsAt(100))
	assert.ErrorAs(t, err, &ErrInvalidAbsolute{})

	_, err = cb.ToAbsolute(RelAt(-100))
	assert.ErrorAs(t, err, &ErrInvalidRelative{})
}

func TestFindChar(t *testing.T) {
	cb := FromText("hello")
	loc, ok := FindChar(cb, Cursor(), 'l')
	require.True(t, ok)
	assert.Equal(t, Location{Rel, 2}, loc)

	_, ok = FindChar(cb, Cursor(), 'x')
	assert.False(t, ok)
}

func TestFindCharBack(t *testing.T) {
	cb := FromText("hello")
	require.NoError(t, cb.MoveCursor(Back(cb)))

	loc, ok := FindCharBack(cb, Cursor(), 'l')
	require.True(t, ok)
	assert.Equal(t, Location{Rel, -2}, loc)

	_, ok = FindCharBack(cb, Cursor(), 'x')
	assert.False(t, ok)
}

func TestUTF8Basic(t *testing.T) {
	cb := FromText("こんにちは")
	require.NoError(t, cb.MoveCursor(After()))
	assert.Equal(t, 1, cb.Cursor())

	require.NoError(t, cb.Insert(Cursor(), "ここ"))
	assert.Equal(t, 3, cb.Cursor())
	assert.Equal(t, 7, cb.Len())
}

func TestHistoryUndoRedo(t *testing.T) {
	h := NewHistory()
	cb := New()
	require.NoError(t, cb.Insert(Cursor(), "a"))
	h.Snapshot(cb)
	require.NoError(t, cb.Insert(Cursor(), "b"))
	h.Snapshot(cb)

	h.Undo(cb)
	assert.Equal(t, "a", cb.AsStr())

	h.Redo(cb)
	assert.Equal(t, "ab", cb.AsStr())
}

func TestHistoryCoalescesIdenticalSnapshots(t *testing.T) {
	h := NewHistory()
	cb := New()
	require.NoError(t, cb.Insert(Cursor(), "a"))
	h.Snapshot(cb)
	h.Snapshot(cb)
	h.Undo(cb)
	assert.Equal(t, "", cb.AsStr())
}
