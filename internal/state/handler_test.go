package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShell struct{ Name string }

type Counter struct{ N int }

type startupEvent struct{ Seconds float64 }

func TestHandlerReadsStateAndShell(t *testing.T) {
	store := NewStore()
	Insert(store, Counter{N: 41})
	sh := &fakeShell{Name: "sh"}

	var got int
	var gotName string
	h := New[*fakeShell](func(sh *fakeShell, c State[Counter]) error {
		got = c.Get().N
		gotName = sh.Name
		return nil
	})
	require.NoError(t, h.Call(sh, store, nil))
	assert.Equal(t, 41, got)
	assert.Equal(t, "sh", gotName)
}

func TestHandlerMutatesExclusive(t *testing.T) {
	store := NewStore()
	Insert(store, Counter{N: 0})

	h := New[*fakeShell](func(c StateMut[Counter]) error {
		c.Get().N++
		return nil
	})
	require.NoError(t, h.Call(nil, store, nil))

	ptr, release, err := Borrow[Counter](store)
	require.NoError(t, err)
	defer release()
	assert.Equal(t, 1, ptr.N)
}

func TestHandlerOptionSwallowsMissing(t *testing.T) {
	store := NewStore()
	var ok bool
	h := New[*fakeShell](func(c Option[State[Counter]]) error {
		_, ok = c.Get()
		return nil
	})
	require.NoError(t, h.Call(nil, store, nil))
	assert.False(t, ok)
}

func TestHandlerConflictingBorrowFails(t *testing.T) {
	store := NewStore()
	Insert(store, Counter{N: 1})
	_, release, err := BorrowMut[Counter](store)
	require.NoError(t, err)
	defer release()

	h := New[*fakeShell](func(c State[Counter]) error { return nil })
	err = h.Call(nil, store, nil)
	var be *BorrowError
	assert.True(t, errors.As(err, &be))
}

func TestHandlerReceivesEvent(t *testing.T) {
	store := NewStore()
	var seconds float64
	h := New[*fakeShell](func(ev startupEvent) error {
		seconds = ev.Seconds
		return nil
	})
	require.NoError(t, h.Call(nil, store, startupEvent{Seconds: 1.5}))
	assert.Equal(t, 1.5, seconds)
}
