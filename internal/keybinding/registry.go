package keybinding

import (
	"github.com/coshell/coshell/internal/state"
)

// Keybindings maps parsed chords to handlers. C is the shell-reference
// type threaded to every handler (see state.Handler).
type Keybindings[C any] struct {
	handlers map[KeyEvent][]*state.Handler[C]
	info     map[string]string
}

// NewKeybindings returns an empty registry.
func NewKeybindings[C any]() *Keybindings[C] {
	return &Keybindings[C]{
		handlers: make(map[KeyEvent][]*state.Handler[C]),
		info:     make(map[string]string),
	}
}

// Insert parses chord and registers fn to run whenever that chord is
// handled. info is a short human-readable description, surfaced by
// GetInfo (e.g. for a help/keymap listing).
func (k *Keybindings[C]) Insert(chord, info string, fn any) error {
	evt, err := Parse(chord)
	if err != nil {
		return err
	}
	k.handlers[evt] = append(k.handlers[evt], state.New[C](fn))
	k.info[chord] = info
	return nil
}

// Handle runs every handler registered for evt, in insertion order,
// aborting early on the first error. It reports whether at least one
// handler was registered for evt.
func (k *Keybindings[C]) Handle(ctx C, store *state.Store, evt KeyEvent) (bool, error) {
	hs, ok := k.handlers[evt]
	if !ok {
		return false, nil
	}
	for _, h := range hs {
		if err := h.Call(ctx, store, evt); err != nil {
			return true, err
		}
	}
	return true, nil
}

// GetInfo returns the description registered alongside chord, if any.
func (k *Keybindings[C]) GetInfo(chord string) (string, bool) {
	s, ok := k.info[chord]
	return s, ok
}
