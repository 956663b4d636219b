package hooks

import (
	"reflect"

	"github.com/coshell/coshell/internal/state"
)

// Registry is HookRegistry: a mapping from hook-event type identity to an
// ordered list of handlers. C is the shell-reference type threaded through
// to every handler (see state.Handler).
type Registry[C any] struct {
	handlers map[reflect.Type][]*state.Handler[C]
}

// NewRegistry returns an empty Registry.
func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{handlers: make(map[reflect.Type][]*state.Handler[C])}
}

// Insert appends a handler for event type E. fn may take any combination
// of C, State[T], StateMut[T], Option[...] params, and (optionally) E as
// its last parameter.
func Insert[E any, C any](r *Registry[C], fn any) {
	var zero E
	t := reflect.TypeOf(zero)
	r.handlers[t] = append(r.handlers[t], state.New[C](fn))
}

// Emit runs every handler registered for E, in insertion order. The first
// failure aborts the remaining handlers for this event and is returned;
// it does not prevent other event types from firing later.
func Emit[E any, C any](r *Registry[C], ctx C, store *state.Store, event E) error {
	var zero E
	t := reflect.TypeOf(zero)
	for _, h := range r.handlers[t] {
		if err := h.Call(ctx, store, event); err != nil {
			return err
		}
	}
	return nil
}
