package state

import "reflect"

// State is a shared borrow of T retrieved from the Store.
type State[T any] struct{ val *T }

// Get returns the borrowed value. Only valid while the Handler call that
// produced it is still executing.
func (s State[T]) Get() *T { return s.val }

func (State[T]) paramElemType() reflect.Type { var z T; return reflect.TypeOf(z) }
func (State[T]) paramMutable() bool          { return false }
func (s *State[T]) paramBind(v reflect.Value) { s.val = v.Interface().(*T) }

// StateMut is an exclusive borrow of T retrieved from the Store.
type StateMut[T any] struct{ val *T }

// Get returns the borrowed value.
func (s StateMut[T]) Get() *T { return s.val }

func (StateMut[T]) paramElemType() reflect.Type { var z T; return reflect.TypeOf(z) }
func (StateMut[T]) paramMutable() bool          { return true }
func (s *StateMut[T]) paramBind(v reflect.Value) { s.val = v.Interface().(*T) }

// Option wraps another Param P, swallowing its retrieval error instead of
// failing the whole handler call.
type Option[P any] struct {
	val P
	ok  bool
}

// Get returns the inner value and whether retrieval succeeded.
func (o Option[P]) Get() (P, bool) { return o.val, o.ok }

func (Option[P]) paramOptionInner() reflect.Type { var z P; return reflect.TypeOf(z) }
func (o *Option[P]) paramBindSome(v reflect.Value) {
	o.val = v.Interface().(P)
	o.ok = true
}

type elemTyper interface {
	paramElemType() reflect.Type
	paramMutable() bool
}

type binder interface {
	paramBind(v reflect.Value)
}

type optionMarker interface {
	paramOptionInner() reflect.Type
}

type optionBinder interface {
	paramBindSome(v reflect.Value)
}
