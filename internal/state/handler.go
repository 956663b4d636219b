package state

import (
	"fmt"
	"reflect"
)

type paramKind int

const (
	kindShell paramKind = iota
	kindEvent
	kindState
	kindStateMut
	kindOption
)

type paramPlan struct {
	kind    paramKind
	typ     reflect.Type // declared parameter type
	elem    reflect.Type // the T behind State[T]/StateMut[T]; for kindOption, the inner param type
	mutable bool
	inner   *paramPlan // for kindOption
}

// Handler adapts an arbitrary function into a uniform callable whose
// parameters are materialized from a Store and a context value C (the
// shell reference). Parametrizing over C, rather than
// importing a concrete Shell type, keeps this package free of a cyclic
// dependency on package shell.
type Handler[C any] struct {
	fn    reflect.Value
	plans []paramPlan
}

// New builds a Handler from fn. fn may take any combination of: C (the
// shell reference), State[T], StateMut[T], Option[State[T]],
// Option[StateMut[T]], and — for hook handlers — the event value as the
// last parameter. fn may optionally return an error.
func New[C any](fn any) *Handler[C] {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		panic("state: Handler requires a function")
	}
	shellType := reflect.TypeOf((*C)(nil)).Elem()
	plans := make([]paramPlan, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		plans[i] = classify(t.In(i), shellType)
	}
	return &Handler[C]{fn: v, plans: plans}
}

func classify(pt reflect.Type, shellType reflect.Type) paramPlan {
	if pt == shellType {
		return paramPlan{kind: kindShell, typ: pt}
	}
	zero := reflect.New(pt).Elem().Interface()
	if om, ok := zero.(optionMarker); ok {
		inner := classifyElem(om.paramOptionInner())
		return paramPlan{kind: kindOption, typ: pt, inner: &inner}
	}
	if et, ok := zero.(elemTyper); ok {
		k := kindState
		if et.paramMutable() {
			k = kindStateMut
		}
		return paramPlan{kind: k, typ: pt, elem: et.paramElemType(), mutable: et.paramMutable()}
	}
	// Anything else is assumed to be the hook event value, passed last.
	return paramPlan{kind: kindEvent, typ: pt}
}

// classifyElem classifies the Param type held inside an Option[P]; P is
// expected to be State[T] or StateMut[T].
func classifyElem(pt reflect.Type) paramPlan {
	zero := reflect.New(pt).Elem().Interface()
	et, ok := zero.(elemTyper)
	if !ok {
		panic(fmt.Sprintf("state: Option inner type %s is not State[T]/StateMut[T]", pt))
	}
	k := kindState
	if et.paramMutable() {
		k = kindStateMut
	}
	return paramPlan{kind: k, typ: pt, elem: et.paramElemType(), mutable: et.paramMutable()}
}

// Call materializes every parameter and invokes fn. event is passed for
// hook handlers; pass nil for non-hook handlers that declare no event
// parameter. The first return value, if present and an error, is
// returned; a non-error return value is ignored.
func (h *Handler[C]) Call(ctx C, store *Store, event any) error {
	args := make([]reflect.Value, len(h.plans))
	var releases []func()
	defer func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}()

	for i, p := range h.plans {
		v, release, err := resolve(p, ctx, store, event)
		if err != nil {
			return err
		}
		if release != nil {
			releases = append(releases, release)
		}
		args[i] = v
	}

	out := h.fn.Call(args)
	for _, o := range out {
		if o.Type().Implements(errorType) {
			if !o.IsNil() {
				return o.Interface().(error)
			}
		}
	}
	return nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func resolve(p paramPlan, ctx any, store *Store, event any) (reflect.Value, func(), error) {
	switch p.kind {
	case kindShell:
		return reflect.ValueOf(ctx), nil, nil
	case kindEvent:
		if event == nil || reflect.TypeOf(event) != p.typ {
			return reflect.Value{}, nil, fmt.Errorf("state: no value available for parameter %s", p.typ)
		}
		return reflect.ValueOf(event), nil, nil
	case kindState, kindStateMut:
		return resolveBorrow(p, store)
	case kindOption:
		inst := reflect.New(p.typ) // *Option[P]
		v, release, err := resolve(*p.inner, ctx, store, event)
		if err == nil {
			inst.Interface().(optionBinder).paramBindSome(v)
		}
		return inst.Elem(), release, nil
	default:
		return reflect.Value{}, nil, fmt.Errorf("state: unrecognized parameter %s", p.typ)
	}
}

func resolveBorrow(p paramPlan, store *Store) (reflect.Value, func(), error) {
	c, ok := store.cellFor(p.elem)
	if !ok {
		return reflect.Value{}, nil, &BorrowError{Type: p.elem, Err: ErrMissing}
	}
	var release func()
	if p.mutable {
		if !c.mu.TryLock() {
			return reflect.Value{}, nil, &BorrowError{Type: p.elem, Err: ErrBorrow}
		}
		release = c.mu.Unlock
	} else {
		if !c.mu.TryRLock() {
			return reflect.Value{}, nil, &BorrowError{Type: p.elem, Err: ErrBorrow}
		}
		release = c.mu.RUnlock
	}
	inst := reflect.New(p.typ) // *State[T] or *StateMut[T]
	inst.Interface().(binder).paramBind(c.ptr)
	return inst.Elem(), release, nil
}
