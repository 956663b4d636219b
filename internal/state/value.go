package state

import "reflect"

// Value adapts a function the same way Handler does, but for callers that
// want the function's return value instead of just an error — e.g. a
// prompt-side function returning a StyledBuf.
type Value[C any, R any] struct {
	fn    reflect.Value
	plans []paramPlan
}

// NewValue builds a Value handler from fn, which must return exactly one
// value assignable to R. Its parameters follow the same rules as
// Handler's.
func NewValue[C any, R any](fn any) *Value[C, R] {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		panic("state: Value requires a function")
	}
	shellType := reflect.TypeOf((*C)(nil)).Elem()
	plans := make([]paramPlan, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		plans[i] = classify(t.In(i), shellType)
	}
	return &Value[C, R]{fn: v, plans: plans}
}

// Call materializes every parameter, invokes fn, and returns its result.
func (h *Value[C, R]) Call(ctx C, store *Store) R {
	args := make([]reflect.Value, len(h.plans))
	var releases []func()
	defer func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}()

	for i, p := range h.plans {
		v, release, err := resolve(p, ctx, store, nil)
		if err != nil {
			var zero R
			return zero
		}
		if release != nil {
			releases = append(releases, release)
		}
		args[i] = v
	}

	out := h.fn.Call(args)
	return out[0].Interface().(R)
}
