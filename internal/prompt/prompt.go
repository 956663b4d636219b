// Package prompt implements the two-sided Prompt: a left and right side,
// each a DI-resolved function returning a StyledBuf, the same calling
// convention hook handlers use.
package prompt

import (
	"os"

	"github.com/coshell/coshell/internal/state"
	"github.com/coshell/coshell/internal/styledbuf"
)

// Side is a resolved prompt-side function.
type Side[C any] struct {
	v *state.Value[C, *styledbuf.StyledBuf]
}

// NewSideFn adapts an arbitrary-arity function fn (checked via reflection
// inside state.NewValue) into a Side. fn may take the shell-reference
// type C and/or State[T]/StateMut[T]/Option[...] parameters, returning a
// *styledbuf.StyledBuf.
func NewSideFn[C any](fn any) *Side[C] {
	return &Side[C]{v: state.NewValue[C, *styledbuf.StyledBuf](fn)}
}

// Render resolves fn's parameters and calls it.
func (s *Side[C]) Render(ctx C, store *state.Store) *styledbuf.StyledBuf {
	return s.v.Call(ctx, store)
}

// Prompt is the two-sided shell prompt.
type Prompt[C any] struct {
	Left  *Side[C]
	Right *Side[C]
}

// FromSides builds a Prompt from two DI functions.
func FromSides[C any](left, right any) *Prompt[C] {
	return &Prompt[C]{Left: NewSideFn[C](left), Right: NewSideFn[C](right)}
}

// FromLeft builds a Prompt with only a left side; the right side is
// always empty.
func FromLeft[C any](left any) *Prompt[C] {
	return &Prompt[C]{Left: NewSideFn[C](left), Right: NewSideFn[C](emptySide)}
}

// FromRight builds a Prompt with only a right side; the left side is
// always empty.
func FromRight[C any](right any) *Prompt[C] {
	return &Prompt[C]{Left: NewSideFn[C](emptySide), Right: NewSideFn[C](right)}
}

func emptySide() *styledbuf.StyledBuf { return styledbuf.Empty() }

// DefaultLeft renders " <cwd> > ", the bash-style default.
func DefaultLeft(cwd string) *styledbuf.StyledBuf {
	buf := styledbuf.Empty()
	buf.Push(" ", styledbuf.Style{})
	buf.Push(cwd, styledbuf.Style{Bold: true})
	buf.Push(" > ", styledbuf.Style{})
	return buf
}

// Default builds the default prompt: a bash-style left side showing the
// working directory, and an empty right side.
func Default[C any]() *Prompt[C] {
	return FromLeft[C](func() *styledbuf.StyledBuf {
		wd, err := os.Getwd()
		if err != nil {
			wd = "?"
		}
		return DefaultLeft(wd)
	})
}
