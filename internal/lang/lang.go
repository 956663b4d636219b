// Package lang implements language dispatch: the selector that forwards
// an entered line to a concrete interpreter, and owns the multi-line
// continuation predicate. EvalContext is the narrow interface a Language
// needs from the shell to run a pipeline.
package lang

import (
	"io"

	"github.com/coshell/coshell/internal/hooks"
)

// EvalContext is the subset of shell state a Language needs: environment
// lookup, the last pipeline's exit status (for `$?` expansion), pipeline
// execution via the job controller, and the shell's current output
// streams.
type EvalContext interface {
	Getenv(name string) (string, bool)
	LastStatus() int
	Stdout() io.Writer
	Stderr() io.Writer
	// RunPipeline executes argv stages wired stdout-to-stdin in sequence,
	// backgrounding the whole pipeline when background is true, and
	// returns the pipeline's CmdOutput (last stage's exit status when
	// run in the foreground).
	RunPipeline(stages [][]string, background bool) hooks.CmdOutput
}

// Language is a pluggable command interpreter selected by LanguageDispatch.
type Language interface {
	// Name identifies the language, surfaced by the `mux` builtin.
	Name() string
	// Eval runs fullCommand to completion and returns its output.
	Eval(ctx EvalContext, fullCommand string) hooks.CmdOutput
	// NeedsLineCheck reports whether fullCommand is an incomplete command
	// that the line editor should keep accumulating continuation lines
	// for, rather than submitting for evaluation.
	NeedsLineCheck(fullCommand string) bool
}

// Mux is a multi-interpreter router: a name→Language map plus a current
// selection, forwarding Eval/NeedsLineCheck to whichever is selected.
type Mux struct {
	langs   map[string]Language
	order   []string
	current string
}

// NewMux returns a Mux with no languages registered.
func NewMux() *Mux {
	return &Mux{langs: make(map[string]Language)}
}

// Register adds a Language under its own Name(). The first Language
// registered becomes the current selection.
func (m *Mux) Register(l Language) {
	name := l.Name()
	if _, exists := m.langs[name]; !exists {
		m.order = append(m.order, name)
	}
	m.langs[name] = l
	if m.current == "" {
		m.current = name
	}
}

// Current returns the name of the currently selected language.
func (m *Mux) Current() string { return m.current }

// List returns every registered language's name, in registration order.
func (m *Mux) List() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Set changes the current selection. It reports false if name was never
// registered.
func (m *Mux) Set(name string) bool {
	if _, ok := m.langs[name]; !ok {
		return false
	}
	m.current = name
	return true
}

func (m *Mux) Name() string { return "mux" }

func (m *Mux) Eval(ctx EvalContext, fullCommand string) hooks.CmdOutput {
	l, ok := m.langs[m.current]
	if !ok {
		return hooks.CmdOutput{Stderr: "mux: no language selected\n", Status: 1}
	}
	return l.Eval(ctx, fullCommand)
}

func (m *Mux) NeedsLineCheck(fullCommand string) bool {
	l, ok := m.langs[m.current]
	if !ok {
		return false
	}
	return l.NeedsLineCheck(fullCommand)
}
