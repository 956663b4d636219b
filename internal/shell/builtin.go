package shell

import (
	"fmt"
	"io"
	"sort"

	"github.com/coshell/coshell/internal/hooks"
	"github.com/spf13/pflag"
)

// BuiltinFn is one builtin command. Builtins always take precedence over
// external commands of the same name.
type BuiltinFn func(sh *Shell, args []string) hooks.CmdOutput

// Builtins is the builtin dispatch table.
type Builtins struct {
	fns map[string]BuiltinFn
}

// NewBuiltins returns an empty dispatch table.
func NewBuiltins() *Builtins {
	return &Builtins{fns: make(map[string]BuiltinFn)}
}

// DefaultBuiltins returns the standard dispatch surface.
func DefaultBuiltins() *Builtins {
	b := NewBuiltins()
	b.Register("cd", builtinCd)
	b.Register("exit", builtinExit)
	b.Register("history", builtinHistory)
	b.Register("export", builtinExport)
	b.Register("alias", builtinAlias)
	b.Register("unalias", builtinUnalias)
	b.Register("source", builtinSource)
	b.Register("jobs", builtinJobs)
	b.Register("help", builtinHelp)
	b.Register("debug", builtinDebug)
	b.Register("type", builtinType)
	b.Register("mux", builtinMux)
	return b
}

// Register adds (or replaces) a builtin under name.
func (b *Builtins) Register(name string, fn BuiltinFn) {
	b.fns[name] = fn
}

// Get looks up name's builtin.
func (b *Builtins) Get(name string) (BuiltinFn, bool) {
	fn, ok := b.fns[name]
	return fn, ok
}

// Names returns every registered builtin name, sorted.
func (b *Builtins) Names() []string {
	out := make([]string, 0, len(b.fns))
	for k := range b.fns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// newFlagSet returns a pflag set configured for builtin argument parsing:
// parse errors are returned, not printed or fatal, and flags may be
// interleaved with positional arguments.
func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func success() hooks.CmdOutput { return hooks.CmdOutput{Status: 0} }

func failure(name string, err error) hooks.CmdOutput {
	return hooks.CmdOutput{Stderr: fmt.Sprintf("%s: %v\n", name, err), Status: 1}
}

func usage(name, text string) hooks.CmdOutput {
	return hooks.CmdOutput{Stderr: fmt.Sprintf("usage: %s %s\n", name, text), Status: 2}
}
