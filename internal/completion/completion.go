// Package completion implements the rule-based CompletionEngine: a list of
// predicate/action rules tried in order, falling back to filename
// completion when no rule matches.
package completion

import "strings"

// ReplaceMethod controls how a Completion's value is substituted into the
// line buffer.
type ReplaceMethod int

const (
	// Append inserts the completion after the cursor.
	Append ReplaceMethod = iota
	// Replace replaces the current word.
	Replace
)

// Completion is a single candidate returned by a completion Action.
type Completion struct {
	AddSpace      bool
	Display       string
	Value         string
	ReplaceMethod ReplaceMethod
	Comment       string
}

// DisplayText returns the user-facing label for this completion, falling
// back to Value when Display is unset.
func (c Completion) DisplayText() string {
	if c.Display != "" {
		return c.Display
	}
	return c.Value
}

// Accept returns the text to splice into the buffer when this completion
// is chosen.
func (c Completion) Accept() string {
	if c.AddSpace {
		return c.Value + " "
	}
	return c.Value
}

// Context carries the state a predicate or action needs to decide what to
// complete: the whole argument list as split by the reader, plus which
// argument index the cursor is currently editing.
type Context struct {
	Args   []string
	ArgNum int
}

// CmdName returns the command name (argument 0), if present.
func (c Context) CmdName() (string, bool) {
	if len(c.Args) == 0 {
		return "", false
	}
	return c.Args[0], true
}

// CurWord returns the argument currently being completed, if any.
func (c Context) CurWord() (string, bool) {
	if c.ArgNum < 0 || c.ArgNum >= len(c.Args) {
		return "", false
	}
	return c.Args[c.ArgNum], true
}

// Predicate decides whether a Rule applies to the current Context.
type Predicate func(Context) bool

// And returns a predicate that short-circuits: p first, then other.
func (p Predicate) And(other Predicate) Predicate {
	return func(ctx Context) bool { return p(ctx) && other(ctx) }
}

// Action produces completion candidates for the current Context.
type Action func(Context) []Completion

// Rule pairs a predicate with the action to run when it matches.
type Rule struct {
	Pred   Predicate
	Action Action
}

// Engine is the default rule-based CompletionEngine.
type Engine struct {
	rules    []Rule
	fallback Action
}

// NewEngine returns an Engine whose fallback action is filename
// completion rooted at dir.
func NewEngine(dir FileSystem) *Engine {
	return &Engine{fallback: FilenameAction(dir)}
}

// Register appends a rule, tried in registration order.
func (e *Engine) Register(r Rule) { e.rules = append(e.rules, r) }

// Complete runs every matching rule's action, filters by prefix match on
// the current word, and falls back to filename completion when no rule
// matched at all.
func (e *Engine) Complete(ctx Context) []Completion {
	cur, _ := ctx.CurWord()

	var matched []Rule
	for _, r := range e.rules {
		if r.Pred(ctx) {
			matched = append(matched, r)
		}
	}

	if len(matched) == 0 {
		return filterByPrefix(e.fallback(ctx), cur)
	}

	var out []Completion
	for _, r := range matched {
		out = append(out, filterByPrefix(r.Action(ctx), cur)...)
	}
	return out
}

func filterByPrefix(cs []Completion, prefix string) []Completion {
	out := make([]Completion, 0, len(cs))
	for _, c := range cs {
		if strings.HasPrefix(c.Accept(), prefix) {
			out = append(out, c)
		}
	}
	return out
}

// DefaultFormat wraps plain strings as space-terminated Replace
// completions.
func DefaultFormat(words []string) []Completion {
	out := make([]Completion, 0, len(words))
	for _, w := range words {
		out = append(out, Completion{AddSpace: true, Value: w, ReplaceMethod: Replace})
	}
	return out
}

// DefaultFormatWithComment is DefaultFormat plus a per-entry comment, for
// describing flags in a completion menu.
func DefaultFormatWithComment(pairs [][2]string) []Completion {
	out := make([]Completion, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Completion{AddSpace: true, Value: p[0], ReplaceMethod: Replace, Comment: p[1]})
	}
	return out
}
