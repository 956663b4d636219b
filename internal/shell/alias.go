package shell

import (
	"sort"
	"sync"

	"github.com/coshell/coshell/internal/state"
)

// AliasRuleCtx is handed to an alias rule's predicate so it can decide
// whether the substitution applies right now.
type AliasRuleCtx struct {
	AliasName string
	Shell     *Shell
	Store     *state.Store
}

// AliasRule pairs a substitution with an applicability predicate. A nil
// predicate always applies.
type AliasRule struct {
	Subst string
	Pred  func(AliasRuleCtx) bool
}

// Aliases maps a first word to its substitution rules. Where several
// rules for the same name match, the last registered one wins.
type Aliases struct {
	mu    sync.RWMutex
	rules map[string][]AliasRule
}

// NewAliases returns an empty alias table.
func NewAliases() *Aliases {
	return &Aliases{rules: make(map[string][]AliasRule)}
}

// Set registers an unconditional alias.
func (a *Aliases) Set(name, subst string) {
	a.SetRule(name, AliasRule{Subst: subst})
}

// SetRule registers a conditional alias rule for name.
func (a *Aliases) SetRule(name string, r AliasRule) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rules[name] = append(a.rules[name], r)
}

// Unset drops every rule for name.
func (a *Aliases) Unset(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.rules, name)
}

// Clear drops every alias.
func (a *Aliases) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rules = make(map[string][]AliasRule)
}

// Names returns every aliased name, sorted.
func (a *Aliases) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.rules))
	for k := range a.rules {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the substitution for ctx.AliasName, evaluating each
// rule's predicate; the last matching rule wins.
func (a *Aliases) Resolve(ctx AliasRuleCtx) (string, bool) {
	a.mu.RLock()
	rules := a.rules[ctx.AliasName]
	a.mu.RUnlock()

	subst, found := "", false
	for _, r := range rules {
		if r.Pred == nil || r.Pred(ctx) {
			subst, found = r.Subst, true
		}
	}
	return subst, found
}
