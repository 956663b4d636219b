// Package commandtimer is a first-party example plugin: it times every
// command between BeforeCommand and AfterCommand and keeps the most
// recent duration in the state store, where a prompt side can read it.
package commandtimer

import (
	"time"

	"github.com/coshell/coshell/internal/hooks"
	"github.com/coshell/coshell/internal/plugin"
	"github.com/coshell/coshell/internal/shell"
	"github.com/coshell/coshell/internal/state"
)

// CommandStart is the wall-clock instant the current command began.
type CommandStart time.Time

// LastElapsed is how long the previous command took.
type LastElapsed time.Duration

// Timer is the plugin.
type Timer struct{}

// New returns a Timer plugin.
func New() *Timer { return &Timer{} }

func (*Timer) Meta() plugin.Meta {
	return plugin.Meta{
		Name:        "command-timer",
		Description: "times each command's wall-clock duration",
		Help:        "the previous command's duration is stored as commandtimer.LastElapsed",
	}
}

func (*Timer) FailMode() plugin.FailMode { return plugin.Warn }

// Init hooks the timer into the command lifecycle.
func (*Timer) Init(cfg *shell.Config) error {
	hooks.Insert[hooks.BeforeCommand](cfg.Hooks, func(sh *shell.Shell, evt hooks.BeforeCommand) {
		state.Insert(sh.Store, CommandStart(time.Now()))
	})
	hooks.Insert[hooks.AfterCommand](cfg.Hooks, func(sh *shell.Shell, start state.State[CommandStart], evt hooks.AfterCommand) {
		elapsed := time.Since(time.Time(*start.Get()))
		state.Insert(sh.Store, LastElapsed(elapsed))
	})
	return nil
}

// PostInit seeds the store so readers never observe a missing entry.
func (*Timer) PostInit(sh *shell.Shell, store *state.Store) error {
	state.Insert(store, CommandStart(time.Now()))
	state.Insert(store, LastElapsed(0))
	return nil
}
