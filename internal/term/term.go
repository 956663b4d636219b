// Package term owns the shell's terminal-mode lifecycle: a scoped guard
// that puts the terminal into raw mode with bracketed paste for the
// duration of one read_line call, and a SIGWINCH watcher that feeds
// resize events to the line editor.
package term

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const (
	bracketedPasteOn  = "\x1b[?2004h"
	bracketedPasteOff = "\x1b[?2004l"
)

// RawGuard acquires raw mode plus bracketed paste on a terminal fd and
// hands back a release function that restores both. Release is safe to
// call from a defer on every exit path, including panics.
type RawGuard struct {
	fd  int
	out io.Writer
}

// NewRawGuard returns a guard over the process's controlling terminal.
func NewRawGuard() *RawGuard {
	return &RawGuard{fd: int(os.Stdin.Fd()), out: os.Stdout}
}

// NewRawGuardWithOutput returns a guard over an arbitrary fd/stream pair,
// for tests.
func NewRawGuardWithOutput(fd int, out io.Writer) *RawGuard {
	return &RawGuard{fd: fd, out: out}
}

// Acquire enables raw mode and bracketed paste. When fd is not a terminal
// (tests, pipes) it is a no-op that still returns a callable release.
func (g *RawGuard) Acquire() (func(), error) {
	if !term.IsTerminal(g.fd) {
		return func() {}, nil
	}
	prev, err := term.MakeRaw(g.fd)
	if err != nil {
		return nil, fmt.Errorf("term: enable raw mode: %w", err)
	}
	_, _ = io.WriteString(g.out, bracketedPasteOn)
	return func() {
		_, _ = io.WriteString(g.out, bracketedPasteOff)
		_ = term.Restore(g.fd, prev)
	}, nil
}
