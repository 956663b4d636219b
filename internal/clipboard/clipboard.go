// Package clipboard provides the scoped OS clipboard resource backing the
// line editor's yank and paste actions. Copies go to the terminal's
// clipboard via an OSC 52 escape sequence, which works locally and over
// SSH; since most terminals refuse OSC 52 reads, Paste falls back to the
// last value copied through this process.
package clipboard

import (
	"io"
	"os"
	"sync"

	"github.com/aymanbagabas/go-osc52/v2"
)

// Osc52 writes clipboard contents to the terminal as OSC 52 sequences and
// keeps an in-process mirror for reads.
type Osc52 struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

// New returns an Osc52 clipboard writing to os.Stderr. Stderr is used so
// the sequence reaches the terminal even while stdout is being captured.
func New() *Osc52 {
	return &Osc52{out: os.Stderr}
}

// NewWithOutput returns an Osc52 clipboard writing to out, for tests.
func NewWithOutput(out io.Writer) *Osc52 {
	return &Osc52{out: out}
}

// Copy sends text to the terminal clipboard and records it for Paste.
func (c *Osc52) Copy(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := osc52.New(text).WriteTo(c.out); err != nil {
		return err
	}
	c.last = text
	return nil
}

// Paste returns the last value Copy recorded. Terminals do not generally
// answer OSC 52 queries, so reads never round-trip through the terminal.
func (c *Osc52) Paste() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, nil
}
