package shell

import (
	"bytes"
	"io"
	"sync"
)

// OutputWriter is the shell's shared output fan-out: everything a command
// writes reaches the real terminal immediately, and while a collection
// window is open the same bytes are also captured so the loop can attach
// them to the command's CmdOutput.
type OutputWriter struct {
	mu         sync.Mutex
	out        io.Writer
	err        io.Writer
	collecting bool
	capOut     bytes.Buffer
	capErr     bytes.Buffer
}

// NewOutputWriter returns an OutputWriter wrapping the given streams.
func NewOutputWriter(out, err io.Writer) *OutputWriter {
	return &OutputWriter{out: out, err: err}
}

// Stdout returns the shared standard-output stream.
func (w *OutputWriter) Stdout() io.Writer { return teeWriter{w, false} }

// Stderr returns the shared standard-error stream.
func (w *OutputWriter) Stderr() io.Writer { return teeWriter{w, true} }

// BeginCollecting opens a capture window.
func (w *OutputWriter) BeginCollecting() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.collecting = true
	w.capOut.Reset()
	w.capErr.Reset()
}

// EndCollecting closes the capture window and returns what was written to
// each stream while it was open.
func (w *OutputWriter) EndCollecting() (stdout, stderr string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.collecting = false
	return w.capOut.String(), w.capErr.String()
}

type teeWriter struct {
	w     *OutputWriter
	isErr bool
}

func (t teeWriter) Write(p []byte) (int, error) {
	t.w.mu.Lock()
	defer t.w.mu.Unlock()
	if t.w.collecting {
		if t.isErr {
			t.w.capErr.Write(p)
		} else {
			t.w.capOut.Write(p)
		}
	}
	if t.isErr {
		return t.w.err.Write(p)
	}
	return t.w.out.Write(p)
}
