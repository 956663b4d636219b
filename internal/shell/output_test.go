package shell

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputWriterPassesThrough(t *testing.T) {
	var out, errw bytes.Buffer
	w := NewOutputWriter(&out, &errw)

	fmt.Fprint(w.Stdout(), "to stdout")
	fmt.Fprint(w.Stderr(), "to stderr")

	assert.Equal(t, "to stdout", out.String())
	assert.Equal(t, "to stderr", errw.String())
}

func TestOutputWriterCapturesOnlyInsideWindow(t *testing.T) {
	var out, errw bytes.Buffer
	w := NewOutputWriter(&out, &errw)

	fmt.Fprint(w.Stdout(), "before ")
	w.BeginCollecting()
	fmt.Fprint(w.Stdout(), "captured out")
	fmt.Fprint(w.Stderr(), "captured err")
	capOut, capErr := w.EndCollecting()
	fmt.Fprint(w.Stdout(), " after")

	assert.Equal(t, "captured out", capOut)
	assert.Equal(t, "captured err", capErr)
	assert.Equal(t, "before captured out after", out.String(), "capture never diverts bytes from the terminal")
}
