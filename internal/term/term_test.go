package term

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcquireOnNonTerminalIsNoop(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	var out bytes.Buffer
	g := NewRawGuardWithOutput(int(r.Fd()), &out)

	release, err := g.Acquire()
	require.NoError(t, err)
	require.NotNil(t, release)
	release()

	require.Empty(t, out.String(), "no escape sequences written for a non-terminal fd")
}
