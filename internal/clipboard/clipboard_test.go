package clipboard

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyEmitsOsc52Sequence(t *testing.T) {
	var out bytes.Buffer
	c := NewWithOutput(&out)

	require.NoError(t, c.Copy("hello"))
	assert.True(t, strings.HasPrefix(out.String(), "\x1b]52;"), "copy writes an OSC 52 sequence")
	// "hello" base64-encoded.
	assert.Contains(t, out.String(), "aGVsbG8=")
}

func TestPasteReturnsLastCopy(t *testing.T) {
	var out bytes.Buffer
	c := NewWithOutput(&out)

	got, err := c.Paste()
	require.NoError(t, err)
	assert.Equal(t, "", got)

	require.NoError(t, c.Copy("yanked word"))
	got, err = c.Paste()
	require.NoError(t, err)
	assert.Equal(t, "yanked word", got)
}
