package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvSetGetUnset(t *testing.T) {
	e := NewEnv()
	e.Set("COSHELL_TEST_VAR", "42")
	t.Cleanup(func() { e.Unset("COSHELL_TEST_VAR") })

	v, ok := e.Get("COSHELL_TEST_VAR")
	require.True(t, ok)
	assert.Equal(t, "42", v)

	assert.Contains(t, e.All(), "COSHELL_TEST_VAR=42")

	e.Unset("COSHELL_TEST_VAR")
	_, ok = e.Get("COSHELL_TEST_VAR")
	assert.False(t, ok)
}

func TestEnvSeedsFromProcessEnvironment(t *testing.T) {
	t.Setenv("COSHELL_SEED_VAR", "seeded")
	e := NewEnv()
	v, ok := e.Get("COSHELL_SEED_VAR")
	require.True(t, ok)
	assert.Equal(t, "seeded", v)
}
