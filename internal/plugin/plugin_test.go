package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coshell/coshell/internal/state"
)

type testConfig struct{ inits []string }

type testShell struct{}

type fakePlugin struct {
	name     string
	mode     FailMode
	initErr  error
	postErr  error
	postRuns *int
}

func (p *fakePlugin) Meta() Meta         { return Meta{Name: p.name, Description: "test plugin"} }
func (p *fakePlugin) FailMode() FailMode { return p.mode }

func (p *fakePlugin) Init(cfg *testConfig) error {
	cfg.inits = append(cfg.inits, p.name)
	return p.initErr
}

func (p *fakePlugin) PostInit(testShell, *state.Store) error {
	if p.postRuns != nil {
		*p.postRuns++
	}
	return p.postErr
}

func TestInitRunsInRegistrationOrder(t *testing.T) {
	h := NewHost[testConfig, testShell]()
	h.Register(&fakePlugin{name: "a"})
	h.Register(&fakePlugin{name: "b"})

	var cfg testConfig
	require.NoError(t, h.Init(&cfg))
	assert.Equal(t, []string{"a", "b"}, cfg.inits)
}

func TestWarnFailureContinues(t *testing.T) {
	h := NewHost[testConfig, testShell]()
	h.Register(&fakePlugin{name: "bad", mode: Warn, initErr: errors.New("boom")})
	h.Register(&fakePlugin{name: "good"})

	var cfg testConfig
	require.NoError(t, h.Init(&cfg))
	assert.Equal(t, []string{"bad", "good"}, cfg.inits, "a Warn plugin's failure does not skip later plugins")
}

func TestAbortFailureStopsStartup(t *testing.T) {
	runs := 0
	h := NewHost[testConfig, testShell]()
	h.Register(&fakePlugin{name: "fatal", mode: Abort, postErr: errors.New("boom"), postRuns: &runs})
	h.Register(&fakePlugin{name: "never", postRuns: &runs})

	err := h.PostInit(testShell{}, state.NewStore())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fatal")
	assert.Equal(t, 1, runs, "plugins after an Abort failure never run")
}

func TestRegisterAssignsDistinctIDs(t *testing.T) {
	h := NewHost[testConfig, testShell]()
	a := h.Register(&fakePlugin{name: "a"})
	b := h.Register(&fakePlugin{name: "b"})
	assert.NotEqual(t, a, b)
	assert.Len(t, h.Plugins(), 2)
}
