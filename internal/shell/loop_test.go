package shell

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coshell/coshell/internal/hooks"
	"github.com/coshell/coshell/internal/lineedit"
	"github.com/coshell/coshell/internal/painter"
)

type noEvents struct{}

func (noEvents) Next() (lineedit.Event, error) { return lineedit.Event{}, io.EOF }

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var paint bytes.Buffer
	out := &bytes.Buffer{}
	errw := &bytes.Buffer{}
	sh, err := New(
		WithConfigDir(""),
		WithStreams(out, errw),
		WithEventSource(noEvents{}),
		WithPainter(painter.NewWithOutput(&paint, 0)),
	)
	require.NoError(t, err)
	return sh, out, errw
}

func TestRunIterationDispatchesBuiltin(t *testing.T) {
	sh, out, _ := newTestShell(t)
	sh.Builtins.Register("probe", func(sh *Shell, args []string) hooks.CmdOutput {
		return hooks.CmdOutput{Stdout: "ok\n", Status: 0}
	})

	sh.runIteration("probe")

	assert.Equal(t, "ok\n", out.String())
	assert.Equal(t, 0, sh.LastStatus())
}

func TestAliasSubstitutionReplacesOnlyFirstWord(t *testing.T) {
	sh, _, _ := newTestShell(t)
	var got []string
	sh.Builtins.Register("realcmd", func(sh *Shell, args []string) hooks.CmdOutput {
		got = append([]string{}, args...)
		return hooks.CmdOutput{Status: 0}
	})
	sh.Aliases.Set("rc", "realcmd --flag")

	sh.runIteration("rc positional")

	assert.Equal(t, []string{"--flag", "positional"}, got)
}

func TestEmptyInputFiresNoHooks(t *testing.T) {
	sh, _, _ := newTestShell(t)
	before, after := 0, 0
	hooks.Insert[hooks.BeforeCommand](sh.Hooks, func(evt hooks.BeforeCommand) { before++ })
	hooks.Insert[hooks.AfterCommand](sh.Hooks, func(evt hooks.AfterCommand) { after++ })

	sh.runIteration("")
	sh.runIteration("   ")

	assert.Zero(t, before)
	assert.Zero(t, after)
}

func TestBeforeAndAfterCommandCarryCapturedOutput(t *testing.T) {
	sh, _, _ := newTestShell(t)
	sh.Builtins.Register("probe", func(sh *Shell, args []string) hooks.CmdOutput {
		return hooks.CmdOutput{Stdout: "ok\n", Status: 7}
	})

	var beforeCmd string
	var afterOut hooks.CmdOutput
	hooks.Insert[hooks.BeforeCommand](sh.Hooks, func(evt hooks.BeforeCommand) { beforeCmd = evt.Command })
	hooks.Insert[hooks.AfterCommand](sh.Hooks, func(evt hooks.AfterCommand) { afterOut = evt.Output })

	sh.runIteration("probe")

	assert.Equal(t, "probe", beforeCmd)
	assert.Equal(t, "ok\n", afterOut.Stdout)
	assert.Equal(t, 7, afterOut.Status)
	assert.Equal(t, 7, sh.LastStatus())
}

func TestSplitInputTrimsContinuationsAndEmptyWords(t *testing.T) {
	assert.Equal(t, []string{"echo", "ab"}, splitInput("echo a\\\nb"))
	assert.Equal(t, []string{"a", "b"}, splitInput("  a   b  "))
	assert.Empty(t, splitInput("   "))
}

func TestRunPipelineCommandNotFound(t *testing.T) {
	sh, _, _ := newTestShell(t)
	notFound := 0
	hooks.Insert[hooks.CommandNotFound](sh.Hooks, func(evt hooks.CommandNotFound) { notFound++ })

	out := sh.RunPipeline([][]string{{"definitely-not-a-command-xyz"}}, false)

	assert.Equal(t, 127, out.Status)
	assert.Contains(t, out.Stderr, "command not found")
	assert.Equal(t, 1, notFound)
}

func TestRunIterationExternalPipeline(t *testing.T) {
	sh, out, _ := newTestShell(t)

	sh.runIteration("echo hello | tr e o")

	assert.Equal(t, "hollo\n", out.String())
	assert.Equal(t, 0, sh.LastStatus())
}

func TestExitBuiltinStopsTheLoop(t *testing.T) {
	sh, _, _ := newTestShell(t)

	sh.runIteration("exit 3")

	assert.True(t, sh.exitReq)
	assert.Equal(t, 3, sh.ExitCode())
}

func TestJobExitFiresAfterAfterCommand(t *testing.T) {
	sh, _, _ := newTestShell(t)
	var order []string
	hooks.Insert[hooks.AfterCommand](sh.Hooks, func(evt hooks.AfterCommand) { order = append(order, "after") })
	hooks.Insert[hooks.JobExit](sh.Hooks, func(evt hooks.JobExit) { order = append(order, "jobexit") })

	// A foreground pipeline completes within the iteration, so its status
	// is reaped by the same iteration's notification pass.
	sh.runIteration("true")

	require.NotEmpty(t, order)
	assert.Equal(t, "after", order[0])
	if len(order) > 1 {
		assert.Equal(t, "jobexit", order[1])
	}
}
