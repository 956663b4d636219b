// Package shell assembles the interactive core into a working shell: the
// outer read-eval loop, the builtin dispatch surface, alias expansion,
// the environment layer, and the pipeline execution path through the job
// controller.
package shell

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/coshell/coshell/internal/hooks"
	"github.com/coshell/coshell/internal/job"
	"github.com/coshell/coshell/internal/lang"
	"github.com/coshell/coshell/internal/lineedit"
	"github.com/coshell/coshell/internal/plugin"
	"github.com/coshell/coshell/internal/queue"
	"github.com/coshell/coshell/internal/state"
)

// Shell is the composition root handed to every handler. Handlers receive
// it by shared reference; mutations from handler context go through the
// command queue instead of touching the Shell directly.
type Shell struct {
	Hooks    *hooks.Registry[*Shell]
	Store    *state.Store
	Queue    *queue.Queue[*Shell]
	Jobs     *job.Manager
	Langs    *lang.Mux
	Aliases  *Aliases
	Env      *Env
	Builtins *Builtins
	History  History
	Plugins  *plugin.Host[Config, *Shell]
	Out      *OutputWriter

	editor     *lineedit.Editor[*Shell]
	configDir  string
	startTime  time.Time
	lastStatus int
	exitReq    bool
	exitCode   int
}

// Editor returns the shell's line editor, e.g. for QueueLine.
func (sh *Shell) Editor() *lineedit.Editor[*Shell] { return sh.editor }

// ConfigDir returns the shell's configuration root.
func (sh *Shell) ConfigDir() string { return sh.configDir }

// RequestExit asks the loop to stop after the current iteration.
func (sh *Shell) RequestExit(code int) {
	sh.exitReq = true
	sh.exitCode = code
}

// ExitCode returns the status the shell will exit with.
func (sh *Shell) ExitCode() int { return sh.exitCode }

// Getenv implements lang.EvalContext against the shell's Env layer.
func (sh *Shell) Getenv(name string) (string, bool) { return sh.Env.Get(name) }

// LastStatus returns the most recent command's exit status, backing `$?`.
func (sh *Shell) LastStatus() int { return sh.lastStatus }

// Stdout returns the shared standard-output stream.
func (sh *Shell) Stdout() io.Writer { return sh.Out.Stdout() }

// Stderr returns the shared standard-error stream.
func (sh *Shell) Stderr() io.Writer { return sh.Out.Stderr() }

// Emit fires every hook handler registered for event's type, then drains
// the command queue. The queue drain happens even when a handler fails,
// so deferred mutations enqueued before the failure still apply.
func Emit[E any](sh *Shell, event E) {
	if err := hooks.Emit[E](sh.Hooks, sh, sh.Store, event); err != nil {
		fmt.Fprintf(sh.Out.Stderr(), "coshell: hook: %v\n", err)
	}
	sh.Queue.Drain(sh, sh.Store)
}

// RunPipeline implements lang.EvalContext: it wires stages stdout-to-stdin
// with OS pipes, spawns them as one job sharing a process group, and
// either waits in the foreground or leaves the job running in the
// background.
func (sh *Shell) RunPipeline(stages [][]string, background bool) hooks.CmdOutput {
	for _, argv := range stages {
		if len(argv) == 0 {
			return hooks.CmdOutput{Stderr: "coshell: empty pipeline stage\n", Status: 2}
		}
		if _, err := exec.LookPath(argv[0]); err != nil {
			Emit(sh, hooks.CommandNotFound{})
			return hooks.CmdOutput{
				Stderr: fmt.Sprintf("coshell: command not found: %s\n", argv[0]),
				Status: 127,
			}
		}
	}

	// The last stage's stdout and every stage's stderr run through pipes
	// the shell owns, so captured output is fully drained before the
	// pipeline's CmdOutput is returned.
	outTap, err := newTap(sh.Out.Stdout())
	if err != nil {
		return hooks.CmdOutput{Stderr: fmt.Sprintf("coshell: pipe: %v\n", err), Status: 1}
	}
	errTap, err := newTap(sh.Out.Stderr())
	if err != nil {
		outTap.close()
		return hooks.CmdOutput{Stderr: fmt.Sprintf("coshell: pipe: %v\n", err), Status: 1}
	}

	input := renderPipeline(stages, background)
	spawns := make([]job.Spawn, len(stages))
	var parentEnds []*os.File
	var prevRead *os.File
	pipeErr := func(err error) hooks.CmdOutput {
		closeAll(parentEnds)
		outTap.close()
		errTap.close()
		return hooks.CmdOutput{Stderr: fmt.Sprintf("coshell: %v\n", err), Status: 1}
	}
	for i, argv := range stages {
		s := job.Spawn{Argv: argv, Env: sh.Env.All(), Stderr: errTap.w}
		if prevRead != nil {
			s.Stdin = prevRead
		} else if !background {
			s.Stdin = os.Stdin
		}
		if i < len(stages)-1 {
			r, w, err := os.Pipe()
			if err != nil {
				return pipeErr(err)
			}
			s.Stdout = w
			parentEnds = append(parentEnds, r, w)
			prevRead = r
		} else {
			s.Stdout = outTap.w
		}
		spawns[i] = s
	}

	j, err := sh.Jobs.CreateJob(input, spawns, !background)
	// The children hold their own descriptor copies after spawn; the
	// parent's pipe ends must close so each stage sees EOF.
	closeAll(parentEnds)
	outTap.closeWrite()
	errTap.closeWrite()
	if err != nil {
		outTap.close()
		errTap.close()
		return hooks.CmdOutput{Stderr: fmt.Sprintf("coshell: %v\n", err), Status: 1}
	}

	if background {
		return hooks.CmdOutput{Status: 0}
	}

	status, err := sh.Jobs.PutJobInForeground(j.ID, false)
	outTap.wait()
	errTap.wait()
	if err != nil {
		return hooks.CmdOutput{Stderr: fmt.Sprintf("coshell: %v\n", err), Status: 1}
	}
	return hooks.CmdOutput{Status: status}
}

// tap is an os.Pipe whose read side streams into dst on a goroutine; wait
// blocks until the children's write ends have all closed and every byte
// has reached dst.
type tap struct {
	r, w *os.File
	done chan struct{}
}

func newTap(dst io.Writer) (*tap, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	t := &tap{r: r, w: w, done: make(chan struct{})}
	go func() {
		_, _ = io.Copy(dst, r)
		r.Close()
		close(t.done)
	}()
	return t, nil
}

func (t *tap) closeWrite() { _ = t.w.Close() }

func (t *tap) close() {
	_ = t.w.Close()
	<-t.done
}

func (t *tap) wait() { <-t.done }

func renderPipeline(stages [][]string, background bool) string {
	parts := make([]string, len(stages))
	for i, argv := range stages {
		parts[i] = strings.Join(argv, " ")
	}
	s := strings.Join(parts, " | ")
	if background {
		s += " &"
	}
	return s
}

func closeAll(files []*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
