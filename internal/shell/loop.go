package shell

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/coshell/coshell/internal/hooks"
	"github.com/coshell/coshell/internal/lineedit"
)

// Run drives the outer loop: read a line, expand the leading alias,
// dispatch builtin or language, collect output, fire hooks, reap jobs.
// It returns once exit is requested or the editor reports EOF; the
// process exit code is available from ExitCode.
func (sh *Shell) Run() error {
	if err := sh.Jobs.InitializeJobControl(); err != nil {
		log.Printf("coshell: job control: %v", err)
	}
	defer sh.History.Flush()

	Emit(sh, hooks.Startup{StartupTime: time.Since(sh.startTime)})
	sh.sourceInitScripts()

	for !sh.exitReq {
		line, err := sh.editor.ReadLine(sh, sh.Store)
		if errors.Is(err, lineedit.ErrEOF) {
			sh.exitCode = 0
			break
		}
		if err != nil {
			return err
		}
		sh.runIteration(line)
	}
	return nil
}

// runIteration is one pass of the loop body for an already-read line.
// Empty input skips alias expansion, hooks, and dispatch, but the reap
// pass still runs.
func (sh *Shell) runIteration(raw string) {
	words := splitInput(raw)
	if len(words) > 0 {
		if subst, ok := sh.Aliases.Resolve(AliasRuleCtx{AliasName: words[0], Shell: sh, Store: sh.Store}); ok {
			words = append(strings.Fields(subst), words[1:]...)
		}
	}

	if len(words) > 0 {
		command := strings.Join(words, " ")
		Emit(sh, hooks.BeforeCommand{Raw: raw, Command: command})

		sh.Out.BeginCollecting()
		var out hooks.CmdOutput
		if fn, ok := sh.Builtins.Get(words[0]); ok {
			out = fn(sh, words[1:])
			if out.Stdout != "" {
				fmt.Fprint(sh.Out.Stdout(), out.Stdout)
			}
			if out.Stderr != "" {
				fmt.Fprint(sh.Out.Stderr(), out.Stderr)
			}
		} else {
			out = sh.Langs.Eval(sh, command)
			if out.Stderr != "" {
				fmt.Fprint(sh.Out.Stderr(), out.Stderr)
			}
		}
		out.Stdout, out.Stderr = sh.Out.EndCollecting()

		sh.lastStatus = out.Status
		Emit(sh, hooks.AfterCommand{Command: command, Output: out})
	}

	statuses := sh.Jobs.DoJobNotification(sh.Out.Stdout())
	if len(statuses) > 0 {
		Emit(sh, hooks.JobExit{ExitStatuses: statuses})
	}
}

// splitInput splits a read line into words: backslash-newline
// continuations are erased, runs of whitespace collapse, empty words
// drop out.
func splitInput(raw string) []string {
	return strings.Fields(strings.ReplaceAll(raw, "\\\n", ""))
}

// sourceInitScripts evaluates every script under <configDir>/init, in
// name order, through the current language.
func (sh *Shell) sourceInitScripts() {
	if sh.configDir == "" {
		return
	}
	dir := filepath.Join(sh.configDir, "init")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		out := builtinSource(sh, []string{filepath.Join(dir, name)})
		if out.Stderr != "" {
			fmt.Fprint(sh.Out.Stderr(), out.Stderr)
		}
	}
}
