package shell

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/coshell/coshell/internal/hooks"
)

// builtinCd changes the working directory, maintaining PWD/OLDPWD and
// firing ChangeDir. `cd -` swaps back to OLDPWD.
func builtinCd(sh *Shell, args []string) hooks.CmdOutput {
	fs := newFlagSet("cd")
	if err := fs.Parse(args); err != nil {
		return failure("cd", err)
	}
	rest := fs.Args()

	var target string
	switch {
	case len(rest) == 0:
		home, ok := sh.Env.Get("HOME")
		if !ok {
			return failure("cd", fmt.Errorf("HOME not set"))
		}
		target = home
	case rest[0] == "-":
		old, ok := sh.Env.Get("OLDPWD")
		if !ok {
			return failure("cd", fmt.Errorf("OLDPWD not set"))
		}
		target = old
	default:
		target = rest[0]
	}

	oldDir, _ := os.Getwd()
	if !filepath.IsAbs(target) {
		target = filepath.Join(oldDir, target)
	}
	if err := os.Chdir(target); err != nil {
		return failure("cd", err)
	}

	sh.Env.Set("OLDPWD", oldDir)
	sh.Env.Set("PWD", target)
	Emit(sh, hooks.ChangeDir{OldDir: oldDir, NewDir: target})
	return success()
}

func builtinExit(sh *Shell, args []string) hooks.CmdOutput {
	code := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return failure("exit", fmt.Errorf("numeric argument required: %q", args[0]))
		}
		code = n
	}
	sh.RequestExit(code)
	return success()
}

// builtinHistory lists, clears, or re-runs history entries. `history run
// <n>` queues entry n (0 = most recent) into the next prompt.
func builtinHistory(sh *Shell, args []string) hooks.CmdOutput {
	fs := newFlagSet("history")
	clear := fs.BoolP("clear", "c", false, "clear the history")
	if err := fs.Parse(args); err != nil {
		return failure("history", err)
	}
	rest := fs.Args()

	if *clear || (len(rest) > 0 && rest[0] == "clear") {
		sh.History.Clear()
		return success()
	}

	if len(rest) > 0 && rest[0] == "run" {
		if len(rest) < 2 {
			return usage("history", "run <n>")
		}
		n, err := strconv.Atoi(rest[1])
		if err != nil {
			return failure("history", err)
		}
		lines := sh.History.Lines()
		if n < 0 || n >= len(lines) {
			return failure("history", fmt.Errorf("no entry %d", n))
		}
		sh.Editor().QueueLine(lines[len(lines)-1-n])
		return success()
	}

	var b strings.Builder
	lines := sh.History.Lines()
	for i, ln := range lines {
		fmt.Fprintf(&b, "%5d  %s\n", i, ln)
	}
	return hooks.CmdOutput{Stdout: b.String(), Status: 0}
}

// builtinExport assigns NAME=VALUE pairs into the environment; -n removes
// names instead; no arguments lists the environment.
func builtinExport(sh *Shell, args []string) hooks.CmdOutput {
	fs := newFlagSet("export")
	unset := fs.BoolP("unset", "n", false, "remove the named variables")
	if err := fs.Parse(args); err != nil {
		return failure("export", err)
	}
	rest := fs.Args()

	if len(rest) == 0 {
		var b strings.Builder
		for _, kv := range sh.Env.All() {
			b.WriteString(kv)
			b.WriteByte('\n')
		}
		return hooks.CmdOutput{Stdout: b.String(), Status: 0}
	}

	for _, arg := range rest {
		if *unset {
			sh.Env.Unset(arg)
			continue
		}
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return usage("export", "NAME=VALUE ... | -n NAME ...")
		}
		sh.Env.Set(name, value)
	}
	return success()
}

func builtinAlias(sh *Shell, args []string) hooks.CmdOutput {
	if len(args) == 0 {
		var b strings.Builder
		for _, name := range sh.Aliases.Names() {
			subst, _ := sh.Aliases.Resolve(AliasRuleCtx{AliasName: name, Shell: sh, Store: sh.Store})
			fmt.Fprintf(&b, "alias %s=%q\n", name, subst)
		}
		return hooks.CmdOutput{Stdout: b.String(), Status: 0}
	}
	for _, arg := range args {
		name, subst, ok := strings.Cut(arg, "=")
		if !ok {
			return usage("alias", "name=value ...")
		}
		sh.Aliases.Set(name, subst)
	}
	return success()
}

func builtinUnalias(sh *Shell, args []string) hooks.CmdOutput {
	fs := newFlagSet("unalias")
	all := fs.BoolP("all", "a", false, "remove every alias")
	if err := fs.Parse(args); err != nil {
		return failure("unalias", err)
	}
	if *all {
		sh.Aliases.Clear()
		return success()
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return usage("unalias", "[-a] name ...")
	}
	for _, name := range rest {
		sh.Aliases.Unset(name)
	}
	return success()
}

// builtinSource evaluates every line of a file through the current
// language. Evaluation rolls forward past failing lines; only a read
// failure aborts.
func builtinSource(sh *Shell, args []string) hooks.CmdOutput {
	if len(args) == 0 {
		return usage("source", "<file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return failure("source", err)
	}
	last := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out := sh.Langs.Eval(sh, line)
		if out.Stderr != "" {
			fmt.Fprint(sh.Out.Stderr(), out.Stderr)
		}
		last = out.Status
	}
	return hooks.CmdOutput{Status: last}
}

func builtinJobs(sh *Shell, args []string) hooks.CmdOutput {
	var b strings.Builder
	for _, j := range sh.Jobs.Jobs() {
		b.WriteString(j.Display())
		b.WriteByte('\n')
	}
	return hooks.CmdOutput{Stdout: b.String(), Status: 0}
}

func builtinHelp(sh *Shell, args []string) hooks.CmdOutput {
	var b strings.Builder
	b.WriteString("builtins:\n")
	for _, name := range sh.Builtins.Names() {
		fmt.Fprintf(&b, "  %s\n", name)
	}
	insts := sh.Plugins.Plugins()
	if len(insts) > 0 {
		b.WriteString("plugins:\n")
		for _, inst := range insts {
			meta := inst.Plugin.Meta()
			fmt.Fprintf(&b, "  %s (%s) — %s\n", meta.Name, inst.ID, meta.Description)
			if meta.Help != "" {
				fmt.Fprintf(&b, "    %s\n", meta.Help)
			}
		}
	}
	return hooks.CmdOutput{Stdout: b.String(), Status: 0}
}

func builtinDebug(sh *Shell, args []string) hooks.CmdOutput {
	var b strings.Builder
	fmt.Fprintf(&b, "language: %s\n", sh.Langs.Current())
	fmt.Fprintf(&b, "job session: %s\n", sh.Jobs.Session())
	fmt.Fprintf(&b, "jobs: %d\n", len(sh.Jobs.Jobs()))
	fmt.Fprintf(&b, "aliases: %d\n", len(sh.Aliases.Names()))
	fmt.Fprintf(&b, "history entries: %d\n", len(sh.History.Lines()))
	fmt.Fprintf(&b, "last status: %d\n", sh.lastStatus)
	return hooks.CmdOutput{Stdout: b.String(), Status: 0}
}

// builtinType reports how a name would be resolved: alias, builtin, or
// external executable.
func builtinType(sh *Shell, args []string) hooks.CmdOutput {
	if len(args) == 0 {
		return usage("type", "<name> ...")
	}
	var b strings.Builder
	status := 0
	for _, name := range args {
		switch {
		case aliasDefined(sh, name):
			subst, _ := sh.Aliases.Resolve(AliasRuleCtx{AliasName: name, Shell: sh, Store: sh.Store})
			fmt.Fprintf(&b, "%s is aliased to %q\n", name, subst)
		case builtinDefined(sh, name):
			fmt.Fprintf(&b, "%s is a shell builtin\n", name)
		default:
			path, err := exec.LookPath(name)
			if err != nil {
				fmt.Fprintf(&b, "%s not found\n", name)
				status = 1
				continue
			}
			fmt.Fprintf(&b, "%s is %s\n", name, path)
		}
	}
	return hooks.CmdOutput{Stdout: b.String(), Status: status}
}

func aliasDefined(sh *Shell, name string) bool {
	_, ok := sh.Aliases.Resolve(AliasRuleCtx{AliasName: name, Shell: sh, Store: sh.Store})
	return ok
}

func builtinDefined(sh *Shell, name string) bool {
	_, ok := sh.Builtins.Get(name)
	return ok
}

// builtinMux lists the registered languages or switches the current one.
func builtinMux(sh *Shell, args []string) hooks.CmdOutput {
	fs := newFlagSet("mux")
	list := fs.BoolP("list", "l", false, "list registered languages")
	if err := fs.Parse(args); err != nil {
		return failure("mux", err)
	}
	rest := fs.Args()

	if *list || (len(rest) > 0 && rest[0] == "list") {
		var b strings.Builder
		for _, name := range sh.Langs.List() {
			marker := " "
			if name == sh.Langs.Current() {
				marker = "*"
			}
			fmt.Fprintf(&b, "%s %s\n", marker, name)
		}
		return hooks.CmdOutput{Stdout: b.String(), Status: 0}
	}

	if len(rest) == 2 && rest[0] == "set" {
		if !sh.Langs.Set(rest[1]) {
			return failure("mux", fmt.Errorf("unknown language %q", rest[1]))
		}
		return success()
	}

	if len(rest) == 0 {
		return hooks.CmdOutput{Stdout: sh.Langs.Current() + "\n", Status: 0}
	}
	return usage("mux", "[list | set <language>]")
}
