package shell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coshell/coshell/internal/hooks"
)

func chdirForTest(t *testing.T) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestCdUpdatesPwdAndFiresChangeDir(t *testing.T) {
	chdirForTest(t)
	sh, _, _ := newTestShell(t)
	tmp := t.TempDir()

	var change hooks.ChangeDir
	hooks.Insert[hooks.ChangeDir](sh.Hooks, func(evt hooks.ChangeDir) { change = evt })

	out := builtinCd(sh, []string{tmp})
	require.Equal(t, 0, out.Status, out.Stderr)

	pwd, ok := sh.Env.Get("PWD")
	require.True(t, ok)
	assert.Equal(t, tmp, pwd)
	assert.Equal(t, tmp, change.NewDir)

	wd, err := os.Getwd()
	require.NoError(t, err)
	wantWd, err := filepath.EvalSymlinks(tmp)
	require.NoError(t, err)
	gotWd, err := filepath.EvalSymlinks(wd)
	require.NoError(t, err)
	assert.Equal(t, wantWd, gotWd)
}

func TestCdDashSwapsOldpwd(t *testing.T) {
	chdirForTest(t)
	sh, _, _ := newTestShell(t)
	first := t.TempDir()
	second := t.TempDir()

	require.Equal(t, 0, builtinCd(sh, []string{first}).Status)
	require.Equal(t, 0, builtinCd(sh, []string{second}).Status)

	out := builtinCd(sh, []string{"-"})
	require.Equal(t, 0, out.Status)

	pwd, _ := sh.Env.Get("PWD")
	assert.Equal(t, first, pwd)
	oldpwd, _ := sh.Env.Get("OLDPWD")
	assert.Equal(t, second, oldpwd)
}

func TestExportSetListsAndUnsets(t *testing.T) {
	sh, _, _ := newTestShell(t)
	t.Cleanup(func() { sh.Env.Unset("COSHELL_EXPORT_TEST") })

	require.Equal(t, 0, builtinExport(sh, []string{"COSHELL_EXPORT_TEST=yes"}).Status)
	v, ok := sh.Env.Get("COSHELL_EXPORT_TEST")
	require.True(t, ok)
	assert.Equal(t, "yes", v)

	listing := builtinExport(sh, nil)
	assert.Contains(t, listing.Stdout, "COSHELL_EXPORT_TEST=yes")

	require.Equal(t, 0, builtinExport(sh, []string{"-n", "COSHELL_EXPORT_TEST"}).Status)
	_, ok = sh.Env.Get("COSHELL_EXPORT_TEST")
	assert.False(t, ok)
}

func TestAliasAndUnaliasBuiltins(t *testing.T) {
	sh, _, _ := newTestShell(t)

	require.Equal(t, 0, builtinAlias(sh, []string{"l=ls -la"}).Status)
	subst, ok := sh.Aliases.Resolve(AliasRuleCtx{AliasName: "l", Shell: sh, Store: sh.Store})
	require.True(t, ok)
	assert.Equal(t, "ls -la", subst)

	listing := builtinAlias(sh, nil)
	assert.Contains(t, listing.Stdout, `alias l="ls -la"`)

	require.Equal(t, 0, builtinUnalias(sh, []string{"l"}).Status)
	_, ok = sh.Aliases.Resolve(AliasRuleCtx{AliasName: "l", Shell: sh, Store: sh.Store})
	assert.False(t, ok)

	sh.Aliases.Set("a", "1")
	sh.Aliases.Set("b", "2")
	require.Equal(t, 0, builtinUnalias(sh, []string{"-a"}).Status)
	assert.Empty(t, sh.Aliases.Names())
}

func TestTypeClassifiesNames(t *testing.T) {
	sh, _, _ := newTestShell(t)
	sh.Aliases.Set("ll", "ls -l")

	out := builtinType(sh, []string{"ll", "cd", "ls", "no-such-name-xyz"})
	assert.Contains(t, out.Stdout, `ll is aliased to "ls -l"`)
	assert.Contains(t, out.Stdout, "cd is a shell builtin")
	assert.Contains(t, out.Stdout, "ls is /")
	assert.Contains(t, out.Stdout, "no-such-name-xyz not found")
	assert.Equal(t, 1, out.Status)
}

func TestMuxListAndSet(t *testing.T) {
	sh, _, _ := newTestShell(t)

	current := builtinMux(sh, nil)
	assert.Equal(t, "posix\n", current.Stdout)

	listing := builtinMux(sh, []string{"list"})
	assert.Contains(t, listing.Stdout, "* posix")

	bad := builtinMux(sh, []string{"set", "nope"})
	assert.Equal(t, 1, bad.Status)

	ok := builtinMux(sh, []string{"set", "posix"})
	assert.Equal(t, 0, ok.Status)
}

func TestHistoryBuiltinListClearAndRun(t *testing.T) {
	sh, _, _ := newTestShell(t)
	sh.History.Add("echo one")
	sh.History.Add("echo two")

	listing := builtinHistory(sh, nil)
	assert.Contains(t, listing.Stdout, "echo one")
	assert.Contains(t, listing.Stdout, "echo two")

	require.Equal(t, 0, builtinHistory(sh, []string{"run", "0"}).Status)
	line, err := sh.Editor().ReadLine(sh, sh.Store)
	require.NoError(t, err)
	assert.Equal(t, "echo two", line, "run 0 queues the most recent entry")

	require.Equal(t, 0, builtinHistory(sh, []string{"clear"}).Status)
	assert.Empty(t, sh.History.Lines())
}

func TestSourceEvaluatesEachLine(t *testing.T) {
	sh, out, _ := newTestShell(t)
	script := filepath.Join(t.TempDir(), "rc.sh")
	require.NoError(t, os.WriteFile(script, []byte("echo first\n\necho second\n"), 0o600))

	res := builtinSource(sh, []string{script})
	assert.Equal(t, 0, res.Status)
	assert.Equal(t, "first\nsecond\n", out.String())
}

func TestHelpListsBuiltinsAndPlugins(t *testing.T) {
	sh, _, _ := newTestShell(t)
	out := builtinHelp(sh, nil)
	for _, name := range []string{"cd", "exit", "history", "export", "alias", "unalias", "source", "jobs", "help", "debug"} {
		assert.Contains(t, out.Stdout, name)
	}
}

func TestDebugReportsSessionState(t *testing.T) {
	sh, _, _ := newTestShell(t)
	out := builtinDebug(sh, nil)
	assert.Contains(t, out.Stdout, "language: posix")
	assert.Contains(t, out.Stdout, "job session: ")
	lines := strings.Split(strings.TrimSpace(out.Stdout), "\n")
	assert.GreaterOrEqual(t, len(lines), 5)
}
