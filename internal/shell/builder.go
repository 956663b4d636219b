package shell

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/coshell/coshell/internal/clipboard"
	"github.com/coshell/coshell/internal/completion"
	"github.com/coshell/coshell/internal/highlight"
	"github.com/coshell/coshell/internal/hooks"
	"github.com/coshell/coshell/internal/job"
	"github.com/coshell/coshell/internal/keybinding"
	"github.com/coshell/coshell/internal/lang"
	"github.com/coshell/coshell/internal/lang/posix"
	"github.com/coshell/coshell/internal/lineedit"
	"github.com/coshell/coshell/internal/painter"
	"github.com/coshell/coshell/internal/plugin"
	"github.com/coshell/coshell/internal/prompt"
	"github.com/coshell/coshell/internal/queue"
	"github.com/coshell/coshell/internal/state"
	"github.com/coshell/coshell/internal/suggest"
	coterm "github.com/coshell/coshell/internal/term"
)

// Config is everything the builder assembles before the Shell exists.
// Plugins mutate it during their Init stage.
type Config struct {
	Hooks       *hooks.Registry[*Shell]
	Keys        *keybinding.Keybindings[*Shell]
	Completion  *completion.Engine
	Highlighter highlight.Highlighter
	Suggester   suggest.Suggester
	History     History
	Prompt      *prompt.Prompt[*Shell]
	Painter     *painter.Painter
	Langs       *lang.Mux
	Aliases     *Aliases
	Env         *Env
	Builtins    *Builtins
	Plugins     *plugin.Host[Config, *Shell]

	Abbreviations *lineedit.Abbreviations
	Snippets      map[string]lineedit.Snippet
	SnippetChord  string

	ConfigDir string
	Events    lineedit.EventSource
	TermGuard lineedit.TermGuard
	Clipboard lineedit.Clipboard
	Out       io.Writer
	Err       io.Writer

	SpawnEditor func(seed string) (string, error)
}

// Option mutates the Config before construction.
type Option func(*Config)

// WithPlugin registers a plugin to run through both init stages.
func WithPlugin(p plugin.Plugin[Config, *Shell]) Option {
	return func(c *Config) { c.Plugins.Register(p) }
}

// WithPrompt replaces the default prompt.
func WithPrompt(p *prompt.Prompt[*Shell]) Option {
	return func(c *Config) { c.Prompt = p }
}

// WithHistory replaces the default history backend.
func WithHistory(h History) Option {
	return func(c *Config) { c.History = h }
}

// WithHighlighter replaces the default syntax highlighter.
func WithHighlighter(h highlight.Highlighter) Option {
	return func(c *Config) { c.Highlighter = h }
}

// WithSuggester replaces the default history-prefix suggester.
func WithSuggester(s suggest.Suggester) Option {
	return func(c *Config) { c.Suggester = s }
}

// WithLanguage registers an additional language with the mux.
func WithLanguage(l lang.Language) Option {
	return func(c *Config) { c.Langs.Register(l) }
}

// WithAlias registers an unconditional alias.
func WithAlias(name, subst string) Option {
	return func(c *Config) { c.Aliases.Set(name, subst) }
}

// WithSnippet registers a snippet fired by the snippet chord.
func WithSnippet(word, value string, pos lineedit.SnippetPosition) Option {
	return func(c *Config) {
		c.Snippets[word] = lineedit.Snippet{Value: value, Position: pos}
	}
}

// WithSnippetChord sets the key chord that triggers snippet expansion.
func WithSnippetChord(chord string) Option {
	return func(c *Config) { c.SnippetChord = chord }
}

// WithAbbreviation registers a word that auto-expands on space.
func WithAbbreviation(word, expansion string) Option {
	return func(c *Config) { c.Abbreviations.Insert(word, expansion) }
}

// WithKeybinding registers a chord handler; see keybinding.Parse for the
// chord grammar.
func WithKeybinding(chord, info string, fn any) Option {
	return func(c *Config) { _ = c.Keys.Insert(chord, info, fn) }
}

// WithPainter replaces the default painter, for tests capturing output.
func WithPainter(p *painter.Painter) Option {
	return func(c *Config) { c.Painter = p }
}

// WithConfigDir overrides the configuration root.
func WithConfigDir(dir string) Option {
	return func(c *Config) { c.ConfigDir = dir }
}

// WithStreams replaces the output streams, for tests.
func WithStreams(out, err io.Writer) Option {
	return func(c *Config) { c.Out, c.Err = out, err }
}

// WithEventSource replaces the terminal event source, for tests.
func WithEventSource(ev lineedit.EventSource) Option {
	return func(c *Config) { c.Events = ev }
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "coshell")
}

func defaultConfig() *Config {
	mux := lang.NewMux()
	mux.Register(posix.New())

	cfg := &Config{
		Hooks:         hooks.NewRegistry[*Shell](),
		Keys:          keybinding.NewKeybindings[*Shell](),
		Completion:    completion.NewEngine(completion.OSFileSystem{}),
		Highlighter:   highlight.NewSyntax(),
		Suggester:     suggest.HistoryPrefix{},
		Prompt:        prompt.Default[*Shell](),
		Painter:       painter.New(),
		Langs:         mux,
		Aliases:       NewAliases(),
		Env:           NewEnv(),
		Builtins:      DefaultBuiltins(),
		Plugins:       plugin.NewHost[Config, *Shell](),
		Abbreviations: lineedit.NewAbbreviations(),
		Snippets:      make(map[string]lineedit.Snippet),
		ConfigDir:     defaultConfigDir(),
		TermGuard:     coterm.NewRawGuard(),
		Clipboard:     clipboard.New(),
		Out:           os.Stdout,
		Err:           os.Stderr,
		SpawnEditor:   spawnEditor,
	}
	registerCommandCompletion(cfg)
	return cfg
}

// registerCommandCompletion adds the command-position rule: builtin names
// plus every executable on PATH.
func registerCommandCompletion(cfg *Config) {
	cfg.Completion.Register(completion.Rule{
		Pred: completion.CmdNamePred,
		Action: func(ctx completion.Context) []completion.Completion {
			path, _ := cfg.Env.Get("PATH")
			out := completion.DefaultFormat(cfg.Builtins.Names())
			out = append(out, completion.CmdNameAction(path, completion.OSFileSystem{})(ctx)...)
			return out
		},
	})
}

// spawnEditor opens $EDITOR (vi when unset) on a tempfile seeded with
// seed, and returns the file's contents once the editor exits.
func spawnEditor(seed string) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	f, err := os.CreateTemp("", "coshell-*.txt")
	if err != nil {
		return "", err
	}
	name := f.Name()
	defer os.Remove(name)
	if _, err := f.WriteString(seed); err != nil {
		f.Close()
		return "", err
	}
	f.Close()

	cmd := exec.Command(editor, name)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("shell: %s: %w", editor, err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// New assembles a Shell: defaults, options, plugin Init against the
// config, construction, then plugin PostInit against the built shell.
func New(opts ...Option) (*Shell, error) {
	start := time.Now()
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Plugins.Init(cfg); err != nil {
		return nil, err
	}

	if exe, err := os.Executable(); err == nil {
		cfg.Env.Set("SHELL", exe)
	}

	if cfg.History == nil {
		cfg.History = openHistory(cfg.ConfigDir)
	}
	if cfg.Events == nil {
		fd := int(os.Stdin.Fd())
		cfg.Events = lineedit.NewEventReader(os.Stdin, coterm.WatchResize(fd))
	}
	loadSnippetDir(cfg)

	sh := &Shell{
		Hooks:     cfg.Hooks,
		Store:     state.NewStore(),
		Queue:     queue.New[*Shell](),
		Jobs:      job.NewManager(int(os.Stdin.Fd())),
		Langs:     cfg.Langs,
		Aliases:   cfg.Aliases,
		Env:       cfg.Env,
		Builtins:  cfg.Builtins,
		History:   cfg.History,
		Plugins:   cfg.Plugins,
		Out:       NewOutputWriter(cfg.Out, cfg.Err),
		configDir: cfg.ConfigDir,
		startTime: start,
	}

	var snippetKey keybinding.KeyEvent
	if cfg.SnippetChord != "" {
		evt, err := keybinding.Parse(cfg.SnippetChord)
		if err != nil {
			return nil, fmt.Errorf("shell: snippet chord: %w", err)
		}
		snippetKey = evt
	}

	sh.editor = lineedit.New(lineedit.Config[*Shell]{
		Hooks:          cfg.Hooks,
		Keys:           cfg.Keys,
		Completion:     cfg.Completion,
		Highlighter:    cfg.Highlighter,
		Suggester:      cfg.Suggester,
		History:        cfg.History,
		Prompt:         cfg.Prompt,
		Painter:        cfg.Painter,
		Queue:          sh.Queue,
		Events:         cfg.Events,
		Term:           cfg.TermGuard,
		Clipboard:      cfg.Clipboard,
		Abbreviations:  cfg.Abbreviations,
		Snippets:       cfg.Snippets,
		SnippetKey:     snippetKey,
		NeedsLineCheck: cfg.Langs.NeedsLineCheck,
		SpawnEditor:    cfg.SpawnEditor,
	})

	if err := cfg.Plugins.PostInit(sh, sh.Store); err != nil {
		return nil, err
	}
	return sh, nil
}

func openHistory(configDir string) History {
	if configDir == "" {
		return NewMemoryHistory()
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return NewMemoryHistory()
	}
	h, err := NewFileHistory(filepath.Join(configDir, "history"))
	if err != nil {
		return NewMemoryHistory()
	}
	return h
}

// loadSnippetDir reads <configDir>/snippets: each file registers a
// snippet whose word is the file name and whose value is the trimmed
// file contents.
func loadSnippetDir(cfg *Config) {
	if cfg.ConfigDir == "" {
		return
	}
	dir := filepath.Join(cfg.ConfigDir, "snippets")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		cfg.Snippets[e.Name()] = lineedit.Snippet{Value: strings.TrimSpace(string(data))}
	}
}
