// Package keybinding parses key-chord strings and dispatches KeyEvents to
// the handlers registered for them.
package keybinding

import (
	"fmt"
	"strings"
)

// Mod is a bitset of key modifiers.
type Mod uint8

const (
	ModNone  Mod = 0
	ModShift Mod = 1 << iota
	ModAlt
	ModCtrl
	ModSuper
	ModMeta
)

// KeyCode identifies a key, either a printable character or a named key.
type KeyCode struct {
	// Char holds the printable rune when Named == "".
	Char rune
	// Named holds one of the special key names (Enter, Tab, ...) when set.
	Named string
}

// Named key constants accepted by Parse's <key> position.
const (
	NamedBackspace = "backspace"
	NamedDelete    = "delete"
	NamedDown      = "down"
	NamedEsc       = "esc"
	NamedEnter     = "enter"
	NamedLeft      = "left"
	NamedRight     = "right"
	NamedTab       = "tab"
	NamedUp        = "up"
)

// KeyEvent is a parsed chord: a code plus a modifier set.
type KeyEvent struct {
	Code KeyCode
	Mods Mod
}

// Char builds a plain-character KeyEvent.
func Char(c rune, mods Mod) KeyEvent { return KeyEvent{Code: KeyCode{Char: c}, Mods: mods} }

// Named builds a named-key KeyEvent.
func Named(name string, mods Mod) KeyEvent { return KeyEvent{Code: KeyCode{Named: name}, Mods: mods} }

// ParseError reports a malformed keybinding chord string.
type ParseError struct {
	Kind string // EmptyKeybinding, UnknownKey, UnknownMod
	Text string
}

func (e *ParseError) Error() string {
	if e.Text == "" {
		return e.Kind
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Text)
}

// ErrEmptyKeybinding is returned by Parse("").
var ErrEmptyKeybinding = &ParseError{Kind: "EmptyKeybinding"}

// Parse parses a chord string of the form "<mod>-<mod>-...-<key>", e.g.
// "C-c" or "Ctrl-Shift-<tab>".
func Parse(s string) (KeyEvent, error) {
	if s == "" {
		return KeyEvent{}, ErrEmptyKeybinding
	}
	parts := strings.Split(s, "-")
	keyStr := parts[len(parts)-1]
	code, err := parseKeycode(keyStr)
	if err != nil {
		return KeyEvent{}, err
	}
	var mods Mod
	for _, p := range parts[:len(parts)-1] {
		m, err := parseModifier(p)
		if err != nil {
			return KeyEvent{}, err
		}
		mods |= m
	}
	return KeyEvent{Code: code, Mods: mods}, nil
}

func parseKeycode(s string) (KeyCode, error) {
	if len(s) == 1 {
		c := rune(s[0])
		if c >= '!' && c <= '~' {
			return KeyCode{Char: c}, nil
		}
	}
	switch s {
	case "<space>":
		return KeyCode{Char: ' '}, nil
	case "<backspace>":
		return KeyCode{Named: NamedBackspace}, nil
	case "<delete>":
		return KeyCode{Named: NamedDelete}, nil
	case "<down>":
		return KeyCode{Named: NamedDown}, nil
	case "<esc>":
		return KeyCode{Named: NamedEsc}, nil
	case "<enter>":
		return KeyCode{Named: NamedEnter}, nil
	case "<left>":
		return KeyCode{Named: NamedLeft}, nil
	case "<right>":
		return KeyCode{Named: NamedRight}, nil
	case "<tab>":
		return KeyCode{Named: NamedTab}, nil
	case "<up>":
		return KeyCode{Named: NamedUp}, nil
	default:
		return KeyCode{}, &ParseError{Kind: "UnknownKey", Text: s}
	}
}

func parseModifier(s string) (Mod, error) {
	switch strings.ToLower(s) {
	case "s", "shift":
		return ModShift, nil
	case "a", "alt":
		return ModAlt, nil
	case "c", "ctrl":
		return ModCtrl, nil
	case "super":
		return ModSuper, nil
	case "m", "meta":
		return ModMeta, nil
	default:
		return 0, &ParseError{Kind: "UnknownMod", Text: s}
	}
}
