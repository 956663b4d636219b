// Package suggest implements the Suggester interface: given the current
// line, propose a full-line completion to ghost-render past the cursor,
// accepted with the right arrow.
package suggest

import "strings"

// History is the subset of the command-history backend a Suggester
// needs: every recorded line, which Suggest scans from most recent to
// oldest.
type History interface {
	// Lines returns every recorded line, most recent last.
	Lines() []string
}

// Suggester proposes a full line to suggest given the current partial
// line. It returns ok=false when it has no suggestion.
type Suggester interface {
	Suggest(line string, hist History) (string, bool)
}

// None never suggests anything.
type None struct{}

func (None) Suggest(string, History) (string, bool) { return "", false }

// HistoryPrefix is the default Suggester: the most recent history entry
// that starts with the current line, if one exists and isn't identical
// to the line itself.
type HistoryPrefix struct{}

func (HistoryPrefix) Suggest(line string, hist History) (string, bool) {
	if line == "" {
		return "", false
	}
	lines := hist.Lines()
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] != line && strings.HasPrefix(lines[i], line) {
			return lines[i], true
		}
	}
	return "", false
}
