package shell

import (
	"log"
	"os"
	"strings"
	"sync"
)

// History is the persisted command-history backend: Add is write-through,
// Lines is oldest-first, and Flush rewrites the backing store
// deduplicated (most recent occurrence kept).
type History interface {
	Add(line string)
	Lines() []string
	Clear()
	Flush()
}

// FileHistory stores one command per line, newest last. Every Add appends
// to the backing file immediately; deduplication only happens on Flush.
type FileHistory struct {
	mu    sync.Mutex
	path  string
	lines []string
}

// NewFileHistory opens (creating if needed) the history file at path and
// loads its contents. An empty path yields a purely in-memory history.
func NewFileHistory(path string) (*FileHistory, error) {
	h := &FileHistory{path: path}
	if path == "" {
		return h, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, err
	}
	for _, ln := range strings.Split(string(data), "\n") {
		if ln != "" {
			h.lines = append(h.lines, ln)
		}
	}
	return h, nil
}

// NewMemoryHistory returns a History with no backing file.
func NewMemoryHistory() *FileHistory {
	return &FileHistory{}
}

// Add records line and appends it to the backing file.
func (h *FileHistory) Add(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lines = append(h.lines, line)
	if h.path == "" {
		return
	}
	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		log.Printf("history: open %s: %v", h.path, err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		log.Printf("history: append %s: %v", h.path, err)
	}
}

// Lines returns every recorded line, oldest first.
func (h *FileHistory) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.lines))
	copy(out, h.lines)
	return out
}

// Clear drops all recorded lines and truncates the backing file.
func (h *FileHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lines = nil
	if h.path == "" {
		return
	}
	if err := os.WriteFile(h.path, nil, 0o600); err != nil {
		log.Printf("history: truncate %s: %v", h.path, err)
	}
}

// Flush rewrites the backing file with duplicates removed, keeping the
// most recent occurrence of each command in its most recent position.
func (h *FileHistory) Flush() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lines = dedupeKeepLast(h.lines)
	if h.path == "" {
		return
	}
	var b strings.Builder
	for _, ln := range h.lines {
		b.WriteString(ln)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(h.path, []byte(b.String()), 0o600); err != nil {
		log.Printf("history: flush %s: %v", h.path, err)
	}
}

func dedupeKeepLast(lines []string) []string {
	last := make(map[string]int, len(lines))
	for i, ln := range lines {
		last[ln] = i
	}
	out := make([]string, 0, len(last))
	for i, ln := range lines {
		if last[ln] == i {
			out = append(out, ln)
		}
	}
	return out
}
