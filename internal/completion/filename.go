package completion

import (
	"os"
	"path/filepath"
	"strings"
)

// FileSystem abstracts the filesystem calls used for path completion, so
// tests can supply an in-memory fake instead of touching disk.
type FileSystem interface {
	HomeDir() string
	WorkingDir() string
	ReadDir(dir string) ([]DirEntry, error)
	IsDir(path string) bool
}

// DirEntry is a single directory listing entry.
type DirEntry struct {
	Name  string
	IsDir bool
}

// OSFileSystem implements FileSystem against the real OS.
type OSFileSystem struct{}

func (OSFileSystem) HomeDir() string {
	h, _ := os.UserHomeDir()
	return h
}

func (OSFileSystem) WorkingDir() string {
	wd, _ := os.Getwd()
	return wd
}

func (OSFileSystem) ReadDir(dir string) ([]DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, DirEntry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return out, nil
}

func (OSFileSystem) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// resolveDir converts a user-entered (possibly relative, possibly
// tilde-prefixed) path fragment into an absolute directory path.
func resolveDir(fsys FileSystem, pathStr string) string {
	if pathStr == "" {
		return fsys.WorkingDir()
	}
	if filepath.IsAbs(pathStr) {
		return pathStr
	}
	if strings.HasPrefix(pathStr, "~/") {
		return filepath.Join(fsys.HomeDir(), pathStr[2:])
	}
	return filepath.Join(fsys.WorkingDir(), pathStr)
}

// FilenameAction looks in the current word's directory for matching
// filenames, appending a trailing slash to directory entries.
func FilenameAction(fsys FileSystem) Action {
	return func(ctx Context) []Completion {
		cur, _ := ctx.CurWord()
		dropEnd := dropPathEnd(cur)
		dir := resolveDir(fsys, dropEnd)

		entries, err := fsys.ReadDir(dir)
		if err != nil {
			return nil
		}

		out := make([]Completion, 0, len(entries))
		for _, e := range entries {
			name := sanitizeFileName(e.Name)
			if e.IsDir {
				name += "/"
			}
			out = append(out, Completion{
				AddSpace:      !e.IsDir,
				Display:       name,
				Value:         dropEnd + name,
				ReplaceMethod: Replace,
			})
		}
		return out
	}
}

func sanitizeFileName(name string) string {
	return strings.ReplaceAll(name, " ", "\\ ")
}

// CmdNameAction returns the names of executables found on each PATH
// entry.
func CmdNameAction(pathEnv string, fsys FileSystem) Action {
	return func(Context) []Completion {
		return DefaultFormat(findExecutablesInPath(pathEnv, fsys))
	}
}

func findExecutablesInPath(pathEnv string, fsys FileSystem) []string {
	var out []string
	for _, dir := range strings.Split(pathEnv, string(os.PathListSeparator)) {
		if dir == "" {
			continue
		}
		entries, err := fsys.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir {
				out = append(out, e.Name)
			}
		}
	}
	return out
}
