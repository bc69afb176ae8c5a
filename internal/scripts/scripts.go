// Package scripts loads the per-platform scripts injected into sessions.
package scripts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNotFound is returned when no script file matches a platform's patterns.
var ErrNotFound = errors.New("platform script not found")

// Source provides the script to inject for a platform.
type Source interface {
	Script(platform string) (string, error)
}

// Dir reads scripts from a directory. Each platform maps to one or more
// doublestar patterns relative to the directory; matches are concatenated in
// path order. Files are re-read on every call so edits apply to the next
// session that loads.
type Dir struct {
	fsys     fs.FS
	root     string
	patterns map[string][]string
}

var _ Source = (*Dir)(nil)

// NewDir creates a Dir rooted at root. Platforms without patterns default to
// "<platform>.js".
func NewDir(root string, patterns map[string][]string) *Dir {
	return NewFS(os.DirFS(root), root, patterns)
}

// NewFS creates a Dir over an arbitrary filesystem. root is used in messages.
func NewFS(fsys fs.FS, root string, patterns map[string][]string) *Dir {
	return &Dir{fsys: fsys, root: root, patterns: patterns}
}

// Patterns returns the patterns used for platform.
func (d *Dir) Patterns(platform string) []string {
	if p := d.patterns[platform]; len(p) > 0 {
		return p
	}
	return []string{platform + ".js"}
}

// Files returns the matching script paths for platform, sorted and unique.
func (d *Dir) Files(platform string) ([]string, error) {
	seen := map[string]bool{}
	var files []string

	for _, pattern := range d.Patterns(platform) {
		matches, err := doublestar.Glob(d.fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// Script returns the concatenated scripts for platform.
func (d *Dir) Script(platform string) (string, error) {
	files, err := d.Files(platform)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w: %s in %s", ErrNotFound, platform, d.root)
	}

	var b strings.Builder
	for _, f := range files {
		data, err := fs.ReadFile(d.fsys, f)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", f, err)
		}
		b.Write(data)
		b.WriteString("\n;\n")
	}
	return b.String(), nil
}
