// Package walker resolves input directories to the flat, deterministically
// ordered file list the duplicate grouper consumes.
package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Options controls traversal behavior
type Options struct {
	// Recursive expands subdirectories. When false only each directory's
	// immediate regular files are listed.
	Recursive bool

	// MinFileSize drops files smaller than this many bytes before they
	// reach the grouper.
	MinFileSize int64

	// ExcludePatterns are glob patterns matched against the file's base
	// name and full path.
	ExcludePatterns []string
}

// Walker collects candidate file paths from a set of directories
type Walker struct {
	opts Options
}

// New creates a Walker with the given options
func New(opts Options) *Walker {
	return &Walker{opts: opts}
}

// Resolve returns the candidate files under dirs in a stable order:
// directories are visited in argument order, and within each directory
// entries are visited sorted by name. Unreadable directories are returned
// as warnings without aborting the rest of the traversal.
func (w *Walker) Resolve(dirs []string) (paths []string, warnings []error) {
	for _, dir := range dirs {
		var err error
		if w.opts.Recursive {
			paths, err = w.walkTree(dir, paths)
		} else {
			paths, err = w.listDir(dir, paths)
		}
		if err != nil {
			warnings = append(warnings, err)
		}
	}
	return paths, warnings
}

// listDir appends a single directory's regular files, sorted by name
func (w *Walker) listDir(dir string, paths []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return paths, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if w.skip(path, info.Size()) {
			continue
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// walkTree appends all regular files below dir. WalkDir visits entries in
// lexical order, which keeps the output deterministic.
func (w *Walker) walkTree(dir string, paths []string) ([]string, error) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: skip and keep walking.
			return nil
		}
		if d.IsDir() {
			if w.excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		if w.skip(path, info.Size()) {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	return paths, err
}

func (w *Walker) skip(path string, size int64) bool {
	if size < w.opts.MinFileSize {
		return true
	}
	return w.excluded(path)
}

func (w *Walker) excluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.opts.ExcludePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, path); matched {
			return true
		}
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}
