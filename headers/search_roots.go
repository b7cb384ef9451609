package headers

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/LegacyCodeHQ/hdrmirror/internal/mcplogdlog"
)

// SearchRootSet is the ordered list of directories headers are looked up in.
// Earlier roots win when the same header exists under several of them.
type SearchRootSet struct {
	baseDir  string
	roots    []string
	excludes []string

	// index maps a header file name to every path carrying that name, in
	// walk order. It is built on the first lookup and lives for one run.
	index map[string][]string
}

// SearchOption configures a SearchRootSet.
type SearchOption func(*SearchRootSet)

// WithExcludes skips files and directories matching any of the doublestar
// globs. Globs are matched against paths relative to the base directory.
func WithExcludes(globs ...string) SearchOption {
	return func(s *SearchRootSet) {
		s.excludes = append(s.excludes, globs...)
	}
}

// NewSearchRootSet joins every fragment onto baseDir, keeping the configured order.
func NewSearchRootSet(baseDir string, fragments []string, opts ...SearchOption) (*SearchRootSet, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source tree root %s: %w", baseDir, err)
	}

	s := &SearchRootSet{baseDir: filepath.Clean(absBase)}
	for _, fragment := range fragments {
		s.roots = append(s.roots, filepath.Join(s.baseDir, fragment))
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, glob := range s.excludes {
		if !doublestar.ValidatePattern(glob) {
			return nil, fmt.Errorf("invalid exclude pattern: %q", glob)
		}
	}

	return s, nil
}

// BaseDir returns the absolute source tree root.
func (s *SearchRootSet) BaseDir() string {
	return s.baseDir
}

// Roots returns the absolute search roots in priority order.
func (s *SearchRootSet) Roots() []string {
	roots := make([]string, len(s.roots))
	copy(roots, s.roots)
	return roots
}

// Find returns the first header whose path ends in "/<pattern>.h".
// Roots are searched in configured order, each one depth-first in lexical
// order, so the result does not depend on the filesystem's listing order.
func (s *SearchRootSet) Find(pattern string) (string, bool) {
	if s.index == nil {
		s.buildIndex()
	}

	suffix := "/" + pattern + ".h"
	name := path.Base(suffix)
	for _, candidate := range s.index[name] {
		if strings.HasSuffix(filepath.ToSlash(candidate), suffix) {
			return candidate, true
		}
	}

	return "", false
}

func (s *SearchRootSet) buildIndex() {
	s.index = make(map[string][]string)
	for _, root := range s.roots {
		if err := s.indexRoot(root); err != nil {
			mcplogdlog.Warn("search root walk failed", map[string]any{
				"root":  root,
				"error": err.Error(),
			})
		}
	}
}

func (s *SearchRootSet) indexRoot(root string) error {
	if _, err := os.Stat(root); err != nil {
		return err
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped like `find` does.
			if d != nil && d.IsDir() && p != root {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isExcluded(p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		name := d.Name()
		s.index[name] = append(s.index[name], p)
		return nil
	})
}

func (s *SearchRootSet) isExcluded(p string) bool {
	if len(s.excludes) == 0 {
		return false
	}

	rel, err := filepath.Rel(s.baseDir, p)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, glob := range s.excludes {
		if ok, _ := doublestar.Match(glob, rel); ok {
			return true
		}
	}
	return false
}
