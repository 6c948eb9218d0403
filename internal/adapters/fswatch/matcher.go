package fswatch

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/zerr"
)

// shouldSkipDirectories are directories that are never descended into,
// independent of the session's ignore patterns.
var shouldSkipDirectories = map[string]bool{
	".git":         true,
	".jj":          true,
	".hg":          true,
	"node_modules": true,
}

// Matcher decides which paths under a root a session cares about.
// Patterns and ignores are glob expressions matched against the
// slash-separated path relative to the root.
type Matcher struct {
	root     string
	patterns []glob.Glob
	ignores  []glob.Glob
}

// NewMatcher compiles the session's patterns and ignores.
func NewMatcher(root string, patterns, ignores []string) (*Matcher, error) {
	m := &Matcher{root: root}

	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, zerr.With(zerr.With(domain.ErrInvalidPattern, "pattern", p), "error", err.Error())
		}
		m.patterns = append(m.patterns, g)
	}
	for _, p := range ignores {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, zerr.With(zerr.With(domain.ErrInvalidPattern, "ignore", p), "error", err.Error())
		}
		m.ignores = append(m.ignores, g)
	}

	return m, nil
}

// rel returns the slash-separated path of p relative to the root.
// The second return is false for paths outside the root.
func (m *Matcher) rel(p string) (string, bool) {
	r, err := filepath.Rel(m.root, p)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(r), true
}

// MatchFile reports whether a file path is selected by the session.
func (m *Matcher) MatchFile(p string) bool {
	r, ok := m.rel(p)
	if !ok {
		return false
	}
	for _, g := range m.ignores {
		if g.Match(r) {
			return false
		}
	}
	for _, g := range m.patterns {
		if g.Match(r) {
			return true
		}
	}
	return false
}

// SkipDir reports whether a directory and its whole subtree can be pruned.
func (m *Matcher) SkipDir(p string) bool {
	if shouldSkipDirectories[filepath.Base(p)] {
		return true
	}
	r, ok := m.rel(p)
	if !ok || r == "." {
		return false
	}
	for _, g := range m.ignores {
		if g.Match(r) {
			return true
		}
	}
	return false
}
