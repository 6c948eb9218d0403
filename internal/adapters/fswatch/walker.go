package fswatch

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

type walkEntry struct {
	path string
	dir  bool
}

// treeWalker yields the directories and files under a root, pruning
// ignored subtrees. Symlinked directories are followed only when the
// session asked for it, with a visited set guarding against cycles.
type treeWalker struct {
	matcher        *Matcher
	followSymlinks bool
}

func (t *treeWalker) walk(root string) iter.Seq[walkEntry] {
	visited := make(map[string]bool)
	return func(yield func(walkEntry) bool) {
		t.walkInto(root, visited, yield)
	}
}

func (t *treeWalker) walkInto(root string, visited map[string]bool, yield func(walkEntry) bool) bool {
	if real, err := filepath.EvalSymlinks(root); err == nil {
		if visited[real] {
			return true
		}
		visited[real] = true
	}

	cont := true
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			return nil //nolint:nilerr
		}
		if d.IsDir() {
			if path != root && t.matcher.SkipDir(path) {
				return fs.SkipDir
			}
			if !yield(walkEntry{path: path, dir: true}) {
				cont = false
				return filepath.SkipAll
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if !t.followSymlinks {
				return nil
			}
			info, statErr := os.Stat(path)
			if statErr != nil {
				return nil //nolint:nilerr
			}
			if info.IsDir() {
				if t.matcher.SkipDir(path) {
					return nil
				}
				if !t.walkInto(path, visited, yield) {
					cont = false
					return filepath.SkipAll
				}
				return nil
			}
		}
		if !yield(walkEntry{path: path}) {
			cont = false
			return filepath.SkipAll
		}
		return nil
	})
	return cont
}
