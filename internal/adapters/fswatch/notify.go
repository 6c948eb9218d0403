package fswatch

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.RawWatcher = (*notifyWatcher)(nil)

const eventChannelBuffer = 256

// notifyWatcher implements the raw capability on top of fsnotify.
// It watches the root recursively and keeps a set of watched directories
// so removals can be classified as file or directory events.
type notifyWatcher struct {
	cfg     domain.WatchConfig
	matcher *Matcher

	fsWatcher *fsnotify.Watcher
	events    chan ports.RawEvent
	errs      chan error

	mu   sync.Mutex
	dirs map[string]bool
}

func newNotifyWatcher(cfg domain.WatchConfig, matcher *Matcher) (*notifyWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create fsnotify watcher")
	}
	return &notifyWatcher{
		cfg:       cfg,
		matcher:   matcher,
		fsWatcher: fsWatcher,
		events:    make(chan ports.RawEvent, eventChannelBuffer),
		errs:      make(chan error, 1),
		dirs:      make(map[string]bool),
	}, nil
}

// Start walks the root, registers every directory and begins processing.
// Any failure releases the underlying fsnotify resources before returning.
func (w *notifyWatcher) Start(ctx context.Context) error {
	if _, err := os.Stat(w.cfg.Root); err != nil {
		_ = w.fsWatcher.Close()
		return zerr.With(zerr.Wrap(domain.ErrWatchFailed, err.Error()), "root", w.cfg.Root)
	}

	var initial []string
	for entry := range w.walk(w.cfg.Root) {
		if entry.dir {
			if err := w.addDir(entry.path); err != nil {
				_ = w.fsWatcher.Close()
				return zerr.With(zerr.Wrap(domain.ErrWatchFailed, err.Error()), "dir", entry.path)
			}
			continue
		}
		if w.cfg.Options.ReportInitial && w.matcher.MatchFile(entry.path) {
			initial = append(initial, entry.path)
		}
	}

	go w.run(ctx, initial)
	return nil
}

// Stop releases the underlying fsnotify resources. The event iterator
// terminates once the in-flight events have drained.
func (w *notifyWatcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator over raw events.
func (w *notifyWatcher) Events() iter.Seq[ports.RawEvent] {
	return func(yield func(ports.RawEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// Errors returns the channel of watcher failures.
func (w *notifyWatcher) Errors() <-chan error {
	return w.errs
}

func (w *notifyWatcher) walk(root string) iter.Seq[walkEntry] {
	walker := &treeWalker{matcher: w.matcher, followSymlinks: w.cfg.Options.FollowSymlinks}
	return walker.walk(root)
}

func (w *notifyWatcher) addDir(path string) error {
	if err := w.fsWatcher.Add(path); err != nil {
		return err
	}
	w.mu.Lock()
	w.dirs[path] = true
	w.mu.Unlock()
	return nil
}

func (w *notifyWatcher) run(ctx context.Context, initial []string) {
	defer close(w.events)

	for _, path := range initial {
		if !w.send(ctx, ports.RawEvent{Kind: ports.RawAdded, Path: path}) {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.handle(ctx, event) {
				return
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- zerr.Wrap(err, "file system error"):
			default:
			}
		}
	}
}

// handle classifies one fsnotify event and forwards the raw events it
// produces. Returns false when the context is gone.
func (w *notifyWatcher) handle(ctx context.Context, event fsnotify.Event) bool {
	path := event.Name

	switch {
	case event.Op&fsnotify.Create != 0:
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			return w.handleCreatedDir(ctx, path)
		}
		if w.matcher.MatchFile(path) {
			return w.send(ctx, ports.RawEvent{Kind: ports.RawAdded, Path: path})
		}

	case event.Op&fsnotify.Write != 0:
		if w.matcher.MatchFile(path) {
			return w.send(ctx, ports.RawEvent{Kind: ports.RawChanged, Path: path})
		}

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if w.forgetDir(path) {
			return w.send(ctx, ports.RawEvent{Kind: ports.RawRemovedDir, Path: path})
		}
		if w.matcher.MatchFile(path) {
			return w.send(ctx, ports.RawEvent{Kind: ports.RawRemoved, Path: path})
		}

	case event.Op&fsnotify.Chmod != 0:
		// Metadata-only, not a content event.
	}

	return true
}

// handleCreatedDir starts watching a freshly created directory and
// reports any files that already landed in it before the watch existed.
func (w *notifyWatcher) handleCreatedDir(ctx context.Context, path string) bool {
	if w.matcher.SkipDir(path) {
		return true
	}
	if !w.send(ctx, ports.RawEvent{Kind: ports.RawAddedDir, Path: path}) {
		return false
	}
	for entry := range w.walk(path) {
		if entry.dir {
			_ = w.addDir(entry.path)
			continue
		}
		if w.matcher.MatchFile(entry.path) {
			if !w.send(ctx, ports.RawEvent{Kind: ports.RawAdded, Path: entry.path}) {
				return false
			}
		}
	}
	return true
}

// forgetDir removes path and everything under it from the watched
// directory set. Reports whether path itself was a watched directory.
func (w *notifyWatcher) forgetDir(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.dirs[path] {
		return false
	}
	prefix := path + string(filepath.Separator)
	for dir := range w.dirs {
		if dir == path || strings.HasPrefix(dir, prefix) {
			delete(w.dirs, dir)
		}
	}
	return true
}

func (w *notifyWatcher) send(ctx context.Context, event ports.RawEvent) bool {
	select {
	case w.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}
