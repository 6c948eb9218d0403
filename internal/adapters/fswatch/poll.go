package fswatch

import (
	"context"
	"io"
	"iter"
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gabriel-vasile/mimetype"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.RawWatcher = (*pollWatcher)(nil)

// pollWatcher implements the raw capability by sweeping the tree on a
// fixed cadence and fingerprinting files. Binary files are expensive to
// hash and change less often, so they get their own slower cadence.
type pollWatcher struct {
	cfg     domain.WatchConfig
	matcher *Matcher
	walker  *treeWalker

	events chan ports.RawEvent
	errs   chan error

	stop     chan struct{}
	stopOnce sync.Once

	// states is confined to the sweep goroutine after Start.
	states map[string]*fileState
}

type fileState struct {
	size     int64
	mtime    time.Time
	sum      uint64
	binary   bool
	nextPoll time.Time
}

func newPollWatcher(cfg domain.WatchConfig, matcher *Matcher) *pollWatcher {
	return &pollWatcher{
		cfg:     cfg,
		matcher: matcher,
		walker:  &treeWalker{matcher: matcher, followSymlinks: cfg.Options.FollowSymlinks},
		events:  make(chan ports.RawEvent, eventChannelBuffer),
		errs:    make(chan error, 1),
		stop:    make(chan struct{}),
		states:  make(map[string]*fileState),
	}
}

// Start performs the initial sweep and begins polling.
func (w *pollWatcher) Start(ctx context.Context) error {
	if _, err := os.Stat(w.cfg.Root); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrWatchFailed, err.Error()), "root", w.cfg.Root)
	}

	now := time.Now()
	var initial []string
	for entry := range w.walker.walk(w.cfg.Root) {
		if entry.dir || !w.matcher.MatchFile(entry.path) {
			continue
		}
		state, err := w.fingerprint(entry.path, now)
		if err != nil {
			continue
		}
		w.states[entry.path] = state
		if w.cfg.Options.ReportInitial {
			initial = append(initial, entry.path)
		}
	}

	go w.run(ctx, initial)
	return nil
}

// Stop halts the sweep loop. Idempotent.
func (w *pollWatcher) Stop() error {
	w.stopOnce.Do(func() { close(w.stop) })
	return nil
}

// Events returns an iterator over raw events.
func (w *pollWatcher) Events() iter.Seq[ports.RawEvent] {
	return func(yield func(ports.RawEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// Errors returns the channel of watcher failures.
func (w *pollWatcher) Errors() <-chan error {
	return w.errs
}

func (w *pollWatcher) run(ctx context.Context, initial []string) {
	defer close(w.events)

	for _, path := range initial {
		if !w.send(ctx, ports.RawEvent{Kind: ports.RawAdded, Path: path}) {
			return
		}
	}

	ticker := time.NewTicker(w.cfg.Options.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case now := <-ticker.C:
			if !w.sweep(ctx, now) {
				return
			}
		}
	}
}

// sweep walks the tree once, reporting created, changed and removed
// files. Returns false when the watcher is shutting down.
func (w *pollWatcher) sweep(ctx context.Context, now time.Time) bool {
	seen := make(map[string]bool, len(w.states))

	for entry := range w.walker.walk(w.cfg.Root) {
		if entry.dir || !w.matcher.MatchFile(entry.path) {
			continue
		}
		seen[entry.path] = true

		state, known := w.states[entry.path]
		if !known {
			fresh, err := w.fingerprint(entry.path, now)
			if err != nil {
				continue
			}
			w.states[entry.path] = fresh
			if !w.send(ctx, ports.RawEvent{Kind: ports.RawAdded, Path: entry.path}) {
				return false
			}
			continue
		}

		if now.Before(state.nextPoll) {
			continue
		}
		changed, err := w.refresh(entry.path, state, now)
		if err != nil {
			continue
		}
		if changed {
			if !w.send(ctx, ports.RawEvent{Kind: ports.RawChanged, Path: entry.path}) {
				return false
			}
		}
	}

	for path := range w.states {
		if seen[path] {
			continue
		}
		delete(w.states, path)
		if !w.send(ctx, ports.RawEvent{Kind: ports.RawRemoved, Path: path}) {
			return false
		}
	}

	return true
}

// fingerprint builds the initial state of a file.
func (w *pollWatcher) fingerprint(path string, now time.Time) (*fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	sum, err := hashFile(path)
	if err != nil {
		return nil, err
	}

	state := &fileState{
		size:   info.Size(),
		mtime:  info.ModTime(),
		sum:    sum,
		binary: isBinary(path),
	}
	state.nextPoll = now.Add(w.cadence(state))
	return state, nil
}

// refresh re-checks a known file. The content hash is only recomputed
// when size or mtime moved, so an unchanged tree costs one stat per file.
func (w *pollWatcher) refresh(path string, state *fileState, now time.Time) (bool, error) {
	state.nextPoll = now.Add(w.cadence(state))

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.Size() == state.size && info.ModTime().Equal(state.mtime) {
		return false, nil
	}

	sum, err := hashFile(path)
	if err != nil {
		return false, err
	}

	state.size = info.Size()
	state.mtime = info.ModTime()
	if sum == state.sum {
		return false, nil
	}
	state.sum = sum
	return true, nil
}

func (w *pollWatcher) cadence(state *fileState) time.Duration {
	if state.binary {
		return w.cfg.Options.PollIntervalBinary
	}
	return w.cfg.Options.PollInterval
}

func (w *pollWatcher) send(ctx context.Context, event ports.RawEvent) bool {
	select {
	case w.events <- event:
		return true
	case <-w.stop:
		return false
	case <-ctx.Done():
		return false
	}
}

// hashFile computes the xxhash digest of a file's content.
func hashFile(path string) (uint64, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from the watched tree
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// isBinary sniffs the file's content type. Anything outside the
// text/plain hierarchy polls on the slower binary cadence.
func isBinary(path string) bool {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return false
		}
	}
	return true
}
