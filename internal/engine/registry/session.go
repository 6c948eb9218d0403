package registry

import (
	"context"
	"fmt"

	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

// session is one live watch subscription. It owns its raw watcher and
// debouncer exclusively; both are released exactly once by stop.
type session struct {
	uid       int
	allowed   map[domain.EventKind]bool
	debug     bool
	watcher   ports.RawWatcher
	debouncer *Debouncer
	logger    ports.Logger
	cancel    context.CancelFunc
}

// pumpEvents translates and enqueues raw events in arrival order. It
// returns when the watcher's event stream closes.
func (s *session) pumpEvents() {
	for event := range s.watcher.Events() {
		kind, ok := Translate(event.Kind)
		if !ok {
			if s.debug {
				s.logger.Info(fmt.Sprintf("uid %d: dropping %s event for %s", s.uid, event.Kind, event.Path))
			}
			continue
		}
		if !s.allowed[kind] {
			continue
		}
		record := domain.Record{UID: s.uid, Kind: kind, Path: event.Path}
		s.debouncer.Add(record.String())
	}
}

// pumpErrors reports raw watcher faults. A fault is degraded operation,
// never fatal; the session stays registered.
func (s *session) pumpErrors(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-s.watcher.Errors():
			if !ok {
				return
			}
			s.logger.Error(zerr.With(err, "uid", s.uid))
		}
	}
}

// stop tears the session down: the queue is discarded atomically with
// the timer, then the underlying handle is released.
func (s *session) stop() {
	s.debouncer.Cancel()
	_ = s.watcher.Stop()
	s.cancel()
}
