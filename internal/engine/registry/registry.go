// Package registry owns the lifecycle of watch sessions: creation on
// register, teardown on unregister, and the per-session translate and
// debounce pipeline in between.
package registry

import (
	"context"
	"fmt"
	"sync"

	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

// Registry maps caller-assigned uids to active watch sessions and
// enforces their uniqueness.
type Registry struct {
	factory ports.WatcherFactory
	writer  ports.BatchWriter
	logger  ports.Logger

	mu       sync.Mutex
	sessions map[int]*session
	closed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry(factory ports.WatcherFactory, writer ports.BatchWriter, logger ports.Logger) *Registry {
	return &Registry{
		factory:  factory,
		writer:   writer,
		logger:   logger,
		sessions: make(map[int]*session),
	}
}

// Register validates the payload, starts a raw watcher for it and
// stores the session. A uid that is already active is rejected without
// touching the existing session.
func (r *Registry) Register(ctx context.Context, payload *domain.RegisterPayload) error {
	if err := payload.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return domain.ErrRegistryClosed
	}
	if _, exists := r.sessions[payload.UID]; exists {
		return zerr.With(domain.ErrDuplicateWatcher, "uid", payload.UID)
	}

	cfg := domain.WatchConfig{
		UID:      payload.UID,
		Root:     payload.Cwd,
		Patterns: payload.Patterns,
		Ignores:  payload.Ignores,
		Options:  payload.WatchOptions(),
	}

	watcher, err := r.factory.New(cfg)
	if err != nil {
		return err
	}

	sessCtx, cancel := context.WithCancel(ctx)
	sess := &session{
		uid:     payload.UID,
		allowed: payload.AllowedKinds(),
		debug:   payload.Debug,
		watcher: watcher,
		logger:  r.logger,
		cancel:  cancel,
	}
	sess.debouncer = NewDebouncer(payload.DebounceWindow(), func(lines []string) {
		if writeErr := r.writer.WriteBatch(lines); writeErr != nil {
			r.logger.Error(zerr.With(writeErr, "uid", payload.UID))
		}
	})

	if err := watcher.Start(sessCtx); err != nil {
		// Release whatever the backend allocated before it failed.
		_ = watcher.Stop()
		cancel()
		return err
	}

	r.sessions[payload.UID] = sess
	go sess.pumpEvents()
	go sess.pumpErrors(sessCtx)

	// Session diagnostics are keyed on the session's own debug flag, so
	// they must pass even when the process-wide level is not debug.
	if payload.Debug {
		r.logger.Info(fmt.Sprintf("watching uid %d root %s", payload.UID, payload.Cwd))
	}
	return nil
}

// Unregister releases a session's watch handle immediately and discards
// its pending events. Unknown uids are an error the caller reports,
// never a fatal condition.
func (r *Registry) Unregister(uid int) error {
	r.mu.Lock()
	sess, ok := r.sessions[uid]
	if ok {
		delete(r.sessions, uid)
	}
	r.mu.Unlock()

	if !ok {
		return zerr.With(domain.ErrWatcherNotFound, "uid", uid)
	}

	sess.stop()
	return nil
}

// Close tears down every session and rejects further registrations.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	sessions := r.sessions
	r.sessions = make(map[int]*session)
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.stop()
	}
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
