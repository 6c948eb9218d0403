// Package fswatch implements the raw file watching capability, backed
// by fsnotify or by polling with content fingerprints.
package fswatch

import (
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
)

var _ ports.WatcherFactory = (*Factory)(nil)

// Factory builds raw watchers for watch sessions.
type Factory struct{}

// NewFactory creates a new Factory.
func NewFactory() *Factory {
	return &Factory{}
}

// New builds the raw watcher for one session. The polling backend is
// used when the session asked for it; fsnotify otherwise.
func (f *Factory) New(cfg domain.WatchConfig) (ports.RawWatcher, error) {
	matcher, err := NewMatcher(cfg.Root, cfg.Patterns, cfg.Ignores)
	if err != nil {
		return nil, err
	}

	if cfg.Options.Polling {
		return newPollWatcher(cfg, matcher), nil
	}
	return newNotifyWatcher(cfg, matcher)
}
