// Package watchdog tracks the liveness of the parent process.
package watchdog

import (
	"context"
	"os"
	"time"

	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

// Watchdog probes the parent process on a fixed cadence. A single
// failed probe is conclusive: the worker has been orphaned and must
// terminate.
type Watchdog struct {
	prober   ports.ProcessProber
	logger   ports.Logger
	interval time.Duration
	pid      int
}

// New creates a watchdog for the current parent process.
func New(prober ports.ProcessProber, logger ports.Logger, interval time.Duration) *Watchdog {
	return &Watchdog{
		prober:   prober,
		logger:   logger,
		interval: interval,
		pid:      os.Getppid(),
	}
}

// WithParent overrides the probed pid. Used for testing.
func (w *Watchdog) WithParent(pid int) *Watchdog {
	w.pid = pid
	return w
}

// Run probes until the context ends or the parent disappears. It
// returns ErrParentGone when the parent is dead, nil on context
// cancellation.
func (w *Watchdog) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !w.prober.Exists(w.pid) {
				w.logger.Warn("parent process is gone, shutting down")
				return zerr.With(domain.ErrParentGone, "pid", w.pid)
			}
		}
	}
}
