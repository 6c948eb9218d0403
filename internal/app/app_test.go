package app_test

import (
	"context"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/vigil/internal/adapters/config"
	"go.trai.ch/vigil/internal/adapters/control"
	"go.trai.ch/vigil/internal/adapters/logger"
	"go.trai.ch/vigil/internal/app"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/vigil/internal/engine/registry"
)

// fakeProber reports a fixed liveness answer.
type fakeProber struct {
	alive atomic.Bool
}

func (f *fakeProber) Exists(_ int) bool { return f.alive.Load() }

// stubFactory hands out watchers that never emit.
type stubFactory struct {
	calls atomic.Int32
	cfgs  chan domain.WatchConfig
}

func newStubFactory() *stubFactory {
	return &stubFactory{cfgs: make(chan domain.WatchConfig, 8)}
}

func (f *stubFactory) New(cfg domain.WatchConfig) (ports.RawWatcher, error) {
	f.calls.Add(1)
	f.cfgs <- cfg
	return &stubWatcher{events: make(chan ports.RawEvent)}, nil
}

type stubWatcher struct {
	events chan ports.RawEvent
	once   atomic.Bool
}

func (w *stubWatcher) Start(_ context.Context) error { return nil }

func (w *stubWatcher) Stop() error {
	if w.once.CompareAndSwap(false, true) {
		close(w.events)
	}
	return nil
}

func (w *stubWatcher) Events() iter.Seq[ports.RawEvent] {
	return func(yield func(ports.RawEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func (w *stubWatcher) Errors() <-chan error { return nil }

func newTestApp(in io.Reader, closeFn func() error, factory ports.WatcherFactory, prober ports.ProcessProber) *app.App {
	log := logger.New()
	log.SetOutput(io.Discard)

	loader := config.NewLoader(log)
	reg := registry.NewRegistry(factory, control.NewWriter(io.Discard), log)

	return app.New(loader, reg, prober, log).WithControl(in, closeFn)
}

func TestApp_Serve_EmptyLineEndsCleanly(t *testing.T) {
	prober := &fakeProber{}
	prober.alive.Store(true)

	a := newTestApp(strings.NewReader("\n"), func() error { return nil }, newStubFactory(), prober)

	err := a.Serve(t.Context(), app.ServeOptions{})
	require.NoError(t, err)
}

func TestApp_Serve_DispatchesRegisterCommands(t *testing.T) {
	prober := &fakeProber{}
	prober.alive.Store(true)
	factory := newStubFactory()

	input := `{"register":{"uid":4,"cwd":"/proj","patterns":["*.js"]}}` + "\n\n"
	a := newTestApp(strings.NewReader(input), func() error { return nil }, factory, prober)

	require.NoError(t, a.Serve(t.Context(), app.ServeOptions{}))

	require.EqualValues(t, 1, factory.calls.Load())
	cfg := <-factory.cfgs
	assert.Equal(t, 4, cfg.UID)
	assert.Equal(t, "/proj", cfg.Root)
	assert.Equal(t, []string{"*.js"}, cfg.Patterns)
}

func TestApp_Serve_ParentGoneTerminates(t *testing.T) {
	prober := &fakeProber{}
	prober.alive.Store(false)

	// A short watchdog interval keeps the test fast.
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "vigil.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("watchdog:\n  intervalMs: 20\n"), 0o600))

	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	a := newTestApp(pr, pr.Close, newStubFactory(), prober)

	start := time.Now()
	err := a.Serve(t.Context(), app.ServeOptions{ConfigPath: cfgPath})
	require.ErrorIs(t, err, domain.ErrParentGone)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestApp_Serve_ConfigLoadFailure(t *testing.T) {
	prober := &fakeProber{}
	prober.alive.Store(true)

	a := newTestApp(strings.NewReader("\n"), func() error { return nil }, newStubFactory(), prober)

	err := a.Serve(t.Context(), app.ServeOptions{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}
