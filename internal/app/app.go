// Package app implements the application layer for vigil.
package app

import (
	"context"
	"io"
	"os"

	"go.trai.ch/vigil/internal/adapters/config"
	"go.trai.ch/vigil/internal/adapters/control"
	"go.trai.ch/vigil/internal/adapters/detector"
	"go.trai.ch/vigil/internal/adapters/telemetry"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/vigil/internal/engine/registry"
	"go.trai.ch/vigil/internal/engine/watchdog"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App wires the control-channel reader, the watch registry and the
// parent-liveness watchdog into one serving loop.
type App struct {
	configLoader *config.Loader
	registry     *registry.Registry
	prober       ports.ProcessProber
	logger       ports.Logger

	control      io.Reader
	closeControl func() error
}

// New creates a new App instance serving the process's standard streams.
func New(loader *config.Loader, reg *registry.Registry, prober ports.ProcessProber, log ports.Logger) *App {
	return &App{
		configLoader: loader,
		registry:     reg,
		prober:       prober,
		logger:       log,
		control:      os.Stdin,
		closeControl: os.Stdin.Close,
	}
}

// WithControl replaces the control channel. Used for testing.
func (a *App) WithControl(in io.Reader, closeFn func() error) *App {
	a.control = in
	a.closeControl = closeFn
	return a
}

// ServeOptions configuration for the Serve method.
type ServeOptions struct {
	ConfigPath string
	LogFormat  string
	Debug      bool
}

// Serve runs the worker until the control channel closes or the parent
// process disappears. The returned error is ErrParentGone in the latter
// case; a clean channel close returns nil.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	settings, err := a.configLoader.Load(".", opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	a.configureLogging(settings, opts)
	telemetry.Setup(a.logger)

	reader := control.NewReader(a.control, a.registry, a.logger, settings.Defaults)
	dog := watchdog.New(a.prober, a.logger, settings.WatchdogInterval)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := dog.Run(gctx)
		if err != nil {
			// The reader is blocked on the control stream; closing it is
			// the only way to unblock the scanner.
			_ = a.closeControl()
		}
		return err
	})

	g.Go(func() error {
		defer cancel()
		defer a.registry.Close()
		return reader.Run(gctx)
	})

	return g.Wait()
}

// configureLogging resolves the diagnostics format and debug level from
// flags, configuration and environment, in that priority order.
func (a *App) configureLogging(settings *config.Settings, opts ServeOptions) {
	flagFormat := opts.LogFormat
	if flagFormat == "" {
		flagFormat = settings.LogFormat
	}
	format := detector.ResolveFormat(detector.DetectEnvironment(), flagFormat)
	a.logger.SetJSON(format == detector.FormatJSON)

	if opts.Debug || settings.Debug {
		a.logger.SetDebug(true)
	}
}
