// Package config provides the configuration loader for vigil.
package config

import (
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "vigil.yaml"

// Settings is the resolved worker configuration.
type Settings struct {
	// Defaults are applied to register commands that omit optional fields.
	Defaults domain.Defaults
	// WatchdogInterval is the parent-liveness probe cadence.
	WatchdogInterval time.Duration
	// LogFormat is "auto", "pretty" or "json".
	LogFormat string
	// Debug enables process-wide debug diagnostics.
	Debug bool
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Defaults:         domain.DefaultDefaults(),
		WatchdogInterval: domain.DefaultWatchdogInterval,
		LogFormat:        "auto",
	}
}

// Loader reads vigil.yaml and resolves it against the built-in defaults.
type Loader struct {
	fs     FileSystem
	logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{fs: NewOSFS(), logger: logger}
}

// WithFileSystem replaces the filesystem. Used for testing.
func (l *Loader) WithFileSystem(fsys FileSystem) *Loader {
	l.fs = fsys
	return l
}

// Load reads the configuration file at path, or vigil.yaml in cwd when
// path is empty. A missing file is not an error; the built-in defaults
// apply.
func (l *Loader) Load(cwd, path string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(cwd, FileName)
	}

	if _, err := l.fs.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			l.logger.Debug("no configuration file at " + path + ", using defaults")
			return DefaultSettings(), nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to stat configuration file"), "path", path)
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", path)
	}

	settings, err := resolve(&file)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	l.logger.Debug("configuration loaded from " + path)
	return settings, nil
}

// resolve merges the file on top of the built-in defaults.
func resolve(file *File) (*Settings, error) {
	settings := DefaultSettings()

	if err := applyInterval(&settings.Defaults.DebounceWindow, file.Defaults.DebounceMs, "defaults.debounceMs", true); err != nil {
		return nil, err
	}
	if err := applyInterval(&settings.Defaults.PollInterval, file.Defaults.PollIntervalMs, "defaults.pollIntervalMs", false); err != nil {
		return nil, err
	}
	if err := applyInterval(&settings.Defaults.PollIntervalBinary, file.Defaults.PollIntervalBinaryMs, "defaults.pollIntervalBinaryMs", false); err != nil {
		return nil, err
	}
	if err := applyInterval(&settings.WatchdogInterval, file.Watchdog.IntervalMs, "watchdog.intervalMs", false); err != nil {
		return nil, err
	}

	switch file.Log.Format {
	case "", "auto", "pretty", "json":
	default:
		return nil, zerr.With(zerr.With(domain.ErrConfigParseFailed, "field", "log.format"), "value", file.Log.Format)
	}
	if file.Log.Format != "" {
		settings.LogFormat = file.Log.Format
	}
	if file.Log.Debug != nil {
		settings.Debug = *file.Log.Debug
	}

	return settings, nil
}

func applyInterval(dst *time.Duration, ms *int, field string, allowZero bool) error {
	if ms == nil {
		return nil
	}
	if *ms < 0 || (*ms == 0 && !allowZero) {
		return zerr.With(zerr.With(domain.ErrConfigParseFailed, "field", field), "value", *ms)
	}
	*dst = time.Duration(*ms) * time.Millisecond
	return nil
}
