package config

// File represents the structure of the vigil.yaml configuration file.
// Every field is optional; absent fields fall back to the built-in defaults.
type File struct {
	Defaults DefaultsDTO `yaml:"defaults"`
	Watchdog WatchdogDTO `yaml:"watchdog"`
	Log      LogDTO      `yaml:"log"`
}

// DefaultsDTO overrides the defaults applied to register commands that
// omit the corresponding field. All intervals are milliseconds.
type DefaultsDTO struct {
	DebounceMs           *int `yaml:"debounceMs"`
	PollIntervalMs       *int `yaml:"pollIntervalMs"`
	PollIntervalBinaryMs *int `yaml:"pollIntervalBinaryMs"`
}

// WatchdogDTO configures the parent-liveness watchdog.
type WatchdogDTO struct {
	IntervalMs *int `yaml:"intervalMs"`
}

// LogDTO configures diagnostics output.
type LogDTO struct {
	Format string `yaml:"format"`
	Debug  *bool  `yaml:"debug"`
}
