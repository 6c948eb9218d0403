package domain

import "time"

// WatchOptions are the capability-level options for one watch session.
type WatchOptions struct {
	// FollowSymlinks makes the capability descend into symlinked directories.
	FollowSymlinks bool
	// Polling selects the stat-based polling backend instead of notifications.
	Polling bool
	// PollInterval is the polling cadence for regular files.
	PollInterval time.Duration
	// PollIntervalBinary is the polling cadence for binary files.
	PollIntervalBinary time.Duration
	// ReportInitial emits a created event for every matching file on startup.
	ReportInitial bool
	// Debug enables per-session diagnostics.
	Debug bool
}

// WatchConfig fully describes one watch session for the raw capability.
type WatchConfig struct {
	// UID is the caller-assigned session identifier.
	UID int
	// Root is the base directory all patterns are relative to.
	Root string
	// Patterns are the glob patterns to watch, relative to Root.
	Patterns []string
	// Ignores are glob patterns whose matches are excluded.
	Ignores []string
	// Options are the capability-level options.
	Options WatchOptions
}
