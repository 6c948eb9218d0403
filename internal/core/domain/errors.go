package domain

import "go.trai.ch/zerr"

var (
	// ErrParse is returned when a control-channel line is not valid JSON.
	ErrParse = zerr.New("failed to parse command")

	// ErrUnknownCommand is returned when a parsed command carries neither a register nor an unregister key.
	ErrUnknownCommand = zerr.New("command has neither register nor unregister")

	// ErrMissingField is returned when a register payload lacks a required field.
	ErrMissingField = zerr.New("missing required field")

	// ErrDuplicateWatcher is returned when registering a uid that already has a live session.
	ErrDuplicateWatcher = zerr.New("watcher already registered")

	// ErrWatcherNotFound is returned when unregistering a uid with no live session.
	ErrWatcherNotFound = zerr.New("watcher not found")

	// ErrWatchFailed is returned when the raw watch capability cannot be started for a session.
	ErrWatchFailed = zerr.New("failed to start watch")

	// ErrInvalidPattern is returned when a glob pattern cannot be compiled.
	ErrInvalidPattern = zerr.New("invalid glob pattern")

	// ErrParentGone is returned by the watchdog when the parent process no longer exists.
	ErrParentGone = zerr.New("parent process is gone")

	// ErrRegistryClosed is returned when a command arrives after the registry has shut down.
	ErrRegistryClosed = zerr.New("registry is closed")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrWorkerSpawnFailed is returned when the supervisor cannot start the worker process.
	ErrWorkerSpawnFailed = zerr.New("failed to spawn worker process")

	// ErrWorkerNotRunning is returned when a subscription is requested without a live worker.
	ErrWorkerNotRunning = zerr.New("worker process is not running")

	// ErrMalformedRecord is returned when an output line does not have the uid:kind:path shape.
	ErrMalformedRecord = zerr.New("malformed event record")
)
