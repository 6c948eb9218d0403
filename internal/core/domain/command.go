package domain

import (
	"encoding/json"
	"time"

	"go.trai.ch/zerr"
)

// Documented defaults applied to missing optional register fields.
const (
	// DefaultDebounceWindow is the debounce window used when debounceChanges is absent.
	DefaultDebounceWindow = 400 * time.Millisecond
	// DefaultPollInterval is the polling cadence for regular files.
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultPollIntervalBinary is the polling cadence for binary files.
	DefaultPollIntervalBinary = 300 * time.Millisecond
	// DefaultWatchdogInterval is how often the parent process is probed.
	DefaultWatchdogInterval = 3 * time.Second
)

// Command is one control-channel line. A line may carry a register, an
// unregister, or both; when both are present the unregister is processed
// first so a caller can atomically replace a watcher under the same uid.
type Command struct {
	Register   *RegisterPayload `json:"register,omitempty"`
	Unregister *int             `json:"unregister,omitempty"`
}

// Empty reports whether the command carries neither variant.
func (c Command) Empty() bool {
	return c.Register == nil && c.Unregister == nil
}

// RegisterPayload is the body of a register command.
type RegisterPayload struct {
	UID                int      `json:"uid"`
	Cwd                string   `json:"cwd"`
	Patterns           []string `json:"patterns"`
	Events             []string `json:"events,omitempty"`
	Ignores            []string `json:"ignores,omitempty"`
	Initial            bool     `json:"initial,omitempty"`
	FollowSymlinks     bool     `json:"followSymlinks,omitempty"`
	Polling            bool     `json:"polling,omitempty"`
	PollInterval       int      `json:"pollInterval,omitempty"`
	PollIntervalBinary int      `json:"pollIntervalBinary,omitempty"`
	DebounceChanges    *int     `json:"debounceChanges,omitempty"`
	Debug              bool     `json:"debug,omitempty"`
}

// ParseCommand parses one non-empty control-channel line.
func ParseCommand(line []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(line, &cmd); err != nil {
		return Command{}, zerr.With(ErrParse, "error", err.Error())
	}
	return cmd, nil
}

// Validate checks the required register fields.
func (p *RegisterPayload) Validate() error {
	if p.UID <= 0 {
		return zerr.With(ErrMissingField, "field", "uid")
	}
	if p.Cwd == "" {
		return zerr.With(ErrMissingField, "field", "cwd")
	}
	if len(p.Patterns) == 0 {
		return zerr.With(ErrMissingField, "field", "patterns")
	}
	return nil
}

// Defaults are the values applied to absent optional register fields.
// They normally come from the documented constants but can be overridden
// by the worker's configuration file.
type Defaults struct {
	DebounceWindow     time.Duration
	PollInterval       time.Duration
	PollIntervalBinary time.Duration
}

// DefaultDefaults returns the documented defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		DebounceWindow:     DefaultDebounceWindow,
		PollInterval:       DefaultPollInterval,
		PollIntervalBinary: DefaultPollIntervalBinary,
	}
}

// ApplyDefaults fills in defaults for absent optional fields.
// The zero value is meaningful for debounceChanges (emit immediately), so
// absence is tracked with a pointer.
func (p *RegisterPayload) ApplyDefaults(d Defaults) {
	if p.DebounceChanges == nil {
		ms := int(d.DebounceWindow / time.Millisecond)
		p.DebounceChanges = &ms
	}
	if p.PollInterval <= 0 {
		p.PollInterval = int(d.PollInterval / time.Millisecond)
	}
	if p.PollIntervalBinary <= 0 {
		p.PollIntervalBinary = int(d.PollIntervalBinary / time.Millisecond)
	}
	if len(p.Events) == 0 {
		for _, k := range AllEventKinds {
			p.Events = append(p.Events, string(k))
		}
	}
}

// DebounceWindow returns the effective debounce window.
func (p *RegisterPayload) DebounceWindow() time.Duration {
	if p.DebounceChanges == nil {
		return DefaultDebounceWindow
	}
	if *p.DebounceChanges <= 0 {
		return 0
	}
	return time.Duration(*p.DebounceChanges) * time.Millisecond
}

// AllowedKinds returns the set of public kinds this session wants.
// Unknown names are ignored.
func (p *RegisterPayload) AllowedKinds() map[EventKind]bool {
	allowed := make(map[EventKind]bool, len(p.Events))
	for _, name := range p.Events {
		if kind := EventKind(name); kind.Valid() {
			allowed[kind] = true
		}
	}
	return allowed
}

// WatchOptions returns the capability-level options derived from the payload.
func (p *RegisterPayload) WatchOptions() WatchOptions {
	return WatchOptions{
		FollowSymlinks:     p.FollowSymlinks,
		Polling:            p.Polling,
		PollInterval:       time.Duration(p.PollInterval) * time.Millisecond,
		PollIntervalBinary: time.Duration(p.PollIntervalBinary) * time.Millisecond,
		ReportInitial:      p.Initial,
		Debug:              p.Debug,
	}
}
