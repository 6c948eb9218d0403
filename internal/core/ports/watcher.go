package ports

import (
	"context"
	"iter"

	"go.trai.ch/vigil/internal/core/domain"
)

//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks

// RawKind is an event kind as delivered by the raw watch capability, before
// translation to the public kinds.
type RawKind uint8

const (
	// RawAdded indicates a file appeared under the watched root.
	RawAdded RawKind = iota
	// RawAddedDir indicates a directory appeared under the watched root.
	RawAddedDir
	// RawChanged indicates a file's content changed.
	RawChanged
	// RawRemoved indicates a file disappeared.
	RawRemoved
	// RawRemovedDir indicates a directory disappeared.
	RawRemovedDir
	// RawUnknown is any kind the capability cannot classify.
	RawUnknown
)

// String returns the capability-level name of the kind.
func (k RawKind) String() string {
	switch k {
	case RawAdded:
		return "added"
	case RawAddedDir:
		return "addedDirectory"
	case RawChanged:
		return "changed"
	case RawRemoved:
		return "removed"
	case RawRemovedDir:
		return "removedDirectory"
	default:
		return "unknown"
	}
}

// RawEvent is one notification from the raw watch capability.
type RawEvent struct {
	// Kind is the raw event kind.
	Kind RawKind
	// Path is the absolute path of the file or directory that changed.
	Path string
}

// RawWatcher is one running watch over a directory subtree. Events for a
// single watcher are delivered in the order they were observed.
type RawWatcher interface {
	// Start begins watching. It fails synchronously or not at all.
	Start(ctx context.Context) error
	// Stop releases all resources and ends the Events sequence.
	Stop() error
	// Events returns the ordered stream of raw events.
	Events() iter.Seq[RawEvent]
	// Errors returns internal capability faults. These are degraded
	// conditions, not fatal ones; the watcher keeps running.
	Errors() <-chan error
}

// WatcherFactory constructs a RawWatcher for one session.
type WatcherFactory interface {
	New(cfg domain.WatchConfig) (RawWatcher, error)
}
