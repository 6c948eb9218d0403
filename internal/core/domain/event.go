package domain

import (
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// EventKind is a public event kind as it appears on the output channel.
type EventKind string

const (
	// KindCreate indicates a file was created.
	KindCreate EventKind = "create"
	// KindChange indicates a file was modified.
	KindChange EventKind = "change"
	// KindDelete indicates a file was deleted.
	KindDelete EventKind = "delete"
)

// AllEventKinds lists every public event kind, in wire order.
var AllEventKinds = []EventKind{KindCreate, KindChange, KindDelete}

// Valid reports whether k is one of the three public kinds.
func (k EventKind) Valid() bool {
	switch k {
	case KindCreate, KindChange, KindDelete:
		return true
	}
	return false
}

// FlushSentinel terminates a batch on the output channel.
const FlushSentinel = "<flush>"

// Record is one translated event as written to the output channel.
type Record struct {
	// UID identifies the session the event belongs to.
	UID int
	// Kind is the public event kind.
	Kind EventKind
	// Path is the absolute path of the file that changed.
	Path string
}

// String renders the record in its wire form, uid:kind:path.
func (r Record) String() string {
	return strconv.Itoa(r.UID) + ":" + string(r.Kind) + ":" + r.Path
}

// ParseRecord parses a wire-form event line. The path may itself contain
// colons, so only the first two separators are significant.
func ParseRecord(line string) (Record, error) {
	parts := strings.SplitN(line, ":", 3)
	if len(parts) != 3 {
		return Record{}, zerr.With(ErrMalformedRecord, "line", line)
	}

	uid, err := strconv.Atoi(parts[0])
	if err != nil {
		return Record{}, zerr.With(ErrMalformedRecord, "line", line)
	}

	kind := EventKind(parts[1])
	if !kind.Valid() {
		return Record{}, zerr.With(ErrMalformedRecord, "line", line)
	}

	return Record{UID: uid, Kind: kind, Path: parts[2]}, nil
}
