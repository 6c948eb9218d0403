package registry

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of event lines for one session into a
// single batch, trailing-edge: every arrival pushes the flush out by the
// full window. A zero window disables buffering entirely.
type Debouncer struct {
	mu      sync.Mutex
	pending []string
	timer   *time.Timer
	window  time.Duration
	flush   func(lines []string)
	stopped bool
}

// NewDebouncer creates a debouncer with the given window and flush callback.
func NewDebouncer(window time.Duration, flush func(lines []string)) *Debouncer {
	return &Debouncer{window: window, flush: flush}
}

// Add appends a line to the pending batch in arrival order and re-arms
// the timer. With a zero window the line is flushed immediately as a
// batch of one. Lines arriving after Cancel are dropped.
func (d *Debouncer) Add(line string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.window <= 0 {
		d.flush([]string{line})
		return
	}

	d.pending = append(d.pending, line)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// fire is called when the debounce window expires.
func (d *Debouncer) fire() {
	d.mu.Lock()

	// A concurrent Cancel may have emptied the queue after this timer
	// fired but before we took the lock; emit nothing in that case.
	if len(d.pending) == 0 {
		d.timer = nil
		d.mu.Unlock()
		return
	}

	lines := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	d.flush(lines)
}

// Cancel atomically stops the timer and discards the queue, and is
// terminal: every later Add is a no-op. An in-flight timer expiry that
// lost the race finds an empty queue and emits nothing.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}
