// Package control implements the line-oriented control and output
// channels that connect the worker to its controlling process.
package control

import (
	"io"
	"strings"
	"sync"

	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BatchWriter = (*Writer)(nil)

// Writer emits event batches on the output channel. A batch is written
// with a single Write call so its lines and terminator stay contiguous
// even when sessions flush concurrently.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter creates a Writer on top of the given output stream.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// WriteBatch writes the event lines followed by the batch terminator.
// An empty batch writes nothing.
func (w *Writer) WriteBatch(lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(domain.FlushSentinel)
	b.WriteByte('\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := io.WriteString(w.out, b.String()); err != nil {
		return zerr.Wrap(err, "failed to write event batch")
	}
	return nil
}
