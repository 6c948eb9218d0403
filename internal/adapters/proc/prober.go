// Package proc probes the liveness of other processes.
package proc

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Prober implements ports.ProcessProber with a zero-signal kill probe.
type Prober struct{}

// NewProber creates a new Prober.
func NewProber() *Prober {
	return &Prober{}
}

// Exists reports whether a process with the given pid is alive.
// Signal 0 performs permission and existence checks without delivering
// anything; EPERM still proves the process exists.
func (p *Prober) Exists(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}
	return errors.Is(err, unix.EPERM)
}
