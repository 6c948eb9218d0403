package ports

// ProcessProber checks for the existence of another process without
// affecting it. Platform-specific; see adapters/proc.
type ProcessProber interface {
	// Exists reports whether a process with the given pid is alive.
	Exists(pid int) bool
}
