package ports

import "io"

// Logger is the diagnostics channel. It never writes to the output channel.
type Logger interface {
	// Debug logs a message only when debug logging is enabled.
	Debug(msg string)

	// Info logs an informational message.
	Info(msg string)

	// Warn logs a warning message.
	Warn(msg string)

	// Error logs an error, unwinding zerr chains into readable causes.
	Error(err error)

	// SetOutput updates the logger's output destination.
	SetOutput(w io.Writer)

	// SetJSON switches between JSON and pretty output.
	SetJSON(enable bool)

	// SetDebug enables or disables debug-level messages.
	SetDebug(enable bool)
}
