// Package detector provides environment detection for diagnostics format selection.
package detector

import (
	"os"

	"golang.org/x/term"
)

// LogFormat represents the diagnostics rendering format.
type LogFormat int

const (
	// FormatAuto automatically detects the appropriate format.
	FormatAuto LogFormat = iota
	// FormatPretty forces human-readable colored diagnostics.
	FormatPretty
	// FormatJSON forces machine-readable JSON diagnostics.
	FormatJSON
)

// DetectEnvironment returns the recommended diagnostics format.
// A worker spawned by an editor or supervisor has a piped stderr and gets
// JSON; a human running `vigil serve` in a terminal gets pretty output.
func DetectEnvironment() LogFormat {
	isTTY := term.IsTerminal(int(os.Stderr.Fd()))

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return FormatJSON
	}
	return FormatPretty
}

// ResolveFormat applies a user override flag to auto-detection.
// userFlag should be one of: "auto", "pretty", "json", or empty.
func ResolveFormat(autoDetected LogFormat, userFlag string) LogFormat {
	switch userFlag {
	case "pretty":
		return FormatPretty
	case "json":
		return FormatJSON
	case "auto", "":
		return autoDetected
	default:
		return autoDetected
	}
}
