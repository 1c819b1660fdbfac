package ui

import (
	"os"

	"golang.org/x/term"
)

// ShouldUseColor reports whether ANSI colors should be emitted on stdout.
// Honors the NO_COLOR and CLICOLOR conventions before falling back to
// TTY detection.
func ShouldUseColor() bool {
	// https://no-color.org: any non-empty value wins.
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch os.Getenv("CLICOLOR_FORCE") {
	case "", "0":
	default:
		// Forced on, TTY or not.
		return true
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
