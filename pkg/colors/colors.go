// Package colors provides shared ANSI color codes for terminal output.
// This package consolidates color definitions to avoid duplication across packages.
package colors

import (
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI color codes for terminal output
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

var enabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

// Enabled reports whether stdout is a terminal that can render colors.
func Enabled() bool {
	return enabled
}

// Paint wraps s in the given color code when stdout is a terminal, and
// returns s unchanged otherwise.
func Paint(color, s string) string {
	if !enabled {
		return s
	}
	return color + s + Reset
}
