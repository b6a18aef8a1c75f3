package source

import (
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether f is attached to a terminal, i.e. nothing was
// piped or redirected into it.
func IsInteractive(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
