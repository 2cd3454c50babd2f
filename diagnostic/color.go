// Copyright © 2026 The Vize authors

package diagnostic

import (
	"os"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // detect based on terminal and NO_COLOR
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

// palette maps the roles in a rendered diagnostic to ANSI sequences. A
// zero palette renders plain text.
type palette struct {
	errorHead string // "error:" headers and underlines
	warnHead  string // "warning:" headers
	noteHead  string // "note:" headers and "= note:" markers
	gutter    string // line numbers, "-->" and "|" rails
	emphasis  string // the diagnostic message itself
	reset     string
}

var ansiPalette = palette{
	errorHead: "\033[1;31m",
	warnHead:  "\033[1;33m",
	noteHead:  "\033[1;36m",
	gutter:    "\033[1;34m",
	emphasis:  "\033[1m",
	reset:     "\033[0m",
}

var noPalette = palette{}

// head returns the header style for a severity.
func (p palette) head(sev Severity) string {
	switch sev {
	case SeverityWarning:
		return p.warnHead
	case SeverityNote:
		return p.noteHead
	default:
		return p.errorHead
	}
}

// choosePalette selects the color palette for the mode and the output
// file descriptor.
func choosePalette(mode ColorMode, w *os.File) palette {
	switch mode {
	case ColorAlways:
		return ansiPalette
	case ColorNever:
		return noPalette
	default: // ColorAuto
		if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
			return noPalette
		}
		if !isTerminal(w) {
			return noPalette
		}
		return ansiPalette
	}
}

// isTerminal reports whether f is connected to a terminal.
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
