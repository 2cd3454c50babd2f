// Copyright © 2026 The Vize authors

package diagnostic

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// Renderer formats diagnostics as annotated source snippets: a severity
// header, the offending template line with a caret underline, and any
// trailing notes. A Renderer caches file contents between spans and is
// not safe for concurrent use.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)

	sources map[string][]byte
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	p := choosePalette(r.Color, fileFromWriter(w))
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	ew.printf("%s%s:%s %s%s%s\n",
		p.head(d.Severity), d.Severity, p.reset,
		p.emphasis, d.Message, p.reset)

	for _, span := range d.Spans {
		r.writeSpan(ew, span, p)
	}

	for _, note := range d.Notes {
		ew.printf("   %s=%s note: %s\n", p.noteHead, p.reset, note)
	}

	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

// RenderAll writes all diagnostics to w separated by blank lines.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	for i, d := range diags {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(w, d); err != nil {
			return err
		}
	}
	return nil
}

// errWriter wraps a writer and captures the first error, short-circuiting
// subsequent writes. This avoids checking every fmt.Fprintf return value.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (r *Renderer) writeSpan(ew *errWriter, span Span, p palette) {
	// Location line: "  --> file:line:col"
	loc := span.File
	if span.Line > 0 {
		loc = fmt.Sprintf("%s:%d", span.File, span.Line)
		if span.Col > 0 {
			loc = fmt.Sprintf("%s:%d:%d", span.File, span.Line, span.Col)
		}
	}
	ew.printf("  %s-->%s %s\n", p.gutter, p.reset, loc)

	source := r.sourceLine(span.File, span.Line)
	if source == "" {
		// No source to quote; close the location with a bare gutter.
		ew.printf("   %s|%s\n", p.gutter, p.reset)
		return
	}

	lineStr := fmt.Sprintf("%d", span.Line)
	pad := strings.Repeat(" ", len(lineStr))

	ew.printf(" %s%s |%s\n", p.gutter, pad, p.reset)

	// Tabs are expanded so the underline row lines up with the source row.
	displaySource := strings.ReplaceAll(source, "\t", "    ")
	ew.printf(" %s%s |%s  %s\n", p.gutter, lineStr, p.reset, displaySource)

	// Span columns are byte positions; the underline is measured in
	// display cells so multibyte template text stays aligned.
	col := span.Col
	if col <= 0 {
		col = 1
	}
	endCol := span.EndCol
	if endCol <= 0 {
		endCol = detectEndCol(source, col)
	}
	if endCol < col {
		endCol = col
	}
	if endCol > len(source) {
		endCol = len(source)
	}

	prefix := ""
	if col > 1 && col-1 <= len(source) {
		prefix = source[:col-1]
	}
	underLen := 1
	if col-1 < endCol {
		underLen = displayWidth(source[col-1 : endCol])
	}

	underPad := strings.Repeat(" ", displayWidth(prefix))
	underline := strings.Repeat("^", underLen)

	ew.printf(" %s%s |%s  %s%s%s%s", p.gutter, pad, p.reset, underPad, p.head(SeverityError), underline, p.reset)
	if span.Label != "" {
		ew.printf(" %s%s%s", p.head(SeverityError), span.Label, p.reset)
	}
	ew.print("\n")

	ew.printf(" %s%s |%s\n", p.gutter, pad, p.reset)
}

// sourceLine returns line (1-based) of file, reading the file through
// the cache. Synthetic names and unreadable files yield "".
func (r *Renderer) sourceLine(file string, line int) string {
	if line <= 0 || file == "" || file == "<stdin>" {
		return ""
	}
	data, ok := r.sources[file]
	if !ok {
		reader := r.SourceReader
		if reader == nil {
			reader = func(name string) ([]byte, error) {
				return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
			}
		}
		data, _ = reader(file)
		if r.sources == nil {
			r.sources = make(map[string][]byte)
		}
		r.sources[file] = data
	}
	if data == nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for i := 1; scanner.Scan(); i++ {
		if i == line {
			return scanner.Text()
		}
	}
	return ""
}

// detectEndCol extends col to the end of the expression token under it,
// stopping at whitespace and at template punctuation.
func detectEndCol(source string, col int) int {
	if col <= 0 || col > len(source) {
		return col
	}
	end := col - 1 // 0-based
	for end < len(source) {
		ch, size := utf8.DecodeRuneInString(source[end:])
		switch ch {
		case ' ', '\t', '<', '>', '"', '\'', '=', '}', '(', ')', ',':
			return endOrCol(end, col)
		}
		end += size
	}
	return endOrCol(end, col)
}

func endOrCol(end, col int) int {
	if end == col-1 {
		return col // single character
	}
	return end // 1-based end column
}

// displayWidth returns the display width of a string, expanding tabs to
// 4 cells and counting other runes as one cell each.
func displayWidth(s string) int {
	w := 0
	for _, ch := range s {
		if ch == '\t' {
			w += 4
		} else {
			w++
		}
	}
	return w
}

// fileFromWriter extracts the *os.File behind a writer for terminal
// detection. Returns nil when the writer is not a file.
func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
