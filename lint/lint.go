// Copyright © 2026 The Vize authors

// Package lint provides static analysis for vize component files.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives the parsed template, plus scope analysis results when
// available, and reports diagnostics. The framework handles parsing, running
// analyzers, collecting results, and formatting output.
//
// Analyzers are composable and extensible — embedders can define custom
// checks alongside the built-in set.
package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ushironoko/vize-sub001/analysis"
	"github.com/ushironoko/vize-sub001/astutil"
	"github.com/ushironoko/vize-sub001/diagnostic"
	"github.com/ushironoko/vize-sub001/sfc"
	"github.com/ushironoko/vize-sub001/template/ast"
	"github.com/ushironoko/vize-sub001/template/parser"
)

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "vfor-key").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Filename is the source file being analyzed.
	Filename string

	// Source is the full file contents. Diagnostic spans index into it.
	Source []byte

	// Template holds the template block's parsed children. Empty when the
	// file has no template block.
	Template []ast.Node

	// Croquis holds the result of scope analysis, if available.
	// Nil when analysis has not been run. Analyzers that need scope data
	// should check for nil and return early.
	Croquis *analysis.Croquis

	lines *diagnostic.LineIndex

	// diagnostics collects reported findings.
	diagnostics []Diagnostic
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic at a source span.
func (p *Pass) Reportf(loc ast.Span, format string, args ...interface{}) {
	p.Report(p.diagf(loc, format, args...))
}

// ReportfNotes is Reportf with trailing note lines.
func (p *Pass) ReportfNotes(loc ast.Span, notes []string, format string, args ...interface{}) {
	d := p.diagf(loc, format, args...)
	d.Notes = notes
	p.Report(d)
}

func (p *Pass) diagf(loc ast.Span, format string, args ...interface{}) Diagnostic {
	line, col := p.lines.Position(loc.Start)
	return Diagnostic{
		Pos:     Position{File: p.Filename, Line: line, Col: col},
		Start:   loc.Start,
		End:     loc.End,
		Message: fmt.Sprintf(format, args...),
	}
}

// At converts a bare byte offset into a zero-width span for Reportf.
func At(offset int) ast.Span {
	return ast.Span{Start: offset, End: offset}
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos"`

	// Start and End are the byte offsets of the problem span in the file.
	Start int `json:"start"`
	End   int `json:"end"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
}

// String returns the position in file:line format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line: message (analyzer)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Linter runs a set of analyzers over component files.
type Linter struct {
	Analyzers []*Analyzer
}

// LintFile analyzes a single component file and returns all diagnostics.
// Scope-dependent analyzers are no-ops because no analysis result is provided.
func (l *Linter) LintFile(source []byte, filename string) ([]Diagnostic, error) {
	return l.LintFileWithContext(source, filename, nil)
}

// LintFileWithContext analyzes a component file with an optional precomputed
// analysis result. When croquis is nil, scope-dependent analyzers
// (undefined-ref, unused-template-var, etc.) are no-ops. When non-nil, its
// offsets must index into source.
func (l *Linter) LintFileWithContext(source []byte, filename string, croquis *analysis.Croquis) ([]Diagnostic, error) {
	f := sfc.Parse(filename, source)
	var nodes []ast.Node
	if f.Template != nil {
		nodes = f.Template.Children
	}
	return l.lint(filename, source, nodes, f.Errors, croquis)
}

// LintFileWithAnalysis parses, analyzes, and lints a component file in one
// call. This is a convenience that runs scope analysis on the template block
// and passes the result to all analyzers. Script bindings, if known, go in
// cfg.Bindings.
func (l *Linter) LintFileWithAnalysis(source []byte, filename string, cfg *analysis.Config) ([]Diagnostic, error) {
	f := sfc.Parse(filename, source)
	if cfg == nil {
		cfg = &analysis.Config{}
	}
	cfg.Filename = filename

	var nodes []ast.Node
	var croquis *analysis.Croquis
	if f.Template != nil {
		nodes = f.Template.Children
		croquis = analysis.Analyze(&ast.Root{Children: nodes, Loc: f.Template.Loc}, cfg)
	}
	return l.lint(filename, source, nodes, f.Errors, croquis)
}

// LintTemplate analyzes bare template markup that is not wrapped in a
// component file, running scope analysis first.
func (l *Linter) LintTemplate(source []byte, filename string, cfg *analysis.Config) ([]Diagnostic, error) {
	root, errs := parser.Parse(source)
	if cfg == nil {
		cfg = &analysis.Config{}
	}
	cfg.Filename = filename
	croquis := analysis.Analyze(root, cfg)
	return l.lint(filename, source, root.Children, errs, croquis)
}

// LintTemplateWithContext lints bare template markup against a precomputed
// analysis result. When croquis is non-nil its offsets must index into
// source. Callers that need the analysis result themselves (the REPL, the
// IDE backend) use this to avoid analyzing twice.
func (l *Linter) LintTemplateWithContext(source []byte, filename string, croquis *analysis.Croquis) ([]Diagnostic, error) {
	root, errs := parser.Parse(source)
	return l.lint(filename, source, root.Children, errs, croquis)
}

func (l *Linter) lint(filename string, source []byte, nodes []ast.Node, parseErrs []*parser.Error, croquis *analysis.Croquis) ([]Diagnostic, error) {
	lines := diagnostic.NewLineIndex(source)

	var all []Diagnostic
	for _, e := range parseErrs {
		line, col := lines.Position(e.Offset)
		all = append(all, Diagnostic{
			Pos:      Position{File: filename, Line: line, Col: col},
			Start:    e.Offset,
			End:      e.Offset,
			Message:  e.Message,
			Analyzer: "syntax",
			Severity: SeverityError,
		})
	}

	for _, analyzer := range l.Analyzers {
		pass := &Pass{
			Analyzer: analyzer,
			Filename: filename,
			Source:   source,
			Template: nodes,
			Croquis:  croquis,
			lines:    lines,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, fmt.Errorf("%s: analyzer %s: %w", filename, analyzer.Name, err)
		}
		// Set file on diagnostics that don't have one
		for i := range pass.diagnostics {
			if pass.diagnostics[i].Pos.File == "" {
				pass.diagnostics[i].Pos.File = filename
			}
		}
		all = append(all, pass.diagnostics...)
	}

	// Filter suppressed diagnostics (<!-- nolint --> comments)
	all = filterSuppressed(all, nodes, lines)

	// Sort by file, then line, then column
	sort.Slice(all, func(i, j int) bool {
		if all[i].Pos.File != all[j].Pos.File {
			return all[i].Pos.File < all[j].Pos.File
		}
		if all[i].Pos.Line != all[j].Pos.Line {
			return all[i].Pos.Line < all[j].Pos.Line
		}
		return all[i].Pos.Col < all[j].Pos.Col
	})

	return all, nil
}

// filterSuppressed removes diagnostics covered by <!-- nolint --> comments.
// A directive suppresses findings on its own line and on the line directly
// below it, so both trailing and comment-above placement work:
//
//	<div id="x"> <!-- nolint:duplicate-id -->
//
//	<!-- nolint -->
//	<li v-for="item in items">
func filterSuppressed(diags []Diagnostic, nodes []ast.Node, lines *diagnostic.LineIndex) []Diagnostic {
	nolintLines := make(map[int][]string) // line -> nil (all) or analyzer names
	astutil.Walk(nodes, func(node ast.Node, _ ast.Node, _ int) {
		c, ok := node.(*ast.Comment)
		if !ok {
			return
		}
		names, ok := parseNolint(c.Content)
		if !ok {
			return
		}
		line := lines.LineAt(c.Loc.Start)
		for _, l := range []int{line, line + 1} {
			if names == nil {
				nolintLines[l] = nil
			} else if prev, seen := nolintLines[l]; !seen || prev != nil {
				nolintLines[l] = append(nolintLines[l], names...)
			}
		}
	})

	var filtered []Diagnostic
	for _, d := range diags {
		names, ok := nolintLines[d.Pos.Line]
		if !ok {
			filtered = append(filtered, d)
			continue
		}
		// nil directive = suppress all
		if names == nil {
			continue
		}
		suppressed := false
		for _, name := range names {
			if name == d.Analyzer {
				suppressed = true
				break
			}
		}
		if !suppressed {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// parseNolint extracts the directive from a comment body. It returns
// (nil, true) for a bare "nolint" suppressing everything, the listed
// analyzer names for "nolint:a,b", and ok=false for ordinary comments.
func parseNolint(comment string) (names []string, ok bool) {
	text := strings.TrimSpace(comment)
	if !strings.HasPrefix(text, "nolint") {
		return nil, false
	}
	rest := strings.TrimPrefix(text, "nolint")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil, true
	}
	if !strings.HasPrefix(rest, ":") {
		return nil, false
	}
	for _, name := range strings.Split(strings.TrimPrefix(rest, ":"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, true
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

// Spans converts diagnostics into renderer spans for annotated output.
func Spans(diags []Diagnostic) []diagnostic.Diagnostic {
	out := make([]diagnostic.Diagnostic, len(diags))
	for i, d := range diags {
		sev := diagnostic.SeverityWarning
		switch d.Severity {
		case SeverityError:
			sev = diagnostic.SeverityError
		case SeverityInfo:
			sev = diagnostic.SeverityNote
		}
		endCol := 0
		if d.End > d.Start {
			endCol = d.Pos.Col + (d.End - d.Start) - 1
		}
		out[i] = diagnostic.Diagnostic{
			Severity: sev,
			Message:  d.Message,
			Spans: []diagnostic.Span{{
				File:   d.Pos.File,
				Line:   d.Pos.Line,
				Col:    d.Pos.Col,
				EndCol: endCol,
				Label:  d.Analyzer,
			}},
			Notes: d.Notes,
		}
	}
	return out
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerUndefinedRef,
		AnalyzerUnusedTemplateVar,
		AnalyzerVForKey,
		AnalyzerDuplicateID,
		AnalyzerDuplicateAttr,
		AnalyzerTemplateSideEffect,
		AnalyzerEmptyExpression,
	}
}
