// Copyright © 2026 The Vize authors

// Package repl implements an interactive template checker. Pasted markup
// is parsed, scope-analyzed, and linted against the script bindings of an
// optionally loaded component file.
package repl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ergochat/readline"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/ushironoko/vize-sub001/analysis"
	"github.com/ushironoko/vize-sub001/diagnostic"
	"github.com/ushironoko/vize-sub001/lint"
	"github.com/ushironoko/vize-sub001/script"
	"github.com/ushironoko/vize-sub001/sfc"
	"github.com/ushironoko/vize-sub001/template/parser"
)

// snippetName labels REPL input in diagnostics.
const snippetName = "repl"

type config struct {
	stdin  io.ReadCloser
	stderr io.WriteCloser
}

func newConfig(opts ...Option) *config {
	config := &config{}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output of the REPL.
func WithStderr(stderr io.WriteCloser) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// session holds the state commands operate on: the bindings of the last
// loaded component and the analysis of the last checked snippet.
type session struct {
	linter     *lint.Linter
	bindings   *analysis.ScriptBindings
	components []string
	croquis    *analysis.Croquis
	source     []byte
	out        io.Writer
}

// Run reads template snippets from the terminal and reports diagnostics
// for each one. Lines starting with a colon are commands; :help lists
// them. Run returns when input is exhausted or the user quits.
func Run(prompt string, opts ...Option) {
	cfg := newConfig(opts...)

	out := io.Writer(os.Stderr)
	if cfg.stderr != nil {
		out = cfg.stderr
	}
	s := &session{
		linter: &lint.Linter{Analyzers: lint.DefaultAnalyzers()},
		out:    out,
	}

	cont := strings.Repeat(" ", len(prompt))

	rlCfg := &readline.Config{
		Stdout:            out,
		Stderr:            out,
		Prompt:            prompt,
		HistoryFile:       historyPath(),
		HistorySearchFold: true,
		AutoComplete:      &bindingCompleter{session: s},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	ensureHistoryFilePermissions(rlCfg.HistoryFile)

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		panic(err)
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	var pending []byte
	for {
		if len(pending) == 0 {
			rl.SetPrompt(prompt)
		} else {
			rl.SetPrompt(cont)
		}
		line, err := rl.ReadSlice()
		if err == readline.ErrInterrupt {
			pending = pending[:0]
			continue
		}
		if err != nil {
			break
		}
		trimmed := bytes.TrimSpace(line)
		if len(pending) == 0 {
			if len(trimmed) == 0 {
				continue
			}
			if trimmed[0] == ':' {
				if s.command(string(trimmed)) {
					break
				}
				continue
			}
		}
		pending = append(pending, line...)
		pending = append(pending, '\n')
		// A blank line forces the snippet through even if unbalanced.
		if len(trimmed) != 0 && needsMore(pending) {
			continue
		}
		s.check(pending)
		pending = nil
	}
}

// needsMore reports whether src looks like an unfinished snippet: the
// parser ran off the end of the input with an element still open.
func needsMore(src []byte) bool {
	_, errs := parser.Parse(src)
	for _, e := range errs {
		if strings.Contains(e.Message, "never closed") ||
			strings.Contains(e.Message, "unexpected end of template") {
			return true
		}
	}
	return false
}

// check analyzes and lints one snippet, keeping the analysis result
// around for :scopes and :unused.
func (s *session) check(src []byte) {
	cfg := &analysis.Config{
		Filename:   snippetName,
		Bindings:   s.bindings,
		Components: s.components,
	}
	root, _ := parser.Parse(src)
	s.croquis = analysis.Analyze(root, cfg)
	s.source = src

	diags, err := s.linter.LintTemplateWithContext(src, snippetName, s.croquis)
	if err != nil {
		fmt.Fprintln(s.out, err) //nolint:errcheck // best-effort REPL output
		return
	}
	if len(diags) == 0 {
		fmt.Fprintln(s.out, "ok") //nolint:errcheck // best-effort REPL output
		return
	}
	renderDiagnostics(s.out, src, diags)
}

// command dispatches a colon command. It returns true when the REPL
// should exit.
func (s *session) command(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":help", ":h":
		s.printHelp()
	case ":load":
		if len(fields) < 2 {
			fmt.Fprintln(s.out, ":load requires a file argument") //nolint:errcheck // best-effort REPL output
			break
		}
		s.load(fields[1])
	case ":components":
		s.components = append(s.components, fields[1:]...)
		fmt.Fprintf(s.out, "%d registered components\n", len(s.components)) //nolint:errcheck // best-effort REPL output
	case ":bindings":
		s.printBindings()
	case ":scopes":
		s.printScopes()
	case ":unused":
		s.printUnused()
	case ":clear":
		s.bindings = nil
		s.components = nil
		s.croquis = nil
		s.source = nil
	default:
		fmt.Fprintf(s.out, "unknown command %s (:help lists commands)\n", fields[0]) //nolint:errcheck // best-effort REPL output
	}
	return false
}

// load reads a component file and adopts its script bindings as the
// resolution context for subsequent snippets.
func (s *session) load(path string) {
	src, err := os.ReadFile(path) // #nosec G304 -- path comes from the interactive user
	if err != nil {
		fmt.Fprintln(s.out, err) //nolint:errcheck // best-effort REPL output
		return
	}
	f := sfc.Parse(path, src)
	b := scriptBindings(f)
	if b == nil {
		fmt.Fprintf(s.out, "%s: no script bindings\n", path) //nolint:errcheck // best-effort REPL output
		return
	}
	s.bindings = b
	fmt.Fprintf(s.out, "loaded %d bindings from %s\n", b.Len(), path) //nolint:errcheck // best-effort REPL output
}

func (s *session) printBindings() {
	if s.bindings == nil {
		fmt.Fprintln(s.out, "no component loaded (:load file.vue)") //nolint:errcheck // best-effort REPL output
		return
	}
	names := s.bindings.Names()
	sort.Strings(names)
	for _, name := range names {
		bt, _ := s.bindings.Get(name)
		fmt.Fprintf(s.out, "  %s (%s)\n", name, bt) //nolint:errcheck // best-effort REPL output
	}
}

func (s *session) printScopes() {
	if s.croquis == nil {
		fmt.Fprintln(s.out, "no snippet checked yet") //nolint:errcheck // best-effort REPL output
		return
	}
	g := s.croquis.Scopes
	for i := 0; i < g.Len(); i++ {
		sc := g.Scope(analysis.ScopeID(i))
		fmt.Fprintf(s.out, "#%d %s", sc.ID, sc.Kind) //nolint:errcheck // best-effort REPL output
		if len(sc.Parents) > 0 {
			parts := make([]string, len(sc.Parents))
			for j, p := range sc.Parents {
				parts[j] = fmt.Sprintf("#%d", p)
			}
			fmt.Fprintf(s.out, " <- %s", strings.Join(parts, " ")) //nolint:errcheck // best-effort REPL output
		}
		fmt.Fprintln(s.out) //nolint:errcheck // best-effort REPL output
		if globalScope(sc.Kind) {
			// The global scopes carry hundreds of names; summarize.
			fmt.Fprintf(s.out, "    %d bindings\n", len(sc.Bindings)) //nolint:errcheck // best-effort REPL output
			continue
		}
		names := make([]string, 0, len(sc.Bindings))
		for name := range sc.Bindings {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b := sc.Bindings[name]
			mark := " "
			if b.Used {
				mark = "*"
			}
			fmt.Fprintf(s.out, "  %s %s (%s)\n", mark, name, b.Type) //nolint:errcheck // best-effort REPL output
		}
	}
}

func (s *session) printUnused() {
	if s.croquis == nil {
		fmt.Fprintln(s.out, "no snippet checked yet") //nolint:errcheck // best-effort REPL output
		return
	}
	unused := s.croquis.UnusedTemplateVars()
	if len(unused) == 0 {
		fmt.Fprintln(s.out, "no unused template variables") //nolint:errcheck // best-effort REPL output
		return
	}
	lines := diagnostic.NewLineIndex(s.source)
	for _, u := range unused {
		line, col := lines.Position(u.DeclarationOffset)
		fmt.Fprintf(s.out, "  %s (%s) at %d:%d\n", u.Name, u.Kind, line, col) //nolint:errcheck // best-effort REPL output
	}
}

const helpIntro = `Type template markup to check it; multi-line elements keep reading until every tag is closed. Snippets resolve names against the script bindings of the loaded component, or only against globals when nothing is loaded.`

func (s *session) printHelp() {
	fmt.Fprintln(s.out, indent.String(wordwrap.String(helpIntro, 72), 2)) //nolint:errcheck // best-effort REPL output
	fmt.Fprint(s.out, `
  :load FILE        load a component's script bindings
  :components N...  register component names
  :bindings         list loaded script bindings
  :scopes           show the scope graph of the last snippet
  :unused           list unused template variables of the last snippet
  :clear            forget loaded bindings and the last snippet
  :quit             exit
`) //nolint:errcheck // best-effort REPL output
}

// scriptBindings extracts declared names from f's script block.
// Extraction errors degrade to nil so the REPL stays usable.
func scriptBindings(f *sfc.File) *analysis.ScriptBindings {
	ctx := context.Background()
	if blk := f.SetupScript(); blk != nil {
		b, err := script.ExtractSetup(ctx, []byte(blk.Content), script.LangForAttr(blk.Lang))
		if err == nil {
			return b
		}
		return nil
	}
	if blk := f.PlainScript(); blk != nil {
		b, err := script.ExtractOptions(ctx, []byte(blk.Content), script.LangForAttr(blk.Lang))
		if err == nil {
			return b
		}
	}
	return nil
}

func globalScope(k analysis.ScopeKind) bool {
	switch k {
	case analysis.ScopeJsGlobalUniversal, analysis.ScopeJsGlobalBrowser,
		analysis.ScopeJsGlobalNode, analysis.ScopeVueGlobal:
		return true
	}
	return false
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".vize_history")
}

// ensureHistoryFilePermissions creates the history file if needed and
// restricts it to owner read/write. History can contain pasted source.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0600) // #nosec G304 -- path is derived from the user's home directory
	if err != nil {
		return
	}
	f.Close()                //nolint:errcheck,gosec // best-effort cleanup
	_ = os.Chmod(path, 0600) //nolint:errcheck // best-effort tightening
}
