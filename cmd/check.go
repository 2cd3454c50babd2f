// Copyright © 2026 The Vize authors

package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ushironoko/vize-sub001/compile"
	"github.com/ushironoko/vize-sub001/lint"
)

// CheckCommand creates the "check" cobra command with optional embedder
// configuration. Embedders can pass WithComponents or WithAnalyzers to
// extend what analysis recognizes and reports.
func CheckCommand(opts ...Option) *cobra.Command {
	var cfg cmdConfig
	for _, o := range opts {
		o(&cfg)
	}

	var (
		checkJSON     bool
		checkChecks   string
		checkListAll  bool
		checkExcludes []string
	)

	cmd := &cobra.Command{
		Use:   "check [flags] [files...]",
		Short: "Run static analysis checks on component files",
		Long: `Run static analysis checks on component files.

The checker reports likely mistakes in templates, similar to "go vet" for
Go. Each check is an independent analyzer that examines the parsed
template, plus the scope analysis built from the script block's declared
names, and reports diagnostics.

With no files, reads from stdin. With files, analyzes each file in
parallel and reports all findings to stderr.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files)

To suppress a specific diagnostic, add a comment on the same line:
  <div v-for="item in items"> <!-- nolint:vfor-key -->

To suppress all checks on a line:
  <div v-for="item in items"> <!-- nolint -->

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  vize check file.vue                              # Check a single file
  vize check *.vue                                 # Check multiple files
  vize check --json file.vue                       # Output diagnostics as JSON
  vize check --checks=undefined-ref file.vue       # Run only specific checks
  vize check --list                                # List available checks
  vize check --exclude='generated_*' ./...         # Exclude files by name
  vize check --exclude='dist' ./...                # Exclude a directory
  cat file.vue | vize check                        # Check from stdin`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkListAll {
				for _, name := range lint.AnalyzerNames() {
					fmt.Println(name)
				}
				return
			}

			analyzers := cfg.resolveAnalyzers()
			if checkChecks != "" {
				selected := make(map[string]bool)
				for _, name := range strings.Split(checkChecks, ",") {
					selected[strings.TrimSpace(name)] = true
				}
				var filtered []*lint.Analyzer
				for _, a := range analyzers {
					if selected[a.Name] {
						filtered = append(filtered, a)
						delete(selected, a.Name)
					}
				}
				for name := range selected {
					fmt.Fprintf(os.Stderr, "vize check: unknown check: %s\n", name)
					os.Exit(2)
				}
				analyzers = filtered
			}

			copts := compile.Options{
				Components: cfg.components,
				Analyzers:  analyzers,
			}

			if len(args) == 0 {
				if err := checkStdin(cmd, copts, checkJSON); err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(2)
				}
				return
			}

			expanded, err := expandArgs(args, checkExcludes)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}

			// Files are independent; check them in parallel and splice
			// the results back in argument order.
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(runtime.NumCPU())
			results := make([][]lint.Diagnostic, len(expanded))
			for i, path := range expanded {
				i, path := i, path
				g.Go(func() error {
					src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					res, err := compile.File(ctx, path, src, copts)
					if err != nil {
						return err
					}
					results[i] = res.Diagnostics
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}

			var allDiags []lint.Diagnostic
			for _, diags := range results {
				allDiags = append(allDiags, diags...)
			}
			if len(allDiags) == 0 {
				return
			}

			if checkJSON {
				if err := lint.FormatJSON(os.Stdout, allDiags); err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(2)
				}
			} else {
				renderLintDiagnostics(allDiags)
			}
			os.Exit(1)
		},
	}

	cmd.Flags().BoolVar(&checkJSON, "json", false,
		"Output diagnostics as JSON.")
	cmd.Flags().StringVar(&checkChecks, "checks", "",
		"Comma-separated list of checks to run (default: all).")
	cmd.Flags().BoolVar(&checkListAll, "list", false,
		"List available checks and exit.")
	cmd.Flags().StringArrayVar(&checkExcludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")

	return cmd
}

func checkStdin(cmd *cobra.Command, copts compile.Options, asJSON bool) error {
	src, err := readStdin()
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	res, err := compile.File(cmd.Context(), "<stdin>", src, copts)
	if err != nil {
		return err
	}
	if len(res.Diagnostics) == 0 {
		return nil
	}
	if asJSON {
		if err := lint.FormatJSON(os.Stdout, res.Diagnostics); err != nil {
			return err
		}
	} else {
		renderLintDiagnostics(res.Diagnostics)
	}
	os.Exit(1)
	return nil
}

func readStdin() ([]byte, error) {
	return os.ReadFile("/dev/stdin")
}

func init() {
	rootCmd.AddCommand(CheckCommand())
}
