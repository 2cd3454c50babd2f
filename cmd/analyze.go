// Copyright © 2026 The Vize authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ushironoko/vize-sub001/compile"
	"github.com/ushironoko/vize-sub001/ir"
)

// AnalyzeCommand creates the "analyze" cobra command.
func AnalyzeCommand(opts ...Option) *cobra.Command {
	var cfg cmdConfig
	for _, o := range opts {
		o(&cfg)
	}

	var (
		analyzeFormat string
		analyzeCache  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [flags] file",
		Short: "Dump the analysis facts for a component file",
		Long: `Run the full pipeline over one component file and dump the lowered
document: the flattened template tree, the scope graph, recorded
expressions with their scopes, undefined references, component usages,
and unused template variables.

Output formats:
  --format json       Human-readable JSON (default)
  --format msgpack    Compact binary, for downstream tooling

With --cache, results are stored content-addressed under the user cache
directory and reused when the source is unchanged.

Examples:
  vize analyze file.vue                      # JSON to stdout
  vize analyze --format msgpack file.vue > file.ir
  vize analyze --cache file.vue              # Reuse prior results`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := args[0]
			src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}

			var cache *ir.DiskCache
			key := ir.Key(src)
			if analyzeCache {
				cache, err = ir.OpenDiskCache("vize")
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(2)
				}
				if doc, ok, err := cache.Get(key); err == nil && ok {
					emitDocument(doc, analyzeFormat)
					return
				}
			}

			res, err := compile.File(cmd.Context(), path, src, compile.Options{
				Components: cfg.components,
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}

			if cache != nil {
				if err := cache.Put(key, res.Document); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			}
			emitDocument(res.Document, analyzeFormat)
		},
	}

	cmd.Flags().StringVar(&analyzeFormat, "format", "json",
		`Output format: "json" or "msgpack".`)
	cmd.Flags().BoolVar(&analyzeCache, "cache", false,
		"Cache lowered documents under the user cache directory.")

	return cmd
}

func emitDocument(doc *ir.Document, format string) {
	var err error
	switch format {
	case "msgpack":
		err = ir.EncodeMsgpack(os.Stdout, doc)
	case "json":
		err = ir.EncodeJSON(os.Stdout, doc)
	default:
		fmt.Fprintf(os.Stderr, "vize analyze: unknown format: %s\n", format)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.AddCommand(AnalyzeCommand())
}
