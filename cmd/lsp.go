// Copyright © 2026 The Vize authors

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ushironoko/vize-sub001/lsp"
)

// LSPCommand creates the "lsp" cobra command with optional embedder
// configuration. Embedders can pass WithComponents or WithAnalyzers so
// the server recognizes their components and runs their checks.
func LSPCommand(opts ...Option) *cobra.Command {
	var cfg cmdConfig
	for _, o := range opts {
		o(&cfg)
	}

	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the language server",
		Long: `Start an LSP server for component files.

The language server provides real-time IDE features including
diagnostics, hover, go-to-definition, find references, completion,
document symbols, folding, and rename of template variables.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  vize lsp                           Start with stdio transport
  vize lsp --stdio                   Same as above (explicit)
  vize lsp --port 7998               Start with TCP on port 7998

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "vize lsp --stdio" for .vue files.`,
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			var serverOpts []lsp.Option
			if len(cfg.components) > 0 {
				serverOpts = append(serverOpts, lsp.WithComponents(cfg.components))
			}
			if cfg.analyzers != nil {
				serverOpts = append(serverOpts, lsp.WithAnalyzers(cfg.analyzers))
			}

			srv := lsp.New(serverOpts...)

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				log.Printf("vize LSP server listening on %s", addr)
				if err := srv.RunTCP(addr); err != nil {
					fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
					os.Exit(1)
				}
			} else {
				if err := srv.RunStdio(); err != nil {
					fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
					os.Exit(1)
				}
			}
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}

func init() {
	rootCmd.AddCommand(LSPCommand())
}
