// Copyright © 2026 The Vize authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ushironoko/vize-sub001/ir"
	"github.com/ushironoko/vize-sub001/sfc"
)

// parseCmd dumps the template tree without running analysis.
var parseCmd = &cobra.Command{
	Use:   "parse [flags] file",
	Short: "Dump the parsed template of a component file",
	Long: `Parse a component file and dump its template tree as JSON, without
running scope analysis. Parse errors are reported on stderr; the tree
printed is whatever the error-tolerant parser recovered.

Examples:
  vize parse file.vue
  vize parse file.vue | jq '.roots[].tag'`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}

		f := sfc.Parse(path, src)
		for _, e := range f.Errors {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, e.Message)
		}

		doc := &ir.Document{Schema: ir.Schema, Filename: path}
		if f.Template != nil {
			doc = ir.Lower(path, f.Template.Children, nil)
		}
		if err := ir.EncodeJSON(os.Stdout, doc); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
