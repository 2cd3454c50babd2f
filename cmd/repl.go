// Copyright © 2026 The Vize authors

package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ushironoko/vize-sub001/repl"
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Check template snippets interactively",
	Long: `Start an interactive read-check-print loop for template markup.

Pasted snippets are parsed, scope-analyzed, and checked; multi-line
elements keep reading until every tag is closed. Load a component file
with :load to resolve names against its script bindings. Line editing
and in-session command history are supported via readline. Use Ctrl-D
or Ctrl-C to exit.

Example session:
  vize> <p>hello</p>
  ok
  vize> {{ count }}
  warning: undefined reference: count
  ...
  vize> :load src/Counter.vue
  loaded 3 bindings from src/Counter.vue
  vize> {{ count }}
  ok
  vize> :scopes
  ...`,
	Run: func(cmd *cobra.Command, args []string) {
		repl.Run(filepath.Base(os.Args[0]) + "> ")
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
