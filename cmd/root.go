// Copyright © 2026 The Vize authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	colorFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vize",
	Short: "vize — component template toolchain",
	Long: `vize analyzes single-file component templates: it parses the template,
extracts the script block's declared names, builds the template scope
graph, and reports references that will fail at runtime.

Getting started:
  vize check file.vue          Run static analysis checks
  vize check ./...             Check every component under a directory
  vize analyze file.vue        Dump the analysis facts as JSON
  vize parse file.vue          Dump the parsed template AST
  vize repl                    Check template snippets interactively
  vize lsp                     Start the language server

Template scoping:
  v-for and v-slot introduce variables visible only inside their element.
  Event handlers see their parameters plus the component instance
  properties ($emit, $slots, ...). Everything else must come from the
  script block or the JavaScript globals.

More information:
  Source code:     https://github.com/ushironoko/vize-sub001`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vize.yaml)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".vize" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".vize")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
