// Copyright © 2026 The Vize authors

package cmd

import "github.com/ushironoko/vize-sub001/lint"

// Option configures an exported command factory (CheckCommand, LSPCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	components []string
	analyzers  []*lint.Analyzer
}

// WithComponents registers component names so that analysis recognizes
// embedder-provided components instead of reporting them as unknown.
func WithComponents(names []string) Option {
	return func(c *cmdConfig) { c.components = append(c.components, names...) }
}

// WithAnalyzers replaces the built-in analyzer set. Embedders use this to
// run custom checks alongside or instead of the defaults.
func WithAnalyzers(analyzers []*lint.Analyzer) Option {
	return func(c *cmdConfig) { c.analyzers = analyzers }
}

// resolveAnalyzers returns the configured analyzer set, falling back to
// the built-in defaults.
func (c *cmdConfig) resolveAnalyzers() []*lint.Analyzer {
	if c.analyzers != nil {
		return c.analyzers
	}
	return lint.DefaultAnalyzers()
}
