// Copyright © 2026 The Vize authors

package cmd

import (
	"os"

	"github.com/ushironoko/vize-sub001/diagnostic"
	"github.com/ushironoko/vize-sub001/lint"
)

func colorMode() diagnostic.ColorMode {
	switch colorFlag {
	case "always":
		return diagnostic.ColorAlways
	case "never":
		return diagnostic.ColorNever
	default:
		return diagnostic.ColorAuto
	}
}

func newRenderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: colorMode()}
}

// renderLintDiagnostics renders lint diagnostics as annotated source
// snippets on stderr, with a suppression hint on each.
func renderLintDiagnostics(diags []lint.Diagnostic) {
	ds := lint.Spans(diags)
	for i := range ds {
		ds[i].Notes = append(ds[i].Notes,
			"to suppress: add \"<!-- nolint:"+diags[i].Analyzer+" -->\" on this line")
	}
	r := newRenderer()
	_ = r.RenderAll(os.Stderr, ds)
}
