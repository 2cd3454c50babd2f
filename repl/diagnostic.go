// Copyright © 2026 The Vize authors

package repl

import (
	"io"

	"github.com/ushironoko/vize-sub001/diagnostic"
	"github.com/ushironoko/vize-sub001/lint"
)

// renderDiagnostics writes annotated source snippets for diags. The
// renderer normally reads source lines from disk; REPL input never
// touches disk, so the reader serves the snippet from memory.
func renderDiagnostics(w io.Writer, src []byte, diags []lint.Diagnostic) {
	r := &diagnostic.Renderer{
		Color: diagnostic.ColorAuto,
		SourceReader: func(string) ([]byte, error) {
			return src, nil
		},
	}
	_ = r.RenderAll(w, lint.Spans(diags))
}
