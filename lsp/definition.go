// Copyright © 2026 The Vize authors

package lsp

import (
	"github.com/tliron/glsp"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDefinition handles the textDocument/definition request.
// Template-introduced bindings navigate to their declaration inside the
// directive that created them; globals and script bindings without a
// recorded offset have no navigable source.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	doc.mu.Lock()
	defer doc.mu.Unlock()

	offset := positionToOffset(doc.lines, params.Position)
	rb := resolveAt(doc, offset)
	if rb == nil || rb.Binding.DeclarationOffset <= 0 {
		return nil, nil
	}

	decl := rb.Binding.DeclarationOffset
	return protocol.Location{
		URI:   params.TextDocument.URI,
		Range: spanRange(doc.lines, decl, decl+len(rb.Name)),
	}, nil
}
