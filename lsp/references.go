// Copyright © 2026 The Vize authors

package lsp

import (
	"github.com/tliron/glsp"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentReferences handles the textDocument/references request.
// References are located by re-resolving the name inside every recorded
// template expression: only occurrences that resolve to the same
// binding count, so a v-for alias does not match an unrelated script
// binding of the same name in a sibling scope.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	doc.mu.Lock()
	defer doc.mu.Unlock()

	offset := positionToOffset(doc.lines, params.Position)
	rb := resolveAt(doc, offset)
	if rb == nil {
		return nil, nil
	}

	var locs []protocol.Location

	if params.Context.IncludeDeclaration && rb.Binding.DeclarationOffset > 0 {
		decl := rb.Binding.DeclarationOffset
		locs = append(locs, protocol.Location{
			URI:   params.TextDocument.URI,
			Range: spanRange(doc.lines, decl, decl+len(rb.Name)),
		})
	}

	for _, at := range referenceOffsets(doc, rb) {
		locs = append(locs, protocol.Location{
			URI:   params.TextDocument.URI,
			Range: spanRange(doc.lines, at, at+len(rb.Name)),
		})
	}

	return locs, nil
}
