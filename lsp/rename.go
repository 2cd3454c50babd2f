// Copyright © 2026 The Vize authors

package lsp

import (
	"fmt"

	"github.com/tliron/glsp"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentPrepareRename validates that the name under the cursor is
// renameable and returns its range. Only template-introduced bindings
// can be renamed: their declaration and every use live in the template,
// so the rename is complete. Script bindings would also need script
// edits, which template analysis cannot produce.
func (s *Server) textDocumentPrepareRename(_ *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil // no document — rename not applicable
	}
	s.ensureAnalysis(doc)

	doc.mu.Lock()
	defer doc.mu.Unlock()

	offset := positionToOffset(doc.lines, params.Position)
	rb := resolveAt(doc, offset)
	// Per the LSP spec, prepareRename returns null (not error) for
	// non-renameable symbols.
	if rb == nil || !templateScope(rb.Scope.Kind) || rb.Binding.DeclarationOffset <= 0 {
		return nil, nil
	}

	_, start := wordAt(doc.Content, offset)
	return &protocol.RangeWithPlaceholder{
		Range:       spanRange(doc.lines, start, start+len(rb.Name)),
		Placeholder: rb.Name,
	}, nil
}

// textDocumentRename handles the textDocument/rename request.
func (s *Server) textDocumentRename(_ *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, fmt.Errorf("document not found")
	}
	s.ensureAnalysis(doc)

	doc.mu.Lock()
	defer doc.mu.Unlock()

	offset := positionToOffset(doc.lines, params.Position)
	rb := resolveAt(doc, offset)
	if rb == nil {
		return nil, fmt.Errorf("no symbol at position")
	}
	if !templateScope(rb.Scope.Kind) {
		return nil, fmt.Errorf("cannot rename %s: declared outside the template", rb.Name)
	}
	if rb.Binding.DeclarationOffset <= 0 {
		return nil, fmt.Errorf("cannot rename %s: declaration site unknown", rb.Name)
	}

	docURI := params.TextDocument.URI
	edits := make(map[protocol.DocumentUri][]protocol.TextEdit)

	decl := rb.Binding.DeclarationOffset
	edits[docURI] = append(edits[docURI], protocol.TextEdit{
		Range:   spanRange(doc.lines, decl, decl+len(rb.Name)),
		NewText: params.NewName,
	})

	for _, at := range referenceOffsets(doc, rb) {
		edits[docURI] = append(edits[docURI], protocol.TextEdit{
			Range:   spanRange(doc.lines, at, at+len(rb.Name)),
			NewText: params.NewName,
		})
	}

	return &protocol.WorkspaceEdit{Changes: edits}, nil
}
