// Copyright © 2026 The Vize authors

package lsp

import (
	"github.com/tliron/glsp"
	"github.com/ushironoko/vize-sub001/astutil"
	"github.com/ushironoko/vize-sub001/template/ast"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentFoldingRange handles the textDocument/foldingRange
// request. It folds multi-line elements in the template plus the script
// and style blocks.
func (s *Server) textDocumentFoldingRange(_ *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()
	if doc.file == nil {
		return nil, nil
	}

	var ranges []protocol.FoldingRange
	add := func(loc ast.Span) {
		startLine := doc.lines.LineAt(loc.Start)
		endLine := doc.lines.LineAt(loc.End)
		if endLine <= startLine {
			return
		}
		kind := string(protocol.FoldingRangeKindRegion)
		ranges = append(ranges, protocol.FoldingRange{
			StartLine: safeUint(startLine - 1),
			EndLine:   safeUint(endLine - 1),
			Kind:      &kind,
		})
	}

	if doc.file.Template != nil {
		add(doc.file.Template.Loc)
		astutil.Walk(doc.file.Template.Children, func(node, parent ast.Node, depth int) {
			if el, ok := node.(*ast.Element); ok {
				add(el.Loc)
			}
		})
	}
	for _, blk := range doc.file.Scripts {
		add(blk.Loc)
	}
	for _, blk := range doc.file.Styles {
		add(blk.Loc)
	}

	return ranges, nil
}
