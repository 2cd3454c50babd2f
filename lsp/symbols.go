// Copyright © 2026 The Vize authors

package lsp

import (
	"sort"

	"github.com/tliron/glsp"
	"github.com/ushironoko/vize-sub001/analysis"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDocumentSymbol handles the textDocument/documentSymbol
// request. The outline lists the components used in the template and
// the template-introduced variables, in declaration order.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	doc.mu.Lock()
	defer doc.mu.Unlock()
	if doc.croquis == nil {
		return nil, nil
	}

	var symbols []protocol.DocumentSymbol

	for _, usage := range doc.croquis.ComponentUsages {
		r := spanRange(doc.lines, usage.Start, usage.End)
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           usage.Name,
			Kind:           protocol.SymbolKindClass,
			Range:          r,
			SelectionRange: spanRange(doc.lines, usage.Start, usage.Start+len(usage.Name)),
		})
	}

	g := doc.croquis.Scopes
	for i := 0; i < g.Len(); i++ {
		scope := g.Scope(analysis.ScopeID(i))
		if !templateScope(scope.Kind) {
			continue
		}
		for _, rb := range scopeSymbols(scope) {
			decl := rb.Binding.DeclarationOffset
			if decl <= 0 {
				continue
			}
			sel := spanRange(doc.lines, decl, decl+len(rb.Name))
			detail := scope.Kind.String()
			symbols = append(symbols, protocol.DocumentSymbol{
				Name:           rb.Name,
				Detail:         &detail,
				Kind:           protocol.SymbolKindVariable,
				Range:          spanRange(doc.lines, scope.Start, scope.End),
				SelectionRange: sel,
			})
		}
	}

	return symbols, nil
}

// scopeSymbols returns one entry per binding declared directly in scope,
// in sorted name order.
func scopeSymbols(scope *analysis.Scope) []resolvedBinding {
	names := make([]string, 0, len(scope.Bindings))
	for name := range scope.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]resolvedBinding, 0, len(names))
	for _, name := range names {
		out = append(out, resolvedBinding{Name: name, Scope: scope, Binding: scope.Bindings[name]})
	}
	return out
}
