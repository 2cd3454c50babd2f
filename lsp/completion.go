// Copyright © 2026 The Vize authors

package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	"github.com/ushironoko/vize-sub001/analysis"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentCompletion handles the textDocument/completion request.
// Items are the bindings visible from the innermost scope at the
// cursor: template variables, script bindings, instance properties, and
// runtime globals, nearest declaration first for shadowed names.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
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

	offset := positionToOffset(doc.lines, params.Position)
	prefix, _ := wordAt(doc.Content, offset)

	scope := scopeAtOffset(doc.croquis, offset)
	if scope == nil {
		return nil, nil
	}

	var items []protocol.CompletionItem
	seen := make(map[string]bool)
	for _, rb := range visibleBindings(doc.croquis.Scopes, scope.ID) {
		if prefix != "" && !strings.HasPrefix(rb.Name, prefix) {
			continue
		}
		seen[rb.Name] = true
		kind := completionKind(rb.Binding.Type)
		detail := completionDetail(doc, rb)
		items = append(items, protocol.CompletionItem{
			Label:  rb.Name,
			Kind:   &kind,
			Detail: &detail,
		})
	}

	// Script declarations live outside the graph; template bindings of
	// the same name shadow them.
	for _, name := range doc.bindings.Names() {
		if seen[name] {
			continue
		}
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		bt, _ := doc.bindings.Get(name)
		kind := completionKind(bt)
		detail := bt.String()
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &kind,
			Detail: &detail,
		})
	}

	// Registered component names complete alongside bindings.
	for _, name := range s.components {
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		kind := protocol.CompletionItemKindClass
		items = append(items, protocol.CompletionItem{
			Label: name,
			Kind:  &kind,
		})
	}

	return items, nil
}

// completionKind maps a binding classification to an LSP item kind.
func completionKind(t analysis.BindingType) protocol.CompletionItemKind {
	switch t {
	case analysis.BindSetupRef, analysis.BindSetupReactive, analysis.BindSetupMaybeRef:
		return protocol.CompletionItemKindVariable
	case analysis.BindSetupConst:
		return protocol.CompletionItemKindVariable
	case analysis.BindSetupLet:
		return protocol.CompletionItemKindVariable
	case analysis.BindProps:
		return protocol.CompletionItemKindField
	case analysis.BindImported:
		return protocol.CompletionItemKindModule
	case analysis.BindVueGlobal:
		return protocol.CompletionItemKindProperty
	case analysis.BindJsGlobalUniversal, analysis.BindJsGlobalBrowser, analysis.BindJsGlobalNode:
		return protocol.CompletionItemKindValue
	default:
		return protocol.CompletionItemKindText
	}
}

// completionDetail builds the detail string shown next to an item.
// Template variables name the scope that introduced them; script
// bindings use the extractor's classification.
func completionDetail(doc *Document, rb resolvedBinding) string {
	if templateScope(rb.Scope.Kind) {
		return rb.Scope.Kind.String()
	}
	if doc.bindings != nil {
		if bt, ok := doc.bindings.Get(rb.Name); ok {
			return bt.String()
		}
	}
	return rb.Binding.Type.String()
}
