// Copyright © 2026 The Vize authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	"github.com/ushironoko/vize-sub001/analysis"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentHover handles the textDocument/hover request.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
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

	content := buildHoverContent(doc, rb)
	if content == "" {
		return nil, nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
	}, nil
}

// buildHoverContent builds Markdown hover text for a resolved binding.
func buildHoverContent(doc *Document, rb *resolvedBinding) string {
	var sb strings.Builder

	// Header: **kind** `name`
	fmt.Fprintf(&sb, "**%s** `%s`", bindingKindLabel(doc, rb), rb.Name)

	// Where the name comes from.
	switch {
	case templateScope(rb.Scope.Kind):
		fmt.Fprintf(&sb, "\n\nIntroduced by a `%s` scope.", rb.Scope.Kind)
		if data, ok := rb.Scope.Data.(analysis.VForData); ok && data.Source != "" {
			fmt.Fprintf(&sb, "\n\n```\nv-for=\"... in %s\"\n```", data.Source)
		}
	case rb.Binding.Type == analysis.BindVueGlobal:
		sb.WriteString("\n\nComponent instance property, available in every template.")
	case isJsGlobalBinding(rb.Binding.Type):
		sb.WriteString("\n\nRuntime global.")
	default:
		sb.WriteString("\n\nDeclared in the script block.")
	}

	// Declaration site for navigable bindings.
	if rb.Binding.DeclarationOffset > 0 {
		line, _ := doc.lines.Position(rb.Binding.DeclarationOffset)
		fmt.Fprintf(&sb, "\n\n*Declared at %s:%d*", uriToPath(doc.URI), line)
	}

	return sb.String()
}

// bindingKindLabel returns a short human label for a binding. Script
// bindings resolve through the extractor's classification when one is
// available, so hovers distinguish refs from plain constants.
func bindingKindLabel(doc *Document, rb *resolvedBinding) string {
	t := rb.Binding.Type
	if doc.bindings != nil && !templateScope(rb.Scope.Kind) {
		if bt, ok := doc.bindings.Get(rb.Name); ok {
			t = bt
		}
	}
	switch t {
	case analysis.BindSetupRef:
		return "ref"
	case analysis.BindSetupReactive:
		return "reactive"
	case analysis.BindSetupConst:
		if templateScope(rb.Scope.Kind) {
			return "template variable"
		}
		return "constant"
	case analysis.BindSetupLet:
		return "variable"
	case analysis.BindSetupMaybeRef:
		return "binding"
	case analysis.BindProps:
		return "prop"
	case analysis.BindImported:
		return "import"
	case analysis.BindVueGlobal:
		return "instance property"
	case analysis.BindJsGlobalUniversal, analysis.BindJsGlobalBrowser, analysis.BindJsGlobalNode:
		return "global"
	default:
		return "binding"
	}
}

func isJsGlobalBinding(t analysis.BindingType) bool {
	switch t {
	case analysis.BindJsGlobalUniversal, analysis.BindJsGlobalBrowser, analysis.BindJsGlobalNode:
		return true
	}
	return false
}
