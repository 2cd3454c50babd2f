// Copyright © 2026 The Vize authors

package lsp

import (
	"sort"
	"strings"

	"github.com/ushironoko/vize-sub001/analysis"
)

// scopeAtOffset returns the innermost scope whose span contains offset.
// Global scopes span the entire file, so the smallest containing span
// wins. Returns the root scope when offset falls outside every scope.
func scopeAtOffset(c *analysis.Croquis, offset int) *analysis.Scope {
	if c == nil || c.Scopes == nil || c.Scopes.Len() == 0 {
		return nil
	}
	var best *analysis.Scope
	for i := 0; i < c.Scopes.Len(); i++ {
		s := c.Scopes.Scope(analysis.ScopeID(i))
		if offset < s.Start || offset >= s.End {
			continue
		}
		if best == nil || s.End-s.Start <= best.End-best.Start {
			best = s
		}
	}
	if best == nil {
		best = c.Scopes.Scope(analysis.RootScopeID)
	}
	return best
}

// resolvedBinding is a name resolution result together with the scope
// that declared it. Script declarations live outside the graph, in the
// extractor's binding map; Script marks those, with a synthesized
// Binding carrying the extractor's classification.
type resolvedBinding struct {
	Name    string
	Scope   *analysis.Scope
	Binding *analysis.Binding
	Script  bool
}

// resolveAt resolves the identifier under the cursor, first against the
// scope graph and then against the script binding map, mirroring the
// analyzer's resolution order. Returns nil when the offset does not
// touch an identifier or the name does not resolve. Caller holds doc.mu.
func resolveAt(doc *Document, offset int) *resolvedBinding {
	if doc.croquis == nil {
		return nil
	}
	name, _ := wordAt(doc.Content, offset)
	if name == "" {
		return nil
	}
	scope := scopeAtOffset(doc.croquis, offset)
	if scope == nil {
		return nil
	}
	if s, b := doc.croquis.Scopes.LookupFrom(scope.ID, name); b != nil {
		return &resolvedBinding{Name: name, Scope: s, Binding: b}
	}
	if bt, ok := doc.bindings.Get(name); ok {
		return &resolvedBinding{
			Name:    name,
			Scope:   scriptScope(doc.croquis),
			Binding: &analysis.Binding{Type: bt},
			Script:  true,
		}
	}
	return nil
}

// scriptScope returns the script body scope of the analyzed file.
func scriptScope(c *analysis.Croquis) *analysis.Scope {
	for i := 0; i < c.Scopes.Len(); i++ {
		s := c.Scopes.Scope(analysis.ScopeID(i))
		if s.Kind == analysis.ScopeScriptSetup || s.Kind == analysis.ScopeNonScriptSetup {
			return s
		}
	}
	return c.Scopes.Scope(analysis.RootScopeID)
}

// visibleBindings collects every binding reachable from start, breadth
// first over all parents. The nearest declaration of a name shadows
// outer ones. Results are deterministic: names within one scope are
// visited in sorted order.
func visibleBindings(g *analysis.Graph, start analysis.ScopeID) []resolvedBinding {
	visited := make(map[analysis.ScopeID]bool)
	seen := make(map[string]bool)
	queue := []analysis.ScopeID{start}
	var out []resolvedBinding
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		s := g.Scope(id)
		names := make([]string, 0, len(s.Bindings))
		for name := range s.Bindings {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, resolvedBinding{Name: name, Scope: s, Binding: s.Bindings[name]})
		}
		queue = append(queue, s.Parents...)
	}
	return out
}

// templateScope reports whether a scope kind introduces bindings in the
// template itself, as opposed to script or global bindings.
func templateScope(kind analysis.ScopeKind) bool {
	switch kind {
	case analysis.ScopeVFor, analysis.ScopeVSlot, analysis.ScopeEventHandler, analysis.ScopeCallback:
		return true
	}
	return false
}

// referenceOffsets returns the offset of every whole-identifier
// occurrence of rb.Name inside template expressions that resolve the
// name to the same binding. The declaration site is not included.
func referenceOffsets(doc *Document, rb *resolvedBinding) []int {
	var offsets []int
	g := doc.croquis.Scopes
	for _, expr := range doc.croquis.TemplateExpressions {
		hits := identOffsets(expr.Content, rb.Name)
		if len(hits) == 0 {
			continue
		}
		_, b := g.LookupFrom(expr.ScopeID, rb.Name)
		if rb.Script {
			// A graph hit means a template binding shadows the script
			// name in this expression's scope.
			if b != nil {
				continue
			}
		} else if b != rb.Binding {
			continue
		}
		// Expression content offsets are relative to expr.Start.
		base := exprBase(doc.Content, expr)
		for _, h := range hits {
			offsets = append(offsets, base+h)
		}
	}
	sort.Ints(offsets)
	return offsets
}

// exprBase locates the recorded expression content within the source.
// Interpolation spans include the {{ }} delimiters and surrounding
// whitespace, so the content does not necessarily begin at expr.Start.
func exprBase(content string, expr analysis.TemplateExpression) int {
	end := expr.End
	if end > len(content) {
		end = len(content)
	}
	if expr.Start >= 0 && expr.Start <= end && expr.Content != "" {
		if i := strings.Index(content[expr.Start:end], expr.Content); i >= 0 {
			return expr.Start + i
		}
	}
	return expr.Start
}
