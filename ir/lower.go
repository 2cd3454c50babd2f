// Copyright © 2026 The Vize authors

package ir

import (
	"sort"

	"github.com/ushironoko/vize-sub001/analysis"
	"github.com/ushironoko/vize-sub001/template/ast"
)

// Lower flattens a parsed template and its analysis result into a
// Document. The croquis may be nil when only the structural IR is wanted.
func Lower(filename string, nodes []ast.Node, c *analysis.Croquis) *Document {
	doc := &Document{
		Schema:   Schema,
		Filename: filename,
		Roots:    lowerNodes(nodes),
	}
	if c == nil {
		return doc
	}

	doc.Scopes = lowerScopes(c.Scopes)

	for _, te := range c.TemplateExpressions {
		doc.Expressions = append(doc.Expressions, Expression{
			Content: te.Content,
			Kind:    te.Kind.String(),
			Start:   te.Start,
			End:     te.End,
			Scope:   int(te.ScopeID),
			Guarded: te.Guarded,
			Guard:   te.VIfGuard,
		})
	}
	for _, ref := range c.UndefinedRefs {
		doc.Undefined = append(doc.Undefined, Undefined{
			Name:    ref.Name,
			Offset:  ref.Offset,
			Context: ref.Context,
		})
	}
	for _, cu := range c.ComponentUsages {
		ref := ComponentRef{Name: cu.Name, Start: cu.Start}
		for _, p := range cu.Props {
			ref.Props = append(ref.Props, p.Name)
		}
		for _, e := range cu.Events {
			ref.Events = append(ref.Events, e.Name)
		}
		for _, s := range cu.Slots {
			ref.Slots = append(ref.Slots, s.Name)
		}
		doc.Components = append(doc.Components, ref)
	}
	for _, uv := range c.UnusedTemplateVars() {
		doc.UnusedVars = append(doc.UnusedVars, uv.Name)
	}
	return doc
}

func lowerScopes(g *analysis.Graph) []ScopeInfo {
	infos := make([]ScopeInfo, 0, g.Len())
	for i := 0; i < g.Len(); i++ {
		s := g.Scope(analysis.ScopeID(i))
		info := ScopeInfo{
			ID:    int(s.ID),
			Kind:  s.Kind.String(),
			Start: s.Start,
			End:   s.End,
		}
		for _, p := range s.Parents {
			info.Parents = append(info.Parents, int(p))
		}
		// Global scopes carry hundreds of seeded names; the IR only lists
		// bindings the template author wrote.
		switch s.Kind {
		case analysis.ScopeVFor, analysis.ScopeVSlot, analysis.ScopeEventHandler,
			analysis.ScopeCallback, analysis.ScopeModule, analysis.ScopeScriptSetup,
			analysis.ScopeNonScriptSetup:
			for name := range s.Bindings {
				info.Bindings = append(info.Bindings, name)
			}
			sort.Strings(info.Bindings)
		}
		infos = append(infos, info)
	}
	return infos
}

func lowerNodes(nodes []ast.Node) []Node {
	var out []Node
	for _, n := range nodes {
		out = append(out, lowerNode(n))
	}
	return out
}

func lowerNode(node ast.Node) Node {
	switch n := node.(type) {
	case *ast.Element:
		return lowerElement(n)
	case *ast.Text:
		return Node{Kind: KindText, Text: n.Content, Start: n.Loc.Start, End: n.Loc.End}
	case *ast.Interpolation:
		return Node{Kind: KindInterpolation, Text: n.Content, Start: n.Loc.Start, End: n.Loc.End}
	case *ast.Comment:
		return Node{Kind: KindComment, Text: n.Content, Start: n.Loc.Start, End: n.Loc.End}
	case *ast.If:
		out := Node{Kind: KindIf, Start: n.Loc.Start, End: n.Loc.End}
		for _, b := range n.Branches {
			out.Branches = append(out.Branches, Branch{
				Condition:    b.Condition,
				HasCondition: b.HasCondition,
				Key:          b.Key,
				Children:     lowerNodes(b.Children),
			})
		}
		return out
	case *ast.For:
		return Node{
			Kind:       KindFor,
			ValueAlias: n.ValueAlias,
			KeyAlias:   n.KeyAlias,
			IndexAlias: n.IndexAlias,
			Source:     n.Source,
			Children:   lowerNodes(n.Children),
			Start:      n.Loc.Start,
			End:        n.Loc.End,
		}
	default:
		return Node{}
	}
}

func lowerElement(el *ast.Element) Node {
	out := Node{
		Tag:        el.Tag,
		SelfClosed: el.SelfClosed,
		Children:   lowerNodes(el.Children),
		Start:      el.Loc.Start,
		End:        el.Loc.End,
	}
	switch el.Type {
	case ast.TagComponent:
		out.Kind = KindComponent
	case ast.TagSlot:
		out.Kind = KindSlot
	default:
		out.Kind = KindElement
	}
	for _, p := range el.Props {
		switch prop := p.(type) {
		case *ast.Attribute:
			out.Props = append(out.Props, Prop{
				Name:     prop.Name,
				Value:    prop.Value,
				HasValue: prop.HasValue,
			})
		case *ast.Directive:
			// The parser hands back an empty slice when a directive has
			// no modifiers; omitempty drops it on encode, so normalize to
			// nil to keep documents round-trippable.
			mods := prop.Modifiers
			if len(mods) == 0 {
				mods = nil
			}
			out.Props = append(out.Props, Prop{
				Name:      prop.PropName(),
				Value:     prop.Value,
				HasValue:  prop.HasValue,
				Directive: prop.Name,
				Arg:       prop.Arg,
				Modifiers: mods,
				Dynamic:   prop.DynamicArg,
			})
		}
	}
	return out
}
