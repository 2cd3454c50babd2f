// Copyright © 2026 The Vize authors

// Package astutil provides shared AST walking utilities for template trees.
//
// These helpers are used by the analysis, ir, and lint packages for
// traversing parsed templates and for picking apart directive expressions.
package astutil

import "github.com/ushironoko/vize-sub001/template/ast"

// Walk calls fn for every node in the tree, depth-first.
// parent is nil for top-level nodes.
func Walk(nodes []ast.Node, fn func(node ast.Node, parent ast.Node, depth int)) {
	for _, n := range nodes {
		walkNode(n, nil, 0, fn)
	}
}

func walkNode(node ast.Node, parent ast.Node, depth int, fn func(ast.Node, ast.Node, int)) {
	if node == nil {
		return
	}
	fn(node, parent, depth)
	switch n := node.(type) {
	case *ast.Root:
		for _, child := range n.Children {
			walkNode(child, node, depth+1, fn)
		}
	case *ast.Element:
		for _, child := range n.Children {
			walkNode(child, node, depth+1, fn)
		}
	case *ast.If:
		for _, branch := range n.Branches {
			for _, child := range branch.Children {
				walkNode(child, node, depth+1, fn)
			}
		}
	case *ast.For:
		for _, child := range n.Children {
			walkNode(child, node, depth+1, fn)
		}
	}
}

// WalkElements calls fn for every element in the tree.
func WalkElements(nodes []ast.Node, fn func(el *ast.Element, depth int)) {
	Walk(nodes, func(node ast.Node, _ ast.Node, depth int) {
		if el, ok := node.(*ast.Element); ok {
			fn(el, depth)
		}
	})
}

// FindDirective returns the first directive with the given canonical name
// (without the v- prefix), or nil.
func FindDirective(el *ast.Element, name string) *ast.Directive {
	for _, p := range el.Props {
		if d, ok := p.(*ast.Directive); ok && d.Name == name {
			return d
		}
	}
	return nil
}

// FindAttribute returns the first static attribute with the given name, or nil.
func FindAttribute(el *ast.Element, name string) *ast.Attribute {
	for _, p := range el.Props {
		if a, ok := p.(*ast.Attribute); ok && a.Name == name {
			return a
		}
	}
	return nil
}
