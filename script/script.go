// Copyright © 2026 The Vize authors

// Package script extracts the top-level bindings of a component's script
// block. The template analyzer needs to know which names the script
// declares and how (ref, reactive, plain const, prop, import); it does
// not need a full semantic model of the script, so this package reads
// only the top level of the tree-sitter parse.
package script

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/ushironoko/vize-sub001/analysis"
	"github.com/ushironoko/vize-sub001/astutil"
)

// Lang selects the tree-sitter grammar for a script block.
type Lang int

const (
	LangJS Lang = iota
	LangTS
	LangTSX
)

// LangForAttr maps a <script lang="..."> attribute value to a Lang.
// An empty or unknown value means plain JavaScript.
func LangForAttr(attr string) Lang {
	switch strings.ToLower(strings.TrimSpace(attr)) {
	case "ts":
		return LangTS
	case "tsx", "jsx":
		return LangTSX
	default:
		return LangJS
	}
}

func grammar(lang Lang) *sitter.Language {
	switch lang {
	case LangTS:
		return typescript.GetLanguage()
	case LangTSX:
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// refCalls create a ref: reading them in a template auto-unwraps.
var refCalls = map[string]bool{
	"ref": true, "shallowRef": true, "computed": true, "toRef": true,
	"customRef": true, "defineModel": true,
}

// reactiveCalls create a reactive proxy.
var reactiveCalls = map[string]bool{
	"reactive": true, "shallowReactive": true, "readonly": true,
}

// ExtractSetup extracts the bindings declared by a <script setup> block:
// top-level declarations, imports, and compiler-macro results.
func ExtractSetup(ctx context.Context, src []byte, lang Lang) (*analysis.ScriptBindings, error) {
	root, tree, err := parse(ctx, src, lang)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	b := analysis.NewScriptBindings(true)
	for i := 0; i < int(root.ChildCount()); i++ {
		extractStatement(root.Child(i), src, b)
	}
	return b, nil
}

// ExtractOptions extracts the names an options-API script exposes to its
// template: props, data keys, computed keys, and methods from the default
// export object.
func ExtractOptions(ctx context.Context, src []byte, lang Lang) (*analysis.ScriptBindings, error) {
	root, tree, err := parse(ctx, src, lang)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	b := analysis.NewScriptBindings(false)
	obj := defaultExportObject(root, src)
	if obj == nil {
		return b, nil
	}
	for i := 0; i < int(obj.ChildCount()); i++ {
		entry := obj.Child(i)
		switch entry.Type() {
		case "pair":
			extractOption(entry, entry.ChildByFieldName("key"), entry.ChildByFieldName("value"), src, b)
		case "method_definition":
			extractOption(entry, entry.ChildByFieldName("name"), entry, src, b)
		}
	}
	return b, nil
}

func parse(ctx context.Context, src []byte, lang Lang) (*sitter.Node, *sitter.Tree, error) {
	p := sitter.NewParser()
	p.SetLanguage(grammar(lang))
	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, nil, fmt.Errorf("script parse: %w", err)
	}
	return tree.RootNode(), tree, nil
}

// extractStatement handles one top-level statement of a setup script.
func extractStatement(node *sitter.Node, src []byte, b *analysis.ScriptBindings) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "import_statement":
		extractImport(node, src, b)
	case "lexical_declaration", "variable_declaration":
		extractDeclaration(node, src, b)
	case "function_declaration", "generator_function_declaration":
		if name := fieldText(node, "name", src); name != "" {
			b.Add(name, analysis.BindSetupConst)
		}
	case "class_declaration":
		if name := fieldText(node, "name", src); name != "" {
			b.Add(name, analysis.BindSetupConst)
		}
	case "export_statement":
		// Exported declarations are still in scope for the template.
		if decl := node.ChildByFieldName("declaration"); decl != nil {
			extractStatement(decl, src, b)
		}
	}
}

func extractImport(node *sitter.Node, src []byte, b *analysis.ScriptBindings) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			gc := child.Child(j)
			switch gc.Type() {
			case "identifier":
				// Default import.
				b.Add(text(gc, src), analysis.BindImported)
			case "namespace_import":
				for k := 0; k < int(gc.ChildCount()); k++ {
					if id := gc.Child(k); id.Type() == "identifier" {
						b.Add(text(id, src), analysis.BindImported)
					}
				}
			case "named_imports":
				for k := 0; k < int(gc.ChildCount()); k++ {
					spec := gc.Child(k)
					if spec.Type() != "import_specifier" {
						continue
					}
					// "{ a }" binds a; "{ a as b }" binds b (the alias field).
					name := fieldText(spec, "alias", src)
					if name == "" {
						name = fieldText(spec, "name", src)
					}
					if name != "" {
						b.Add(name, analysis.BindImported)
					}
				}
			}
		}
	}
}

func extractDeclaration(node *sitter.Node, src []byte, b *analysis.ScriptBindings) {
	mutable := strings.HasPrefix(text(node, src), "let") || strings.HasPrefix(text(node, src), "var")
	for i := 0; i < int(node.ChildCount()); i++ {
		decl := node.Child(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		bt := classifyValue(decl.ChildByFieldName("value"), src, mutable)

		switch nameNode.Type() {
		case "identifier":
			b.Add(text(nameNode, src), bt)
		case "object_pattern", "array_pattern":
			// "const { a, b } = ..." flattens to individual bindings of the
			// declaration's classification. Destructured ref results lose
			// reactivity, but that is the author's problem, not a scoping one.
			for _, name := range astutil.PatternNames(text(nameNode, src)) {
				b.Add(name, bt)
			}
		}
	}
}

// classifyValue maps an initializer expression to a binding type.
func classifyValue(value *sitter.Node, src []byte, mutable bool) analysis.BindingType {
	fallback := analysis.BindSetupConst
	if mutable {
		fallback = analysis.BindSetupLet
	}
	if value == nil {
		return fallback
	}
	switch value.Type() {
	case "call_expression":
		callee := calleeName(value, src)
		switch {
		case callee == "defineProps" || callee == "withDefaults":
			return analysis.BindProps
		case refCalls[callee]:
			return analysis.BindSetupRef
		case reactiveCalls[callee]:
			return analysis.BindSetupReactive
		case callee == "defineEmits" || callee == "defineExpose":
			return analysis.BindSetupConst
		default:
			// Unknown function result, e.g. a composable: may or may not
			// be a ref.
			return analysis.BindSetupMaybeRef
		}
	case "arrow_function", "function", "function_expression":
		return analysis.BindSetupConst
	case "await_expression":
		inner := value.NamedChild(0)
		return classifyValue(inner, src, mutable)
	}
	return fallback
}

// calleeName returns the called identifier for "name(...)" and
// "withDefaults(defineProps(...), ...)"-style wrappers.
func calleeName(call *sitter.Node, src []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	if fn.Type() == "identifier" {
		return text(fn, src)
	}
	return ""
}

// defaultExportObject locates the object literal of "export default {...}".
func defaultExportObject(root *sitter.Node, src []byte) *sitter.Node {
	for i := 0; i < int(root.ChildCount()); i++ {
		stmt := root.Child(i)
		if stmt.Type() != "export_statement" {
			continue
		}
		for j := 0; j < int(stmt.ChildCount()); j++ {
			child := stmt.Child(j)
			switch child.Type() {
			case "object":
				return child
			case "call_expression":
				// export default defineComponent({...})
				args := child.ChildByFieldName("arguments")
				if args == nil {
					continue
				}
				for k := 0; k < int(args.ChildCount()); k++ {
					if arg := args.Child(k); arg.Type() == "object" {
						return arg
					}
				}
			}
		}
	}
	return nil
}

// extractOption handles one entry of the options object.
func extractOption(entry, key, value *sitter.Node, src []byte, b *analysis.ScriptBindings) {
	if key == nil || value == nil {
		return
	}
	switch text(key, src) {
	case "props":
		extractPropsOption(value, src, b)
	case "data":
		extractDataReturnKeys(entry, src, b)
	case "computed":
		addObjectKeys(value, src, b, analysis.BindSetupRef)
	case "methods":
		addObjectKeys(value, src, b, analysis.BindSetupConst)
	}
}

// extractPropsOption handles both forms: props: ['a', 'b'] and
// props: { a: String, b: { type: Number } }.
func extractPropsOption(value *sitter.Node, src []byte, b *analysis.ScriptBindings) {
	switch value.Type() {
	case "array":
		for i := 0; i < int(value.ChildCount()); i++ {
			child := value.Child(i)
			if child.Type() == "string" {
				if name := stringContent(child, src); name != "" {
					b.Add(name, analysis.BindProps)
				}
			}
		}
	case "object":
		addObjectKeys(value, src, b, analysis.BindProps)
	}
}

// extractDataReturnKeys finds the object returned by the data function and
// binds its keys.
func extractDataReturnKeys(entry *sitter.Node, src []byte, b *analysis.ScriptBindings) {
	var visit func(n *sitter.Node) *sitter.Node
	visit = func(n *sitter.Node) *sitter.Node {
		if n == nil {
			return nil
		}
		if n.Type() == "return_statement" {
			for i := 0; i < int(n.ChildCount()); i++ {
				child := n.Child(i)
				if child.Type() == "object" || child.Type() == "parenthesized_expression" {
					if child.Type() == "parenthesized_expression" {
						child = child.NamedChild(0)
					}
					if child != nil && child.Type() == "object" {
						return child
					}
				}
			}
			return nil
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if obj := visit(n.Child(i)); obj != nil {
				return obj
			}
		}
		return nil
	}
	if obj := visit(entry); obj != nil {
		addObjectKeys(obj, src, b, analysis.BindSetupLet)
	}
}

func addObjectKeys(obj *sitter.Node, src []byte, b *analysis.ScriptBindings, bt analysis.BindingType) {
	if obj == nil || obj.Type() != "object" {
		return
	}
	for i := 0; i < int(obj.ChildCount()); i++ {
		entry := obj.Child(i)
		var key *sitter.Node
		switch entry.Type() {
		case "pair":
			key = entry.ChildByFieldName("key")
		case "method_definition":
			key = entry.ChildByFieldName("name")
		case "shorthand_property_identifier":
			key = entry
		default:
			continue
		}
		if key == nil {
			continue
		}
		name := text(key, src)
		if key.Type() == "string" {
			name = stringContent(key, src)
		}
		if name != "" {
			b.Add(name, bt)
		}
	}
}

func text(n *sitter.Node, src []byte) string {
	return string(src[n.StartByte():n.EndByte()])
}

func fieldText(n *sitter.Node, field string, src []byte) string {
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return text(child, src)
}

func stringContent(n *sitter.Node, src []byte) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child.Type() == "string_fragment" {
			return text(child, src)
		}
	}
	s := text(n, src)
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}
