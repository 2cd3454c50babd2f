// Copyright © 2026 The Vize authors

package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ushironoko/vize-sub001/analysis"
	"github.com/ushironoko/vize-sub001/astutil"
	"github.com/ushironoko/vize-sub001/template/ast"
)

// AnalyzerUndefinedRef reports template references that do not resolve to any
// binding in the scope graph: not a script binding, not a template-introduced
// variable, and not a known global.
var AnalyzerUndefinedRef = &Analyzer{
	Name:     "undefined-ref",
	Doc:      "Report template references that resolve to no binding.\n\nEvery identifier in a template expression must resolve through the scope chain: v-for/v-slot/handler variables, script bindings, vue instance globals, or javascript globals. An unresolved name is a runtime error waiting to render.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		if pass.Croquis == nil {
			return nil
		}
		for _, ref := range pass.Croquis.UndefinedRefs {
			span := ast.Span{Start: ref.Offset, End: ref.Offset + len(ref.Name)}
			if ref.Context != "" {
				pass.ReportfNotes(span, []string{ref.Context}, "undefined reference: %s", ref.Name)
				continue
			}
			pass.Reportf(span, "undefined reference: %s", ref.Name)
		}
		return nil
	},
}

// AnalyzerUnusedTemplateVar warns about v-for and v-slot variables that are
// declared but never referenced. Names starting with _ are exempt.
var AnalyzerUnusedTemplateVar = &Analyzer{
	Name:     "unused-template-var",
	Doc:      "Warn about v-for/v-slot variables that are never referenced.\n\nAn alias like `(item, index)` that only uses `item` leaves `index` dead. Rename unused aliases to `_` (or an underscore prefix) to mark the intent.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		if pass.Croquis == nil {
			return nil
		}
		for _, v := range pass.Croquis.UnusedTemplateVars() {
			if strings.HasPrefix(v.Name, "_") {
				continue
			}
			span := ast.Span{Start: v.DeclarationOffset, End: v.DeclarationOffset + len(v.Name)}
			pass.ReportfNotes(span,
				[]string{fmt.Sprintf("rename to _%s to mark it intentionally unused", v.Name)},
				"unused %s variable: %s", v.Kind, v.Name)
		}
		return nil
	},
}

// AnalyzerVForKey warns when a v-for repetition has no :key binding. Keyless
// lists force the renderer into in-place patching, which breaks stateful
// children and transition groups.
var AnalyzerVForKey = &Analyzer{
	Name:     "vfor-key",
	Doc:      "Warn when v-for has no :key binding.\n\nWithout a key the renderer patches repeated nodes in place, which corrupts component state and form input inside the loop when the list reorders. Bind a stable identity: `:key=\"item.id\"`.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		astutil.WalkElements(pass.Template, func(el *ast.Element, depth int) {
			if astutil.FindDirective(el, "for") == nil {
				return
			}
			if hasKeyBinding(el) {
				return
			}
			pass.Reportf(el.Loc, "v-for on <%s> has no :key", el.Tag)
		})
		astutil.Walk(pass.Template, func(node ast.Node, _ ast.Node, _ int) {
			loop, ok := node.(*ast.For)
			if !ok {
				return
			}
			if loop.HasKey {
				return
			}
			// Without a wrapper key, a key on a direct child still works.
			for _, child := range loop.Children {
				if el, ok := child.(*ast.Element); ok && hasKeyBinding(el) {
					return
				}
			}
			pass.Reportf(loop.Loc, "v-for over %q has no :key", loop.Source)
		})
		return nil
	},
}

func hasKeyBinding(el *ast.Element) bool {
	for _, p := range el.Props {
		if d, ok := p.(*ast.Directive); ok && d.Name == "bind" && d.Arg == "key" {
			return true
		}
		if a, ok := p.(*ast.Attribute); ok && a.Name == "key" {
			return true
		}
	}
	return false
}

// AnalyzerDuplicateID reports id collisions in the rendered document:
// the same static id on two elements, and static ids inside v-for
// (which stamp out one copy per iteration).
var AnalyzerDuplicateID = &Analyzer{
	Name:     "duplicate-id",
	Doc:      "Report id attributes that collide in the rendered document.\n\nTwo elements sharing a static id, or a static id inside a v-for body, render duplicate ids. Duplicate ids break label/for associations, aria references, and getElementById.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		if pass.Croquis == nil {
			return nil
		}
		firstAt := make(map[string]int) // id value -> byte offset of first sight
		for _, id := range pass.Croquis.ElementIDs {
			if id.Kind != "id" || !id.IsStatic {
				continue
			}
			span := ast.Span{Start: id.Start, End: id.End}
			if id.InLoop {
				d := pass.diagf(span, "static id %q inside v-for renders one copy per iteration", id.Value)
				d.Severity = SeverityWarning
				d.Notes = []string{"bind a per-item id instead: :id=\"`" + id.Value + "-${item.id}`\""}
				pass.Report(d)
				continue
			}
			if prev, ok := firstAt[id.Value]; ok {
				line, col := pass.lines.Position(prev)
				pass.ReportfNotes(span,
					[]string{fmt.Sprintf("first used at %s:%d:%d", pass.Filename, line, col)},
					"duplicate id: %s", id.Value)
				continue
			}
			firstAt[id.Value] = id.Start
		}
		return nil
	},
}

// AnalyzerDuplicateAttr reports an attribute bound twice on one element,
// either literally repeated or given both statically and with v-bind.
// class and style are exempt from the static/dynamic clash because the
// renderer merges them.
var AnalyzerDuplicateAttr = &Analyzer{
	Name:     "duplicate-attr",
	Doc:      "Report attributes that appear more than once on an element.\n\nA repeated attribute, or the same name given both statically and via v-bind, leaves one of the two values silently dropped. Static and dynamic class/style are allowed because they merge.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		astutil.WalkElements(pass.Template, func(el *ast.Element, depth int) {
			type sight struct {
				span    ast.Span
				dynamic bool
			}
			seen := make(map[string]sight)
			for _, p := range el.Props {
				name, dynamic, ok := normalizedPropKey(p)
				if !ok {
					continue
				}
				prev, dup := seen[name]
				if !dup {
					seen[name] = sight{span: p.Span(), dynamic: dynamic}
					continue
				}
				mixed := prev.dynamic != dynamic
				if mixed && (name == "class" || name == "style") {
					continue
				}
				if mixed {
					pass.Reportf(p.Span(), "%s is bound both statically and with v-bind on <%s>", name, el.Tag)
					continue
				}
				pass.Reportf(p.Span(), "duplicate attribute %s on <%s>", name, el.Tag)
			}
		})
		return nil
	},
}

// normalizedPropKey maps a prop to the attribute name it ultimately binds,
// so that `id="x"` and `:id="y"` collide. Dynamic-argument directives and
// structural directives are skipped.
func normalizedPropKey(p ast.Prop) (name string, dynamic bool, ok bool) {
	switch prop := p.(type) {
	case *ast.Attribute:
		return prop.Name, false, true
	case *ast.Directive:
		if prop.DynamicArg {
			return "", false, false
		}
		switch prop.Name {
		case "bind":
			if prop.Arg == "" {
				return "", false, false // v-bind="obj" spreads, cannot collide statically
			}
			return prop.Arg, true, true
		case "on":
			return prop.PropName(), true, true
		case "for", "if", "else-if", "else", "slot":
			return "", false, false
		default:
			return prop.PropName(), true, true
		}
	default:
		return "", false, false
	}
}

// AnalyzerTemplateSideEffect warns when a rendering expression mutates
// state. Render passes must be pure; mutations belong in event handlers.
var AnalyzerTemplateSideEffect = &Analyzer{
	Name:     "template-side-effect",
	Doc:      "Warn when a rendering expression mutates state.\n\nExpressions in interpolations, v-bind, v-if, v-show, and v-for sources run on every render. An assignment or increment there re-triggers rendering and can loop. Only v-on handlers (and v-model, which desugars to one) may mutate.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		if pass.Croquis == nil {
			return nil
		}
		for _, expr := range pass.Croquis.TemplateExpressions {
			if expr.Kind == analysis.ExprOn || expr.Kind == analysis.ExprModel {
				continue
			}
			target := analysis.MutationTarget(expr.Content)
			if target == "" {
				continue
			}
			span := ast.Span{Start: expr.Start, End: expr.End}
			pass.ReportfNotes(span,
				[]string{"move the mutation into a v-on handler"},
				"%s expression mutates %s during render", expr.Kind, target)
		}
		return nil
	},
}

// AnalyzerEmptyExpression reports directives and interpolations whose
// expression is empty or whitespace.
var AnalyzerEmptyExpression = &Analyzer{
	Name:     "empty-expression",
	Doc:      "Report directives and interpolations with an empty expression.\n\n`v-if=\"\"` always renders falsy and `{{ }}` renders nothing; both usually mean an edit was left unfinished.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		// Directives that are meaningful without a value.
		bare := map[string]bool{"else": true, "once": true, "pre": true, "cloak": true, "slot": true}
		astutil.Walk(pass.Template, func(node ast.Node, _ ast.Node, _ int) {
			switch n := node.(type) {
			case *ast.Element:
				for _, p := range n.Props {
					d, ok := p.(*ast.Directive)
					if !ok || bare[d.Name] {
						continue
					}
					if d.HasValue && strings.TrimSpace(d.Value) == "" {
						pass.Reportf(d.Span(), "empty expression in %s", d.PropName())
					}
				}
			case *ast.Interpolation:
				if strings.TrimSpace(n.Content) == "" {
					pass.Reportf(n.Loc, "empty interpolation")
				}
			}
		})
		return nil
	},
}

// AnalyzerNames returns a sorted list of all default analyzer names.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// AnalyzerDoc returns a formatted documentation string for all analyzers.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s\n", a.Name)
		lines := strings.Split(a.Doc, "\n")
		fmt.Fprintf(&b, "    %s\n\n", lines[0])
	}
	return b.String()
}
