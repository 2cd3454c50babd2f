// Copyright © 2026 The Vize authors

package analysis

import (
	"strings"
	"unicode"

	"github.com/ushironoko/vize-sub001/astutil"
	"github.com/ushironoko/vize-sub001/template/ast"
	"github.com/ushironoko/vize-sub001/template/expr"
)

// maxAncestorHops bounds the upward parent walk used by the in-loop
// check, guaranteeing termination regardless of graph shape.
const maxAncestorHops = 50

// elementIDAttrs is the allow-list of id-like attributes recorded as
// ElementID facts.
var elementIDAttrs = map[string]bool{
	"id": true, "for": true, "form": true, "list": true, "headers": true,
	"aria-labelledby": true, "aria-describedby": true, "aria-controls": true,
	"aria-owns": true, "aria-activedescendant": true, "aria-details": true,
	"aria-errormessage": true, "aria-flowto": true,
}

// walker drives the scope graph through one depth-first traversal of the
// template tree and appends facts to the croquis as it goes.
type walker struct {
	graph      *Graph
	cfg        *Config
	res        *Croquis
	components map[string]bool

	// scopeVars shadows the names currently visible from template-local
	// scopes. It serves as a cheap membership pre-check and records
	// exactly how many entries to pop when a subtree is left.
	scopeVars []string

	// vifGuards stacks the conditions of enclosing v-if branches for
	// downstream type narrowing.
	vifGuards []string
}

func (w *walker) visitNodes(nodes []ast.Node) {
	for _, n := range nodes {
		w.visit(n)
	}
}

func (w *walker) visit(node ast.Node) {
	switch n := node.(type) {
	case *ast.Element:
		w.visitElement(n)
	case *ast.If:
		w.visitIf(n)
	case *ast.For:
		w.visitFor(n)
	case *ast.Interpolation:
		w.visitInterpolation(n)
	case *ast.Text, *ast.Comment:
		// No expressions, no scopes.
	}
}

// visitElement implements the per-element algorithm: a first directive
// pass collects the scope-introducing directives (v-for, v-slot) and the
// :key binding before any scope exists, scopes are entered, a second
// pass checks the remaining directive expressions inside them, children
// are visited, and everything is undone in reverse order on exit.
func (w *walker) visitElement(el *ast.Element) {
	var (
		vfor    *ast.Directive
		vslot   *ast.Directive
		keyBind *ast.Directive
	)
	for _, p := range el.Props {
		d, ok := p.(*ast.Directive)
		if !ok {
			continue
		}
		switch {
		case d.Name == "for":
			vfor = d
		case d.Name == "slot":
			vslot = d
		case d.Name == "bind" && d.Arg == "key":
			keyBind = d
		}
	}

	scopesEntered := 0
	varsPushed := 0

	if vslot != nil {
		varsPushed += w.enterVSlot(el, vslot)
		scopesEntered++
	}
	if vfor != nil {
		pushed, entered := w.enterVFor(el, vfor, keyBind)
		varsPushed += pushed
		if entered {
			scopesEntered++
		}
	}

	// Second directive pass, now inside any new scopes.
	guardPushed := false
	for _, p := range el.Props {
		d, ok := p.(*ast.Directive)
		if !ok {
			continue
		}
		switch d.Name {
		case "bind":
			w.checkBind(d)
		case "if", "else-if":
			if d.HasValue {
				w.recordExpression(d.Value, ExprIf, d.ValueLoc)
				w.checkExpressionRefs(d.Value, d.ValueLoc.Start, "v-"+d.Name)
				w.vifGuards = append(w.vifGuards, d.Value)
				guardPushed = true
			}
		case "show":
			if d.HasValue {
				w.recordExpression(d.Value, ExprShow, d.ValueLoc)
				w.checkExpressionRefs(d.Value, d.ValueLoc.Start, "v-show")
			}
		case "model":
			w.checkModel(d)
		case "on":
			w.checkOn(d, el)
		}
	}

	// The component fact is recorded after scopes are entered so nested
	// prop and event expressions resolve against the innermost scope.
	if w.isComponent(el) {
		w.recordComponentUsage(el)
	}
	w.recordElementIDs(el)

	w.visitNodes(el.Children)

	if guardPushed {
		w.vifGuards = w.vifGuards[:len(w.vifGuards)-1]
	}
	w.scopeVars = w.scopeVars[:len(w.scopeVars)-varsPushed]
	for i := 0; i < scopesEntered; i++ {
		w.graph.ExitScope()
	}
}

// enterVSlot opens the slot scope and pushes its prop names. Returns the
// number of scopeVars pushed.
func (w *walker) enterVSlot(el *ast.Element, d *ast.Directive) int {
	name := d.Arg
	if name == "" {
		name = "default"
	}
	data := VSlotData{Name: name}
	if d.HasValue && d.Value != "" {
		data.PropsPattern = d.Value
		data.PropNames = astutil.PatternNames(d.Value)
	}
	id := w.graph.EnterVSlotScope(data, el.Loc.Start, el.Loc.End)
	if data.PropsPattern != "" {
		w.narrowAliasOffsets(id, data.PropsPattern, d.ValueLoc.Start)
	}
	w.scopeVars = append(w.scopeVars, data.PropNames...)
	return len(data.PropNames)
}

// enterVFor parses the loop expression, opens the loop scope with the
// aliases bound, and checks the source expression. The :key expression
// collected by the first pass becomes scope metadata even though its
// value resolves later, inside the new scope.
func (w *walker) enterVFor(el *ast.Element, d *ast.Directive, keyBind *ast.Directive) (pushed int, entered bool) {
	fe, ok := astutil.ParseForExpression(d.Value)
	if !ok {
		w.res.UndefinedRefs = append(w.res.UndefinedRefs, UndefinedRef{
			Name:    d.Value,
			Offset:  d.ValueLoc.Start,
			Context: "malformed v-for expression",
		})
		return 0, false
	}

	data := VForData{
		ValueAlias: fe.ValueAlias,
		KeyAlias:   fe.KeyAlias,
		IndexAlias: fe.IndexAlias,
		Source:     fe.Source,
	}
	if keyBind != nil {
		data.KeyExpression = keyBind.Value
	}
	id := w.graph.EnterVForScope(data, el.Loc.Start, el.Loc.End)
	w.narrowAliasOffsets(id, d.Value[:fe.SourceOffset], d.ValueLoc.Start)

	sourceStart := d.ValueLoc.Start + fe.SourceOffset
	w.recordExpression(fe.Source, ExprForSource, ast.Span{Start: sourceStart, End: sourceStart + len(fe.Source)})
	w.checkExpressionRefs(fe.Source, sourceStart, "v-for source")

	for _, alias := range []string{fe.ValueAlias, fe.KeyAlias, fe.IndexAlias} {
		if alias == "" {
			continue
		}
		for _, name := range aliasNames(alias) {
			w.scopeVars = append(w.scopeVars, name)
			pushed++
		}
	}
	return pushed, true
}

// aliasNames expands a loop alias that may be a destructuring pattern.
func aliasNames(alias string) []string {
	if strings.HasPrefix(alias, "{") || strings.HasPrefix(alias, "[") {
		return astutil.PatternNames(alias)
	}
	return []string{alias}
}

// narrowAliasOffsets moves binding declaration offsets from the scope
// start to the binding's own name inside the declaring text, so that
// unused-variable findings underline the name itself.
func (w *walker) narrowAliasOffsets(id ScopeID, text string, base int) {
	s := w.graph.Scope(id)
	for name, b := range s.Bindings {
		if i := indexIdent(text, name); i >= 0 {
			b.DeclarationOffset = base + i
		}
	}
}

// indexIdent returns the offset of name in s as a whole identifier, or -1.
func indexIdent(s, name string) int {
	if name == "" {
		return -1
	}
	for i := 0; i+len(name) <= len(s); i++ {
		if s[i:i+len(name)] != name {
			continue
		}
		if i > 0 && isIdentByte(s[i-1]) {
			continue
		}
		if j := i + len(name); j < len(s) && isIdentByte(s[j]) {
			continue
		}
		return i
	}
	return -1
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '$'
}

// checkBind checks a v-bind expression. An inline arrow value opens a
// short-lived callback scope just to resolve that one expression.
func (w *walker) checkBind(d *ast.Directive) {
	if !d.HasValue || d.Value == "" {
		return
	}
	kind := ExprBind
	context := "v-bind"
	if d.Arg != "" {
		context = "v-bind:" + d.Arg
	}
	if d.Arg == "key" {
		kind = ExprKey
	}
	w.recordExpression(d.Value, kind, d.ValueLoc)

	if d.DynamicArg {
		w.checkExpressionRefs(d.Arg, d.Loc.Start, "dynamic argument")
	}

	if params, ok := astutil.ArrowParams(d.Value); ok {
		w.graph.EnterTemplateCallbackScope(CallbackData{
			ParamNames: params,
			Context:    context,
		}, d.ValueLoc.Start, d.ValueLoc.End)
		w.scopeVars = append(w.scopeVars, params...)
		w.checkExpressionRefs(d.Value, d.ValueLoc.Start, context)
		w.scopeVars = w.scopeVars[:len(w.scopeVars)-len(params)]
		w.graph.ExitScope()
		return
	}
	w.checkExpressionRefs(d.Value, d.ValueLoc.Start, context)
}

// checkModel checks a v-model expression and marks its target mutated.
func (w *walker) checkModel(d *ast.Directive) {
	if !d.HasValue || d.Value == "" {
		return
	}
	w.recordExpression(d.Value, ExprModel, d.ValueLoc)
	w.checkExpressionRefs(d.Value, d.ValueLoc.Start, "v-model")
	if target := rootIdent(d.Value); target != "" {
		w.graph.MarkMutated(target)
	}
}

// checkOn checks a v-on handler expression.
//
// Handler forms:
//   - arrow/function: the explicit parameters become bindings, never an
//     implicit $event (an arrow declares its own list even when empty),
//   - bare method name: no extra scope at all,
//   - statement: an event-handler scope is opened; $event is synthesized
//     when the expression mentions it or contains no call parentheses.
func (w *walker) checkOn(d *ast.Directive, el *ast.Element) {
	if !d.HasValue || d.Value == "" {
		return
	}
	context := "v-on"
	if d.Arg != "" {
		context = "v-on:" + d.Arg
	}
	w.recordExpression(d.Value, ExprOn, d.ValueLoc)

	value := strings.TrimSpace(d.Value)

	if isBareReference(value) {
		// Plain method name: no scope, just resolve the reference.
		w.checkExpressionRefs(value, d.ValueLoc.Start, context)
		return
	}

	data := EventHandlerData{
		EventName:         d.Arg,
		HandlerExpression: value,
	}
	if el.Type == ast.TagComponent || w.components[el.Tag] {
		data.TargetComponent = el.Tag
	}

	if params, ok := astutil.ArrowParams(value); ok {
		data.ParamNames = params
	} else if expr.HasIdent(value, "$event") || !strings.Contains(value, "(") {
		data.HasImplicitEvent = true
	}

	w.graph.EnterEventHandlerScope(data, d.ValueLoc.Start, d.ValueLoc.End)
	w.scopeVars = append(w.scopeVars, data.ParamNames...)
	w.checkExpressionRefs(value, d.ValueLoc.Start, context)
	w.scopeVars = w.scopeVars[:len(w.scopeVars)-len(data.ParamNames)]
	w.graph.ExitScope()
}

// isBareReference reports whether a handler value is a plain method
// reference (possibly a member path): no parens, no arrow, no statement.
func isBareReference(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '$', c == '.':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// visitIf checks each branch condition against the current scope (v-if
// introduces no bindings) and pushes the condition onto the guard stack
// for the duration of the branch's children.
func (w *walker) visitIf(n *ast.If) {
	for _, branch := range n.Branches {
		if branch.HasCondition {
			w.recordExpression(branch.Condition, ExprIf, branch.ConditionLoc)
			w.checkExpressionRefs(branch.Condition, branch.ConditionLoc.Start, "v-if")
		}
		if branch.HasKey {
			w.recordExpression(branch.Key, ExprKey, branch.KeyLoc)
			w.checkExpressionRefs(branch.Key, branch.KeyLoc.Start, "key")
		}
		if branch.HasCondition {
			w.vifGuards = append(w.vifGuards, branch.Condition)
		}
		w.visitNodes(branch.Children)
		if branch.HasCondition {
			w.vifGuards = w.vifGuards[:len(w.vifGuards)-1]
		}
	}
}

// visitFor handles a pre-desugared loop node: enter one v-for scope,
// bind up to three aliases, recurse, undo in reverse.
func (w *walker) visitFor(n *ast.For) {
	data := VForData{
		ValueAlias:    n.ValueAlias,
		KeyAlias:      n.KeyAlias,
		IndexAlias:    n.IndexAlias,
		Source:        n.Source,
		KeyExpression: n.Key,
	}
	w.graph.EnterVForScope(data, n.Loc.Start, n.Loc.End)
	w.recordExpression(n.Source, ExprForSource, n.SourceLoc)
	w.checkExpressionRefs(n.Source, n.SourceLoc.Start, "v-for source")

	pushed := 0
	for _, alias := range []string{n.ValueAlias, n.KeyAlias, n.IndexAlias} {
		if alias == "" {
			continue
		}
		for _, name := range aliasNames(alias) {
			w.scopeVars = append(w.scopeVars, name)
			pushed++
		}
	}

	// The wrapper's :key resolves inside the loop scope, like an
	// element-level key does.
	if n.HasKey {
		w.recordExpression(n.Key, ExprKey, n.KeyLoc)
		w.checkExpressionRefs(n.Key, n.KeyLoc.Start, "key")
	}

	w.visitNodes(n.Children)

	w.scopeVars = w.scopeVars[:len(w.scopeVars)-pushed]
	w.graph.ExitScope()
}

func (w *walker) visitInterpolation(n *ast.Interpolation) {
	if n.Content == "" {
		return
	}
	w.recordExpression(n.Content, ExprInterpolation, n.ContentLoc)
	w.checkExpressionRefs(n.Content, n.ContentLoc.Start, "interpolation")
}

// recordExpression appends a template-expression fact bound to the
// current scope and the innermost v-if guard.
func (w *walker) recordExpression(content string, kind ExprKind, loc ast.Span) {
	te := TemplateExpression{
		Content: content,
		Kind:    kind,
		Start:   loc.Start,
		End:     loc.End,
		ScopeID: w.graph.Current(),
	}
	if len(w.vifGuards) > 0 {
		te.VIfGuard = w.vifGuards[len(w.vifGuards)-1]
		te.Guarded = true
	}
	w.res.TemplateExpressions = append(w.res.TemplateExpressions, te)
}

// checkExpressionRefs classifies every identifier in the expression. An
// identifier is defined if it is in the scopeVars shadow list, in the
// script binding map, resolvable through the scope graph, or a builtin
// or keyword. Defined non-builtins are marked used; undefined names
// append an UndefinedRef.
func (w *walker) checkExpressionRefs(content string, offset int, context string) {
	for _, id := range expr.Identifiers(content) {
		name := id.Name
		if w.cfg.isKeyword(name) {
			continue
		}
		if w.inScopeVars(name) {
			w.graph.MarkUsed(name)
			continue
		}
		if w.cfg.Bindings.Contains(name) {
			continue
		}
		if _, b := w.graph.Lookup(name); b != nil {
			if !isBuiltinBinding(b.Type) {
				b.Used = true
			}
			continue
		}
		if w.cfg.isJsGlobal(name) {
			continue
		}
		if w.cfg.isEventLocal(name) && w.inEventHandler() {
			continue
		}
		w.res.UndefinedRefs = append(w.res.UndefinedRefs, UndefinedRef{
			Name:    name,
			Offset:  offset + id.Offset,
			Context: context,
		})
	}
	w.markMutations(content)
}

func isBuiltinBinding(t BindingType) bool {
	switch t {
	case BindJsGlobalUniversal, BindJsGlobalBrowser, BindJsGlobalNode, BindVueGlobal:
		return true
	}
	return false
}

// inEventHandler reports whether the cursor sits inside a v-on handler
// scope, following the lexical parent chain only.
func (w *walker) inEventHandler() bool {
	for id := w.graph.Current(); id != noScope; {
		s := w.graph.Scope(id)
		if s.Kind == ScopeEventHandler {
			return true
		}
		id = s.PrimaryParent()
	}
	return false
}

func (w *walker) inScopeVars(name string) bool {
	for i := len(w.scopeVars) - 1; i >= 0; i-- {
		if w.scopeVars[i] == name {
			return true
		}
	}
	return false
}

// markMutations flags bindings mutated by ++/--/compound assignment at
// the top level of the expression.
func (w *walker) markMutations(content string) {
	target := mutationTarget(content)
	if target != "" {
		w.graph.MarkMutated(target)
	}
}

// MutationTarget returns the root identifier mutated by an assignment or
// increment expression, or "" when the expression has no side effect.
// Exposed for lint checks over recorded template expressions.
func MutationTarget(content string) string {
	return mutationTarget(content)
}

// mutationTarget returns the root identifier mutated by expressions of
// the form "x++", "x--", "x = v", "x += v", or "" when there is none.
func mutationTarget(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasSuffix(s, "++") || strings.HasSuffix(s, "--") {
		return rootIdent(strings.TrimRight(s, "+-"))
	}
	for _, op := range []string{"+=", "-=", "*=", "/=", "??=", "||=", "&&="} {
		if i := strings.Index(s, op); i > 0 {
			return rootIdent(s[:i])
		}
	}
	// Plain assignment, avoiding ==, ===, =>, <=, >=, !=.
	for i := 1; i < len(s); i++ {
		if s[i] != '=' {
			continue
		}
		prev, next := s[i-1], byte(0)
		if i+1 < len(s) {
			next = s[i+1]
		}
		if next == '=' || next == '>' || prev == '=' || prev == '!' || prev == '<' || prev == '>' {
			continue
		}
		return rootIdent(s[:i])
	}
	return ""
}

// rootIdent returns the leading identifier of an lvalue path:
// "count" -> count, "user.name" -> user, "items[0]" -> items.
func rootIdent(s string) string {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '$' ||
			(end > 0 && c >= '0' && c <= '9') {
			end++
			continue
		}
		break
	}
	return s[:end]
}

// isComponent reports whether the element resolves to a component:
// PascalCase tags, explicitly registered names, and the built-in set.
func (w *walker) isComponent(el *ast.Element) bool {
	if el.Tag == "" {
		return false
	}
	if w.components[el.Tag] || w.cfg.isVueBuiltin(el.Tag) {
		return true
	}
	return unicode.IsUpper(rune(el.Tag[0]))
}

// recordComponentUsage captures the component's structured props,
// events, and slots. Called after scope entry so ScopeID is the
// innermost scope.
func (w *walker) recordComponentUsage(el *ast.Element) {
	usage := ComponentUsage{
		Name:    el.Tag,
		Start:   el.Loc.Start,
		End:     el.Loc.End,
		ScopeID: w.graph.Current(),
	}
	for _, p := range el.Props {
		switch prop := p.(type) {
		case *ast.Attribute:
			usage.Props = append(usage.Props, PropUsage{
				Name:     prop.Name,
				Value:    prop.Value,
				HasValue: prop.HasValue,
				Start:    prop.Loc.Start,
				End:      prop.Loc.End,
			})
		case *ast.Directive:
			switch prop.Name {
			case "bind":
				if prop.Arg == "" || prop.Arg == "key" {
					continue
				}
				usage.Props = append(usage.Props, PropUsage{
					Name:      prop.Arg,
					Value:     prop.Value,
					HasValue:  prop.HasValue,
					IsDynamic: true,
					Start:     prop.Loc.Start,
					End:       prop.Loc.End,
				})
			case "on":
				usage.Events = append(usage.Events, EventUsage{
					Name:    prop.Arg,
					Handler: prop.Value,
					Start:   prop.Loc.Start,
					End:     prop.Loc.End,
				})
			case "model":
				name := prop.Arg
				if name == "" {
					name = "modelValue"
				}
				usage.Props = append(usage.Props, PropUsage{
					Name:      name,
					Value:     prop.Value,
					HasValue:  prop.HasValue,
					IsDynamic: true,
					Start:     prop.Loc.Start,
					End:       prop.Loc.End,
				})
			case "slot":
				usage.Slots = append(usage.Slots, slotUsage(prop))
			}
		}
	}
	// Slot templates among the children.
	for _, child := range el.Children {
		tmpl, ok := child.(*ast.Element)
		if !ok || tmpl.Type != ast.TagTemplate {
			continue
		}
		if d := astutil.FindDirective(tmpl, "slot"); d != nil {
			usage.Slots = append(usage.Slots, slotUsage(d))
		}
	}
	w.res.ComponentUsages = append(w.res.ComponentUsages, usage)
}

func slotUsage(d *ast.Directive) SlotUsage {
	name := d.Arg
	if name == "" {
		name = "default"
	}
	return SlotUsage{
		Name:         name,
		PropsPattern: d.Value,
		Start:        d.Loc.Start,
		End:          d.Loc.End,
	}
}

// recordElementIDs captures id-like attributes from the allow-list,
// tagging each with whether the element sits inside a v-for ancestor.
func (w *walker) recordElementIDs(el *ast.Element) {
	for _, p := range el.Props {
		switch prop := p.(type) {
		case *ast.Attribute:
			if !elementIDAttrs[prop.Name] {
				continue
			}
			w.res.ElementIDs = append(w.res.ElementIDs, ElementID{
				Value:    prop.Value,
				Start:    prop.ValueLoc.Start,
				End:      prop.ValueLoc.End,
				IsStatic: true,
				InLoop:   w.insideLoop(),
				ScopeID:  w.graph.Current(),
				Kind:     prop.Name,
			})
		case *ast.Directive:
			if prop.Name != "bind" || !elementIDAttrs[prop.Arg] {
				continue
			}
			w.res.ElementIDs = append(w.res.ElementIDs, ElementID{
				Value:    prop.Value,
				Start:    prop.ValueLoc.Start,
				End:      prop.ValueLoc.End,
				IsStatic: false,
				InLoop:   w.insideLoop(),
				ScopeID:  w.graph.Current(),
				Kind:     prop.Arg,
			})
		}
	}
}

// insideLoop walks the parent lists upward from the current scope with a
// hard hop cap. The explicit bound, not structural acyclicity, is what
// guarantees termination here.
func (w *walker) insideLoop() bool {
	visited := map[ScopeID]bool{w.graph.Current(): true}
	frontier := []ScopeID{w.graph.Current()}
	for hop := 0; hop < maxAncestorHops && len(frontier) > 0; hop++ {
		var next []ScopeID
		for _, id := range frontier {
			s := w.graph.Scope(id)
			if s.Kind == ScopeVFor {
				return true
			}
			for _, parent := range s.Parents {
				if !visited[parent] {
					visited[parent] = true
					next = append(next, parent)
				}
			}
		}
		frontier = next
	}
	return false
}
