// Copyright © 2026 The Vize authors

package analysis

import "sort"

// ExprKind classifies where a template expression appeared.
type ExprKind int

const (
	ExprInterpolation ExprKind = iota
	ExprBind
	ExprIf
	ExprShow
	ExprModel
	ExprOn
	ExprForSource
	ExprKey
)

func (k ExprKind) String() string {
	switch k {
	case ExprInterpolation:
		return "interpolation"
	case ExprBind:
		return "v-bind"
	case ExprIf:
		return "v-if"
	case ExprShow:
		return "v-show"
	case ExprModel:
		return "v-model"
	case ExprOn:
		return "v-on"
	case ExprForSource:
		return "v-for-source"
	case ExprKey:
		return "key"
	default:
		return "unknown"
	}
}

// UndefinedRef records an identifier that no scope, script binding, or
// builtin table could resolve. Always a deferred diagnostic, never an
// error: one bad expression does not abort analysis of the file.
type UndefinedRef struct {
	Name    string `json:"name"`
	Offset  int    `json:"offset"`
	Context string `json:"context"`
}

// TemplateExpression records one checked expression together with the
// scope it was resolved in, so downstream code generation can rebuild
// type-checking closures and if-narrowing around it.
type TemplateExpression struct {
	Content  string   `json:"content"`
	Kind     ExprKind `json:"kind"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
	ScopeID  ScopeID  `json:"scopeId"`
	VIfGuard string   `json:"vifGuard,omitempty"`
	Guarded  bool     `json:"guarded,omitempty"`
}

// PropUsage is one prop passed to a component.
type PropUsage struct {
	Name      string `json:"name"`
	Value     string `json:"value,omitempty"`
	HasValue  bool   `json:"hasValue"`
	IsDynamic bool   `json:"isDynamic"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
}

// EventUsage is one event listener attached to a component.
type EventUsage struct {
	Name    string `json:"name"`
	Handler string `json:"handler,omitempty"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// SlotUsage is one slot fed to a component.
type SlotUsage struct {
	Name         string `json:"name"`
	PropsPattern string `json:"propsPattern,omitempty"`
	Start        int    `json:"start"`
	End          int    `json:"end"`
}

// ComponentUsage records one component occurrence with its structured
// props, events, and slots. ScopeID is the innermost scope at the tag,
// captured after any v-slot/v-for scopes were entered, so nested prop
// and event expressions resolve against it.
type ComponentUsage struct {
	Name    string       `json:"name"`
	Start   int          `json:"start"`
	End     int          `json:"end"`
	ScopeID ScopeID      `json:"scopeId"`
	Props   []PropUsage  `json:"props,omitempty"`
	Events  []EventUsage `json:"events,omitempty"`
	Slots   []SlotUsage  `json:"slots,omitempty"`
}

// ElementID records an id-like attribute occurrence for reference
// checking (label for=, ARIA relationships).
type ElementID struct {
	Value    string  `json:"value"`
	Start    int     `json:"start"`
	End      int     `json:"end"`
	IsStatic bool    `json:"isStatic"`
	InLoop   bool    `json:"inLoop"`
	ScopeID  ScopeID `json:"scopeId"`
	Kind     string  `json:"kind"` // the attribute name: id, for, aria-labelledby, ...
}

// UnusedVar is a template-introduced binding that was never referenced.
type UnusedVar struct {
	Name              string    `json:"name"`
	ScopeID           ScopeID   `json:"scopeId"`
	Kind              ScopeKind `json:"kind"`
	DeclarationOffset int       `json:"declarationOffset"`
}

// Croquis is the aggregate analysis result: the frozen scope graph plus
// the flat fact vectors appended during one traversal. It is read-only
// input to code generation, linting, and the IDE backend.
type Croquis struct {
	Scopes              *Graph
	UndefinedRefs       []UndefinedRef
	TemplateExpressions []TemplateExpression
	ComponentUsages     []ComponentUsage
	ElementIDs          []ElementID
}

// UnusedTemplateVars returns the v-for and v-slot bindings that were
// never marked used, sorted by declaration order (scope order, then
// name order within a scope is unspecified but deterministic per graph).
func (c *Croquis) UnusedTemplateVars() []UnusedVar {
	var unused []UnusedVar
	for i := 0; i < c.Scopes.Len(); i++ {
		s := c.Scopes.Scope(ScopeID(i))
		if s.Kind != ScopeVFor && s.Kind != ScopeVSlot {
			continue
		}
		for _, name := range sortedBindingNames(s) {
			b := s.Bindings[name]
			if !b.Used {
				unused = append(unused, UnusedVar{
					Name:              name,
					ScopeID:           s.ID,
					Kind:              s.Kind,
					DeclarationOffset: b.DeclarationOffset,
				})
			}
		}
	}
	return unused
}

func sortedBindingNames(s *Scope) []string {
	names := make([]string, 0, len(s.Bindings))
	for name := range s.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
