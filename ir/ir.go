// Copyright © 2026 The Vize authors

// Package ir defines the serializable render IR: a flattened, analysis-
// annotated form of a component template that downstream tooling consumes
// without needing the parser or the scope graph. Documents round-trip
// through JSON (for humans and editors) and msgpack (for the disk cache).
package ir

// Schema is the document format version. Bump it whenever the shape of
// Document changes so stale cache entries self-invalidate.
const Schema uint16 = 1

// NodeKind discriminates render-IR nodes.
type NodeKind uint8

const (
	KindElement NodeKind = iota + 1
	KindComponent
	KindText
	KindInterpolation
	KindIf
	KindFor
	KindSlot
	KindComment
)

func (k NodeKind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindComponent:
		return "component"
	case KindText:
		return "text"
	case KindInterpolation:
		return "interpolation"
	case KindIf:
		return "if"
	case KindFor:
		return "for"
	case KindSlot:
		return "slot"
	case KindComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Prop is one attribute or directive on an element node.
type Prop struct {
	Name      string   `json:"name" msgpack:"n"`
	Value     string   `json:"value,omitempty" msgpack:"v,omitempty"`
	HasValue  bool     `json:"hasValue" msgpack:"hv"`
	Directive string   `json:"directive,omitempty" msgpack:"d,omitempty"`
	Arg       string   `json:"arg,omitempty" msgpack:"a,omitempty"`
	Modifiers []string `json:"modifiers,omitempty" msgpack:"m,omitempty"`
	Dynamic   bool     `json:"dynamic,omitempty" msgpack:"dy,omitempty"`
}

// Branch is one arm of an if node.
type Branch struct {
	Condition    string `json:"condition,omitempty" msgpack:"c,omitempty"`
	HasCondition bool   `json:"hasCondition" msgpack:"hc"`
	Key          string `json:"key,omitempty" msgpack:"k,omitempty"`
	Children     []Node `json:"children,omitempty" msgpack:"ch,omitempty"`
}

// Node is one render-IR node. Which fields are meaningful depends on Kind.
type Node struct {
	Kind NodeKind `json:"kind" msgpack:"k"`

	// Element, component, slot.
	Tag        string `json:"tag,omitempty" msgpack:"t,omitempty"`
	Props      []Prop `json:"props,omitempty" msgpack:"p,omitempty"`
	SelfClosed bool   `json:"selfClosed,omitempty" msgpack:"sc,omitempty"`

	// Text, interpolation, comment.
	Text string `json:"text,omitempty" msgpack:"x,omitempty"`

	// If.
	Branches []Branch `json:"branches,omitempty" msgpack:"b,omitempty"`

	// For.
	ValueAlias string `json:"valueAlias,omitempty" msgpack:"va,omitempty"`
	KeyAlias   string `json:"keyAlias,omitempty" msgpack:"ka,omitempty"`
	IndexAlias string `json:"indexAlias,omitempty" msgpack:"ia,omitempty"`
	Source     string `json:"source,omitempty" msgpack:"s,omitempty"`

	Children []Node `json:"children,omitempty" msgpack:"ch,omitempty"`

	Start int `json:"start" msgpack:"st"`
	End   int `json:"end" msgpack:"en"`
}

// Expression is an analysis-classified template expression.
type Expression struct {
	Content string `json:"content" msgpack:"c"`
	Kind    string `json:"kind" msgpack:"k"`
	Start   int    `json:"start" msgpack:"st"`
	End     int    `json:"end" msgpack:"en"`
	Scope   int    `json:"scope" msgpack:"sc"`
	Guarded bool   `json:"guarded,omitempty" msgpack:"g,omitempty"`
	Guard   string `json:"guard,omitempty" msgpack:"gd,omitempty"`
}

// Undefined is a reference the analyzer could not resolve.
type Undefined struct {
	Name    string `json:"name" msgpack:"n"`
	Offset  int    `json:"offset" msgpack:"o"`
	Context string `json:"context,omitempty" msgpack:"c,omitempty"`
}

// ScopeInfo is a flattened scope-graph entry.
type ScopeInfo struct {
	ID       int      `json:"id" msgpack:"i"`
	Kind     string   `json:"kind" msgpack:"k"`
	Parents  []int    `json:"parents,omitempty" msgpack:"p,omitempty"`
	Bindings []string `json:"bindings,omitempty" msgpack:"b,omitempty"`
	Start    int      `json:"start" msgpack:"st"`
	End      int      `json:"end" msgpack:"en"`
}

// ComponentRef is one component usage, flattened for consumers that only
// need names and props (module graphs, prop checkers).
type ComponentRef struct {
	Name   string   `json:"name" msgpack:"n"`
	Props  []string `json:"props,omitempty" msgpack:"p,omitempty"`
	Events []string `json:"events,omitempty" msgpack:"e,omitempty"`
	Slots  []string `json:"slots,omitempty" msgpack:"s,omitempty"`
	Start  int      `json:"start" msgpack:"st"`
}

// Document is the complete render IR of one component file.
type Document struct {
	Schema   uint16 `json:"schema" msgpack:"sv"`
	Filename string `json:"filename" msgpack:"f"`

	Roots []Node `json:"roots,omitempty" msgpack:"r,omitempty"`

	Scopes      []ScopeInfo    `json:"scopes,omitempty" msgpack:"sg,omitempty"`
	Expressions []Expression   `json:"expressions,omitempty" msgpack:"ex,omitempty"`
	Undefined   []Undefined    `json:"undefined,omitempty" msgpack:"u,omitempty"`
	Components  []ComponentRef `json:"components,omitempty" msgpack:"cp,omitempty"`
	UnusedVars  []string       `json:"unusedVars,omitempty" msgpack:"uv,omitempty"`
}
