// Copyright © 2026 The Vize authors

// Package ast defines the template AST produced by template/parser and
// consumed by analysis, ir, and lint. Every node carries byte offsets
// into the original template source.
package ast

// Span is a half-open byte range [Start, End) in the template source.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Node is implemented by every template AST node.
type Node interface {
	Span() Span
}

// TagType classifies an element tag.
type TagType int

const (
	TagElement  TagType = iota // plain HTML element
	TagComponent               // resolved component (PascalCase or registered)
	TagTemplate                // <template> wrapper
	TagSlot                    // <slot> outlet
)

func (t TagType) String() string {
	switch t {
	case TagElement:
		return "element"
	case TagComponent:
		return "component"
	case TagTemplate:
		return "template"
	case TagSlot:
		return "slot"
	default:
		return "unknown"
	}
}

// Root is the top of a parsed template.
type Root struct {
	Children []Node
	Loc      Span
}

func (n *Root) Span() Span { return n.Loc }

// Element is an HTML element or component tag with its props and children.
type Element struct {
	Tag        string
	Type       TagType
	Props      []Prop
	Children   []Node
	SelfClosed bool
	Loc        Span
}

func (n *Element) Span() Span { return n.Loc }

// Prop is either a static Attribute or a Directive.
type Prop interface {
	Node
	PropName() string
}

// Attribute is a static attribute: name="value".
type Attribute struct {
	Name     string
	Value    string
	HasValue bool // distinguishes name="" from bare name
	Loc      Span
	ValueLoc Span
}

func (n *Attribute) Span() Span       { return n.Loc }
func (n *Attribute) PropName() string { return n.Name }

// Directive is a v-* prop, including the shorthands : (v-bind),
// @ (v-on), and # (v-slot).
type Directive struct {
	Name       string   // canonical name without the v- prefix: "bind", "on", "for", ...
	Arg        string   // :src -> "src", @click -> "click", #header -> "header"
	DynamicArg bool     // :[key] / @[event]
	Modifiers  []string // @click.stop.prevent -> ["stop", "prevent"]
	Value      string   // raw expression text, unquoted
	HasValue   bool
	Loc        Span
	ValueLoc   Span // span of Value inside the source
}

func (n *Directive) Span() Span { return n.Loc }

// PropName returns the normalized directive name with its argument, e.g.
// "v-bind:src" or "v-on:click". Used for duplicate detection.
func (n *Directive) PropName() string {
	if n.Arg == "" {
		return "v-" + n.Name
	}
	return "v-" + n.Name + ":" + n.Arg
}

// Interpolation is a {{ expression }} text span.
type Interpolation struct {
	Content    string
	Loc        Span
	ContentLoc Span
}

func (n *Interpolation) Span() Span { return n.Loc }

// Text is literal text between tags.
type Text struct {
	Content string
	Loc     Span
}

func (n *Text) Span() Span { return n.Loc }

// Comment is a <!-- --> comment. Comments are preserved because lint
// suppression directives live in them.
type Comment struct {
	Content string
	Loc     Span
}

func (n *Comment) Span() Span { return n.Loc }

// IfBranch is one arm of an If node. Condition is empty for v-else.
type IfBranch struct {
	Condition    string
	HasCondition bool
	ConditionLoc Span
	Key          string // :key bound on the branch element, if any
	KeyLoc       Span
	HasKey       bool
	Children     []Node
	Loc          Span
}

// If is a structural conditional assembled from a sibling chain of
// v-if / v-else-if / v-else template wrappers.
type If struct {
	Branches []IfBranch
	Loc      Span
}

func (n *If) Span() Span { return n.Loc }

// For is a pre-desugared loop node produced from <template v-for>.
// Elements carrying a v-for directive are NOT desugared; the analyzer
// handles both forms.
type For struct {
	ValueAlias string
	KeyAlias   string
	IndexAlias string
	Source     string
	SourceLoc  Span
	Key        string // :key bound on the wrapper, if any
	KeyLoc     Span
	HasKey     bool
	Children   []Node
	Loc        Span
}

func (n *For) Span() Span { return n.Loc }
