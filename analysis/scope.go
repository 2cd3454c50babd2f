// Copyright © 2026 The Vize authors

package analysis

// ScopeKind classifies the kind of scope.
type ScopeKind int

const (
	ScopeJsGlobalUniversal ScopeKind = iota // ECMAScript standard globals (ROOT)
	ScopeJsGlobalBrowser                    // browser runtime globals
	ScopeJsGlobalNode                       // node runtime globals
	ScopeVueGlobal                          // $emit, $slots, ... template instance properties
	ScopeModule                             // module top level
	ScopeScriptSetup                        // <script setup> body
	ScopeNonScriptSetup                     // options-API script body
	ScopeVFor                               // v-for loop aliases
	ScopeVSlot                              // v-slot props
	ScopeEventHandler                       // v-on handler parameters
	ScopeCallback                           // inline callback parameters
	ScopeClientOnly                         // client-only hook body
	ScopeUniversal                          // code shared between runtimes
	ScopeExternalModule                     // imported external module
	ScopeClosure                            // function closure
	ScopeBlock                              // block statement
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeJsGlobalUniversal:
		return "js-global"
	case ScopeJsGlobalBrowser:
		return "js-global-browser"
	case ScopeJsGlobalNode:
		return "js-global-node"
	case ScopeVueGlobal:
		return "vue-global"
	case ScopeModule:
		return "module"
	case ScopeScriptSetup:
		return "script-setup"
	case ScopeNonScriptSetup:
		return "non-script-setup"
	case ScopeVFor:
		return "v-for"
	case ScopeVSlot:
		return "v-slot"
	case ScopeEventHandler:
		return "event-handler"
	case ScopeCallback:
		return "callback"
	case ScopeClientOnly:
		return "client-only"
	case ScopeUniversal:
		return "universal"
	case ScopeExternalModule:
		return "external-module"
	case ScopeClosure:
		return "closure"
	case ScopeBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Runtime selects the global name set for a js-global scope.
type Runtime int

const (
	RuntimeUniversal Runtime = iota
	RuntimeBrowser
	RuntimeNode
)

// ScopeID is an opaque handle into a Graph's scope arena.
type ScopeID int

// RootScopeID is the ID of the pre-seeded ECMAScript-globals scope.
const RootScopeID ScopeID = 0

// noScope marks an absent optional scope reference (e.g. a graph without
// a vue-global scope).
const noScope ScopeID = -1

// Scope is one node of the scope graph.
//
// Parents is ordered: the first entry is the primary (lexical) parent
// that ExitScope returns to; any remaining entries are additional
// accessible scopes, such as the vue-global scope attached to template
// contexts. Parents are fixed at creation and the graph is acyclic.
type Scope struct {
	ID       ScopeID
	Kind     ScopeKind
	Parents  []ScopeID
	Bindings map[string]*Binding
	Data     ScopeData
	Start    int
	End      int
}

// PrimaryParent returns the lexical parent, or noScope for ROOT.
func (s *Scope) PrimaryParent() ScopeID {
	if len(s.Parents) == 0 {
		return noScope
	}
	return s.Parents[0]
}

// ScopeData is the kind-specific payload attached to a scope.
type ScopeData interface {
	scopeData()
}

// VForData describes a v-for scope.
type VForData struct {
	ValueAlias    string
	KeyAlias      string
	IndexAlias    string
	Source        string
	KeyExpression string // :key bound on the looping element, if any
}

// VSlotData describes a v-slot scope.
type VSlotData struct {
	Name         string
	PropsPattern string
	PropNames    []string
}

// EventHandlerData describes a v-on handler scope.
type EventHandlerData struct {
	EventName         string
	HasImplicitEvent  bool
	ParamNames        []string
	HandlerExpression string
	TargetComponent   string
}

// CallbackData describes an inline callback scope.
type CallbackData struct {
	ParamNames []string
	Context    string
}

// ClientOnlyData describes a client-only hook scope.
type ClientOnlyData struct {
	HookName string
}

func (VForData) scopeData()         {}
func (VSlotData) scopeData()        {}
func (EventHandlerData) scopeData() {}
func (CallbackData) scopeData()     {}
func (ClientOnlyData) scopeData()   {}
