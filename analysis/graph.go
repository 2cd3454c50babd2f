// Copyright © 2026 The Vize authors

package analysis

// Graph is an append-only arena of scopes with a movable cursor marking
// the scope the walker is currently inside.
//
// Scopes can have more than one parent: template scopes see both their
// lexical parent and the graph's vue-global scope, so name resolution is
// a breadth-first search over all parents with a visited set rather than
// a simple parent-chain walk. ExitScope always returns to the primary
// (first) parent.
//
// A Graph is built fresh for each analyzed file, mutated by exactly one
// walker, and frozen inside the returned Croquis.
type Graph struct {
	scopes  []*Scope
	current ScopeID

	// vueGlobal is the scope attached as an additional parent by
	// EnterScopeWithVueGlobal, or noScope before one is created.
	vueGlobal ScopeID

	// browserGlobal is the most recent browser-globals scope, attached as
	// an additional parent by EnterClientOnlyScope. A scope entered and
	// exited earlier is a sibling branch, unreachable from the cursor, so
	// it is tracked here rather than searched for.
	browserGlobal ScopeID
}

// NewGraph returns a graph whose ROOT scope is pre-seeded with the fixed
// ECMAScript global names.
func NewGraph() *Graph {
	return NewGraphWithCapacity(16)
}

// NewGraphWithCapacity is NewGraph with room for n scopes pre-allocated.
func NewGraphWithCapacity(n int) *Graph {
	g := &Graph{
		scopes:        make([]*Scope, 0, n),
		vueGlobal:     noScope,
		browserGlobal: noScope,
	}
	root := g.appendScope(ScopeJsGlobalUniversal, nil)
	seedGlobals(root, jsGlobalsUniversal, BindJsGlobalUniversal)
	g.current = root.ID
	return g
}

func seedGlobals(s *Scope, names []string, bt BindingType) {
	for _, name := range names {
		s.Bindings[name] = &Binding{Type: bt}
	}
}

func (g *Graph) appendScope(kind ScopeKind, parents []ScopeID) *Scope {
	s := &Scope{
		ID:       ScopeID(len(g.scopes)),
		Kind:     kind,
		Parents:  parents,
		Bindings: make(map[string]*Binding),
	}
	g.scopes = append(g.scopes, s)
	return s
}

// Len returns the number of scopes in the arena.
func (g *Graph) Len() int { return len(g.scopes) }

// Current returns the cursor scope's ID.
func (g *Graph) Current() ScopeID { return g.current }

// Scope returns the scope with the given ID. IDs handed out by the graph
// remain valid for its lifetime.
func (g *Graph) Scope(id ScopeID) *Scope { return g.scopes[int(id)] }

// VueGlobalScope returns the graph's vue-global scope ID, or false when
// none has been created.
func (g *Graph) VueGlobalScope() (ScopeID, bool) {
	return g.vueGlobal, g.vueGlobal != noScope
}

// EnterScope appends a scope whose sole parent is the current scope and
// moves the cursor to it.
func (g *Graph) EnterScope(kind ScopeKind) ScopeID {
	s := g.appendScope(kind, []ScopeID{g.current})
	g.current = s.ID
	return s.ID
}

// EnterScopeWithVueGlobal is EnterScope plus the graph's vue-global scope
// (if one exists) as an additional parent.
func (g *Graph) EnterScopeWithVueGlobal(kind ScopeKind) ScopeID {
	parents := []ScopeID{g.current}
	if g.vueGlobal != noScope {
		parents = append(parents, g.vueGlobal)
	}
	s := g.appendScope(kind, parents)
	g.current = s.ID
	return s.ID
}

// ExitScope moves the cursor to the current scope's primary parent.
// At ROOT it is a no-op.
func (g *Graph) ExitScope() {
	parent := g.Scope(g.current).PrimaryParent()
	if parent == noScope {
		return
	}
	g.current = parent
}

// AddBinding declares name in the given scope. Re-declaring a name in the
// same scope overwrites the previous binding: that is intentional
// shadowing, not a conflict.
func (g *Graph) AddBinding(id ScopeID, name string, b Binding) {
	bound := b
	g.Scope(id).Bindings[name] = &bound
}

// Lookup resolves name by breadth-first search from the current scope
// outward over all parents, primary and additional. Each scope is
// examined at most once even when additional parents create diamond
// reachability. The first scope containing name in traversal order wins.
func (g *Graph) Lookup(name string) (*Scope, *Binding) {
	return g.lookupFrom(g.current, name)
}

// LookupFrom resolves name starting at an arbitrary scope instead of the
// current one. Used by tooling that resolves names after the walk, from a
// scope recovered by position.
func (g *Graph) LookupFrom(start ScopeID, name string) (*Scope, *Binding) {
	return g.lookupFrom(start, name)
}

func (g *Graph) lookupFrom(start ScopeID, name string) (*Scope, *Binding) {
	visited := make(map[ScopeID]bool, len(g.scopes))
	queue := []ScopeID{start}
	visited[start] = true
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		s := g.Scope(id)
		if b, ok := s.Bindings[name]; ok {
			return s, b
		}
		for _, parent := range s.Parents {
			if !visited[parent] {
				visited[parent] = true
				queue = append(queue, parent)
			}
		}
	}
	return nil, nil
}

// IsDefined reports whether name resolves from the current scope.
func (g *Graph) IsDefined(name string) bool {
	_, b := g.Lookup(name)
	return b != nil
}

// MarkUsed flips the used flag on the first binding resolving name.
// Unresolved names are a no-op; the flag is idempotent.
func (g *Graph) MarkUsed(name string) {
	if _, b := g.Lookup(name); b != nil {
		b.Used = true
	}
}

// MarkMutated flips the mutated flag on the first binding resolving name.
func (g *Graph) MarkMutated(name string) {
	if _, b := g.Lookup(name); b != nil {
		b.Mutated = true
	}
}

// Depth returns the distance from id to ROOT along the primary-parent
// chain. Diagnostic use only.
func (g *Graph) Depth(id ScopeID) int {
	depth := 0
	for {
		parent := g.Scope(id).PrimaryParent()
		if parent == noScope {
			return depth
		}
		id = parent
		depth++
	}
}

// enterWithData is the shared body of the specialized enter methods.
func (g *Graph) enterWithData(kind ScopeKind, vueGlobal bool, data ScopeData, names []string, start, end int) ScopeID {
	var id ScopeID
	if vueGlobal {
		id = g.EnterScopeWithVueGlobal(kind)
	} else {
		id = g.EnterScope(kind)
	}
	s := g.Scope(id)
	s.Data = data
	s.Start = start
	s.End = end
	for _, name := range names {
		if name == "" {
			continue
		}
		s.Bindings[name] = &Binding{Type: BindSetupConst, DeclarationOffset: start}
	}
	return id
}

// EnterVForScope opens a loop scope binding the value, key, and index
// aliases. A destructuring value alias binds each pattern name.
// Template scopes see the vue-global scope.
func (g *Graph) EnterVForScope(data VForData, start, end int) ScopeID {
	var names []string
	for _, alias := range []string{data.ValueAlias, data.KeyAlias, data.IndexAlias} {
		if alias == "" {
			continue
		}
		names = append(names, aliasNames(alias)...)
	}
	return g.enterWithData(ScopeVFor, true, data, names, start, end)
}

// EnterVSlotScope opens a slot scope binding the destructured slot props.
func (g *Graph) EnterVSlotScope(data VSlotData, start, end int) ScopeID {
	return g.enterWithData(ScopeVSlot, true, data, data.PropNames, start, end)
}

// EnterEventHandlerScope opens a handler scope binding the handler's
// explicit parameters, plus $event when the handler form implies it.
func (g *Graph) EnterEventHandlerScope(data EventHandlerData, start, end int) ScopeID {
	names := data.ParamNames
	if data.HasImplicitEvent {
		names = append(append([]string{}, names...), "$event")
	}
	return g.enterWithData(ScopeEventHandler, true, data, names, start, end)
}

// EnterTemplateCallbackScope opens a callback scope for an inline arrow
// inside a template expression. It sees the vue-global scope.
func (g *Graph) EnterTemplateCallbackScope(data CallbackData, start, end int) ScopeID {
	return g.enterWithData(ScopeCallback, true, data, data.ParamNames, start, end)
}

// EnterScriptCallbackScope opens a callback scope for script code, which
// does not see the vue-global scope.
func (g *Graph) EnterScriptCallbackScope(data CallbackData, start, end int) ScopeID {
	return g.enterWithData(ScopeCallback, false, data, data.ParamNames, start, end)
}

// EnterModuleScope opens a module top-level scope.
func (g *Graph) EnterModuleScope(start, end int) ScopeID {
	return g.enterWithData(ScopeModule, false, nil, nil, start, end)
}

// EnterScriptSetupScope opens a <script setup> body scope.
func (g *Graph) EnterScriptSetupScope(start, end int) ScopeID {
	return g.enterWithData(ScopeScriptSetup, false, nil, nil, start, end)
}

// EnterNonScriptSetupScope opens an options-API script body scope.
func (g *Graph) EnterNonScriptSetupScope(start, end int) ScopeID {
	return g.enterWithData(ScopeNonScriptSetup, false, nil, nil, start, end)
}

// EnterUniversalScope opens a scope for code shared between runtimes.
func (g *Graph) EnterUniversalScope(start, end int) ScopeID {
	return g.enterWithData(ScopeUniversal, false, nil, nil, start, end)
}

// EnterClientOnlyScope opens a scope for a client-only hook body. Its
// parents are the current scope plus the nearest browser-globals scope,
// so browser names resolve inside it even when the surrounding code is
// universal.
func (g *Graph) EnterClientOnlyScope(data ClientOnlyData, start, end int) ScopeID {
	parents := []ScopeID{g.current}
	if g.browserGlobal != noScope && g.browserGlobal != g.current {
		parents = append(parents, g.browserGlobal)
	}
	s := g.appendScope(ScopeClientOnly, parents)
	s.Data = data
	s.Start = start
	s.End = end
	g.current = s.ID
	return s.ID
}

// EnterJsGlobalScope opens a globals scope for the given runtime,
// pre-seeded with that runtime's fixed name set.
func (g *Graph) EnterJsGlobalScope(rt Runtime, start, end int) ScopeID {
	names, bt, kind := globalNames(rt)
	id := g.enterWithData(kind, false, nil, nil, start, end)
	seedGlobals(g.Scope(id), names, bt)
	if rt == RuntimeBrowser {
		g.browserGlobal = id
	}
	return id
}

// EnterVueGlobalScope opens the vue-global scope and registers it as the
// additional parent used by EnterScopeWithVueGlobal.
func (g *Graph) EnterVueGlobalScope(start, end int) ScopeID {
	id := g.enterWithData(ScopeVueGlobal, false, nil, nil, start, end)
	s := g.Scope(id)
	for _, name := range vueGlobals {
		s.Bindings[name] = &Binding{Type: BindVueGlobal}
	}
	g.vueGlobal = id
	return id
}

// EnterExternalModuleScope opens a scope for an imported module.
func (g *Graph) EnterExternalModuleScope(start, end int) ScopeID {
	return g.enterWithData(ScopeExternalModule, false, nil, nil, start, end)
}

// EnterClosureScope opens a function closure scope binding its parameters.
func (g *Graph) EnterClosureScope(params []string, start, end int) ScopeID {
	return g.enterWithData(ScopeClosure, false, nil, params, start, end)
}

// EnterBlockScope opens a block statement scope.
func (g *Graph) EnterBlockScope(start, end int) ScopeID {
	return g.enterWithData(ScopeBlock, false, nil, nil, start, end)
}
