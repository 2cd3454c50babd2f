// Copyright © 2026 The Vize authors

// Package analysis provides scope-aware semantic analysis for component
// templates.
//
// The analyzer walks a parsed template tree once, builds a multi-parent
// scope graph as directives introduce bindings, classifies every
// identifier reference as defined or undefined, and collects structured
// facts (component usages, template expressions, undefined references)
// into a Croquis consumed by code generation, linting, and the IDE
// backend.
package analysis

import (
	"sort"

	"github.com/ushironoko/vize-sub001/template/ast"
)

// ScriptBindings is the name → classification map produced by the script
// extractor. The analyzer only queries membership; classifications are
// carried for downstream consumers (hover, codegen).
type ScriptBindings struct {
	byName map[string]BindingType
	setup  bool
}

// NewScriptBindings returns an empty binding map.
func NewScriptBindings(setup bool) *ScriptBindings {
	return &ScriptBindings{byName: make(map[string]BindingType), setup: setup}
}

// Add registers a declared name. Re-adding overwrites.
func (b *ScriptBindings) Add(name string, t BindingType) {
	b.byName[name] = t
}

// Contains reports whether name was declared in the script block.
func (b *ScriptBindings) Contains(name string) bool {
	if b == nil {
		return false
	}
	_, ok := b.byName[name]
	return ok
}

// Get returns name's classification.
func (b *ScriptBindings) Get(name string) (BindingType, bool) {
	if b == nil {
		return 0, false
	}
	t, ok := b.byName[name]
	return t, ok
}

// IsScriptSetup reports whether the source script block used setup mode.
func (b *ScriptBindings) IsScriptSetup() bool {
	return b != nil && b.setup
}

// Names returns the declared names in sorted order.
func (b *ScriptBindings) Names() []string {
	if b == nil {
		return nil
	}
	names := make([]string, 0, len(b.byName))
	for name := range b.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of declared names.
func (b *ScriptBindings) Len() int {
	if b == nil {
		return 0
	}
	return len(b.byName)
}

// Config controls one analysis run.
type Config struct {
	// Filename is the source file being analyzed (diagnostic labels only).
	Filename string

	// Bindings are names declared by the accompanying script block.
	Bindings *ScriptBindings

	// Components are explicitly registered component names.
	Components []string

	// Builtin predicate overrides. Nil fields use the static tables.
	IsJsGlobal   func(string) bool
	IsVueBuiltin func(string) bool
	IsKeyword    func(string) bool
	IsEventLocal func(string) bool
}

func (cfg *Config) isJsGlobal(name string) bool {
	if cfg.IsJsGlobal != nil {
		return cfg.IsJsGlobal(name)
	}
	return IsJsGlobal(name)
}

func (cfg *Config) isVueBuiltin(tag string) bool {
	if cfg.IsVueBuiltin != nil {
		return cfg.IsVueBuiltin(tag)
	}
	return IsVueBuiltin(tag)
}

func (cfg *Config) isKeyword(name string) bool {
	if cfg.IsKeyword != nil {
		return cfg.IsKeyword(name)
	}
	return IsKeyword(name)
}

func (cfg *Config) isEventLocal(name string) bool {
	if cfg.IsEventLocal != nil {
		return cfg.IsEventLocal(name)
	}
	return IsEventLocal(name)
}

// Analyze performs semantic analysis on a parsed template. The graph is
// created fresh, mutated during a single traversal, and frozen inside
// the returned Croquis. Analyze never fails: malformed expressions and
// unresolved names surface as diagnostic entries.
func Analyze(root *ast.Root, cfg *Config) *Croquis {
	if cfg == nil {
		cfg = &Config{}
	}

	g := NewGraphWithCapacity(32)

	// Template code executes in a browser runtime with the component
	// instance's vue globals reachable, inside the module's script scope.
	end := 0
	if root != nil {
		end = root.Loc.End
	}
	g.EnterJsGlobalScope(RuntimeBrowser, 0, end)
	g.EnterVueGlobalScope(0, end)
	g.EnterModuleScope(0, end)
	if cfg.Bindings.IsScriptSetup() {
		g.EnterScriptSetupScope(0, end)
	} else {
		g.EnterNonScriptSetupScope(0, end)
	}

	w := &walker{
		graph: g,
		cfg:   cfg,
		res:   &Croquis{Scopes: g},
		components: func() map[string]bool {
			set := make(map[string]bool, len(cfg.Components))
			for _, name := range cfg.Components {
				set[name] = true
			}
			return set
		}(),
	}
	if root != nil {
		w.visitNodes(root.Children)
	}
	return w.res
}
