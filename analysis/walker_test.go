// Copyright © 2026 The Vize authors

package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ushironoko/vize-sub001/template/parser"
)

// analyzeSrc is a test helper that parses a template and runs analysis
// with the given script bindings.
func analyzeSrc(t *testing.T, src string, bindings map[string]BindingType) *Croquis {
	t.Helper()
	root, errs := parser.Parse([]byte(src))
	require.Empty(t, errs, "template must parse cleanly")

	sb := NewScriptBindings(true)
	for name, bt := range bindings {
		sb.Add(name, bt)
	}
	return Analyze(root, &Config{Filename: "test.vue", Bindings: sb})
}

func undefinedNames(c *Croquis) []string {
	var names []string
	for _, ref := range c.UndefinedRefs {
		names = append(names, ref.Name)
	}
	return names
}

func scopesOfKind(c *Croquis, kind ScopeKind) []*Scope {
	var scopes []*Scope
	for i := 0; i < c.Scopes.Len(); i++ {
		if s := c.Scopes.Scope(ScopeID(i)); s.Kind == kind {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

func TestAnalyze_VForResolvesAliases(t *testing.T) {
	// Scenario: the loop alias is visible to :key and the interpolation,
	// the source comes from script bindings, nothing is undefined.
	src := `<div v-for="item in items"><span :key="item.id">{{ item.name }}</span></div>`
	c := analyzeSrc(t, src, map[string]BindingType{"items": BindSetupRef})

	assert.Empty(t, c.UndefinedRefs, "got undefined refs: %v", undefinedNames(c))

	vfors := scopesOfKind(c, ScopeVFor)
	require.Len(t, vfors, 1)
	assert.Contains(t, vfors[0].Bindings, "item")
	assert.Len(t, vfors[0].Bindings, 1)

	data, ok := vfors[0].Data.(VForData)
	require.True(t, ok)
	assert.Equal(t, "item", data.ValueAlias)
	assert.Equal(t, "items", data.Source)
}

func TestAnalyze_UndefinedCountedPerOccurrence(t *testing.T) {
	// A handler mutation and an interpolation of the same unknown name
	// report two separate refs.
	src := `<button @click="count++">{{ count }}</button>`
	c := analyzeSrc(t, src, nil)

	require.Len(t, c.UndefinedRefs, 2)
	assert.Equal(t, "count", c.UndefinedRefs[0].Name)
	assert.Equal(t, "count", c.UndefinedRefs[1].Name)
	assert.NotEqual(t, c.UndefinedRefs[0].Offset, c.UndefinedRefs[1].Offset)
}

func TestAnalyze_InlineArrowHandlerInsideVFor(t *testing.T) {
	src := `<ul><li v-for="item in items"><a @click="(e) => handle(e, item)">x</a></li></ul>`
	c := analyzeSrc(t, src, map[string]BindingType{
		"items":  BindSetupRef,
		"handle": BindSetupConst,
	})
	assert.Empty(t, c.UndefinedRefs, "got undefined refs: %v", undefinedNames(c))

	handlers := scopesOfKind(c, ScopeEventHandler)
	require.Len(t, handlers, 1)
	data := handlers[0].Data.(EventHandlerData)
	assert.Equal(t, []string{"e"}, data.ParamNames)
	assert.False(t, data.HasImplicitEvent, "an arrow declares its own parameter list")
	assert.Contains(t, handlers[0].Bindings, "e")
	assert.NotContains(t, handlers[0].Bindings, "$event")
}

func TestAnalyze_BareHandlerReferenceGetsNoScope(t *testing.T) {
	src := `<button @click="doThing">x</button>`
	c := analyzeSrc(t, src, map[string]BindingType{"doThing": BindSetupConst})

	assert.Empty(t, c.UndefinedRefs)
	assert.Empty(t, scopesOfKind(c, ScopeEventHandler),
		"a plain method reference must not open an event-handler scope")
}

func TestAnalyze_StatementHandlerSynthesizesEvent(t *testing.T) {
	src := `<button @click="emit('pick', $event)">x</button>`
	c := analyzeSrc(t, src, map[string]BindingType{"emit": BindSetupConst})

	assert.Empty(t, c.UndefinedRefs, "got undefined refs: %v", undefinedNames(c))
	handlers := scopesOfKind(c, ScopeEventHandler)
	require.Len(t, handlers, 1)
	assert.True(t, handlers[0].Data.(EventHandlerData).HasImplicitEvent)
	assert.Contains(t, handlers[0].Bindings, "$event")
}

func TestAnalyze_EventLocalOverride(t *testing.T) {
	// An IsEventLocal override can admit extra handler-only names, but
	// they must stay undefined outside an event-handler scope.
	src := `<button @click="track($modifiers)">{{ $modifiers }}</button>`
	root, errs := parser.Parse([]byte(src))
	require.Empty(t, errs, "template must parse cleanly")

	sb := NewScriptBindings(true)
	sb.Add("track", BindSetupConst)
	c := Analyze(root, &Config{
		Filename: "test.vue",
		Bindings: sb,
		IsEventLocal: func(name string) bool {
			return name == "$event" || name == "$modifiers"
		},
	})

	require.Len(t, c.UndefinedRefs, 1, "got undefined refs: %v", undefinedNames(c))
	assert.Equal(t, "$modifiers", c.UndefinedRefs[0].Name)
	assert.Equal(t, "interpolation", c.UndefinedRefs[0].Context)
}

func TestAnalyze_EmptyArrowSuppressesImplicitEvent(t *testing.T) {
	// No parens in "() => reload" is irrelevant: the arrow declares an
	// empty parameter list, so $event must not appear.
	src := `<button @click="() => reload()">x</button>`
	c := analyzeSrc(t, src, map[string]BindingType{"reload": BindSetupConst})

	handlers := scopesOfKind(c, ScopeEventHandler)
	require.Len(t, handlers, 1)
	assert.False(t, handlers[0].Data.(EventHandlerData).HasImplicitEvent)
	assert.NotContains(t, handlers[0].Bindings, "$event")
}

func TestAnalyze_VSlotProps(t *testing.T) {
	src := `<DataTable><template #row="{ item, index }">{{ item.name }} {{ index }}</template></DataTable>`
	c := analyzeSrc(t, src, nil)

	assert.Empty(t, c.UndefinedRefs, "got undefined refs: %v", undefinedNames(c))
	slots := scopesOfKind(c, ScopeVSlot)
	require.Len(t, slots, 1)
	data := slots[0].Data.(VSlotData)
	assert.Equal(t, "row", data.Name)
	assert.Equal(t, "{ item, index }", data.PropsPattern)
	assert.ElementsMatch(t, []string{"item", "index"}, data.PropNames)
}

func TestAnalyze_VueGlobalsResolve(t *testing.T) {
	src := `<button @click="$emit('close')">{{ $slots.default ? 'x' : 'y' }}</button>`
	c := analyzeSrc(t, src, nil)
	assert.Empty(t, c.UndefinedRefs, "got undefined refs: %v", undefinedNames(c))
}

func TestAnalyze_JsGlobalsAndKeywords(t *testing.T) {
	src := `{{ typeof value === 'string' ? JSON.stringify(value) : String(value) }}`
	c := analyzeSrc(t, src, map[string]BindingType{"value": BindProps})
	assert.Empty(t, c.UndefinedRefs, "got undefined refs: %v", undefinedNames(c))
}

func TestAnalyze_TemplateIfChainGuards(t *testing.T) {
	src := `<template v-if="ready"><p>{{ user.name }}</p></template>` +
		`<template v-else-if="loading"><p>wait</p></template>` +
		`<template v-else><p>nothing</p></template>`
	c := analyzeSrc(t, src, map[string]BindingType{
		"ready":   BindSetupRef,
		"loading": BindSetupRef,
		"user":    BindSetupReactive,
	})
	assert.Empty(t, c.UndefinedRefs, "got undefined refs: %v", undefinedNames(c))

	var guarded []TemplateExpression
	for _, te := range c.TemplateExpressions {
		if te.Guarded {
			guarded = append(guarded, te)
		}
	}
	require.NotEmpty(t, guarded)
	assert.Equal(t, "user.name", guarded[0].Content)
	assert.Equal(t, "ready", guarded[0].VIfGuard)
}

func TestAnalyze_ElementVIfGuardsChildren(t *testing.T) {
	src := `<div v-if="visible">{{ detail }}</div>`
	c := analyzeSrc(t, src, map[string]BindingType{
		"visible": BindSetupRef,
		"detail":  BindSetupRef,
	})
	require.Empty(t, c.UndefinedRefs)

	var interp *TemplateExpression
	for i := range c.TemplateExpressions {
		if c.TemplateExpressions[i].Kind == ExprInterpolation {
			interp = &c.TemplateExpressions[i]
		}
	}
	require.NotNil(t, interp)
	assert.True(t, interp.Guarded)
	assert.Equal(t, "visible", interp.VIfGuard)

	// The condition expression itself is not guarded by itself.
	for _, te := range c.TemplateExpressions {
		if te.Kind == ExprIf {
			assert.False(t, te.Guarded)
		}
	}
}

func TestAnalyze_TemplateForDesugared(t *testing.T) {
	src := `<template v-for="(row, i) in rows"><td :key="i">{{ row.label }}</td></template>`
	c := analyzeSrc(t, src, map[string]BindingType{"rows": BindSetupRef})

	assert.Empty(t, c.UndefinedRefs, "got undefined refs: %v", undefinedNames(c))
	vfors := scopesOfKind(c, ScopeVFor)
	require.Len(t, vfors, 1)
	data := vfors[0].Data.(VForData)
	assert.Equal(t, "row", data.ValueAlias)
	assert.Equal(t, "i", data.KeyAlias)
	assert.Equal(t, "rows", data.Source)
}

func TestAnalyze_NestedVForShadowing(t *testing.T) {
	src := `<div v-for="item in items"><span v-for="item in item.children">{{ item.id }}</span></div>`
	c := analyzeSrc(t, src, map[string]BindingType{"items": BindSetupRef})

	assert.Empty(t, c.UndefinedRefs, "got undefined refs: %v", undefinedNames(c))
	assert.Len(t, scopesOfKind(c, ScopeVFor), 2)
}

func TestAnalyze_KeyExpressionOnLoopMetadata(t *testing.T) {
	// The :key is captured in the first directive pass, before the
	// v-for scope exists, yet resolves inside it afterwards.
	src := `<li v-for="item in items" :key="item.id">{{ item.name }}</li>`
	c := analyzeSrc(t, src, map[string]BindingType{"items": BindSetupRef})

	assert.Empty(t, c.UndefinedRefs, "got undefined refs: %v", undefinedNames(c))
	vfors := scopesOfKind(c, ScopeVFor)
	require.Len(t, vfors, 1)
	assert.Equal(t, "item.id", vfors[0].Data.(VForData).KeyExpression)
}

func TestAnalyze_ComponentUsage(t *testing.T) {
	src := `<UserCard :user="currentUser" size="large" @select="onSelect">` +
		`<template #footer="{ meta }">{{ meta }}</template>` +
		`</UserCard>`
	c := analyzeSrc(t, src, map[string]BindingType{
		"currentUser": BindSetupRef,
		"onSelect":    BindSetupConst,
	})
	assert.Empty(t, c.UndefinedRefs, "got undefined refs: %v", undefinedNames(c))

	require.Len(t, c.ComponentUsages, 1)
	cu := c.ComponentUsages[0]
	assert.Equal(t, "UserCard", cu.Name)

	require.Len(t, cu.Props, 2)
	assert.Equal(t, "user", cu.Props[0].Name)
	assert.True(t, cu.Props[0].IsDynamic)
	assert.Equal(t, "size", cu.Props[1].Name)
	assert.False(t, cu.Props[1].IsDynamic)

	require.Len(t, cu.Events, 1)
	assert.Equal(t, "select", cu.Events[0].Name)
	assert.Equal(t, "onSelect", cu.Events[0].Handler)

	require.Len(t, cu.Slots, 1)
	assert.Equal(t, "footer", cu.Slots[0].Name)
	assert.Equal(t, "{ meta }", cu.Slots[0].PropsPattern)
}

func TestAnalyze_ComponentScopeCapturedAfterLoopEntry(t *testing.T) {
	src := `<Badge v-for="tag in tags" :key="tag" :label="tag" />`
	c := analyzeSrc(t, src, map[string]BindingType{"tags": BindSetupRef})

	assert.Empty(t, c.UndefinedRefs, "got undefined refs: %v", undefinedNames(c))
	require.Len(t, c.ComponentUsages, 1)
	scope := c.Scopes.Scope(c.ComponentUsages[0].ScopeID)
	assert.Equal(t, ScopeVFor, scope.Kind,
		"usage must record the innermost scope so prop expressions resolve")
}

func TestAnalyze_RegisteredAndBuiltinComponents(t *testing.T) {
	root, errs := parser.Parse([]byte(`<my-widget :x="1" /><Teleport to="#app">z</Teleport>`))
	require.Empty(t, errs)
	c := Analyze(root, &Config{
		Bindings:   NewScriptBindings(true),
		Components: []string{"my-widget"},
	})

	require.Len(t, c.ComponentUsages, 2)
	assert.Equal(t, "my-widget", c.ComponentUsages[0].Name)
	assert.Equal(t, "Teleport", c.ComponentUsages[1].Name)
}

func TestAnalyze_ElementIDs(t *testing.T) {
	src := `<label for="name-input">Name</label>` +
		`<input id="name-input" aria-describedby="name-hint">` +
		`<li v-for="f in fields"><input :id="f.id"></li>`
	c := analyzeSrc(t, src, map[string]BindingType{"fields": BindSetupRef})

	require.Len(t, c.ElementIDs, 4)

	assert.Equal(t, "for", c.ElementIDs[0].Kind)
	assert.True(t, c.ElementIDs[0].IsStatic)
	assert.False(t, c.ElementIDs[0].InLoop)

	assert.Equal(t, "id", c.ElementIDs[1].Kind)
	assert.Equal(t, "name-input", c.ElementIDs[1].Value)

	assert.Equal(t, "aria-describedby", c.ElementIDs[2].Kind)

	assert.Equal(t, "id", c.ElementIDs[3].Kind)
	assert.False(t, c.ElementIDs[3].IsStatic)
	assert.True(t, c.ElementIDs[3].InLoop)
}

func TestAnalyze_UnusedTemplateVars(t *testing.T) {
	src := `<div v-for="(item, index) in items">{{ item.name }}</div>`
	c := analyzeSrc(t, src, map[string]BindingType{"items": BindSetupRef})

	unused := c.UnusedTemplateVars()
	require.Len(t, unused, 1)
	assert.Equal(t, "index", unused[0].Name)
	assert.Equal(t, ScopeVFor, unused[0].Kind)
}

func TestAnalyze_ModelMarksMutated(t *testing.T) {
	// v-model targets live in the graph only when declared there, so run
	// the walker over a hand-seeded module binding.
	src := `<input v-model="query">`
	root, errs := parser.Parse([]byte(src))
	require.Empty(t, errs)

	g := NewGraph()
	module := g.EnterModuleScope(0, len(src))
	g.AddBinding(module, "query", Binding{Type: BindSetupRef})
	w := &walker{graph: g, cfg: &Config{Bindings: NewScriptBindings(true)}, res: &Croquis{Scopes: g}, components: map[string]bool{}}
	w.visitNodes(root.Children)

	_, b := g.Lookup("query")
	require.NotNil(t, b)
	assert.True(t, b.Mutated)
	assert.True(t, b.Used)
}

func TestAnalyze_InlineArrowBindOpensCallbackScope(t *testing.T) {
	src := `<Chart :formatter="(v) => v.toFixed(digits)" />`
	c := analyzeSrc(t, src, map[string]BindingType{"digits": BindSetupRef})

	assert.Empty(t, c.UndefinedRefs, "got undefined refs: %v", undefinedNames(c))
	callbacks := scopesOfKind(c, ScopeCallback)
	require.Len(t, callbacks, 1)
	assert.Equal(t, []string{"v"}, callbacks[0].Data.(CallbackData).ParamNames)

	// The callback scope is short-lived: nothing after the expression
	// stays inside it.
	assert.NotEqual(t, callbacks[0].ID, c.Scopes.Current())
}

func TestAnalyze_MalformedVForReported(t *testing.T) {
	src := `<div v-for="items">x</div>`
	c := analyzeSrc(t, src, map[string]BindingType{"items": BindSetupRef})

	require.Len(t, c.UndefinedRefs, 1)
	assert.Contains(t, c.UndefinedRefs[0].Context, "malformed v-for")
	assert.Empty(t, scopesOfKind(c, ScopeVFor))
}

func TestAnalyze_OneBadExpressionDoesNotAbort(t *testing.T) {
	src := `<p>{{ missing }}</p><p>{{ present }}</p>`
	c := analyzeSrc(t, src, map[string]BindingType{"present": BindSetupRef})

	require.Len(t, c.UndefinedRefs, 1)
	assert.Equal(t, "missing", c.UndefinedRefs[0].Name)
	assert.Len(t, c.TemplateExpressions, 2, "analysis continues past the bad expression")
}

func TestAnalyze_TemplateExpressionKinds(t *testing.T) {
	src := `<div v-show="open" :title="hint">{{ label }}</div>`
	c := analyzeSrc(t, src, map[string]BindingType{
		"open": BindSetupRef, "hint": BindSetupRef, "label": BindSetupRef,
	})
	require.Len(t, c.TemplateExpressions, 3)

	kinds := map[ExprKind]string{}
	for _, te := range c.TemplateExpressions {
		kinds[te.Kind] = te.Content
	}
	assert.Equal(t, "open", kinds[ExprShow])
	assert.Equal(t, "hint", kinds[ExprBind])
	assert.Equal(t, "label", kinds[ExprInterpolation])
}

func TestAnalyze_FreshGraphPerRun(t *testing.T) {
	src := `<div v-for="x in xs">{{ x }}</div>`
	c1 := analyzeSrc(t, src, map[string]BindingType{"xs": BindSetupRef})
	c2 := analyzeSrc(t, src, map[string]BindingType{"xs": BindSetupRef})

	assert.NotSame(t, c1.Scopes, c2.Scopes)
	assert.Equal(t, c1.Scopes.Len(), c2.Scopes.Len())
}
