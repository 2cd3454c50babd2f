// Copyright © 2026 The Vize authors

package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ushironoko/vize-sub001/analysis"
)

func extractSetup(t *testing.T, src string, lang Lang) *analysis.ScriptBindings {
	t.Helper()
	b, err := ExtractSetup(context.Background(), []byte(src), lang)
	require.NoError(t, err)
	return b
}

func assertBinding(t *testing.T, b *analysis.ScriptBindings, name string, want analysis.BindingType) {
	t.Helper()
	got, ok := b.Get(name)
	require.True(t, ok, "missing binding %q (have %v)", name, b.Names())
	assert.Equal(t, want, got, "binding %q", name)
}

func TestExtractSetup_Declarations(t *testing.T) {
	src := `
import { ref, reactive, computed } from 'vue'
import axios from 'axios'
import * as utils from './utils'
import { format as fmt } from './format'

const count = ref(0)
const user = reactive({ name: '' })
const doubled = computed(() => count.value * 2)
const title = 'hello'
let attempts = 0
var legacy = true
const { data, error } = useFetch('/api')
const handle = (e) => e.preventDefault()
function reload() {}
class Store {}
export const shared = ref(1)
`
	b := extractSetup(t, src, LangJS)

	assertBinding(t, b, "ref", analysis.BindImported)
	assertBinding(t, b, "reactive", analysis.BindImported)
	assertBinding(t, b, "computed", analysis.BindImported)
	assertBinding(t, b, "axios", analysis.BindImported)
	assertBinding(t, b, "utils", analysis.BindImported)
	assertBinding(t, b, "fmt", analysis.BindImported)

	assertBinding(t, b, "count", analysis.BindSetupRef)
	assertBinding(t, b, "user", analysis.BindSetupReactive)
	assertBinding(t, b, "doubled", analysis.BindSetupRef)
	assertBinding(t, b, "title", analysis.BindSetupConst)
	assertBinding(t, b, "attempts", analysis.BindSetupLet)
	assertBinding(t, b, "legacy", analysis.BindSetupLet)

	assertBinding(t, b, "data", analysis.BindSetupMaybeRef)
	assertBinding(t, b, "error", analysis.BindSetupMaybeRef)

	assertBinding(t, b, "handle", analysis.BindSetupConst)
	assertBinding(t, b, "reload", analysis.BindSetupConst)
	assertBinding(t, b, "Store", analysis.BindSetupConst)
	assertBinding(t, b, "shared", analysis.BindSetupRef)

	assert.True(t, b.IsScriptSetup())
	assert.False(t, b.Contains("format"), "aliased import binds the alias, not the source name")
}

func TestExtractSetup_CompilerMacros(t *testing.T) {
	src := `
const props = defineProps({ label: String })
const emit = defineEmits(['select'])
const model = defineModel()
`
	b := extractSetup(t, src, LangJS)
	assertBinding(t, b, "props", analysis.BindProps)
	assertBinding(t, b, "emit", analysis.BindSetupConst)
	assertBinding(t, b, "model", analysis.BindSetupRef)
}

func TestExtractSetup_TypeScript(t *testing.T) {
	src := `
interface Props { label: string }
const props = withDefaults(defineProps<Props>(), { label: 'x' })
const items = ref<string[]>([])
let cursor: number = 0
`
	b := extractSetup(t, src, LangTS)
	assertBinding(t, b, "props", analysis.BindProps)
	assertBinding(t, b, "items", analysis.BindSetupRef)
	assertBinding(t, b, "cursor", analysis.BindSetupLet)
}

func TestExtractSetup_AwaitedComposable(t *testing.T) {
	src := `const session = await loadSession()`
	b := extractSetup(t, src, LangJS)
	assertBinding(t, b, "session", analysis.BindSetupMaybeRef)
}

func TestExtractOptions(t *testing.T) {
	src := `
export default {
  props: {
    label: String,
    size: { type: Number, default: 1 },
  },
  data() {
    return { count: 0, open: false }
  },
  computed: {
    doubled() { return this.count * 2 },
  },
  methods: {
    reset() { this.count = 0 },
  },
}
`
	b, err := ExtractOptions(context.Background(), []byte(src), LangJS)
	require.NoError(t, err)

	assertBinding(t, b, "label", analysis.BindProps)
	assertBinding(t, b, "size", analysis.BindProps)
	assertBinding(t, b, "count", analysis.BindSetupLet)
	assertBinding(t, b, "open", analysis.BindSetupLet)
	assertBinding(t, b, "doubled", analysis.BindSetupRef)
	assertBinding(t, b, "reset", analysis.BindSetupConst)
	assert.False(t, b.IsScriptSetup())
}

func TestExtractOptions_ArrayPropsAndDefineComponent(t *testing.T) {
	src := `
import { defineComponent } from 'vue'
export default defineComponent({
  props: ['value', 'disabled'],
  methods: {
    toggle() {},
  },
})
`
	b, err := ExtractOptions(context.Background(), []byte(src), LangJS)
	require.NoError(t, err)
	assertBinding(t, b, "value", analysis.BindProps)
	assertBinding(t, b, "disabled", analysis.BindProps)
	assertBinding(t, b, "toggle", analysis.BindSetupConst)
}

func TestExtractOptions_NoDefaultExport(t *testing.T) {
	b, err := ExtractOptions(context.Background(), []byte(`const x = 1`), LangJS)
	require.NoError(t, err)
	assert.Zero(t, b.Len())
}

func TestLangForAttr(t *testing.T) {
	assert.Equal(t, LangJS, LangForAttr(""))
	assert.Equal(t, LangJS, LangForAttr("js"))
	assert.Equal(t, LangTS, LangForAttr("ts"))
	assert.Equal(t, LangTS, LangForAttr(" TS "))
	assert.Equal(t, LangTSX, LangForAttr("tsx"))
}
