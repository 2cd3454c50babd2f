// Copyright © 2026 The Vize authors

package analysis

// BindingType classifies how a name was declared. The same enum is shared
// by the script extractor (for script-block declarations) and the scope
// graph (for template-local and global bindings).
type BindingType int

const (
	BindSetupRef BindingType = iota // const x = ref(...)
	BindSetupConst                  // plain const, and all template-introduced names
	BindSetupLet                    // let / var
	BindSetupReactive               // const x = reactive(...)
	BindSetupMaybeRef               // value of unknown ref-ness (e.g. function result)
	BindProps                       // defineProps member
	BindImported                    // import binding
	BindVueGlobal                   // $emit, $slots, ...
	BindJsGlobalUniversal           // ECMAScript standard globals
	BindJsGlobalBrowser             // window, document, ...
	BindJsGlobalNode                // process, Buffer, ...
)

func (t BindingType) String() string {
	switch t {
	case BindSetupRef:
		return "setup-ref"
	case BindSetupConst:
		return "setup-const"
	case BindSetupLet:
		return "setup-let"
	case BindSetupReactive:
		return "setup-reactive"
	case BindSetupMaybeRef:
		return "setup-maybe-ref"
	case BindProps:
		return "props"
	case BindImported:
		return "imported"
	case BindVueGlobal:
		return "vue-global"
	case BindJsGlobalUniversal:
		return "js-global"
	case BindJsGlobalBrowser:
		return "js-global-browser"
	case BindJsGlobalNode:
		return "js-global-node"
	default:
		return "unknown"
	}
}

// Binding is one declared name inside a scope.
type Binding struct {
	Type              BindingType
	DeclarationOffset int
	Used              bool
	Mutated           bool
}
