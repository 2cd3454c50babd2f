// Copyright © 2026 The Vize authors

package analysis

// jsGlobalsUniversal are the fixed ECMAScript global names seeded into
// every graph's ROOT scope.
var jsGlobalsUniversal = []string{
	"Array", "ArrayBuffer", "Atomics", "BigInt", "BigInt64Array",
	"BigUint64Array", "Boolean", "DataView", "Date", "Error", "EvalError",
	"FinalizationRegistry", "Float32Array", "Float64Array", "Infinity",
	"Int16Array", "Int32Array", "Int8Array", "Intl", "JSON", "Map", "Math",
	"NaN", "Number", "Object", "Promise", "Proxy", "RangeError",
	"ReferenceError", "Reflect", "RegExp", "Set", "SharedArrayBuffer",
	"String", "Symbol", "SyntaxError", "TypeError", "URIError",
	"Uint16Array", "Uint32Array", "Uint8Array", "Uint8ClampedArray",
	"WeakMap", "WeakRef", "WeakSet", "decodeURI", "decodeURIComponent",
	"encodeURI", "encodeURIComponent", "eval", "globalThis", "isFinite",
	"isNaN", "parseFloat", "parseInt", "structuredClone", "undefined",
	"AggregateError",
}

// jsGlobalsBrowser are names bound by a browser-runtime globals scope.
var jsGlobalsBrowser = []string{
	"window", "document", "navigator", "location", "history", "console",
	"localStorage", "sessionStorage", "fetch", "alert", "confirm", "prompt",
	"setTimeout", "setInterval", "clearTimeout", "clearInterval",
	"requestAnimationFrame", "cancelAnimationFrame", "queueMicrotask",
	"addEventListener", "removeEventListener", "dispatchEvent",
	"CustomEvent", "Event", "EventTarget", "HTMLElement", "Element", "Node",
	"MutationObserver", "IntersectionObserver", "ResizeObserver",
	"performance", "crypto", "URL", "URLSearchParams", "Blob", "File",
	"FileReader", "FormData", "Headers", "Request", "Response",
	"AbortController", "AbortSignal", "WebSocket", "Worker", "Image",
	"Audio", "matchMedia", "getComputedStyle", "screen", "devicePixelRatio",
	"innerWidth", "innerHeight", "scrollX", "scrollY", "TextEncoder",
	"TextDecoder", "DOMParser",
}

// jsGlobalsNode are names bound by a node-runtime globals scope.
var jsGlobalsNode = []string{
	"process", "global", "Buffer", "require", "module", "exports",
	"__dirname", "__filename", "setImmediate", "clearImmediate", "console",
	"setTimeout", "setInterval", "clearTimeout", "clearInterval",
	"queueMicrotask", "URL", "URLSearchParams", "TextEncoder",
	"TextDecoder", "AbortController", "AbortSignal", "performance",
	"fetch", "structuredClone",
}

// vueGlobals are component-instance properties reachable from template
// expressions through the vue-global scope.
var vueGlobals = []string{
	"$attrs", "$data", "$el", "$emit", "$forceUpdate", "$nextTick",
	"$options", "$parent", "$props", "$refs", "$root", "$slots", "$watch",
}

// builtinComponents are tags that always resolve as components.
var builtinComponents = map[string]bool{
	"Transition":      true,
	"TransitionGroup": true,
	"KeepAlive":       true,
	"Teleport":        true,
	"Suspense":        true,
	"component":       true,
}

// jsKeywords are expression-level keywords and literals that never need
// scope resolution.
var jsKeywords = map[string]bool{
	"true": true, "false": true, "null": true, "undefined": true,
	"this": true, "typeof": true, "instanceof": true, "in": true,
	"of": true, "new": true, "void": true, "delete": true, "function": true,
	"return": true, "if": true, "else": true, "async": true, "await": true,
	"yield": true, "as": true,
}

// eventLocals are names implicitly available inside event handler
// expressions regardless of explicit parameters.
var eventLocals = map[string]bool{
	"$event": true,
}

var jsGlobalUniversalSet = nameSet(jsGlobalsUniversal)

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// IsJsGlobal reports whether name is a fixed ECMAScript global.
func IsJsGlobal(name string) bool { return jsGlobalUniversalSet[name] }

// IsVueBuiltin reports whether tag is a built-in component.
func IsVueBuiltin(tag string) bool { return builtinComponents[tag] }

// IsKeyword reports whether name is an expression-level keyword.
func IsKeyword(name string) bool { return jsKeywords[name] }

// IsEventLocal reports whether name is implicitly bound inside event
// handler expressions.
func IsEventLocal(name string) bool { return eventLocals[name] }

// globalNames returns the fixed name set and binding type for a runtime.
func globalNames(rt Runtime) ([]string, BindingType, ScopeKind) {
	switch rt {
	case RuntimeBrowser:
		return jsGlobalsBrowser, BindJsGlobalBrowser, ScopeJsGlobalBrowser
	case RuntimeNode:
		return jsGlobalsNode, BindJsGlobalNode, ScopeJsGlobalNode
	default:
		return jsGlobalsUniversal, BindJsGlobalUniversal, ScopeJsGlobalUniversal
	}
}
