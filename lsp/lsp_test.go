// Copyright © 2026 The Vize authors

package lsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	"github.com/ushironoko/vize-sub001/diagnostic"
	"github.com/ushironoko/vize-sub001/lint"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const sampleComponent = `<template>
  <div id="app">
    <ul>
      <li v-for="(item, index) in items" :key="item.id">
        {{ item.name }} #{{ index }}
      </li>
    </ul>
  </div>
</template>
<script setup>
const items = []
</script>
`

const brokenComponent = `<template>
  <p>{{ missing }}</p>
</template>
<script setup>
const items = []
</script>
`

// mockContext returns a minimal glsp.Context for testing.
func mockContext() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {},
	}
}

// capturingContext returns a context that captures published diagnostics.
func capturingContext() (*glsp.Context, *[]*protocol.PublishDiagnosticsParams) {
	var captured []*protocol.PublishDiagnosticsParams
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				captured = append(captured, params.(*protocol.PublishDiagnosticsParams))
			}
		},
	}
	return ctx, &captured
}

// openComponent opens a component in a fresh server and returns both.
func openComponent(t *testing.T, content string) (*Server, *Document) {
	t.Helper()
	s := New()
	s.captureNotify(mockContext())
	doc := s.docs.Open("file:///test.vue", 1, content)
	require.NotNil(t, doc)
	return s, doc
}

// posOf returns the 0-based LSP position of the first occurrence of
// substr in content, offset by extra bytes.
func posOf(t *testing.T, content, substr string, extra int) protocol.Position {
	t.Helper()
	i := strings.Index(content, substr)
	require.GreaterOrEqual(t, i, 0, "substring %q not found", substr)
	lines := diagnostic.NewLineIndex([]byte(content))
	return offsetToPosition(lines, i+extra)
}

// completionLabels extracts labels from a completion result.
func completionLabels(t *testing.T, result any) []string {
	t.Helper()
	require.NotNil(t, result, "completion result should not be nil")
	items, ok := result.([]protocol.CompletionItem)
	require.True(t, ok, "completion result should be []CompletionItem, got %T", result)
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}
	return labels
}

// --- Position conversion tests ---

func TestOffsetPositionRoundTrip(t *testing.T) {
	lines := diagnostic.NewLineIndex([]byte("ab\ncdef\ng"))
	t.Run("start of file", func(t *testing.T) {
		pos := offsetToPosition(lines, 0)
		assert.Equal(t, protocol.UInteger(0), pos.Line)
		assert.Equal(t, protocol.UInteger(0), pos.Character)
	})
	t.Run("second line", func(t *testing.T) {
		pos := offsetToPosition(lines, 5)
		assert.Equal(t, protocol.UInteger(1), pos.Line)
		assert.Equal(t, protocol.UInteger(2), pos.Character)
	})
	t.Run("inverse", func(t *testing.T) {
		for _, offset := range []int{0, 2, 3, 5, 8} {
			pos := offsetToPosition(lines, offset)
			assert.Equal(t, offset, positionToOffset(lines, pos))
		}
	})
}

func TestSpanRange(t *testing.T) {
	lines := diagnostic.NewLineIndex([]byte("ab\ncdef"))
	t.Run("normal span", func(t *testing.T) {
		r := spanRange(lines, 3, 7)
		assert.Equal(t, protocol.UInteger(1), r.Start.Line)
		assert.Equal(t, protocol.UInteger(0), r.Start.Character)
		assert.Equal(t, protocol.UInteger(4), r.End.Character)
	})
	t.Run("zero width", func(t *testing.T) {
		r := spanRange(lines, 4, 4)
		assert.Equal(t, r.Start, r.End)
	})
	t.Run("inverted clamps to start", func(t *testing.T) {
		r := spanRange(lines, 4, 2)
		assert.Equal(t, r.Start, r.End)
	})
}

// --- Word extraction tests ---

func TestWordAt(t *testing.T) {
	content := `{{ item.name }} @click="$emit('close')"`
	t.Run("start of word", func(t *testing.T) {
		word, start := wordAt(content, 3)
		assert.Equal(t, "item", word)
		assert.Equal(t, 3, start)
	})
	t.Run("middle of word", func(t *testing.T) {
		word, _ := wordAt(content, 5)
		assert.Equal(t, "item", word)
	})
	t.Run("end of word", func(t *testing.T) {
		word, start := wordAt(content, 7)
		assert.Equal(t, "item", word)
		assert.Equal(t, 3, start)
	})
	t.Run("member access splits", func(t *testing.T) {
		word, _ := wordAt(content, 9)
		assert.Equal(t, "name", word)
	})
	t.Run("dollar prefix", func(t *testing.T) {
		i := strings.Index(content, "$emit")
		word, _ := wordAt(content, i+1)
		assert.Equal(t, "$emit", word)
	})
	t.Run("on delimiter", func(t *testing.T) {
		word, _ := wordAt(content, 0)
		assert.Equal(t, "", word)
	})
	t.Run("out of bounds", func(t *testing.T) {
		word, _ := wordAt(content, -1)
		assert.Equal(t, "", word)
		word, _ = wordAt(content, len(content)+1)
		assert.Equal(t, "", word)
	})
}

func TestIdentOffsets(t *testing.T) {
	t.Run("whole identifiers only", func(t *testing.T) {
		assert.Equal(t, []int{0}, identOffsets("item in items", "item"))
		assert.Equal(t, []int{8}, identOffsets("item in items", "items"))
	})
	t.Run("member access counts", func(t *testing.T) {
		assert.Equal(t, []int{0, 10}, identOffsets("item.id + item.name", "item"))
	})
	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, identOffsets("itemize", "item"))
	})
}

// --- Document store tests ---

func TestDocumentStore(t *testing.T) {
	t.Run("Open", func(t *testing.T) {
		store := NewDocumentStore()
		doc := store.Open("file:///test.vue", 1, sampleComponent)
		require.NotNil(t, doc)
		assert.Equal(t, sampleComponent, doc.Content)
		require.NotNil(t, doc.file)
		assert.NotNil(t, doc.file.Template)
	})
	t.Run("Get", func(t *testing.T) {
		store := NewDocumentStore()
		store.Open("file:///test.vue", 1, sampleComponent)
		require.NotNil(t, store.Get("file:///test.vue"))
		assert.Nil(t, store.Get("file:///other.vue"))
	})
	t.Run("Change clears analysis", func(t *testing.T) {
		store := NewDocumentStore()
		doc := store.Open("file:///test.vue", 1, sampleComponent)
		doc.analyzed = true
		changed := store.Change("file:///test.vue", 2, brokenComponent)
		assert.Equal(t, int32(2), changed.Version)
		assert.Equal(t, brokenComponent, changed.Content)
		assert.False(t, changed.analyzed)
		assert.Nil(t, changed.croquis)
	})
	t.Run("Close", func(t *testing.T) {
		store := NewDocumentStore()
		store.Open("file:///test.vue", 1, sampleComponent)
		store.Close("file:///test.vue")
		assert.Nil(t, store.Get("file:///test.vue"))
	})
}

func TestDocumentAnalyze(t *testing.T) {
	s, doc := openComponent(t, sampleComponent)
	s.ensureAnalysis(doc)

	require.NotNil(t, doc.croquis)
	require.NotNil(t, doc.bindings)
	assert.True(t, doc.bindings.Contains("items"))
	assert.True(t, doc.bindings.IsScriptSetup())
	assert.Empty(t, doc.croquis.UndefinedRefs)
}

func TestDocumentWithoutTemplate(t *testing.T) {
	s, doc := openComponent(t, "<script setup>\nconst x = 1\n</script>\n")
	s.ensureAnalysis(doc)
	assert.Nil(t, doc.croquis)
	assert.True(t, doc.analyzed)
}

// --- Diagnostics tests ---

func TestDiagnosticsOnOpen_CleanComponent(t *testing.T) {
	s := New()
	ctx, captured := capturingContext()

	err := s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        "file:///test.vue",
			LanguageID: "vue",
			Version:    1,
			Text:       sampleComponent,
		},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	pub := (*captured)[0]
	assert.Equal(t, "file:///test.vue", pub.URI)
	assert.Empty(t, pub.Diagnostics)
}

func TestDiagnosticsOnOpen_UndefinedRef(t *testing.T) {
	s := New()
	ctx, captured := capturingContext()

	err := s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:     "file:///test.vue",
			Version: 1,
			Text:    brokenComponent,
		},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	pub := (*captured)[0]
	require.Len(t, pub.Diagnostics, 1)

	d := pub.Diagnostics[0]
	assert.Contains(t, d.Message, "missing")
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	require.NotNil(t, d.Code)
	assert.Equal(t, "undefined-ref", d.Code.Value)
	assert.Equal(t, posOf(t, brokenComponent, "missing", 0), d.Range.Start)
	assert.Equal(t, posOf(t, brokenComponent, "missing", len("missing")), d.Range.End)
}

func TestDiagnosticsOnClose_Cleared(t *testing.T) {
	s := New()
	openCtx, _ := capturingContext()

	err := s.textDocumentDidOpen(openCtx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:     "file:///test.vue",
			Version: 1,
			Text:    brokenComponent,
		},
	})
	require.NoError(t, err)

	closeCtx, closeCaptured := capturingContext()
	s.captureNotify(closeCtx)
	err = s.textDocumentDidClose(closeCtx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
	})
	require.NoError(t, err)
	require.Len(t, *closeCaptured, 1)
	assert.Empty(t, (*closeCaptured)[0].Diagnostics, "close should clear diagnostics")
	assert.Nil(t, s.docs.Get("file:///test.vue"), "document should be removed from store")
}

func TestConvertLintDiagnostic(t *testing.T) {
	lines := diagnostic.NewLineIndex([]byte("ab\ncd"))
	d := lint.Diagnostic{
		Start:    3,
		End:      5,
		Message:  "boom",
		Analyzer: "vfor-key",
		Severity: lint.SeverityWarning,
	}
	conv := convertLintDiagnostic(d, lines)
	assert.Equal(t, protocol.UInteger(1), conv.Range.Start.Line)
	assert.Equal(t, protocol.UInteger(0), conv.Range.Start.Character)
	assert.Equal(t, protocol.UInteger(2), conv.Range.End.Character)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *conv.Severity)
	assert.Equal(t, "vfor-key", conv.Code.Value)
	assert.Equal(t, serverName, *conv.Source)
}

// --- Hover tests ---

func TestHover_TemplateVariable(t *testing.T) {
	s, _ := openComponent(t, sampleComponent)

	hover, err := s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
			Position:     posOf(t, sampleComponent, "item.name", 2),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, hover)
	content := hover.Contents.(protocol.MarkupContent)
	assert.Equal(t, protocol.MarkupKindMarkdown, content.Kind)
	assert.Contains(t, content.Value, "**template variable** `item`")
	assert.Contains(t, content.Value, "v-for")
}

func TestHover_ScriptBinding(t *testing.T) {
	s, _ := openComponent(t, sampleComponent)

	hover, err := s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
			Position:     posOf(t, sampleComponent, "in items", len("in i")),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, hover)
	content := hover.Contents.(protocol.MarkupContent)
	assert.Contains(t, content.Value, "`items`")
	assert.Contains(t, content.Value, "script block")
}

func TestHover_NoSymbol(t *testing.T) {
	s, _ := openComponent(t, sampleComponent)

	hover, err := s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
			Position:     protocol.Position{Line: 0, Character: 0},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, hover)
}

func TestHover_UnknownDocument(t *testing.T) {
	s := New()
	hover, err := s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///nope.vue"},
			Position:     protocol.Position{},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, hover)
}

// --- Definition tests ---

func TestDefinition_TemplateVariable(t *testing.T) {
	s, _ := openComponent(t, sampleComponent)

	result, err := s.textDocumentDefinition(mockContext(), &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
			Position:     posOf(t, sampleComponent, "item.name", 0),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	loc, ok := result.(protocol.Location)
	require.True(t, ok)
	assert.Equal(t, "file:///test.vue", loc.URI)
	// The alias declaration inside v-for="(item, index) in items".
	assert.Equal(t, posOf(t, sampleComponent, "item,", 0), loc.Range.Start)
	assert.Equal(t, posOf(t, sampleComponent, "item,", len("item")), loc.Range.End)
}

func TestDefinition_ScriptBindingHasNoTarget(t *testing.T) {
	s, _ := openComponent(t, sampleComponent)

	result, err := s.textDocumentDefinition(mockContext(), &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
			Position:     posOf(t, sampleComponent, "in items", len("in i")),
		},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

// --- Completion tests ---

func TestCompletion_Prefix(t *testing.T) {
	s, _ := openComponent(t, sampleComponent)

	result, err := s.textDocumentCompletion(mockContext(), &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
			Position:     posOf(t, sampleComponent, "item.name", len("item")),
		},
	})
	require.NoError(t, err)
	labels := completionLabels(t, result)
	assert.Contains(t, labels, "item")
	assert.Contains(t, labels, "items")
	assert.NotContains(t, labels, "index")
}

func TestCompletion_ScopeVariables(t *testing.T) {
	s, _ := openComponent(t, sampleComponent)

	// No prefix: everything visible inside the loop completes.
	result, err := s.textDocumentCompletion(mockContext(), &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
			Position:     posOf(t, sampleComponent, "{{ item.name }}", 2),
		},
	})
	require.NoError(t, err)
	labels := completionLabels(t, result)
	assert.Contains(t, labels, "item")
	assert.Contains(t, labels, "index")
	assert.Contains(t, labels, "items")
	assert.Contains(t, labels, "$emit")
}

func TestCompletion_RegisteredComponents(t *testing.T) {
	s := New(WithComponents([]string{"AppButton", "AppCard"}))
	s.captureNotify(mockContext())
	s.docs.Open("file:///test.vue", 1, sampleComponent)

	result, err := s.textDocumentCompletion(mockContext(), &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
			Position:     posOf(t, sampleComponent, "{{ item.name }}", 2),
		},
	})
	require.NoError(t, err)
	labels := completionLabels(t, result)
	assert.Contains(t, labels, "AppButton")
	assert.Contains(t, labels, "AppCard")
}

// --- References tests ---

func TestReferences_IncludeDeclaration(t *testing.T) {
	s, _ := openComponent(t, sampleComponent)

	locs, err := s.textDocumentReferences(mockContext(), &protocol.ReferenceParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
			Position:     posOf(t, sampleComponent, "item.name", 0),
		},
		Context: protocol.ReferenceContext{IncludeDeclaration: true},
	})
	require.NoError(t, err)
	// Declaration plus the :key and interpolation uses.
	require.Len(t, locs, 3)
	assert.Equal(t, posOf(t, sampleComponent, "item,", 0), locs[0].Range.Start)
}

func TestReferences_WithoutDeclaration(t *testing.T) {
	s, _ := openComponent(t, sampleComponent)

	locs, err := s.textDocumentReferences(mockContext(), &protocol.ReferenceParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
			Position:     posOf(t, sampleComponent, "item.name", 0),
		},
		Context: protocol.ReferenceContext{IncludeDeclaration: false},
	})
	require.NoError(t, err)
	require.Len(t, locs, 2)
}

// --- Rename tests ---

func TestRename_TemplateVariable(t *testing.T) {
	s, _ := openComponent(t, sampleComponent)

	edit, err := s.textDocumentRename(mockContext(), &protocol.RenameParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
			Position:     posOf(t, sampleComponent, "item.name", 0),
		},
		NewName: "row",
	})
	require.NoError(t, err)
	require.NotNil(t, edit)
	edits := edit.Changes["file:///test.vue"]
	require.Len(t, edits, 3)
	for _, e := range edits {
		assert.Equal(t, "row", e.NewText)
	}
}

func TestRename_ScriptBindingRejected(t *testing.T) {
	s, _ := openComponent(t, sampleComponent)

	_, err := s.textDocumentRename(mockContext(), &protocol.RenameParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
			Position:     posOf(t, sampleComponent, "in items", len("in i")),
		},
		NewName: "rows",
	})
	assert.Error(t, err)
}

func TestPrepareRename(t *testing.T) {
	s, _ := openComponent(t, sampleComponent)

	t.Run("template variable", func(t *testing.T) {
		result, err := s.textDocumentPrepareRename(mockContext(), &protocol.PrepareRenameParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
				Position:     posOf(t, sampleComponent, "item.name", 0),
			},
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		rp, ok := result.(*protocol.RangeWithPlaceholder)
		require.True(t, ok)
		assert.Equal(t, "item", rp.Placeholder)
	})
	t.Run("script binding not renameable", func(t *testing.T) {
		result, err := s.textDocumentPrepareRename(mockContext(), &protocol.PrepareRenameParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
				Position:     posOf(t, sampleComponent, "in items", len("in i")),
			},
		})
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

// --- Document symbols tests ---

func TestDocumentSymbols(t *testing.T) {
	s, _ := openComponent(t, sampleComponent)

	result, err := s.textDocumentDocumentSymbol(mockContext(), &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
	})
	require.NoError(t, err)
	symbols, ok := result.([]protocol.DocumentSymbol)
	require.True(t, ok)

	names := make([]string, len(symbols))
	for i, sym := range symbols {
		names[i] = sym.Name
	}
	assert.Contains(t, names, "item")
	assert.Contains(t, names, "index")
}

// --- Folding tests ---

func TestFoldingRange(t *testing.T) {
	s, _ := openComponent(t, sampleComponent)

	ranges, err := s.textDocumentFoldingRange(mockContext(), &protocol.FoldingRangeParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///test.vue"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, ranges)

	// The <template> block folds from the first line.
	assert.Equal(t, protocol.UInteger(0), ranges[0].StartLine)
	assert.Greater(t, ranges[0].EndLine, ranges[0].StartLine)
}

// --- Lifecycle tests ---

func TestInitialize(t *testing.T) {
	s := New()
	rootURI := "file:///workspace"
	params := &protocol.InitializeParams{}
	params.RootURI = &rootURI
	result, err := s.initialize(mockContext(), params)
	require.NoError(t, err)
	init, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, serverName, init.ServerInfo.Name)
	assert.Equal(t, "/workspace", s.rootPath)
}

func TestExit(t *testing.T) {
	s := New()
	var code = -1
	s.exitFn = func(c int) { code = c }
	require.NoError(t, s.exit(nil))
	assert.Equal(t, 0, code)
}

func TestURIConversion(t *testing.T) {
	assert.Equal(t, "/a/b.vue", uriToPath("file:///a/b.vue"))
	assert.Equal(t, "rel/b.vue", uriToPath("rel/b.vue"))
	assert.Equal(t, "file:///a/b.vue", pathToURI("/a/b.vue"))
	assert.Equal(t, "rel/b.vue", pathToURI("rel/b.vue"))
}
