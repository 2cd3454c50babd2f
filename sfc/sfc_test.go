// Copyright © 2026 The Vize authors

package sfc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ushironoko/vize-sub001/template/ast"
)

const sample = `<template>
  <button @click="count++">{{ count }}</button>
</template>

<script setup lang="ts">
import { ref } from 'vue'
const count = ref(0)
</script>

<style scoped>
button { color: red }
</style>
`

func TestParse_Blocks(t *testing.T) {
	f := Parse("Counter.vue", []byte(sample))
	require.Empty(t, f.Errors)

	require.NotNil(t, f.Template)
	require.Len(t, f.Template.Children, 1)
	btn := f.Template.Children[0].(*ast.Element)
	assert.Equal(t, "button", btn.Tag)

	require.Len(t, f.Scripts, 1)
	s := f.Scripts[0]
	assert.True(t, s.Setup)
	assert.Equal(t, "ts", s.Lang)
	assert.Contains(t, s.Content, "const count = ref(0)")

	require.Len(t, f.Styles, 1)
	assert.True(t, f.Styles[0].Scoped)
	assert.Contains(t, f.Styles[0].Content, "color: red")
}

func TestParse_OffsetsAreFileAbsolute(t *testing.T) {
	f := Parse("Counter.vue", []byte(sample))
	require.Len(t, f.Scripts, 1)

	s := f.Scripts[0]
	assert.Equal(t, s.Content, sample[s.ContentStart:s.ContentStart+len(s.Content)],
		"ContentStart must index into the original file")

	// A node inside the template carries file offsets too.
	btn := f.Template.Children[0].(*ast.Element)
	assert.Equal(t, "<button", sample[btn.Loc.Start:btn.Loc.Start+len("<button")])
}

func TestParse_SetupAndPlainScript(t *testing.T) {
	src := `<script>export default { name: 'X' }</script><script setup>const a = 1</script>`
	f := Parse("X.vue", []byte(src))
	require.Len(t, f.Scripts, 2)

	require.NotNil(t, f.SetupScript())
	assert.Contains(t, f.SetupScript().Content, "const a = 1")
	require.NotNil(t, f.PlainScript())
	assert.Contains(t, f.PlainScript().Content, "export default")
}

func TestParse_DuplicateTemplateReported(t *testing.T) {
	f := Parse("X.vue", []byte(`<template><p>a</p></template><template><p>b</p></template>`))
	require.Len(t, f.Errors, 1)
	assert.Contains(t, f.Errors[0].Message, "duplicate <template>")
	require.NotNil(t, f.Template)
	assert.Len(t, f.Template.Children, 1, "the first block wins")
}

func TestParse_DuplicateSetupReported(t *testing.T) {
	f := Parse("X.vue", []byte(`<script setup>const a = 1</script><script setup>const b = 2</script>`))
	require.Len(t, f.Errors, 1)
	assert.Contains(t, f.Errors[0].Message, "script setup")
}

func TestParse_MissingBlocks(t *testing.T) {
	f := Parse("X.vue", []byte(`<script setup>const a = 1</script>`))
	assert.Nil(t, f.Template)
	assert.Empty(t, f.Styles)
	assert.NotNil(t, f.SetupScript())
	assert.Nil(t, f.PlainScript())
}

func TestParse_TemplateParseErrorsSurface(t *testing.T) {
	f := Parse("X.vue", []byte("<template><div></template>"))
	require.NotEmpty(t, f.Errors)
	found := false
	for _, e := range f.Errors {
		if strings.Contains(e.Message, "div") {
			found = true
		}
	}
	assert.True(t, found, "template structural errors carry through: %v", f.Errors)
}
