// Copyright © 2026 The Vize authors

package repl

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ushironoko/vize-sub001/lint"
)

func runReplWithString(t *testing.T, input string) string {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	go func() {
		defer inW.Close() //nolint:errcheck // test cleanup
		_, _ = io.WriteString(inW, input)
	}()

	go func() {
		Run("vize> ", WithStdin(inR), WithStderr(outW))
		inR.Close()  //nolint:errcheck,gosec // test cleanup
		outW.Close() //nolint:errcheck,gosec // test cleanup
	}()

	var output bytes.Buffer
	_, _ = io.Copy(&output, outR)
	outR.Close() //nolint:errcheck,gosec // test cleanup

	return output.String()
}

func newTestSession() (*session, *bytes.Buffer) {
	var out bytes.Buffer
	return &session{
		linter: &lint.Linter{Analyzers: lint.DefaultAnalyzers()},
		out:    &out,
	}, &out
}

func TestEnsureHistoryFilePermissions_CreatesWithRestrictedMode(t *testing.T) {
	dir := t.TempDir()
	histFile := filepath.Join(dir, ".vize_history")

	// File does not exist yet.
	ensureHistoryFilePermissions(histFile)

	info, err := os.Stat(histFile)
	require.NoError(t, err, "history file should be created")
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "new history file should have mode 0600")
}

func TestEnsureHistoryFilePermissions_RestrictsExistingFile(t *testing.T) {
	dir := t.TempDir()
	histFile := filepath.Join(dir, ".vize_history")

	// Create the file with overly permissive mode.
	err := os.WriteFile(histFile, []byte("some history"), 0644)
	require.NoError(t, err)

	ensureHistoryFilePermissions(histFile)

	info, err := os.Stat(histFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "existing history file should be restricted to 0600")

	// Verify contents are preserved.
	data, err := os.ReadFile(histFile)
	require.NoError(t, err)
	assert.Equal(t, "some history", string(data))
}

func TestEnsureHistoryFilePermissions_EmptyPathNoOp(t *testing.T) {
	// Should not panic or error with empty path.
	ensureHistoryFilePermissions("")
}

func TestNeedsMore(t *testing.T) {
	assert.True(t, needsMore([]byte("<ul>\n")))
	assert.True(t, needsMore([]byte("<ul><li>a</li>\n")))
	assert.False(t, needsMore([]byte("<p>done</p>\n")))
	assert.False(t, needsMore([]byte("{{ msg }}\n")))
}

func TestRun(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Clean Snippet",
			input:    "<p>hello</p>\n",
			expected: "ok\n",
		},
		{
			name:     "Undefined Reference",
			input:    "{{ missing }}\n",
			expected: "undefined reference: missing",
		},
		{
			name:     "Multi Line Element",
			input:    "<ul>\n<li>done</li>\n</ul>\n",
			expected: "ok\n",
		},
		{
			name:     "Help",
			input:    ":help\n",
			expected: ":bindings",
		},
		{
			name:     "Unknown Command",
			input:    ":wat\n",
			expected: "unknown command :wat",
		},
		{
			name:     "Bindings Without Load",
			input:    ":bindings\n",
			expected: "no component loaded",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := runReplWithString(t, tc.input)
			require.Contains(t, got, tc.expected)
		})
	}
}

func TestSessionLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.vue")
	component := `<template><div>{{ items }}</div></template>
<script setup>
import { ref } from 'vue'
const items = ref([])
</script>
`
	require.NoError(t, os.WriteFile(path, []byte(component), 0600))

	s, out := newTestSession()
	s.load(path)
	require.NotNil(t, s.bindings)
	assert.True(t, s.bindings.Contains("items"))
	assert.Contains(t, out.String(), "loaded")

	// A snippet referencing the loaded binding is clean.
	out.Reset()
	s.check([]byte("{{ items }}\n"))
	assert.Equal(t, "ok\n", out.String())
}

func TestSessionLoad_MissingFile(t *testing.T) {
	s, out := newTestSession()
	s.load(filepath.Join(t.TempDir(), "nope.vue"))
	assert.Nil(t, s.bindings)
	assert.NotEmpty(t, out.String())
}

func TestSessionCheck_UndefinedWithoutBindings(t *testing.T) {
	s, out := newTestSession()
	s.check([]byte("{{ count }}\n"))
	assert.Contains(t, out.String(), "undefined reference: count")
}

func TestSessionScopes(t *testing.T) {
	s, out := newTestSession()
	s.command(":scopes")
	assert.Contains(t, out.String(), "no snippet checked yet")

	out.Reset()
	s.check([]byte(`<li v-for="item in [1, 2]">{{ item }}</li>` + "\n"))
	out.Reset()
	s.command(":scopes")
	got := out.String()
	assert.Contains(t, got, "v-for")
	assert.Contains(t, got, "* item")
}

func TestSessionUnused(t *testing.T) {
	s, out := newTestSession()
	s.check([]byte(`<li v-for="item in [1, 2]" :key="item">x</li>` + "\n"))
	out.Reset()
	s.command(":unused")
	assert.Contains(t, out.String(), "no unused template variables")

	out.Reset()
	s.check([]byte(`<li v-for="(item, index) in [1, 2]" :key="item">{{ item }}</li>` + "\n"))
	out.Reset()
	s.command(":unused")
	assert.Contains(t, out.String(), "index")
}

func TestSessionClear(t *testing.T) {
	s, out := newTestSession()
	s.check([]byte("<p>x</p>\n"))
	s.command(":components AppButton")
	s.command(":clear")
	assert.Nil(t, s.croquis)
	assert.Empty(t, s.components)

	out.Reset()
	s.command(":scopes")
	assert.Contains(t, out.String(), "no snippet checked yet")
}

func TestSessionQuit(t *testing.T) {
	s, _ := newTestSession()
	assert.True(t, s.command(":quit"))
	assert.True(t, s.command(":q"))
	assert.True(t, s.command(":exit"))
	assert.False(t, s.command(":help"))
}
