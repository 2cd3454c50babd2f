// Copyright © 2026 The Vize authors

package astutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseForExpression(t *testing.T) {
	tests := []struct {
		exp  string
		want ForExpression
		ok   bool
	}{
		{
			exp:  "item in items",
			want: ForExpression{ValueAlias: "item", Source: "items", SourceOffset: 8},
			ok:   true,
		},
		{
			exp:  "(item, key) in items",
			want: ForExpression{ValueAlias: "item", KeyAlias: "key", Source: "items", SourceOffset: 15},
			ok:   true,
		},
		{
			exp:  "(item, key, i) of items",
			want: ForExpression{ValueAlias: "item", KeyAlias: "key", IndexAlias: "i", Source: "items", SourceOffset: 18},
			ok:   true,
		},
		{
			exp:  "({ id, name }, i) in rows",
			want: ForExpression{ValueAlias: "{ id, name }", KeyAlias: "i", Source: "rows", SourceOffset: 21},
			ok:   true,
		},
		{
			exp:  "n in count + 1",
			want: ForExpression{ValueAlias: "n", Source: "count + 1", SourceOffset: 5},
			ok:   true,
		},
		{exp: "items", ok: false},
		{exp: "in items", ok: false},
		{exp: "item in ", ok: false},
		{exp: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.exp, func(t *testing.T) {
			fe, ok := ParseForExpression(tt.exp)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.want, fe)
			assert.Equal(t, tt.want.Source, tt.exp[fe.SourceOffset:fe.SourceOffset+len(fe.Source)],
				"SourceOffset must point at the source sub-expression")
		})
	}
}

func TestParseForExpressionSkipsNestedSeparators(t *testing.T) {
	fe, ok := ParseForExpression("({ key in obj }) in rows")
	require.True(t, ok)
	assert.Equal(t, "rows", fe.Source)
}

func TestArrowParams(t *testing.T) {
	tests := []struct {
		exp    string
		want   []string
		isFunc bool
	}{
		{"(e) => handle(e)", []string{"e"}, true},
		{"e => e.stopPropagation()", []string{"e"}, true},
		{"() => reload()", nil, true},
		{"(a, b) => a + b", []string{"a", "b"}, true},
		{"({ id }) => select(id)", []string{"id"}, true},
		{"async (e) => save(e)", []string{"e"}, true},
		{"function (a, b) { return a }", []string{"a", "b"}, true},
		{"count++", nil, false},
		{"doThing", nil, false},
		{"a >= b", nil, false},
		{"map(x => x * 2)", nil, false}, // the arrow is nested, not top level
	}
	for _, tt := range tests {
		t.Run(tt.exp, func(t *testing.T) {
			params, ok := ArrowParams(tt.exp)
			assert.Equal(t, tt.isFunc, ok)
			assert.Equal(t, tt.want, params)
		})
	}
}

func TestPatternNames(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
	}{
		{"a", []string{"a"}},
		{"a, b", []string{"a", "b"}},
		{"{ a, b }", []string{"a", "b"}},
		{"{ a: alias }", []string{"alias"}},
		{"{ a = 1, b }", []string{"a", "b"}},
		{"{ a: { b } }", []string{"b"}},
		{"[x, y]", []string{"x", "y"}},
		{"...rest", []string{"rest"}},
		{"{ a, b: c = 1 }, [d], ...rest", []string{"a", "c", "d", "rest"}},
		{"e = {}", []string{"e"}},
		{"", nil},
		{"  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, PatternNames(tt.pattern))
		})
	}
}
