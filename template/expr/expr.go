// Copyright © 2026 The Vize authors

// Package expr extracts identifier references from template expression
// strings. It is a pure tokenization capability, deliberately independent
// of scope resolution: the analyzer decides what each identifier means,
// this package only finds them.
package expr

import (
	"strings"

	parsec "github.com/prataprc/goparsec"
)

// Ident is an identifier occurrence inside an expression string.
type Ident struct {
	Name   string
	Offset int // byte offset relative to the expression start
}

// Scanner patterns are ^-anchored: goparsec's Match finds the pattern
// anywhere in the remaining buffer but advances the cursor by the match
// length, so an unanchored pattern would consume the wrong bytes.
const (
	patString1  = `^'(?:[^'\\]|\\.)*'`
	patString2  = `^"(?:[^"\\]|\\.)*"`
	patTemplate = "^`(?:[^`\\\\]|\\\\.)*`"
	patNumber   = `^(?:0[xXoObB][0-9a-fA-F]+|[0-9]+(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?)`
	patIdent    = `^[A-Za-z_$][A-Za-z0-9_$]*`
)

// Identifiers returns every identifier referenced by the expression, in
// source order. Skipped occurrences:
//   - string, template-literal, and numeric literal contents
//     (template-literal ${...} holes are still scanned),
//   - property names after "." or "?.",
//   - object-literal keys directly before ":".
func Identifiers(src string) []Ident {
	return scan(src, 0)
}

func scan(src string, base int) []Ident {
	var idents []Ident
	s := parsec.NewScanner([]byte(src))
	prev := "" // previous significant token text
	for {
		_, s = s.SkipWS()
		if s.Endof() {
			return idents
		}
		cursor := s.GetCursor()

		if m, next := s.Match(patTemplate); m != nil {
			idents = append(idents, templateHoles(string(m), base+cursor)...)
			prev = "`"
			s = next
			continue
		}
		if m, next := s.Match(patString1); m != nil {
			prev = "'"
			s = next
			continue
		}
		if m, next := s.Match(patString2); m != nil {
			prev = `"`
			s = next
			continue
		}
		if m, next := s.Match(patNumber); m != nil {
			prev = string(m)
			s = next
			continue
		}
		if m, next := s.Match(patIdent); m != nil {
			name := string(m)
			if prev != "." && !(isKeyPosition(prev) && nextSignificant(src, cursor+len(name)) == ':') {
				idents = append(idents, Ident{Name: name, Offset: base + cursor})
			}
			prev = name
			s = next
			continue
		}
		m, next := s.Match(`^[\s\S]`)
		if m == nil {
			return idents
		}
		prev = string(m)
		s = next
	}
}

// isKeyPosition reports whether an identifier following prev could be an
// object-literal key. "{ a: 1, b: 2 }" skips a and b; the ternary branch
// in "x ? a : b" is preserved because its prev token is "?".
func isKeyPosition(prev string) bool {
	return prev == "{" || prev == ","
}

func nextSignificant(src string, pos int) byte {
	for pos < len(src) {
		switch src[pos] {
		case ' ', '\t', '\n', '\r':
			pos++
		case '?':
			// "?." is property access, "? :" is a ternary. Neither marks
			// a key position, so report something other than ':'.
			return '?'
		default:
			return src[pos]
		}
	}
	return 0
}

// templateHoles scans the ${...} holes of a template literal.
func templateHoles(lit string, base int) []Ident {
	var idents []Ident
	for i := 0; i+1 < len(lit); i++ {
		if lit[i] != '$' || lit[i+1] != '{' {
			continue
		}
		depth := 0
		j := i + 1
		for ; j < len(lit); j++ {
			if lit[j] == '{' {
				depth++
			} else if lit[j] == '}' {
				depth--
				if depth == 0 {
					break
				}
			}
		}
		if j >= len(lit) {
			break
		}
		inner := lit[i+2 : j]
		idents = append(idents, scan(inner, base+i+2)...)
		i = j
	}
	return idents
}

// HasIdent reports whether name occurs as an identifier in the expression.
// Faster than Identifiers for the walker's single-name probes.
func HasIdent(src, name string) bool {
	idx := 0
	for {
		i := strings.Index(src[idx:], name)
		if i < 0 {
			return false
		}
		i += idx
		beforeOK := i == 0 || !isIdentByte(src[i-1])
		afterOK := i+len(name) >= len(src) || !isIdentByte(src[i+len(name)])
		if beforeOK && afterOK {
			return true
		}
		idx = i + len(name)
	}
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '$'
}
