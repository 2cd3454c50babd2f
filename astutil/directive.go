// Copyright © 2026 The Vize authors

package astutil

import "strings"

// ForExpression is the parsed form of a v-for value:
//
//	"item in items"                 -> Value=item Source=items
//	"(item, key) in items"          -> Value=item Key=key
//	"(item, key, i) of items"       -> Value=item Key=key Index=i
//	"({ id }, i) in rows"           -> Value pattern names via PatternNames
type ForExpression struct {
	ValueAlias string
	KeyAlias   string
	IndexAlias string
	Source     string
	// SourceOffset is the offset of Source relative to the expression start.
	SourceOffset int
}

// ParseForExpression splits a v-for expression into its aliases and source.
// Returns false when the expression has no in/of separator.
func ParseForExpression(exp string) (ForExpression, bool) {
	sep, sepLen := forSeparator(exp)
	if sep < 0 {
		return ForExpression{}, false
	}
	lhs := strings.TrimSpace(exp[:sep])
	rhs := strings.TrimSpace(exp[sep+sepLen:])
	if lhs == "" || rhs == "" {
		return ForExpression{}, false
	}

	fe := ForExpression{
		Source:       rhs,
		SourceOffset: sep + sepLen + leadingSpace(exp[sep+sepLen:]),
	}

	// Strip one level of parens around the alias list.
	if strings.HasPrefix(lhs, "(") && strings.HasSuffix(lhs, ")") {
		lhs = strings.TrimSpace(lhs[1 : len(lhs)-1])
	}
	aliases := splitTopLevel(lhs, ',')
	if len(aliases) > 0 {
		fe.ValueAlias = strings.TrimSpace(aliases[0])
	}
	if len(aliases) > 1 {
		fe.KeyAlias = strings.TrimSpace(aliases[1])
	}
	if len(aliases) > 2 {
		fe.IndexAlias = strings.TrimSpace(aliases[2])
	}
	if fe.ValueAlias == "" {
		return ForExpression{}, false
	}
	return fe, true
}

// forSeparator finds the top-level " in " or " of " separator.
func forSeparator(exp string) (pos, width int) {
	depth := 0
	for i := 0; i+4 <= len(exp); i++ {
		switch exp[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
		if depth != 0 {
			continue
		}
		if exp[i] == ' ' && i+4 <= len(exp) {
			rest := exp[i+1:]
			if strings.HasPrefix(rest, "in ") || strings.HasPrefix(rest, "of ") {
				return i + 1, 3
			}
		}
	}
	return -1, 0
}

func leadingSpace(s string) int {
	n := 0
	for n < len(s) && (s[n] == ' ' || s[n] == '\t' || s[n] == '\n') {
		n++
	}
	return n
}

// splitTopLevel splits s on sep, ignoring separators nested inside
// brackets or string literals.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote && (i == 0 || s[i-1] != '\\') {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// ArrowParams extracts the parameter names from an inline arrow or
// function expression. ok is false when exp is not a function form.
//
//	"(e) => handle(e)"     -> ["e"], true
//	"e => e.stopPropagation()" -> ["e"], true
//	"() => reload()"       -> [], true
//	"function (a, b) {}"   -> ["a", "b"], true
//	"count++"              -> nil, false
func ArrowParams(exp string) ([]string, bool) {
	exp = strings.TrimSpace(exp)
	if strings.HasPrefix(exp, "async ") {
		exp = strings.TrimSpace(exp[len("async "):])
	}
	if strings.HasPrefix(exp, "function") {
		rest := exp[len("function"):]
		open := strings.IndexByte(rest, '(')
		if open < 0 {
			return nil, false
		}
		close := matchParen(rest, open)
		if close < 0 {
			return nil, false
		}
		return PatternNames(rest[open+1 : close]), true
	}

	arrow := topLevelArrow(exp)
	if arrow < 0 {
		return nil, false
	}
	lhs := strings.TrimSpace(exp[:arrow])
	if strings.HasPrefix(lhs, "(") && strings.HasSuffix(lhs, ")") {
		return PatternNames(lhs[1 : len(lhs)-1]), true
	}
	// Single bare parameter: "e => ...".
	if isIdentName(lhs) {
		return []string{lhs}, true
	}
	return nil, false
}

// topLevelArrow finds a "=>" outside brackets and string literals.
func topLevelArrow(s string) int {
	depth := 0
	var quote byte
	for i := 0; i+1 < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote && s[i-1] != '\\' {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth == 0 && s[i+1] == '>' {
				return i
			}
		}
	}
	return -1
}

func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// PatternNames extracts the bound identifier names from a parameter list
// or destructuring pattern. Default values and nested property keys are
// handled: "{ a, b: c = 1 }, [d], ...rest" yields a, c, d, rest.
func PatternNames(pattern string) []string {
	var names []string
	for _, part := range splitTopLevel(pattern, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.TrimPrefix(part, "...")
		// Drop a default value.
		if eq := topLevelAssign(part); eq >= 0 {
			part = strings.TrimSpace(part[:eq])
		}
		switch {
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			names = append(names, objectPatternNames(part[1:len(part)-1])...)
		case strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]"):
			names = append(names, PatternNames(part[1:len(part)-1])...)
		case isIdentName(part):
			names = append(names, part)
		}
	}
	return names
}

// objectPatternNames handles "{ a, b: alias, c = 1 }" entries: the bound
// name is the alias after : when present, otherwise the key itself.
func objectPatternNames(inner string) []string {
	var names []string
	for _, entry := range splitTopLevel(inner, ',') {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		entry = strings.TrimPrefix(entry, "...")
		if eq := topLevelAssign(entry); eq >= 0 {
			entry = strings.TrimSpace(entry[:eq])
		}
		if colon := strings.IndexByte(entry, ':'); colon >= 0 {
			names = append(names, PatternNames(entry[colon+1:])...)
			continue
		}
		if isIdentName(entry) {
			names = append(names, entry)
		}
	}
	return names
}

// topLevelAssign finds a bare "=" (not ==, =>, <=, >=) outside brackets.
func topLevelAssign(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(s) && (s[i+1] == '=' || s[i+1] == '>') {
				i++
				continue
			}
			if i > 0 && (s[i-1] == '=' || s[i-1] == '!' || s[i-1] == '<' || s[i-1] == '>') {
				continue
			}
			return i
		}
	}
	return -1
}

func isIdentName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '$':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
