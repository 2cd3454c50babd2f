// Copyright © 2026 The Vize authors

package repl

import (
	"sort"
	"strings"

	"github.com/ushironoko/vize-sub001/analysis"
)

var replCommands = []string{
	":bindings", ":clear", ":components", ":exit", ":help",
	":load", ":quit", ":scopes", ":unused",
}

// bindingCompleter implements readline.AutoCompleter over the session's
// loaded script bindings, the template variables of the last snippet,
// registered component names, and the colon commands.
type bindingCompleter struct {
	session *session
}

func (c *bindingCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Extract the word being typed (backwards from cursor to a delimiter).
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch == ' ' || ch == '\t' || ch == '\n' ||
			ch == '"' || ch == '\'' || ch == '{' || ch == '(' || ch == '<' {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	candidates := c.collect(prefix)
	if len(candidates) == 0 {
		return nil, 0
	}

	// Build completions: each entry is the suffix to append.
	result := make([][]rune, 0, len(candidates))
	for _, name := range candidates {
		result = append(result, []rune(name[len(prefix):]))
	}
	return result, len(prefix)
}

func (c *bindingCompleter) collect(prefix string) []string {
	seen := make(map[string]bool)
	var result []string
	add := func(name string) {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}

	if strings.HasPrefix(prefix, ":") {
		for _, cmd := range replCommands {
			add(cmd)
		}
		sort.Strings(result)
		return result
	}

	if b := c.session.bindings; b != nil {
		for _, name := range b.Names() {
			add(name)
		}
	}

	// Template variables introduced by the last checked snippet.
	if k := c.session.croquis; k != nil {
		for i := 0; i < k.Scopes.Len(); i++ {
			sc := k.Scopes.Scope(analysis.ScopeID(i))
			switch sc.Kind {
			case analysis.ScopeVFor, analysis.ScopeVSlot,
				analysis.ScopeEventHandler, analysis.ScopeCallback:
			default:
				continue
			}
			for name := range sc.Bindings {
				add(name)
			}
		}
	}

	for _, name := range c.session.components {
		add(name)
	}

	sort.Strings(result)
	return result
}
