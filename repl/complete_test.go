// Copyright © 2026 The Vize authors

package repl

import (
	"testing"

	"github.com/ushironoko/vize-sub001/analysis"
)

func TestBindingCompleter(t *testing.T) {
	s, _ := newTestSession()
	s.bindings = analysis.NewScriptBindings(true)
	s.bindings.Add("items", analysis.BindSetupRef)
	s.bindings.Add("itemCount", analysis.BindSetupConst)
	s.bindings.Add("visible", analysis.BindSetupRef)
	s.components = []string{"AppButton"}

	c := &bindingCompleter{session: s}

	// "ite" should match items and itemCount.
	candidates, offset := c.Do([]rune("{{ ite"), 6)
	if offset != 3 {
		t.Errorf("offset = %d, want 3", offset)
	}
	if len(candidates) != 2 {
		t.Errorf("expected 2 completions for 'ite', got %d", len(candidates))
	}

	// Component names complete after an opening angle bracket.
	candidates, offset = c.Do([]rune("<App"), 4)
	if offset != 3 {
		t.Errorf("offset = %d, want 3", offset)
	}
	if len(candidates) != 1 || string(candidates[0]) != "Button" {
		t.Errorf("expected AppButton suffix, got %q", candidates)
	}

	// Colon prefixes complete command names.
	candidates, offset = c.Do([]rune(":sc"), 3)
	if offset != 3 {
		t.Errorf("offset = %d, want 3", offset)
	}
	if len(candidates) != 1 || string(candidates[0]) != "opes" {
		t.Errorf("expected :scopes suffix, got %q", candidates)
	}

	// No prefix, no completions.
	candidates, _ = c.Do([]rune("{{ "), 3)
	if len(candidates) != 0 {
		t.Errorf("expected no completions for empty prefix, got %d", len(candidates))
	}

	// Unknown prefix has no completions.
	candidates, _ = c.Do([]rune("{{ zzz"), 6)
	if len(candidates) != 0 {
		t.Errorf("expected no completions for 'zzz', got %d", len(candidates))
	}
}

func TestBindingCompleter_TemplateVariables(t *testing.T) {
	s, _ := newTestSession()
	s.check([]byte(`<li v-for="(item, index) in [1, 2]">{{ item }}</li>` + "\n"))

	c := &bindingCompleter{session: s}
	candidates, offset := c.Do([]rune("{{ it"), 5)
	if offset != 2 {
		t.Errorf("offset = %d, want 2", offset)
	}
	if len(candidates) != 1 || string(candidates[0]) != "em" {
		t.Errorf("expected item suffix, got %q", candidates)
	}
}
