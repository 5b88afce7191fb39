package keymap

import (
	"testing"

	"github.com/andyrewlee/tprompt/internal/config"
)

func TestDefaultsCoverEveryAction(t *testing.T) {
	km := New(config.KeyMapConfig{})
	for _, info := range ActionInfos() {
		binding := BindingForAction(km, info.Action)
		if PrimaryKey(binding) == "" {
			t.Errorf("action %s has no default key", info.Action)
		}
	}
}

func TestOverridesReplaceDefaults(t *testing.T) {
	km := New(config.KeyMapConfig{Bindings: map[string][]string{
		"toggle-play": {"t"},
		"rewind":      {},
	}})
	if got := PrimaryKey(km.Toggle); got != "t" {
		t.Fatalf("toggle key = %q, want t", got)
	}
	if got := PrimaryKey(km.Rewind); got != "r" {
		t.Fatalf("empty override should keep default, got %q", got)
	}
	if _, ok := Match(km, "space"); ok {
		t.Fatal("overridden default should no longer match")
	}
	if action, ok := Match(km, "t"); !ok || action != ActionToggle {
		t.Fatalf("Match(t) = %q, %v", action, ok)
	}
}

func TestMatch(t *testing.T) {
	km := New(config.KeyMapConfig{})
	tests := map[string]Action{
		"space":  ActionToggle,
		"j":      ActionScrollDown,
		"up":     ActionScrollUp,
		"esc":    ActionStop,
		"ctrl+c": ActionQuit,
		"]":      ActionFontLarger,
	}
	for keyStr, want := range tests {
		got, ok := Match(km, keyStr)
		if !ok || got != want {
			t.Errorf("Match(%q) = %q, %v; want %q", keyStr, got, ok, want)
		}
	}
	if _, ok := Match(km, "x"); ok {
		t.Fatal("unbound key should not match")
	}
}

func TestHints(t *testing.T) {
	km := New(config.KeyMapConfig{})
	if got := PairHint(km.ScrollUp, km.ScrollDown); got != "up/down" {
		t.Fatalf("PairHint = %q, want up/down", got)
	}
	if got := km.Quit.Help().Key; got != "q/ctrl+c" {
		t.Fatalf("help key = %q", got)
	}
}
