package escape

import (
	"strings"
	"testing"
)

func TestPuzzleRegistry(t *testing.T) {
	r := NewPuzzleRegistry()

	if err := r.Register("safe_code", SafeCode); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("safe_code", SafeCode); err == nil {
		t.Error("expected error on duplicate registration")
	}
	if err := r.Register("", SafeCode); err == nil {
		t.Error("expected error on empty id")
	}
	if err := r.Register("broken", nil); err == nil {
		t.Error("expected error on nil resolver")
	}

	if !r.Has("safe_code") || r.Has("missing") {
		t.Errorf("Has lookups wrong: %v", r.IDs())
	}

	result, ok := r.Attempt("safe_code", "alice")
	if !ok || result == "" {
		t.Errorf("Attempt failed: %q %v", result, ok)
	}
	if _, ok := r.Attempt("missing", "alice"); ok {
		t.Error("Attempt on unknown id should report false")
	}
}

func TestSafeCodeIsStablePerPlayer(t *testing.T) {
	a1 := SafeCode("alice")
	a2 := SafeCode("alice")
	b := SafeCode("bob")

	if a1 != a2 {
		t.Errorf("code changed between attempts: %q vs %q", a1, a2)
	}
	if a1 == b {
		t.Errorf("different players got the same code: %q", a1)
	}
	if !strings.Contains(a1, "four-digit") {
		t.Errorf("unexpected puzzle text: %q", a1)
	}
}

func TestDefaultRegistry(t *testing.T) {
	r, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry failed: %v", err)
	}
	if !r.Has("safe_code") {
		t.Errorf("default registry missing safe_code: %v", r.IDs())
	}
}
