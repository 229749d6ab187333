package room

import (
	"os"
	"path/filepath"
	"testing"
)

func sampleRoom() *Room {
	return &Room{
		Name: "Sala1",
		Transitions: []Transition{
			{At: "", Name: "Puerta", Description: "Has abierto la puerta", Segment: "A"},
			{At: "A", Name: "Cajón", Description: "Una llave vieja", Kind: KindPickup},
			{At: "A", Name: "Puerta blindada", Description: "La puerta se abre", Segment: "B",
				Key: "Llave vieja", UnlockDescription: "La llave gira en la cerradura."},
			{At: "AB", Name: "Salida", Kind: KindFinal},
			{At: "A", Name: "Caja fuerte", Kind: KindPuzzle, Puzzle: "safe_code"},
		},
		Combinations: []CombinationRule{
			{ItemA: "Palo", ItemB: "Cuerda", Result: "Gancho", ResultDescription: "Un gancho improvisado"},
		},
	}
}

func TestValidate_BuildsIndex(t *testing.T) {
	r := sampleRoom()
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if len(r.At("")) != 1 {
		t.Errorf("expected 1 transition at root, got %d", len(r.At("")))
	}
	if len(r.At("A")) != 3 {
		t.Errorf("expected 3 transitions at A, got %d", len(r.At("A")))
	}

	tr, ok := r.Lookup("", "Puerta")
	if !ok {
		t.Fatal("Lookup failed for root Puerta")
	}
	if tr.Target() != "A" {
		t.Errorf("Target() = %q, want A", tr.Target())
	}
	if tr.Kind != KindMove {
		t.Errorf("default kind = %q, want move", tr.Kind)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		room Room
	}{
		{
			"multi-character segment",
			Room{Name: "X", Transitions: []Transition{{At: "", Name: "Door", Segment: "AB"}}},
		},
		{
			"empty segment",
			Room{Name: "X", Transitions: []Transition{{At: "", Name: "Door"}}},
		},
		{
			"duplicate transition",
			Room{Name: "X", Transitions: []Transition{
				{At: "", Name: "Door", Segment: "A"},
				{At: "", Name: "Door", Segment: "B"},
			}},
		},
		{
			"puzzle without id",
			Room{Name: "X", Transitions: []Transition{{At: "", Name: "Safe", Kind: KindPuzzle}}},
		},
		{
			"pickup without description",
			Room{Name: "X", Transitions: []Transition{{At: "", Name: "Drawer", Kind: KindPickup}}},
		},
		{
			"unknown action",
			Room{Name: "X", Transitions: []Transition{{At: "", Name: "Door", Kind: Kind("teleport")}}},
		},
		{
			"unnamed room",
			Room{},
		},
	}

	for _, tc := range tests {
		if err := tc.room.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestCombine_Unordered(t *testing.T) {
	r := sampleRoom()
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	rule, ok := r.Combine("Cuerda", "Palo")
	if !ok {
		t.Fatal("expected combination match in reverse order")
	}
	if rule.Result != "Gancho" {
		t.Errorf("Result = %q, want Gancho", rule.Result)
	}

	if _, ok := r.Combine("Palo", "Palo"); ok {
		t.Error("unexpected combination match")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	data := `{
  "name": "Sala1",
  "transitions": [
    {"at": "", "name": "Puerta", "description": "Has abierto la puerta", "segment": "A"},
    {"at": "A", "name": "Salida", "action": "final"}
  ]
}`
	if err := os.WriteFile(filepath.Join(dir, "sala1.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	rooms, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("expected 1 room, got %d", len(rooms))
	}
	if _, ok := rooms["Sala1"].Lookup("A", "Salida"); !ok {
		t.Error("loaded room is missing Salida transition")
	}
}

func TestLoadDir_Missing(t *testing.T) {
	rooms, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir should not error, got %v", err)
	}
	if len(rooms) != 0 {
		t.Errorf("expected no rooms, got %d", len(rooms))
	}
}
