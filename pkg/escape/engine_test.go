package escape

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/ringo-rp/ringobot/pkg/room"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func testRoom(t *testing.T) *room.Room {
	t.Helper()
	r := &room.Room{
		Name: "Sala1",
		Transitions: []room.Transition{
			{At: "", Name: "Puerta", Description: "Has abierto la puerta", Segment: "A"},
			{At: "A", Name: "Cajón", Description: "Una llave vieja", Kind: room.KindPickup},
			{At: "A", Name: "Puerta blindada", Description: "La puerta ya está abierta", Segment: "B",
				Key: "Cajón", UnlockDescription: "La llave gira y la puerta se abre."},
			{At: "AB", Name: "Salida", Kind: room.KindFinal},
			{At: "A", Name: "Caja fuerte", Kind: room.KindPuzzle, Puzzle: "safe_code"},
			{At: "", Name: "Alfombra", Description: "Un palo", Kind: room.KindPickup},
			{At: "", Name: "Estantería", Description: "Una cuerda", Kind: room.KindPickup},
		},
		Combinations: []room.CombinationRule{
			{ItemA: "Alfombra", ItemB: "Estantería", Result: "Gancho", ResultDescription: "Un gancho improvisado"},
		},
		Stats: map[string]int{"investigation": 3},
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("room validation failed: %v", err)
	}
	return r
}

func newTestEngine(t *testing.T) (*Engine, *MemoryStore) {
	t.Helper()

	puzzles := NewPuzzleRegistry()
	if err := puzzles.Register("safe_code", func(player string) string {
		return "The dial spins but nothing happens."
	}); err != nil {
		t.Fatal(err)
	}

	r := testRoom(t)
	store := NewMemoryStore()
	engine, err := NewEngine(map[string]*room.Room{r.Name: r}, store, puzzles,
		rand.New(rand.NewSource(1)), testLogger())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine, store
}

func TestNewEngine_RejectsUnregisteredPuzzle(t *testing.T) {
	r := testRoom(t)
	_, err := NewEngine(map[string]*room.Room{r.Name: r}, NewMemoryStore(),
		NewPuzzleRegistry(), rand.New(rand.NewSource(1)), testLogger())
	if err == nil {
		t.Fatal("expected error for unregistered puzzle id")
	}
}

func TestJoin(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	msg, err := engine.Join(ctx, "alice", "Sala1")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if !strings.Contains(msg, "Sala1") {
		t.Errorf("join message %q does not name the room", msg)
	}

	ps, err := store.LoadPlayer(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if ps.Room != "Sala1" || ps.Path() != "" || ps.Held != "" {
		t.Errorf("unexpected state after join: %+v", ps)
	}
	if ps.Stats["investigation"] != 3 {
		t.Errorf("room stats not copied: %+v", ps.Stats)
	}

	// Re-joining while inside is a friendly no-op.
	msg, err = engine.Join(ctx, "alice", "Sala1")
	if err != nil {
		t.Fatal(err)
	}
	if msg != MsgAlreadyInRoom {
		t.Errorf("got %q, want already-in-room message", msg)
	}

	msg, err = engine.Join(ctx, "bob", "Sala99")
	if err != nil {
		t.Fatal(err)
	}
	if msg != MsgUnknownRoom {
		t.Errorf("got %q, want unknown-room message", msg)
	}
}

func TestInvestigate_NavigationAndGoBack(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Join(ctx, "alice", "Sala1"); err != nil {
		t.Fatal(err)
	}

	msg, err := engine.Investigate(ctx, "alice", "Puerta")
	if err != nil {
		t.Fatal(err)
	}
	if msg != "Has abierto la puerta" {
		t.Errorf("got %q, want transition description", msg)
	}

	ps, _ := store.LoadPlayer(ctx, "alice")
	if ps.Path() != "A" {
		t.Errorf("path = %q, want A", ps.Path())
	}

	msg, err = engine.Investigate(ctx, "alice", GoBack)
	if err != nil {
		t.Fatal(err)
	}
	if msg != MsgWentBack {
		t.Errorf("got %q, want went-back message", msg)
	}
	ps, _ = store.LoadPlayer(ctx, "alice")
	if ps.Path() != "" {
		t.Errorf("path = %q, want empty after go back", ps.Path())
	}

	// Going back at the room root stays at the root.
	if _, err := engine.Investigate(ctx, "alice", GoBack); err != nil {
		t.Fatal(err)
	}
	ps, _ = store.LoadPlayer(ctx, "alice")
	if ps.Path() != "" {
		t.Errorf("path = %q, want empty", ps.Path())
	}
}

func TestInvestigate_DeadEnd(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Join(ctx, "alice", "Sala1"); err != nil {
		t.Fatal(err)
	}
	msg, err := engine.Investigate(ctx, "alice", "Ventana")
	if err != nil {
		t.Fatal(err)
	}
	if msg != MsgNoPath {
		t.Errorf("got %q, want no-path message", msg)
	}
}

func TestInvestigate_PickupMovesItemToInventory(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Join(ctx, "alice", "Sala1"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Investigate(ctx, "alice", "Puerta"); err != nil {
		t.Fatal(err)
	}

	msg, err := engine.Investigate(ctx, "alice", "Cajón")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(msg, "Cajón") {
		t.Errorf("pickup message %q does not name the item", msg)
	}

	rs, _ := store.LoadRoom(ctx, "Sala1")
	if !rs.HasItem("Cajón") {
		t.Error("item not in room inventory after pickup")
	}

	// The transition is consumed from the world.
	msg, _ = engine.Investigate(ctx, "alice", "Cajón")
	if msg != MsgNoPath {
		t.Errorf("second pickup returned %q, want no-path", msg)
	}
}

func TestInvestigate_UnlockWithHeldKey(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Join(ctx, "alice", "Sala1"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Investigate(ctx, "alice", "Puerta"); err != nil {
		t.Fatal(err)
	}

	// Locked and no key held: hidden dead end.
	msg, _ := engine.Investigate(ctx, "alice", "Puerta blindada")
	if msg != MsgNoPath {
		t.Errorf("locked transition returned %q, want no-path", msg)
	}

	if _, err := engine.Investigate(ctx, "alice", "Cajón"); err != nil {
		t.Fatal(err)
	}
	if msg, _ = engine.Equip(ctx, "alice", "Cajón"); !strings.Contains(msg, "Cajón") {
		t.Fatalf("equip failed: %q", msg)
	}

	msg, err := engine.Investigate(ctx, "alice", "Puerta blindada")
	if err != nil {
		t.Fatal(err)
	}
	if msg != "La llave gira y la puerta se abre." {
		t.Errorf("got %q, want unlock description", msg)
	}
	ps, _ := store.LoadPlayer(ctx, "alice")
	if ps.Path() != "AB" {
		t.Errorf("path = %q, want AB after unlock", ps.Path())
	}

	// The lock stays cleared: going back and through again is an
	// ordinary move that returns the plain description.
	if _, err := engine.Investigate(ctx, "alice", GoBack); err != nil {
		t.Fatal(err)
	}
	msg, err = engine.Investigate(ctx, "alice", "Puerta blindada")
	if err != nil {
		t.Fatal(err)
	}
	if msg != "La puerta ya está abierta" {
		t.Errorf("re-traversal returned %q, want plain description", msg)
	}
}

func TestInvestigate_FinalClearsPlayer(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Join(ctx, "alice", "Sala1"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Investigate(ctx, "alice", "Puerta"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Investigate(ctx, "alice", "Cajón"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Equip(ctx, "alice", "Cajón"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Investigate(ctx, "alice", "Puerta blindada"); err != nil {
		t.Fatal(err)
	}

	msg, err := engine.Investigate(ctx, "alice", "Salida")
	if err != nil {
		t.Fatal(err)
	}
	if msg != MsgEscaped {
		t.Errorf("got %q, want escape message", msg)
	}

	ps, _ := store.LoadPlayer(ctx, "alice")
	if ps.InRoom() {
		t.Error("player still in room after escaping")
	}

	msg, _ = engine.Investigate(ctx, "alice", "Puerta")
	if msg != MsgNotInRoom {
		t.Errorf("got %q, want not-in-room message", msg)
	}
}

func TestInvestigate_PuzzleDispatch(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Join(ctx, "alice", "Sala1"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Investigate(ctx, "alice", "Puerta"); err != nil {
		t.Fatal(err)
	}

	msg, err := engine.Investigate(ctx, "alice", "Caja fuerte")
	if err != nil {
		t.Fatal(err)
	}
	if msg != "The dial spins but nothing happens." {
		t.Errorf("got %q, want puzzle result", msg)
	}

	// Puzzles never move the player.
	ps, _ := store.LoadPlayer(ctx, "alice")
	if ps.Path() != "A" {
		t.Errorf("path = %q, want A after puzzle", ps.Path())
	}
}

func TestOptions_Idempotent(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Join(ctx, "alice", "Sala1"); err != nil {
		t.Fatal(err)
	}

	first, err := engine.Options(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Options(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("options changed without a mutation: %v vs %v", first, second)
	}

	// Root options: no go-back, no locked rows.
	want := []string{"Puerta", "Alfombra", "Estantería"}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("root options = %v, want %v", first, want)
	}

	// One level deep the go-back option appears and the locked
	// transition stays hidden.
	if _, err := engine.Investigate(ctx, "alice", "Puerta"); err != nil {
		t.Fatal(err)
	}
	opts, err := engine.Options(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	want = []string{"Cajón", "Caja fuerte", GoBack}
	if !reflect.DeepEqual(opts, want) {
		t.Errorf("options at A = %v, want %v", opts, want)
	}
}

func TestEquip_RequiresRoomInventory(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	msg, err := engine.Equip(ctx, "alice", "Cajón")
	if err != nil {
		t.Fatal(err)
	}
	if msg != MsgNotInRoom {
		t.Errorf("got %q, want not-in-room", msg)
	}

	if _, err := engine.Join(ctx, "alice", "Sala1"); err != nil {
		t.Fatal(err)
	}
	msg, err = engine.Equip(ctx, "alice", "Cajón")
	if err != nil {
		t.Fatal(err)
	}
	if msg != MsgNoSuchItem {
		t.Errorf("got %q, want no-such-item", msg)
	}
}

func TestCombine(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Join(ctx, "alice", "Sala1"); err != nil {
		t.Fatal(err)
	}

	// Combining items that are not in the inventory mutates nothing.
	msg, err := engine.Combine(ctx, "alice", "Alfombra", "Estantería")
	if err != nil {
		t.Fatal(err)
	}
	if msg != MsgMissingItems {
		t.Errorf("got %q, want missing-items", msg)
	}
	rs, _ := store.LoadRoom(ctx, "Sala1")
	if len(rs.Inventory) != 0 {
		t.Errorf("inventory mutated: %+v", rs.Inventory)
	}

	if _, err := engine.Investigate(ctx, "alice", "Alfombra"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Investigate(ctx, "alice", "Estantería"); err != nil {
		t.Fatal(err)
	}

	msg, err = engine.Combine(ctx, "alice", "Estantería", "Alfombra") // reverse order
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(msg, "Gancho") {
		t.Errorf("got %q, want combination result", msg)
	}

	rs, _ = store.LoadRoom(ctx, "Sala1")
	if !rs.HasItem("Gancho") || rs.HasItem("Alfombra") || rs.HasItem("Estantería") {
		t.Errorf("inventory after combine: %+v", rs.Inventory)
	}

	// Both items exist but no rule covers the pair.
	rs.AddItem(Item{Name: "Vela"})
	if err := store.Commit(ctx, "alice", &PlayerState{Room: "Sala1"}, "Sala1", rs); err != nil {
		t.Fatal(err)
	}
	msg, err = engine.Combine(ctx, "alice", "Gancho", "Vela")
	if err != nil {
		t.Fatal(err)
	}
	if msg != MsgCantCombine {
		t.Errorf("got %q, want cant-combine", msg)
	}
}

func TestCombine_ClearsHeldInput(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Join(ctx, "alice", "Sala1"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Investigate(ctx, "alice", "Alfombra"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Investigate(ctx, "alice", "Estantería"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Equip(ctx, "alice", "Alfombra"); err != nil {
		t.Fatal(err)
	}

	if _, err := engine.Combine(ctx, "alice", "Alfombra", "Estantería"); err != nil {
		t.Fatal(err)
	}

	ps, _ := store.LoadPlayer(ctx, "alice")
	if ps.Held != "" {
		t.Errorf("held item %q should have been cleared by combine", ps.Held)
	}
}

func TestStatCheck(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Join(ctx, "alice", "Sala1"); err != nil {
		t.Fatal(err)
	}

	msg, err := engine.StatCheck(ctx, "alice", "investigation")
	if err != nil {
		t.Fatalf("StatCheck failed: %v", err)
	}
	if !strings.Contains(msg, "investigation") || !strings.Contains(msg, "+ 3") {
		t.Errorf("stat check message %q missing stat or bonus", msg)
	}
}
