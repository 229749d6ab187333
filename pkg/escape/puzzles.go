package escape

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// PuzzleFunc resolves one puzzle attempt and returns the text shown to the
// player. Puzzles never mutate navigation state.
type PuzzleFunc func(player string) string

// PuzzleRegistry maps puzzle ids to resolvers. Rooms may only reference
// registered ids; unknown ids are rejected when the engine starts instead
// of at play time.
type PuzzleRegistry struct {
	puzzles map[string]PuzzleFunc
}

func NewPuzzleRegistry() *PuzzleRegistry {
	return &PuzzleRegistry{puzzles: make(map[string]PuzzleFunc)}
}

// Register adds a resolver. Re-registering an id is a programming error.
func (r *PuzzleRegistry) Register(id string, fn PuzzleFunc) error {
	if id == "" || fn == nil {
		return fmt.Errorf("puzzle registration requires an id and a resolver")
	}
	if _, dup := r.puzzles[id]; dup {
		return fmt.Errorf("puzzle %q is already registered", id)
	}
	r.puzzles[id] = fn
	return nil
}

// Attempt runs the resolver for id.
func (r *PuzzleRegistry) Attempt(id, player string) (string, bool) {
	fn, ok := r.puzzles[id]
	if !ok {
		return "", false
	}
	return fn(player), true
}

// Has reports whether an id is registered.
func (r *PuzzleRegistry) Has(id string) bool {
	_, ok := r.puzzles[id]
	return ok
}

// DefaultRegistry returns the puzzles the bundled rooms reference.
func DefaultRegistry() (*PuzzleRegistry, error) {
	r := NewPuzzleRegistry()
	if err := r.Register("safe_code", SafeCode); err != nil {
		return nil, err
	}
	return r, nil
}

// SafeCode hands each player a personal four-digit combination, stable
// across attempts so hints can refer back to it.
func SafeCode(player string) string {
	h := fnv.New32a()
	h.Write([]byte(player))
	return fmt.Sprintf("The dial clicks softly. A four-digit sequence comes to mind: %04d.", h.Sum32()%10000)
}

// IDs lists registered puzzle ids, sorted.
func (r *PuzzleRegistry) IDs() []string {
	ids := make([]string, 0, len(r.puzzles))
	for id := range r.puzzles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
