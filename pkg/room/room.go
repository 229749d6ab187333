// Package room models an escape room as a tree of choice nodes. A node is
// identified by the path of single-character segments taken from the room
// entrance; each node owns named transitions that move the player deeper,
// hand out items, dispatch puzzles or end the room.
package room

import (
	"fmt"
	"unicode/utf8"
)

// Kind is the closed set of transition effects.
type Kind string

const (
	// KindMove appends the transition's segment to the player's path.
	KindMove Kind = "move"
	// KindPickup moves the transition's description into the room
	// inventory and consumes the transition.
	KindPickup Kind = "pickup"
	// KindFinal is the room's win condition.
	KindFinal Kind = "final"
	// KindPuzzle dispatches to a registered puzzle resolver.
	KindPuzzle Kind = "puzzle"
)

// Transition is one choice offered at a node.
type Transition struct {
	At          string `json:"at"`   // node path where this choice is visible
	Name        string `json:"name"` // player-facing label
	Description string `json:"description,omitempty"`
	Kind        Kind   `json:"action,omitempty"`  // defaults to move
	Segment     string `json:"segment,omitempty"` // single character, move only
	Puzzle      string `json:"puzzle,omitempty"`  // puzzle id, puzzle only

	// Key names the inventory item that must be held to take this
	// transition; UnlockDescription is returned when the key is used.
	Key               string `json:"key,omitempty"`
	UnlockDescription string `json:"unlock_description,omitempty"`
}

// ID keys a transition within its room for consumed/unlocked bookkeeping.
func (t *Transition) ID() string {
	return t.At + "|" + t.Name
}

// Target is the node path this transition leads to.
func (t *Transition) Target() string {
	return t.At + t.Segment
}

// CombinationRule merges two inventory items into a new one. Matching is
// unordered and scoped to the owning room.
type CombinationRule struct {
	ItemA             string `json:"item_a"`
	ItemB             string `json:"item_b"`
	Result            string `json:"result"`
	ResultDescription string `json:"result_description,omitempty"`
}

// Matches reports whether the rule covers the unordered item pair.
func (c *CombinationRule) Matches(a, b string) bool {
	return (c.ItemA == a && c.ItemB == b) || (c.ItemA == b && c.ItemB == a)
}

// Room is a static escape-room definition. Mutable play state (picked-up
// items, cleared locks, room inventory) lives in storage, not here.
type Room struct {
	Name         string            `json:"name"`
	Transitions  []Transition      `json:"transitions"`
	Combinations []CombinationRule `json:"combinations,omitempty"`
	// Stats are the ability bonuses every player starts the room with.
	Stats map[string]int `json:"stats,omitempty"`

	nodes map[string][]*Transition
}

// Validate checks structural invariants and builds the node index:
// move segments are exactly one character, puzzle transitions carry an id,
// and at most one transition exists per (node, name) pair.
func (r *Room) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("room has no name")
	}

	r.nodes = make(map[string][]*Transition)
	seen := make(map[string]bool, len(r.Transitions))

	for i := range r.Transitions {
		t := &r.Transitions[i]
		if t.Name == "" {
			return fmt.Errorf("room %s: transition at %q has no name", r.Name, t.At)
		}
		if t.Kind == "" {
			t.Kind = KindMove
		}

		switch t.Kind {
		case KindMove:
			if utf8.RuneCountInString(t.Segment) != 1 {
				return fmt.Errorf("room %s: transition %q has segment %q, want exactly one character", r.Name, t.Name, t.Segment)
			}
		case KindPickup:
			if t.Description == "" {
				return fmt.Errorf("room %s: pickup %q has no item description", r.Name, t.Name)
			}
		case KindPuzzle:
			if t.Puzzle == "" {
				return fmt.Errorf("room %s: puzzle transition %q has no puzzle id", r.Name, t.Name)
			}
		case KindFinal:
			// nothing extra
		default:
			return fmt.Errorf("room %s: transition %q has unknown action %q", r.Name, t.Name, t.Kind)
		}

		if t.Key != "" && t.Kind != KindMove {
			return fmt.Errorf("room %s: transition %q has a key but is not a move", r.Name, t.Name)
		}

		if seen[t.ID()] {
			return fmt.Errorf("room %s: duplicate transition %q at node %q", r.Name, t.Name, t.At)
		}
		seen[t.ID()] = true

		r.nodes[t.At] = append(r.nodes[t.At], t)
	}

	return nil
}

// At returns the transitions visible at a node, in definition order.
func (r *Room) At(path string) []*Transition {
	return r.nodes[path]
}

// Lookup finds the transition with an exact name at a node.
func (r *Room) Lookup(path, name string) (*Transition, bool) {
	for _, t := range r.nodes[path] {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Combine finds the combination rule for an unordered item pair.
func (r *Room) Combine(a, b string) (*CombinationRule, bool) {
	for i := range r.Combinations {
		if r.Combinations[i].Matches(a, b) {
			return &r.Combinations[i], true
		}
	}
	return nil, false
}
