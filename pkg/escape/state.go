package escape

import "strings"

// Item is one entry in a room's shared inventory.
type Item struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PlayerState is a player's position inside an escape room. A zero Room
// means the player is not playing and may join a room.
type PlayerState struct {
	Room string `json:"room,omitempty"`
	// Trail is the stack of traversed segments; "go back" pops one.
	Trail []string `json:"trail,omitempty"`
	// Held is the single equipped item. Equipping replaces it silently.
	Held  string         `json:"held,omitempty"`
	Stats map[string]int `json:"stats,omitempty"`
}

// InRoom reports whether the player is currently inside a room.
func (p *PlayerState) InRoom() bool {
	return p.Room != ""
}

// Path is the depth path encoded by the trail.
func (p *PlayerState) Path() string {
	return strings.Join(p.Trail, "")
}

// RoomState is the mutable, shared world state of one room: which pickups
// have been taken, which locks have been cleared, and the item inventory.
type RoomState struct {
	Consumed  map[string]bool `json:"consumed,omitempty"`
	Unlocked  map[string]bool `json:"unlocked,omitempty"`
	Inventory []Item          `json:"inventory,omitempty"`
}

func NewRoomState() *RoomState {
	return &RoomState{
		Consumed: make(map[string]bool),
		Unlocked: make(map[string]bool),
	}
}

// HasItem reports whether the room inventory holds an item by exact name.
func (s *RoomState) HasItem(name string) bool {
	for _, it := range s.Inventory {
		if it.Name == name {
			return true
		}
	}
	return false
}

// AddItem appends an item to the room inventory.
func (s *RoomState) AddItem(item Item) {
	s.Inventory = append(s.Inventory, item)
}

// RemoveItem hard-deletes the first inventory item with the given name.
func (s *RoomState) RemoveItem(name string) bool {
	for i, it := range s.Inventory {
		if it.Name == name {
			s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
			return true
		}
	}
	return false
}
