// Package ledger defines the character/points domain: one registered
// character per player, a point balance that never goes below zero, and an
// append-only audit history.
package ledger

import (
	"errors"
	"time"
)

var (
	// ErrNotFound means the player has no registered character.
	ErrNotFound = errors.New("character not found")
	// ErrAlreadyRegistered means the player already has a character.
	ErrAlreadyRegistered = errors.New("player already has a character")
)

// Character is a registered role-play character with a point balance.
type Character struct {
	ID        int64     `json:"id"`
	PlayerID  string    `json:"player_id"`
	Name      string    `json:"name"`
	Points    int       `json:"points"`
	GuildID   string    `json:"guild_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry is one audit row. Delta records the requested change, which may
// differ from the applied change when the balance clamps at zero.
type Entry struct {
	ID        int64     `json:"id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ClampPoints applies a delta to a balance, flooring the result at zero.
func ClampPoints(balance, delta int) int {
	next := balance + delta
	if next < 0 {
		return 0
	}
	return next
}
