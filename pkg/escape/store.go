package escape

import "context"

// Store persists player and room play state. Implementations must make
// Commit atomic: either both states land or neither does, so no action is
// ever half-applied.
type Store interface {
	// LoadPlayer returns the player's state, or a fresh not-playing
	// state when none is stored.
	LoadPlayer(ctx context.Context, player string) (*PlayerState, error)

	// LoadRoom returns the room's mutable state, or a fresh empty state
	// when none is stored.
	LoadRoom(ctx context.Context, roomName string) (*RoomState, error)

	// Commit writes a player state and, when rs is non-nil, the room
	// state, in one atomic step.
	Commit(ctx context.Context, player string, ps *PlayerState, roomName string, rs *RoomState) error
}
