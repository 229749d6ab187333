package escape

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-memory Store for tests and local development. It
// round-trips states through JSON so callers never share pointers with the
// store, matching the behavior of a real backend.
type MemoryStore struct {
	mu      sync.Mutex
	players map[string][]byte
	rooms   map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: make(map[string][]byte),
		rooms:   make(map[string][]byte),
	}
}

func (m *MemoryStore) LoadPlayer(ctx context.Context, player string) (*PlayerState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.players[player]
	if !ok {
		return &PlayerState{}, nil
	}
	var ps PlayerState
	if err := json.Unmarshal(data, &ps); err != nil {
		return nil, err
	}
	return &ps, nil
}

func (m *MemoryStore) LoadRoom(ctx context.Context, roomName string) (*RoomState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.rooms[roomName]
	if !ok {
		return NewRoomState(), nil
	}
	var rs RoomState
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, err
	}
	if rs.Consumed == nil {
		rs.Consumed = make(map[string]bool)
	}
	if rs.Unlocked == nil {
		rs.Unlocked = make(map[string]bool)
	}
	return &rs, nil
}

func (m *MemoryStore) Commit(ctx context.Context, player string, ps *PlayerState, roomName string, rs *RoomState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	psData, err := json.Marshal(ps)
	if err != nil {
		return err
	}

	if rs != nil {
		rsData, err := json.Marshal(rs)
		if err != nil {
			return err
		}
		m.rooms[roomName] = rsData
	}

	m.players[player] = psData
	return nil
}
