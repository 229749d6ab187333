// Package escape drives escape-room play: joining rooms, navigating the
// choice tree, picking up and combining items, and unlocking paths with
// held keys. Room definitions are static; all play state goes through a
// Store.
package escape

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/jwebster45206/d20"

	"github.com/ringo-rp/ringobot/pkg/dice"
	"github.com/ringo-rp/ringobot/pkg/room"
)

// GoBack is the synthetic choice that pops one segment off the trail.
const GoBack = "go back"

// Player-facing outcome messages. Business outcomes are messages, not
// errors; errors are reserved for storage and data failures.
const (
	MsgNotInRoom     = "You're not in an escape room."
	MsgAlreadyInRoom = "You haven't escaped the room you're in yet."
	MsgUnknownRoom   = "That room doesn't exist."
	MsgWentBack      = "You went back to the previous spot."
	MsgEscaped       = "**You have escaped.**"
	MsgNoPath        = "You can't go that way."
	MsgNoSuchItem    = "You don't have that."
	MsgMissingItems  = "You don't have those items."
	MsgCantCombine   = "You can't combine those."
)

// Engine resolves escape-room actions. Mutations are serialized per player
// and per room, so concurrent commands cannot interleave a half-read,
// half-written state.
type Engine struct {
	rooms   map[string]*room.Room
	store   Store
	puzzles *PuzzleRegistry
	logger  *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	playerLocks keyedMutex
	roomLocks   keyedMutex
}

// NewEngine validates that every puzzle referenced by a room definition is
// registered, then returns a ready engine.
func NewEngine(rooms map[string]*room.Room, store Store, puzzles *PuzzleRegistry, rng *rand.Rand, logger *slog.Logger) (*Engine, error) {
	if puzzles == nil {
		puzzles = NewPuzzleRegistry()
	}
	for _, r := range rooms {
		for i := range r.Transitions {
			t := &r.Transitions[i]
			if t.Kind == room.KindPuzzle && !puzzles.Has(t.Puzzle) {
				return nil, fmt.Errorf("room %s references unregistered puzzle %q", r.Name, t.Puzzle)
			}
		}
	}

	return &Engine{
		rooms:   rooms,
		store:   store,
		puzzles: puzzles,
		logger:  logger,
		rng:     rng,
	}, nil
}

// Rooms lists the loaded room names.
func (e *Engine) Rooms() []string {
	names := make([]string, 0, len(e.rooms))
	for name := range e.rooms {
		names = append(names, name)
	}
	return names
}

// Join puts a not-playing player at the entrance of a room. Players
// already inside a room are told to escape first; their state is kept.
func (e *Engine) Join(ctx context.Context, player, roomName string) (string, error) {
	defer e.playerLocks.lock(player)()

	ps, err := e.store.LoadPlayer(ctx, player)
	if err != nil {
		return "", err
	}
	if ps.InRoom() {
		return MsgAlreadyInRoom, nil
	}

	r, ok := e.rooms[roomName]
	if !ok {
		return MsgUnknownRoom, nil
	}

	next := &PlayerState{Room: r.Name}
	if len(r.Stats) > 0 {
		next.Stats = make(map[string]int, len(r.Stats))
		for k, v := range r.Stats {
			next.Stats[k] = v
		}
	}

	if err := e.store.Commit(ctx, player, next, "", nil); err != nil {
		return "", err
	}
	e.logger.Info("player joined room", "player", player, "room", r.Name)
	return fmt.Sprintf("You enter %s.", r.Name), nil
}

// Investigate resolves a navigation choice. Held-key unlocks take priority
// over ordinary navigation; a choice that matches nothing is a valid
// dead-end, not an error.
func (e *Engine) Investigate(ctx context.Context, player, choice string) (string, error) {
	defer e.playerLocks.lock(player)()

	ps, err := e.store.LoadPlayer(ctx, player)
	if err != nil {
		return "", err
	}
	if !ps.InRoom() {
		return MsgNotInRoom, nil
	}

	r, ok := e.rooms[ps.Room]
	if !ok {
		return "", fmt.Errorf("player %s is in unknown room %q", player, ps.Room)
	}

	if choice == GoBack {
		if len(ps.Trail) > 0 {
			ps.Trail = ps.Trail[:len(ps.Trail)-1]
			if err := e.store.Commit(ctx, player, ps, "", nil); err != nil {
				return "", err
			}
		}
		return MsgWentBack, nil
	}

	defer e.roomLocks.lock(r.Name)()

	rs, err := e.store.LoadRoom(ctx, r.Name)
	if err != nil {
		return "", err
	}

	t, found := r.Lookup(ps.Path(), choice)
	if !found || rs.Consumed[t.ID()] {
		return MsgNoPath, nil
	}

	// Locked transition: the held key clears the lock once, permanently.
	if t.Key != "" && !rs.Unlocked[t.ID()] {
		if ps.Held != t.Key {
			return MsgNoPath, nil
		}
		rs.Unlocked[t.ID()] = true
		ps.Trail = append(ps.Trail, t.Segment)
		if err := e.store.Commit(ctx, player, ps, r.Name, rs); err != nil {
			return "", err
		}
		e.logger.Info("lock cleared", "player", player, "room", r.Name, "transition", t.Name)
		return t.UnlockDescription, nil
	}

	switch t.Kind {
	case room.KindFinal:
		if err := e.store.Commit(ctx, player, &PlayerState{}, "", nil); err != nil {
			return "", err
		}
		e.logger.Info("player escaped", "player", player, "room", r.Name)
		return MsgEscaped, nil

	case room.KindPickup:
		rs.Consumed[t.ID()] = true
		rs.AddItem(Item{Name: t.Name, Description: t.Description})
		if err := e.store.Commit(ctx, player, ps, r.Name, rs); err != nil {
			return "", err
		}
		return fmt.Sprintf("You found a new item: %s.", t.Name), nil

	case room.KindPuzzle:
		result, ok := e.puzzles.Attempt(t.Puzzle, player)
		if !ok {
			// Guarded at startup; reaching this means the registry
			// changed underneath us.
			return "", fmt.Errorf("room %s references unregistered puzzle %q", r.Name, t.Puzzle)
		}
		return result, nil

	default: // room.KindMove
		ps.Trail = append(ps.Trail, t.Segment)
		if err := e.store.Commit(ctx, player, ps, "", nil); err != nil {
			return "", err
		}
		return t.Description, nil
	}
}

// Options lists the choices visible at the player's position: transitions
// that are not consumed and not behind an uncleared lock, plus the
// synthetic go-back option away from the room root. Read-only.
func (e *Engine) Options(ctx context.Context, player string) ([]string, error) {
	ps, err := e.store.LoadPlayer(ctx, player)
	if err != nil {
		return nil, err
	}
	if !ps.InRoom() {
		return nil, nil
	}

	r, ok := e.rooms[ps.Room]
	if !ok {
		return nil, fmt.Errorf("player %s is in unknown room %q", player, ps.Room)
	}
	rs, err := e.store.LoadRoom(ctx, r.Name)
	if err != nil {
		return nil, err
	}

	var options []string
	for _, t := range r.At(ps.Path()) {
		if rs.Consumed[t.ID()] {
			continue
		}
		if t.Key != "" && !rs.Unlocked[t.ID()] {
			continue
		}
		options = append(options, t.Name)
	}
	if len(ps.Trail) > 0 {
		options = append(options, GoBack)
	}
	return options, nil
}

// Equip puts a room-inventory item into the player's hand, replacing
// whatever was held before.
func (e *Engine) Equip(ctx context.Context, player, item string) (string, error) {
	defer e.playerLocks.lock(player)()

	ps, err := e.store.LoadPlayer(ctx, player)
	if err != nil {
		return "", err
	}
	if !ps.InRoom() {
		return MsgNotInRoom, nil
	}

	rs, err := e.store.LoadRoom(ctx, ps.Room)
	if err != nil {
		return "", err
	}
	if !rs.HasItem(item) {
		return MsgNoSuchItem, nil
	}

	ps.Held = item
	if err := e.store.Commit(ctx, player, ps, "", nil); err != nil {
		return "", err
	}
	return fmt.Sprintf("You equip %s.", item), nil
}

// Combine merges two inventory items of the player's room according to the
// room's combination rules. A missing rule changes nothing, even when both
// items exist.
func (e *Engine) Combine(ctx context.Context, player, itemA, itemB string) (string, error) {
	defer e.playerLocks.lock(player)()

	ps, err := e.store.LoadPlayer(ctx, player)
	if err != nil {
		return "", err
	}
	if !ps.InRoom() {
		return MsgNotInRoom, nil
	}

	r, ok := e.rooms[ps.Room]
	if !ok {
		return "", fmt.Errorf("player %s is in unknown room %q", player, ps.Room)
	}

	defer e.roomLocks.lock(r.Name)()

	rs, err := e.store.LoadRoom(ctx, r.Name)
	if err != nil {
		return "", err
	}
	if !rs.HasItem(itemA) || !rs.HasItem(itemB) {
		return MsgMissingItems, nil
	}

	rule, ok := r.Combine(itemA, itemB)
	if !ok {
		return MsgCantCombine, nil
	}

	rs.RemoveItem(itemA)
	rs.RemoveItem(itemB)
	rs.AddItem(Item{Name: rule.Result, Description: rule.ResultDescription})

	// The held item may have just been destroyed.
	if ps.Held == itemA || ps.Held == itemB {
		ps.Held = ""
	}

	if err := e.store.Commit(ctx, player, ps, r.Name, rs); err != nil {
		return "", err
	}
	e.logger.Info("items combined", "player", player, "room", r.Name, "result", rule.Result)
	return fmt.Sprintf("You combined them into a new item: %s.", rule.Result), nil
}

// RoomInventory lists the shared inventory of the player's current room.
func (e *Engine) RoomInventory(ctx context.Context, player string) ([]Item, error) {
	ps, err := e.store.LoadPlayer(ctx, player)
	if err != nil {
		return nil, err
	}
	if !ps.InRoom() {
		return nil, nil
	}
	rs, err := e.store.LoadRoom(ctx, ps.Room)
	if err != nil {
		return nil, err
	}
	return rs.Inventory, nil
}

// StatCheck rolls a d20 plus the player's room-sheet bonus for a stat.
func (e *Engine) StatCheck(ctx context.Context, player, stat string) (string, error) {
	ps, err := e.store.LoadPlayer(ctx, player)
	if err != nil {
		return "", err
	}
	if !ps.InRoom() {
		return MsgNotInRoom, nil
	}

	stats := ps.Stats
	if stats == nil {
		stats = map[string]int{}
	}
	actor, err := d20.NewActor(player).
		WithHP(10).
		WithAC(10).
		WithAttributes(stats).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build actor for %s: %w", player, err)
	}

	bonus := 0
	if val, ok := actor.Attribute(stat); ok {
		bonus = val
	}

	e.rngMu.Lock()
	roll, total := dice.Check(e.rng, bonus)
	e.rngMu.Unlock()

	return fmt.Sprintf("You used %s!\n`[%d] + %d`\n**Total:** %d", stat, roll, bonus, total), nil
}

// keyedMutex hands out one mutex per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the mutex for key and returns its unlock func.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
