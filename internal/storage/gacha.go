package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ringo-rp/ringobot/pkg/gacha"
)

// InventoryItem is one stacked prize in a player's gacha inventory.
type InventoryItem struct {
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	ObtainedAt time.Time `json:"obtained_at"`
}

// RollRecord is one archived gacha pull.
type RollRecord struct {
	ID        uuid.UUID      `json:"id"`
	PlayerID  string         `json:"player_id"`
	Type      gacha.RollType `json:"roll_type"`
	Cost      int            `json:"cost"`
	Items     []string       `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
}

// SaveRoll archives a pull and stacks its prizes into the player's
// inventory, all in one transaction.
func (s *SQLiteStore) SaveRoll(ctx context.Context, playerID string, result gacha.RollResult) (*RollRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin save roll: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	record := &RollRecord{
		ID:        uuid.New(),
		PlayerID:  playerID,
		Type:      result.Type,
		Cost:      result.Cost,
		Items:     make([]string, 0, len(result.Prizes)),
		CreatedAt: fromMillis(toMillis(now)),
	}
	for _, p := range result.Prizes {
		record.Items = append(record.Items, p.Name)
	}

	items, err := json.Marshal(record.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal roll items: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO roll_history (id, player_id, roll_type, cost, items, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID.String(), playerID, string(record.Type), record.Cost, string(items), toMillis(now)); err != nil {
		return nil, fmt.Errorf("insert roll: %w", err)
	}

	for _, p := range result.Prizes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_inventory (player_id, item_name, quantity, obtained_at)
			 VALUES (?, ?, 1, ?)
			 ON CONFLICT(player_id, item_name) DO UPDATE SET quantity = quantity + 1`,
			playerID, p.Name, toMillis(now)); err != nil {
			return nil, fmt.Errorf("stack prize %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save roll: %w", err)
	}
	s.logger.Info("gacha roll saved", "player_id", playerID, "type", record.Type, "prizes", len(record.Items))
	return record, nil
}

// Inventory lists a player's stacked prizes, alphabetically.
func (s *SQLiteStore) Inventory(ctx context.Context, playerID string) ([]InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_name, quantity, obtained_at
		 FROM user_inventory WHERE player_id = ? ORDER BY item_name ASC`, playerID)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	var out []InventoryItem
	for rows.Next() {
		var item InventoryItem
		var obtained int64
		if err := rows.Scan(&item.Name, &item.Quantity, &obtained); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		item.ObtainedAt = fromMillis(obtained)
		out = append(out, item)
	}
	return out, rows.Err()
}

// RollHistory lists a player's archived pulls, newest first.
func (s *SQLiteStore) RollHistory(ctx context.Context, playerID string, limit int) ([]RollRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player_id, roll_type, cost, items, created_at
		 FROM roll_history WHERE player_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query roll history: %w", err)
	}
	defer rows.Close()

	var out []RollRecord
	for rows.Next() {
		var r RollRecord
		var id, rollType, items string
		var created int64
		if err := rows.Scan(&id, &r.PlayerID, &rollType, &r.Cost, &items, &created); err != nil {
			return nil, fmt.Errorf("scan roll: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse roll id %q: %w", id, err)
		}
		if err := json.Unmarshal([]byte(items), &r.Items); err != nil {
			return nil, fmt.Errorf("unmarshal roll items: %w", err)
		}
		r.ID = parsed
		r.Type = gacha.RollType(rollType)
		r.CreatedAt = fromMillis(created)
		out = append(out, r)
	}
	return out, rows.Err()
}
