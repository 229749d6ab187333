package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ringo-rp/ringobot/pkg/ledger"
)

// RegisterCharacter creates the character for a player. A player has at
// most one character.
func (s *SQLiteStore) RegisterCharacter(ctx context.Context, playerID, name, guildID string) (*ledger.Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("character name is required")
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO characters (player_id, name, points, guild_id, created_at, updated_at)
		 VALUES (?, ?, 0, ?, ?, ?)`,
		playerID, name, guildID, toMillis(now), toMillis(now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ledger.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("insert character: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("character id: %w", err)
	}

	s.logger.Info("character registered", "player_id", playerID, "name", name)
	return &ledger.Character{
		ID:        id,
		PlayerID:  playerID,
		Name:      name,
		GuildID:   guildID,
		CreatedAt: fromMillis(toMillis(now)),
		UpdatedAt: fromMillis(toMillis(now)),
	}, nil
}

// GetCharacter loads a player's character.
func (s *SQLiteStore) GetCharacter(ctx context.Context, playerID string) (*ledger.Character, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, player_id, name, points, guild_id, created_at, updated_at
		 FROM characters WHERE player_id = ?`, playerID)
	return scanCharacter(row)
}

// AdjustPoints applies a delta to a character's balance, clamping at zero,
// and records the requested delta in the audit history. Both writes happen
// in one transaction.
func (s *SQLiteStore) AdjustPoints(ctx context.Context, playerID string, delta int, reason, actorID string) (*ledger.Character, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin adjust: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	c, err := adjustPointsTx(ctx, tx, playerID, delta, reason, actorID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit adjust: %w", err)
	}
	s.logger.Info("points adjusted", "player_id", playerID, "delta", delta, "balance", c.Points)
	return c, nil
}

// adjustPointsTx is the transactional core of AdjustPoints, shared with
// quest approval so a reward grant rides the approval transaction.
func adjustPointsTx(ctx context.Context, tx *sql.Tx, playerID string, delta int, reason, actorID string) (*ledger.Character, error) {
	c, err := scanCharacter(tx.QueryRowContext(ctx,
		`SELECT id, player_id, name, points, guild_id, created_at, updated_at
		 FROM characters WHERE player_id = ?`, playerID))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c.Points = ledger.ClampPoints(c.Points, delta)
	c.UpdatedAt = fromMillis(toMillis(now))

	if _, err := tx.ExecContext(ctx,
		`UPDATE characters SET points = ?, updated_at = ? WHERE id = ?`,
		c.Points, toMillis(now), c.ID); err != nil {
		return nil, fmt.Errorf("update points: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO point_history (character_id, delta, reason, actor_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, delta, reason, actorID, toMillis(now)); err != nil {
		return nil, fmt.Errorf("insert history: %w", err)
	}
	return c, nil
}

// Leaderboard returns characters ordered by points, highest first. An
// empty guildID means all guilds.
func (s *SQLiteStore) Leaderboard(ctx context.Context, guildID string, limit int) ([]ledger.Character, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT id, player_id, name, points, guild_id, created_at, updated_at
		 FROM characters`
	args := []any{}
	if guildID != "" {
		query += ` WHERE guild_id = ?`
		args = append(args, guildID)
	}
	query += ` ORDER BY points DESC, name ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []ledger.Character
	for rows.Next() {
		var c ledger.Character
		var created, updated int64
		if err := rows.Scan(&c.ID, &c.PlayerID, &c.Name, &c.Points, &c.GuildID, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		c.CreatedAt = fromMillis(created)
		c.UpdatedAt = fromMillis(updated)
		out = append(out, c)
	}
	return out, rows.Err()
}

// PointHistory returns a character's audit entries, newest first.
func (s *SQLiteStore) PointHistory(ctx context.Context, playerID string, limit int) ([]ledger.Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	c, err := s.GetCharacter(ctx, playerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, delta, reason, actor_id, created_at
		 FROM point_history WHERE character_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`, c.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.Delta, &e.Reason, &e.ActorID, &created); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.CreatedAt = fromMillis(created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteCharacter removes a character and, via cascade, its history.
func (s *SQLiteStore) DeleteCharacter(ctx context.Context, playerID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE player_id = ?`, playerID)
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	s.logger.Info("character deleted", "player_id", playerID)
	return nil
}

func scanCharacter(row *sql.Row) (*ledger.Character, error) {
	var c ledger.Character
	var created, updated int64
	err := row.Scan(&c.ID, &c.PlayerID, &c.Name, &c.Points, &c.GuildID, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan character: %w", err)
	}
	c.CreatedAt = fromMillis(created)
	c.UpdatedAt = fromMillis(updated)
	return &c, nil
}

// isUniqueViolation matches SQLite constraint errors without depending on
// driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
