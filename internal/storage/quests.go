package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ringo-rp/ringobot/pkg/ledger"
	"github.com/ringo-rp/ringobot/pkg/quest"
)

// CreateQuest opens a pending quest request for a player. Only one pending
// request per player is allowed.
func (s *SQLiteStore) CreateQuest(ctx context.Context, playerID string) (*quest.Quest, error) {
	q := &quest.Quest{
		ID:        uuid.New(),
		PlayerID:  playerID,
		Status:    quest.StatusPending,
		CreatedAt: fromMillis(toMillis(time.Now())),
	}
	q.UpdatedAt = q.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quests (id, player_id, description, reward, status, created_at, updated_at)
		 VALUES (?, ?, '', '', ?, ?, ?)`,
		q.ID.String(), playerID, string(q.Status), toMillis(q.CreatedAt), toMillis(q.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, quest.ErrPendingExists
		}
		return nil, fmt.Errorf("insert quest: %w", err)
	}

	s.logger.Info("quest requested", "quest_id", q.ID, "player_id", playerID)
	return q, nil
}

// GetQuest loads one quest by id.
func (s *SQLiteStore) GetQuest(ctx context.Context, id uuid.UUID) (*quest.Quest, error) {
	return scanQuest(s.db.QueryRowContext(ctx,
		`SELECT id, player_id, description, reward, status, created_at, updated_at
		 FROM quests WHERE id = ?`, id.String()))
}

// AssignQuest fills in a pending quest's description and reward and
// activates it.
func (s *SQLiteStore) AssignQuest(ctx context.Context, id uuid.UUID, description, reward string) (*quest.Quest, error) {
	return s.transition(ctx, id, quest.StatusActive, func(q *quest.Quest) {
		q.Description = description
		q.Reward = reward
	})
}

// CompleteQuest marks an active quest as done, awaiting approval. Only the
// quest's owner may complete it.
func (s *SQLiteStore) CompleteQuest(ctx context.Context, id uuid.UUID, playerID string) (*quest.Quest, error) {
	q, err := s.GetQuest(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.PlayerID != playerID {
		return nil, quest.ErrNotQuestOwner
	}
	return s.transition(ctx, id, quest.StatusCompleted, nil)
}

// ApproveQuest accepts a completed quest and grants the reward points
// parsed from its reward text, both in one transaction. The returned int
// is the number of points granted; a player without a character gets the
// approval but no points.
func (s *SQLiteStore) ApproveQuest(ctx context.Context, id uuid.UUID, actorID string) (*quest.Quest, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin approve: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q, err := transitionTx(ctx, tx, id, quest.StatusApproved, nil)
	if err != nil {
		return nil, 0, err
	}

	awarded := quest.RewardPoints(q.Reward)
	if awarded > 0 {
		_, err := adjustPointsTx(ctx, tx, q.PlayerID, awarded, "quest reward: "+q.ID.String(), actorID)
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			// Approval stands even when the player never registered a
			// character; there is just no balance to credit.
			awarded = 0
		case err != nil:
			return nil, 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit approve: %w", err)
	}
	s.logger.Info("quest approved", "quest_id", q.ID, "player_id", q.PlayerID, "points", awarded)
	return q, awarded, nil
}

// RejectQuest sends a completed quest back to active.
func (s *SQLiteStore) RejectQuest(ctx context.Context, id uuid.UUID) (*quest.Quest, error) {
	return s.transition(ctx, id, quest.StatusActive, nil)
}

// AbandonQuest lets the owner give up a pending or active quest.
func (s *SQLiteStore) AbandonQuest(ctx context.Context, id uuid.UUID, playerID string) (*quest.Quest, error) {
	q, err := s.GetQuest(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.PlayerID != playerID {
		return nil, quest.ErrNotQuestOwner
	}
	return s.transition(ctx, id, quest.StatusAbandoned, nil)
}

// PendingQuests lists all pending requests, oldest first.
func (s *SQLiteStore) PendingQuests(ctx context.Context) ([]quest.Quest, error) {
	return s.queryQuests(ctx,
		`SELECT id, player_id, description, reward, status, created_at, updated_at
		 FROM quests WHERE status = ? ORDER BY created_at ASC`, string(quest.StatusPending))
}

// PlayerQuests lists one player's quests, newest first.
func (s *SQLiteStore) PlayerQuests(ctx context.Context, playerID string) ([]quest.Quest, error) {
	return s.queryQuests(ctx,
		`SELECT id, player_id, description, reward, status, created_at, updated_at
		 FROM quests WHERE player_id = ? ORDER BY created_at DESC`, playerID)
}

// transition moves a quest to a new status in its own transaction.
func (s *SQLiteStore) transition(ctx context.Context, id uuid.UUID, to quest.Status, mutate func(*quest.Quest)) (*quest.Quest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q, err := transitionTx(ctx, tx, id, to, mutate)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	s.logger.Info("quest status changed", "quest_id", q.ID, "status", q.Status)
	return q, nil
}

// transitionTx validates the state machine and writes the new status.
func transitionTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, to quest.Status, mutate func(*quest.Quest)) (*quest.Quest, error) {
	q, err := scanQuest(tx.QueryRowContext(ctx,
		`SELECT id, player_id, description, reward, status, created_at, updated_at
		 FROM quests WHERE id = ?`, id.String()))
	if err != nil {
		return nil, err
	}

	if !quest.CanTransition(q.Status, to) {
		return nil, quest.ErrInvalidTransition{From: q.Status, To: to}
	}

	q.Status = to
	if mutate != nil {
		mutate(q)
	}
	q.UpdatedAt = fromMillis(toMillis(time.Now()))

	if _, err := tx.ExecContext(ctx,
		`UPDATE quests SET description = ?, reward = ?, status = ?, updated_at = ? WHERE id = ?`,
		q.Description, q.Reward, string(q.Status), toMillis(q.UpdatedAt), q.ID.String()); err != nil {
		return nil, fmt.Errorf("update quest: %w", err)
	}
	return q, nil
}

func (s *SQLiteStore) queryQuests(ctx context.Context, query string, args ...any) ([]quest.Quest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quests: %w", err)
	}
	defer rows.Close()

	var out []quest.Quest
	for rows.Next() {
		var q quest.Quest
		var id, status string
		var created, updated int64
		if err := rows.Scan(&id, &q.PlayerID, &q.Description, &q.Reward, &status, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan quest: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse quest id %q: %w", id, err)
		}
		q.ID = parsed
		q.Status = quest.Status(status)
		q.CreatedAt = fromMillis(created)
		q.UpdatedAt = fromMillis(updated)
		out = append(out, q)
	}
	return out, rows.Err()
}

func scanQuest(row *sql.Row) (*quest.Quest, error) {
	var q quest.Quest
	var id, status string
	var created, updated int64
	err := row.Scan(&id, &q.PlayerID, &q.Description, &q.Reward, &status, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, quest.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan quest: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse quest id %q: %w", id, err)
	}
	q.ID = parsed
	q.Status = quest.Status(status)
	q.CreatedAt = fromMillis(created)
	q.UpdatedAt = fromMillis(updated)
	return &q, nil
}
