package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ringo-rp/ringobot/pkg/escape"
)

const (
	playerKeyPrefix = "escape:player:"
	roomKeyPrefix   = "escape:room:"
)

// RedisEscapeStore persists escape-room play state in Redis. Both states
// touched by an action are written in one MULTI/EXEC transaction, so an
// action is never half-applied.
type RedisEscapeStore struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisEscapeStore implements the escape Store interface
var _ escape.Store = (*RedisEscapeStore)(nil)

// NewRedisEscapeStore creates a new Redis-backed escape store.
func NewRedisEscapeStore(redisURL string, logger *slog.Logger) *RedisEscapeStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisEscapeStore{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisEscapeStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisEscapeStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisEscapeStore) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisEscapeStore) LoadPlayer(ctx context.Context, player string) (*escape.PlayerState, error) {
	data, err := r.client.Get(ctx, playerKeyPrefix+player).Result()
	if err != nil {
		if err == redis.Nil {
			return &escape.PlayerState{}, nil
		}
		r.logger.Error("Failed to load player state", "player", player, "error", err)
		return nil, fmt.Errorf("failed to load player state: %w", err)
	}

	var ps escape.PlayerState
	if err := json.Unmarshal([]byte(data), &ps); err != nil {
		r.logger.Error("Failed to unmarshal player state", "player", player, "error", err)
		return nil, fmt.Errorf("failed to unmarshal player state: %w", err)
	}
	return &ps, nil
}

func (r *RedisEscapeStore) LoadRoom(ctx context.Context, roomName string) (*escape.RoomState, error) {
	data, err := r.client.Get(ctx, roomKeyPrefix+roomName).Result()
	if err != nil {
		if err == redis.Nil {
			return escape.NewRoomState(), nil
		}
		r.logger.Error("Failed to load room state", "room", roomName, "error", err)
		return nil, fmt.Errorf("failed to load room state: %w", err)
	}

	var rs escape.RoomState
	if err := json.Unmarshal([]byte(data), &rs); err != nil {
		r.logger.Error("Failed to unmarshal room state", "room", roomName, "error", err)
		return nil, fmt.Errorf("failed to unmarshal room state: %w", err)
	}
	if rs.Consumed == nil {
		rs.Consumed = make(map[string]bool)
	}
	if rs.Unlocked == nil {
		rs.Unlocked = make(map[string]bool)
	}
	return &rs, nil
}

func (r *RedisEscapeStore) Commit(ctx context.Context, player string, ps *escape.PlayerState, roomName string, rs *escape.RoomState) error {
	psData, err := json.Marshal(ps)
	if err != nil {
		return fmt.Errorf("failed to marshal player state: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, playerKeyPrefix+player, psData, 0)

	if rs != nil {
		rsData, err := json.Marshal(rs)
		if err != nil {
			return fmt.Errorf("failed to marshal room state: %w", err)
		}
		pipe.Set(ctx, roomKeyPrefix+roomName, rsData, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to commit escape state", "player", player, "room", roomName, "error", err)
		return fmt.Errorf("failed to commit escape state: %w", err)
	}
	return nil
}
