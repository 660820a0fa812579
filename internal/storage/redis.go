package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/openquest/dungeonmaster/pkg/state"
)

// savePrefix namespaces saved-game keys in Redis.
const savePrefix = "dungeonmaster:save:"

// RedisStorage implements the Storage interface using Redis.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance.
func NewRedisStorage(redisURL string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})
	return &RedisStorage{
		client: rdb,
		logger: logger,
	}
}

// Client exposes the underlying Redis client for components that share
// the connection, like the event broadcaster.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
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

// Saved game operations

func (r *RedisStorage) SaveGame(ctx context.Context, sg *state.SavedGame) error {
	data, err := json.Marshal(sg)
	if err != nil {
		r.logger.Error("Failed to marshal saved game", "uuid", sg.ID, "error", err)
		return fmt.Errorf("failed to marshal saved game: %w", err)
	}

	key := savePrefix + sg.ID.String()
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save game", "uuid", sg.ID, "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}

	return nil
}

// LoadGame returns nil, nil when no usable save exists: missing key,
// corrupt blob, and version mismatch all degrade to a fresh game
// rather than an error.
func (r *RedisStorage) LoadGame(ctx context.Context, id uuid.UUID) (*state.SavedGame, error) {
	key := savePrefix + id.String()
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to load game", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	var sg state.SavedGame
	if err := json.Unmarshal([]byte(data), &sg); err != nil {
		r.logger.Warn("Discarding corrupt saved game", "uuid", id, "error", err)
		return nil, nil
	}
	if sg.Version != state.SaveVersion {
		r.logger.Warn("Discarding saved game with unsupported version",
			"uuid", id, "version", sg.Version, "supported", state.SaveVersion)
		return nil, nil
	}

	return &sg, nil
}

func (r *RedisStorage) DeleteGame(ctx context.Context, id uuid.UUID) error {
	key := savePrefix + id.String()
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete saved game", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete saved game: %w", err)
	}
	return nil
}

// ListGames scans for saved game keys and returns their session ids.
func (r *RedisStorage) ListGames(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	iter := r.client.Scan(ctx, 0, savePrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw := strings.TrimPrefix(iter.Val(), savePrefix)
		id, err := uuid.Parse(raw)
		if err != nil {
			r.logger.Warn("Skipping malformed saved game key", "key", iter.Val())
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list saved games: %w", err)
	}
	return ids, nil
}
