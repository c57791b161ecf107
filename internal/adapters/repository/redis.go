package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/okian/coinrush/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey holds the board when no key is configured.
const DefaultRedisKey = "coinrush:leaderboard"

// RedisBackend stores the whole board as one JSON value under a key. A
// single SET replaces it, so readers never see a partial board.
type RedisBackend struct {
	client *redis.Client
	key    string
}

// NewRedisBackend wraps an existing client.
func NewRedisBackend(client *redis.Client, key string) *RedisBackend {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisBackend{client: client, key: key}
}

// OpenRedis connects and pings the server.
func OpenRedis(ctx context.Context, addr, password string, db int, key string) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return NewRedisBackend(client, key), nil
}

func (r *RedisBackend) Name() string { return "redis" }

func (r *RedisBackend) Load(ctx context.Context) (model.Board, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Board{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.key, err)
	}
	var board model.Board
	if err := json.Unmarshal(raw, &board); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return board.Clone(), nil
}

func (r *RedisBackend) Save(ctx context.Context, board model.Board) error {
	raw, err := json.Marshal(board.Clone())
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	if err := r.client.Set(ctx, r.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisBackend) Close() error { return r.client.Close() }
