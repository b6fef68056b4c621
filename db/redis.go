package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ferminhg/poker-planning/models"
)

// RedisStore persists room snapshots as JSON values under a "room:"
// prefix. The TTL is refreshed on every Set via SET ... EX.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing redis client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func roomKey(id string) string {
	return "room:" + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.RoomState, error) {
	raw, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var state models.RoomState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", id, err)
	}
	return &state, nil
}

func (s *RedisStore) Set(ctx context.Context, id string, state *models.RoomState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", id, err)
	}
	if err := s.client.Set(ctx, roomKey(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, roomKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
