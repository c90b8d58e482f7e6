package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    30 * 24 * time.Hour,
	}
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisCache) Get(ctx context.Context, clientID string) (*Identity, error) {
	data, err := r.client.Get(ctx, identityKey(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var id Identity
	if err2 := json.Unmarshal(data, &id); err2 != nil {
		return nil, fmt.Errorf("unmarshal identity failed: %w", err2)
	}

	return &id, nil
}

func (r *RedisCache) Set(ctx context.Context, clientID string, id Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity failed: %w", err)
	}

	if ret := r.client.Set(ctx, identityKey(clientID), data, r.ttl); ret.Err() != nil {
		return fmt.Errorf("redis set failed: %w", ret.Err())
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, clientID string) error {
	if err := r.client.Del(ctx, identityKey(clientID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func identityKey(clientID string) string {
	return fmt.Sprintf("identity:%s", clientID)
}
