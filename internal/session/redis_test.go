package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func TestRedisGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	clientID := "client123"

	id := Identity{UserID: "user-1", Email: "ana@example.com"}
	data, _ := json.Marshal(id)
	mr.Set(identityKey(clientID), string(data))

	result, err := cache.Get(ctx, clientID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", result.UserID)
	assert.Equal(t, "ana@example.com", result.Email)
}

func TestRedisGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := cache.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestRedisGet_InvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	clientID := "client123"
	err := mr.Set(identityKey(clientID), `{"user_id":`)
	require.NoError(t, err)

	_, cacheErr := cache.Get(context.Background(), clientID)
	require.ErrorContains(t, cacheErr, "unmarshal identity failed")
}

func TestRedisSet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	clientID := "client456"

	err := cache.Set(ctx, clientID, Identity{UserID: "user-2", Email: "bob@example.com"})
	require.NoError(t, err)

	stored, e2 := mr.Get(identityKey(clientID))
	require.NoError(t, e2)
	assert.NotEmpty(t, stored)

	var id Identity
	require.NoError(t, json.Unmarshal([]byte(stored), &id))
	assert.Equal(t, "user-2", id.UserID)
}

func TestRedisSet_AppliesTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	err := cache.Set(context.Background(), "client789", Identity{UserID: "user-3"})
	require.NoError(t, err)

	ttl := mr.TTL(identityKey("client789"))
	assert.Equal(t, 30*24*time.Hour, ttl)
}

func TestRedisDelete_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	clientID := "client999"
	data, _ := json.Marshal(Identity{UserID: "user-9"})
	mr.Set(identityKey(clientID), string(data))
	assert.True(t, mr.Exists(identityKey(clientID)))

	err := cache.Delete(context.Background(), clientID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(identityKey(clientID)))
}

func TestRedisDelete_NonExistentKey(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	err := cache.Delete(context.Background(), "nonexistent")
	assert.NoError(t, err)
}

func TestIdentityKey_Format(t *testing.T) {
	assert.Equal(t, "identity:test123", identityKey("test123"))
}
