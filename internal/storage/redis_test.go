package storage

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         "localhost:6379",
		DB:           15,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func TestRedisBackend_SetGetRemove(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := createTestRedisClient()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available for testing:", err)
	}
	defer func() {
		client.FlushDB(context.Background())
		client.Close()
	}()

	backend := NewRedisBackend(client, RedisOptions{Prefix: "test:profile:", TTL: time.Minute}, nil)

	require.NoError(t, backend.Set(ctx, "p1", map[string]string{KeyToken: "tok", KeyUser: `{"uid":"u"}`}))

	v, ok, err := backend.Get(ctx, "p1", KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	ttl, err := client.TTL(ctx, "test:profile:p1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, backend.Remove(ctx, "p1", KeyToken, KeyUser))
	_, ok, err = backend.Get(ctx, "p1", KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisBackend_MissingNamespace(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := createTestRedisClient()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available for testing:", err)
	}
	defer client.Close()

	backend := NewRedisBackend(client, RedisOptions{Prefix: "test:profile:"}, nil)
	_, ok, err := backend.Get(ctx, "nobody", KeyPalette)
	require.NoError(t, err)
	assert.False(t, ok)
}
