package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"clubportal/internal/shared/logger"
)

// RedisBackend stores each namespace as one hash, key "<prefix><namespace>".
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

// RedisOptions configures a RedisBackend.
type RedisOptions struct {
	Prefix string
	// TTL expires an idle namespace. Zero keeps it forever.
	TTL time.Duration
}

// NewRedisBackend creates a backend on an existing client.
func NewRedisBackend(client redis.UniversalClient, opts RedisOptions, log logger.Logger) *RedisBackend {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if opts.Prefix == "" {
		opts.Prefix = "clubportal:profile:"
	}
	return &RedisBackend{
		client: client,
		prefix: opts.Prefix,
		ttl:    opts.TTL,
		logger: log.WithComponent("storage.redis"),
	}
}

func (r *RedisBackend) key(namespace string) string {
	return r.prefix + namespace
}

func (r *RedisBackend) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	v, err := r.client.HGet(ctx, r.key(namespace), key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s/%s: %w", namespace, key, err)
	}
	return v, true, nil
}

// Set writes all fields and refreshes the TTL inside one MULTI/EXEC block.
func (r *RedisBackend) Set(ctx context.Context, namespace string, values map[string]string) error {
	fields := make([]interface{}, 0, len(values)*2)
	for k, v := range values {
		fields = append(fields, k, v)
	}
	hashKey := r.key(namespace)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, hashKey, fields...)
		if r.ttl > 0 {
			pipe.Expire(ctx, hashKey, r.ttl)
		}
		return nil
	})
	if err != nil {
		r.logger.WithFields(map[string]interface{}{
			"namespace": namespace,
			"fields":    len(values),
		}).Errorf("Failed to write namespace: %v", err)
		return fmt.Errorf("redis set %s: %w", namespace, err)
	}
	return nil
}

func (r *RedisBackend) Remove(ctx context.Context, namespace string, keys ...string) error {
	if err := r.client.HDel(ctx, r.key(namespace), keys...).Err(); err != nil {
		return fmt.Errorf("redis remove %s: %w", namespace, err)
	}
	return nil
}

// Ping checks connectivity.
func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) Close(context.Context) error {
	return r.client.Close()
}

// NewRedisClient builds a client with the connection timeouts used across the edge.
func NewRedisClient(addr, password string, db int, poolSize int) *redis.Client {
	if poolSize <= 0 {
		poolSize = 10
	}
	return redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		DB:              db,
		PoolSize:        poolSize,
		MaxRetries:      3,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolTimeout:     4 * time.Second,
		ConnMaxIdleTime: 30 * time.Minute,
	})
}
