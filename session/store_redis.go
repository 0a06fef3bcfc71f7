package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "teetime:session:"

// RedisConfig holds configuration for the Redis session store
type RedisConfig struct {
	// Redis client
	RedisClient *redis.Client
	// KeyPrefix namespaces the per-session hashes, defaults to "teetime:session:"
	KeyPrefix string
	// TTL bounds how long an idle browser session's fields are kept. Zero keeps them forever.
	TTL time.Duration
}

// RedisStore keeps each browser session's fields in one Redis hash
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ KVStore = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed store and checks the connection
func NewRedisStore(ctx context.Context, cfg *RedisConfig) (*RedisStore, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	return &RedisStore{
		client: cfg.RedisClient,
		prefix: prefix,
		ttl:    cfg.TTL,
	}, nil
}

func (r *RedisStore) key(sid string) string {
	return r.prefix + sid
}

func (r *RedisStore) Get(ctx context.Context, sid string) (map[string]string, error) {
	if sid == "" {
		return nil, errNoSessionID
	}
	fields, err := r.client.HGetAll(ctx, r.key(sid)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return fields, nil
}

func (r *RedisStore) Set(ctx context.Context, sid string, fields map[string]string) error {
	if sid == "" {
		return errNoSessionID
	}
	if len(fields) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		values = append(values, k, v)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.key(sid), values...)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key(sid), r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes fields; Redis drops the hash itself once it is empty
func (r *RedisStore) Delete(ctx context.Context, sid string, keys ...string) error {
	if sid == "" {
		return errNoSessionID
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, r.key(sid), keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete session fields: %w", err)
	}
	return nil
}
