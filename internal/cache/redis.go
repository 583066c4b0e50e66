package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/proof-extractor/internal/entity"
)

const scanBatch = 100

// RedisStore shares cached results between processes. Keys are namespaced by
// prefix; expiry is delegated to Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedisStore connects and pings Redis.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "proofs:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: cfg.TTL}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (entity.ExtractionResult, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.ExtractionResult{}, false, nil
	}
	if err != nil {
		return entity.ExtractionResult{}, false, fmt.Errorf("redis get: %w", err)
	}
	r, err := decode(val)
	if err != nil {
		return entity.ExtractionResult{}, false, fmt.Errorf("redis decode: %w", err)
	}
	return r, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, r entity.ExtractionResult) error {
	raw, err := encode(r)
	if err != nil {
		return fmt.Errorf("redis encode: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, s.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return n, fmt.Errorf("redis delete: %w", err)
		}
		n++
	}
	if err := iter.Err(); err != nil {
		return n, fmt.Errorf("redis scan: %w", err)
	}
	return n, nil
}

func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	iter := s.client.Scan(ctx, 0, s.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		size, err := s.client.StrLen(ctx, iter.Val()).Result()
		if err != nil {
			return st, fmt.Errorf("redis strlen: %w", err)
		}
		st.CachedEntries++
		st.CacheSizeBytes += size
	}
	if err := iter.Err(); err != nil {
		return st, fmt.Errorf("redis scan: %w", err)
	}
	return st, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
