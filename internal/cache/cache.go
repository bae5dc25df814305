// Package cache implements the cache-aside store that keeps the aggregated feed cheap to serve.
package cache

import (
	"context"
	"errors"
	"fmt"

	"backend-socialfeed/internal/logger"
	"backend-socialfeed/internal/metrics"

	"github.com/Yiling-J/theine-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// FeedKey holds the serialized global feed snapshot.
const FeedKey = "posts"

const memoryMaxEntries = 1024

// Store is a best-effort key/value cache. Get and Set never fail the caller;
// Invalidate does, because a failed delete can leave a stale snapshot behind.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Invalidate(ctx context.Context, key string) error
}

type RedisStore struct {
	client  *redis.Client
	log     logger.Logger
	metrics *metrics.Metrics
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, log logger.Logger, m *metrics.Metrics) *RedisStore {
	return &RedisStore{client: client, log: log, metrics: m}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		s.metrics.CacheMiss()
		return nil, false
	}
	s.metrics.CacheHit()
	return val, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		s.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *RedisStore) Invalidate(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	return nil
}

// MemoryStore keeps entries in process. It is only coherent for a single instance.
type MemoryStore struct {
	cache   *theine.Cache[string, []byte]
	metrics *metrics.Metrics
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(m *metrics.Metrics) (*MemoryStore, error) {
	c, err := theine.NewBuilder[string, []byte](memoryMaxEntries).Build()
	if err != nil {
		return nil, err
	}
	return &MemoryStore{cache: c, metrics: m}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	val, ok := s.cache.Get(key)
	if !ok {
		s.metrics.CacheMiss()
		return nil, false
	}
	s.metrics.CacheHit()
	return val, true
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) {
	s.cache.Set(key, value, 1)
}

func (s *MemoryStore) Invalidate(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *MemoryStore) Close() {
	s.cache.Close()
}

// New picks the redis backend when a client is available and requested,
// otherwise an in-process store.
func New(backend string, client *redis.Client, log logger.Logger, m *metrics.Metrics) (Store, error) {
	if backend != "memory" && client != nil {
		return NewRedisStore(client, log, m), nil
	}
	if backend == "redis" {
		log.Warn("redis unavailable, falling back to in-memory feed cache")
	}
	return NewMemoryStore(m)
}
