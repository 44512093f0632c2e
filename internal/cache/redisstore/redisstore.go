package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/bsalter/interactions-client/internal/interfaces"
	"github.com/bsalter/interactions-client/internal/metrics"
	"github.com/bsalter/interactions-client/internal/models"
)

// Ensure Store implements interfaces.Cache
var _ interfaces.Cache = (*Store)(nil)

const opTimeout = 2 * time.Second

// Store is the durable cache tier backed by Redis. Every operation is
// best-effort: failures are logged and swallowed, never propagated, since
// the transient tier is authoritative within a session.
type Store struct {
	client interfaces.RedisClient
	logger *zap.Logger
}

// New creates a durable store over the provided client.
func New(client interfaces.RedisClient, logger *zap.Logger) *Store {
	return &Store{
		client: client,
		logger: logger,
	}
}

// Get retrieves the value for key if present and unexpired. Any client
// error, a corrupt entry, or an expired entry reads as absent.
func (s *Store) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("Durable cache get error", zap.String("key", key), zap.Error(err))
			metrics.RecordCacheError("redis", "get")
		}
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		s.logger.Warn("Failed to unmarshal durable cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("redis", "decode")
		s.client.Del(context.Background(), key)
		return nil, false
	}

	if entry.IsExpired() {
		s.client.Del(context.Background(), key)
		return nil, false
	}

	return entry.Data, true
}

// Set stores val under key with the given TTL. The Redis expiration matches
// the entry's own expiry so stale data ages out server-side too.
func (s *Store) Set(key string, val []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	entry := models.NewCacheEntry(val, ttl)

	data, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn("Failed to marshal durable cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("redis", "encode")
		return
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		s.logger.Warn("Failed to set durable cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("redis", "set")
	}
}

// Delete removes the entry for key if present.
func (s *Store) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("Failed to delete durable cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("redis", "delete")
	}
}

// ClearPrefix removes every key starting with prefix via SCAN and returns
// the number of keys deleted.
func (s *Store) ClearPrefix(prefix string) int {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	removed := 0
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			s.logger.Warn("Durable cache scan error", zap.String("prefix", prefix), zap.Error(err))
			metrics.RecordCacheError("redis", "scan")
			return removed
		}

		if len(keys) > 0 {
			deleted, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				s.logger.Warn("Durable cache bulk delete error", zap.String("prefix", prefix), zap.Error(err))
				metrics.RecordCacheError("redis", "delete")
			} else {
				removed += int(deleted)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return removed
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
