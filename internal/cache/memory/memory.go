package memory

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.uber.org/zap"

	"github.com/bsalter/interactions-client/internal/interfaces"
	"github.com/bsalter/interactions-client/internal/metrics"
	"github.com/bsalter/interactions-client/internal/models"
)

// Ensure Store implements interfaces.Cache
var _ interfaces.Cache = (*Store)(nil)

// Store is the transient in-memory cache tier backed by BigCache. It is the
// authoritative store within a session; the durable tier only mirrors it.
type Store struct {
	cache  *bigcache.BigCache
	logger *zap.Logger
}

// New creates an in-memory store capped at sizeMB megabytes.
func New(sizeMB int, logger *zap.Logger) (*Store, error) {
	cfg := bigcache.DefaultConfig(10 * time.Minute)
	cfg.HardMaxCacheSize = sizeMB
	cfg.Verbose = false
	cfg.MaxEntrySize = 1024 * 1024

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	return &Store{
		cache:  cache,
		logger: logger,
	}, nil
}

// Get retrieves the value for key if present and unexpired. Expired and
// corrupt entries are removed and reported as absent.
func (s *Store) Get(key string) ([]byte, bool) {
	data, err := s.cache.Get(key)
	if err != nil {
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("Failed to unmarshal memory cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("memory", "decode")
		_ = s.cache.Delete(key)
		return nil, false
	}

	if entry.IsExpired() {
		_ = s.cache.Delete(key)
		return nil, false
	}

	return entry.Data, true
}

// Set stores val under key with the given TTL, overwriting any prior entry.
func (s *Store) Set(key string, val []byte, ttl time.Duration) {
	entry := models.NewCacheEntry(val, ttl)

	data, err := json.Marshal(entry)
	if err != nil {
		s.logger.Error("Failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("memory", "encode")
		return
	}

	if err := s.cache.Set(key, data); err != nil {
		s.logger.Error("Failed to set cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("memory", "store")
	}
}

// Delete removes the entry for key if present.
func (s *Store) Delete(key string) {
	_ = s.cache.Delete(key)
}

// ClearPrefix removes every entry whose key starts with prefix and returns
// the number of entries removed. Linear scan over the key space.
func (s *Store) ClearPrefix(prefix string) int {
	var keys []string
	it := s.cache.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			continue
		}
		if strings.HasPrefix(info.Key(), prefix) {
			keys = append(keys, info.Key())
		}
	}

	removed := 0
	for _, key := range keys {
		if err := s.cache.Delete(key); err == nil {
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug("Cleared cache prefix",
			zap.String("prefix", prefix),
			zap.Int("removed", removed))
	}
	return removed
}

// Close releases the underlying cache.
func (s *Store) Close() error {
	return s.cache.Close()
}

// Stats returns entry count and capacity for diagnostics.
func (s *Store) Stats() (entries int, capacityBytes int) {
	return s.cache.Len(), s.cache.Capacity()
}
