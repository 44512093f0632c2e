package models

import "time"

// CacheEntry is the serialized form of a cached value. Entries carry an
// absolute expiry so freshness can be decided without consulting the store
// that produced them.
type CacheEntry struct {
	Data      []byte `json:"data"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// NewCacheEntry builds an entry expiring ttl from now.
func NewCacheEntry(data []byte, ttl time.Duration) CacheEntry {
	now := time.Now().Unix()
	return CacheEntry{
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now + int64(ttl.Seconds()),
	}
}

// IsExpired reports whether the entry has passed its expiry time.
func (e *CacheEntry) IsExpired() bool {
	return time.Now().Unix() >= e.ExpiresAt
}

// RemainingTTL returns how long the entry stays valid, zero if expired.
func (e *CacheEntry) RemainingTTL() time.Duration {
	remaining := e.ExpiresAt - time.Now().Unix()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(remaining) * time.Second
}
