package interfaces

import "time"

//go:generate mockgen -package=mock -source=cache.go -destination=mock/cache.go

// Cache is the contract shared by the transient, durable and tiered stores.
// Get returns the raw value only when an entry exists and is unexpired;
// expired entries are removed as a side effect of the lookup. No method
// returns an error: store failures degrade to misses.
type Cache interface {
	Get(key string) (val []byte, found bool)
	Set(key string, val []byte, ttl time.Duration)
	Delete(key string)
	ClearPrefix(prefix string) int
	Close() error
}
