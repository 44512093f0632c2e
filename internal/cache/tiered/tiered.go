package tiered

import (
	"time"

	"go.uber.org/zap"

	"github.com/bsalter/interactions-client/internal/interfaces"
)

// Ensure Store implements interfaces.Cache
var _ interfaces.Cache = (*Store)(nil)

// Store composes the transient and durable tiers into the single cache the
// rest of the pipeline sees. Reads try the transient tier first and fall
// back to the durable one; every mutation goes to both, with the durable
// write best-effort. The transient tier is authoritative for correctness.
type Store struct {
	transient interfaces.Cache
	durable   interfaces.Cache // nil when no durable tier is configured
	logger    *zap.Logger
}

// New creates a tiered store. durable may be nil.
func New(transient, durable interfaces.Cache, logger *zap.Logger) *Store {
	return &Store{
		transient: transient,
		durable:   durable,
		logger:    logger,
	}
}

// Get reads transient-first with durable fallback.
func (s *Store) Get(key string) ([]byte, bool) {
	if val, found := s.transient.Get(key); found {
		return val, true
	}
	if s.durable != nil {
		if val, found := s.durable.Get(key); found {
			return val, true
		}
	}
	return nil, false
}

// Set writes both tiers.
func (s *Store) Set(key string, val []byte, ttl time.Duration) {
	s.transient.Set(key, val, ttl)
	if s.durable != nil {
		s.durable.Set(key, val, ttl)
	}
}

// Delete removes the key from both tiers.
func (s *Store) Delete(key string) {
	s.transient.Delete(key)
	if s.durable != nil {
		s.durable.Delete(key)
	}
}

// ClearPrefix clears the prefix in both tiers and returns the total number
// of entries removed.
func (s *Store) ClearPrefix(prefix string) int {
	removed := s.transient.ClearPrefix(prefix)
	if s.durable != nil {
		removed += s.durable.ClearPrefix(prefix)
	}
	return removed
}

// Close closes both tiers, returning the first error encountered.
func (s *Store) Close() error {
	err := s.transient.Close()
	if s.durable != nil {
		if derr := s.durable.Close(); err == nil {
			err = derr
		}
	}
	return err
}
