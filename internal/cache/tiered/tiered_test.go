package tiered

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeStore is an in-memory Cache for exercising tier composition.
type fakeStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	failSet bool
	closed  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string][]byte{}}
}

func (f *fakeStore) Get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.entries[key]
	return val, ok
}

func (f *fakeStore) Set(key string, val []byte, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet {
		return
	}
	f.entries[key] = val
}

func (f *fakeStore) Delete(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
}

func (f *fakeStore) ClearPrefix(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	removed := 0
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
			removed++
		}
	}
	return removed
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

func TestStore_Get_TransientFirst(t *testing.T) {
	transient := newFakeStore()
	durable := newFakeStore()
	transient.entries["key"] = []byte("from-transient")
	durable.entries["key"] = []byte("from-durable")

	store := New(transient, durable, zap.NewNop())

	val, found := store.Get("key")

	assert.True(t, found)
	assert.Equal(t, []byte("from-transient"), val)
}

func TestStore_Get_DurableFallback(t *testing.T) {
	transient := newFakeStore()
	durable := newFakeStore()
	durable.entries["key"] = []byte("from-durable")

	store := New(transient, durable, zap.NewNop())

	val, found := store.Get("key")

	assert.True(t, found)
	assert.Equal(t, []byte("from-durable"), val)
}

func TestStore_Get_MissInBothTiers(t *testing.T) {
	store := New(newFakeStore(), newFakeStore(), zap.NewNop())

	_, found := store.Get("missing")

	assert.False(t, found)
}

func TestStore_Set_WritesBothTiers(t *testing.T) {
	transient := newFakeStore()
	durable := newFakeStore()
	store := New(transient, durable, zap.NewNop())

	store.Set("key", []byte("value"), time.Minute)

	assert.Equal(t, []byte("value"), transient.entries["key"])
	assert.Equal(t, []byte("value"), durable.entries["key"])
}

func TestStore_Set_DurableFailureDoesNotAffectTransient(t *testing.T) {
	transient := newFakeStore()
	durable := newFakeStore()
	durable.failSet = true
	store := New(transient, durable, zap.NewNop())

	store.Set("key", []byte("value"), time.Minute)

	val, found := store.Get("key")
	assert.True(t, found)
	assert.Equal(t, []byte("value"), val)
}

func TestStore_WithoutDurableTier(t *testing.T) {
	transient := newFakeStore()
	store := New(transient, nil, zap.NewNop())

	store.Set("key", []byte("value"), time.Minute)
	val, found := store.Get("key")

	assert.True(t, found)
	assert.Equal(t, []byte("value"), val)

	store.Delete("key")
	_, found = store.Get("key")
	assert.False(t, found)
}

func TestStore_Delete_RemovesFromBothTiers(t *testing.T) {
	transient := newFakeStore()
	durable := newFakeStore()
	transient.entries["key"] = []byte("a")
	durable.entries["key"] = []byte("a")
	store := New(transient, durable, zap.NewNop())

	store.Delete("key")

	_, found := store.Get("key")
	assert.False(t, found)
}

func TestStore_ClearPrefix_CountsBothTiers(t *testing.T) {
	transient := newFakeStore()
	durable := newFakeStore()
	transient.entries["search:1"] = []byte("a")
	transient.entries["search:2"] = []byte("b")
	transient.entries["site:1"] = []byte("c")
	durable.entries["search:1"] = []byte("a")
	store := New(transient, durable, zap.NewNop())

	removed := store.ClearPrefix("search:")

	assert.Equal(t, 3, removed)
	_, found := store.Get("site:1")
	assert.True(t, found)
}

func TestStore_Close_ClosesBothTiers(t *testing.T) {
	transient := newFakeStore()
	durable := newFakeStore()
	store := New(transient, durable, zap.NewNop())

	assert.NoError(t, store.Close())
	assert.True(t, transient.closed)
	assert.True(t, durable.closed)
}
