package transport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bsalter/interactions-client/internal/policy"
)

// recordingCache is an in-memory Cache that records Set TTLs.
type recordingCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		entries: map[string][]byte{},
		ttls:    map[string]time.Duration{},
	}
}

func (c *recordingCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.entries[key]
	return val, ok
}

func (c *recordingCache) Set(key string, val []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = val
	c.ttls[key] = ttl
}

func (c *recordingCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *recordingCache) ClearPrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *recordingCache) Close() error { return nil }

func (c *recordingCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func newTestTransport(upstream http.RoundTripper) (*CachingTransport, *recordingCache) {
	store := newRecordingCache()
	return NewCachingTransport(upstream, store, policy.NewCachePolicy(), zap.NewNop()), store
}

func get(t *testing.T, rt http.RoundTripper, url string, modify ...func(*http.Request)) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for _, m := range modify {
		m(req)
	}
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestCachingTransport_HitSkipsUpstream(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		_, _ = w.Write([]byte(`{"interactions":[]}`))
	}))
	defer server.Close()

	rt, _ := newTestTransport(http.DefaultTransport)

	first := get(t, rt, server.URL+"/api/interactions?site_id=1")
	assert.Equal(t, `{"interactions":[]}`, body(t, first))
	assert.Empty(t, first.Header.Get(HeaderCacheStatus))

	second := get(t, rt, server.URL+"/api/interactions?site_id=1")
	assert.Equal(t, `{"interactions":[]}`, body(t, second))
	assert.Equal(t, "HIT", second.Header.Get(HeaderCacheStatus))

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestCachingTransport_ParamOrderIrrelevant(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	rt, _ := newTestTransport(http.DefaultTransport)

	body(t, get(t, rt, server.URL+"/api/interactions?a=1&b=2"))
	body(t, get(t, rt, server.URL+"/api/interactions?b=2&a=1"))

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestCachingTransport_ExcludedPathNeverCached(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	rt, store := newTestTransport(http.DefaultTransport)

	body(t, get(t, rt, server.URL+"/api/auth/profile"))
	body(t, get(t, rt, server.URL+"/api/auth/profile"))

	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
	assert.Equal(t, 0, store.len())
}

func TestCachingTransport_PostPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	rt, store := newTestTransport(http.DefaultTransport)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/interactions", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	body(t, resp)

	assert.Equal(t, 0, store.len())
}

func TestCachingTransport_NoCacheHeaderBypasses(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	rt, _ := newTestTransport(http.DefaultTransport)

	noCache := func(req *http.Request) { req.Header.Set("Cache-Control", "no-cache") }
	body(t, get(t, rt, server.URL+"/api/interactions", noCache))
	body(t, get(t, rt, server.URL+"/api/interactions", noCache))

	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestCachingTransport_CacheFalseParamBypasses(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	rt, _ := newTestTransport(http.DefaultTransport)

	body(t, get(t, rt, server.URL+"/api/interactions?cache=false"))
	body(t, get(t, rt, server.URL+"/api/interactions?cache=false"))

	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestCachingTransport_ErrorResponseNotCached(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	rt, store := newTestTransport(http.DefaultTransport)

	resp := get(t, rt, server.URL+"/api/interactions/99")
	body(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 0, store.len())

	body(t, get(t, rt, server.URL+"/api/interactions/99"))
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestCachingTransport_TTLOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The internal TTL header must never reach the backend
		assert.Empty(t, r.Header.Get(HeaderCacheTTL))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	rt, store := newTestTransport(http.DefaultTransport)

	body(t, get(t, rt, server.URL+"/api/interactions", func(req *http.Request) {
		req.Header.Set(HeaderCacheTTL, "30s")
	}))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.ttls, 1)
	for _, ttl := range store.ttls {
		assert.Equal(t, 30*time.Second, ttl)
	}
}

func TestCachingTransport_ConcurrentIdenticalRequestsShareOneCall(t *testing.T) {
	var calls int64
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		<-release
		_, _ = w.Write([]byte(`{"shared":true}`))
	}))
	defer server.Close()

	rt, _ := newTestTransport(http.DefaultTransport)

	const workers = 8
	var wg sync.WaitGroup
	results := make([]string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := get(t, rt, server.URL+"/api/interactions?site_id=1")
			results[i] = body(t, resp)
		}(i)
	}

	// Give every worker time to join the in-flight group, then let the
	// single upstream call finish.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	for _, result := range results {
		assert.Equal(t, `{"shared":true}`, result)
	}
}
