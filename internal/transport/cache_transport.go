// Package transport implements the two RoundTripper layers every request
// passes through: response caching on the outside, retry and credential
// recovery on the inside.
package transport

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/bsalter/interactions-client/internal/cache"
	"github.com/bsalter/interactions-client/internal/interfaces"
	"github.com/bsalter/interactions-client/internal/metrics"
	"github.com/bsalter/interactions-client/internal/policy"
)

// HeaderCacheTTL carries a per-request TTL override from the facade to this
// layer. It is stripped before the request goes upstream.
const HeaderCacheTTL = "X-Cache-Ttl"

// HeaderCacheStatus marks synthesized responses served from cache.
const HeaderCacheStatus = "X-Cache"

// CachingTransport short-circuits read requests with cached responses and
// populates the cache from successful upstream responses. Concurrent
// identical reads share a single upstream call through the flight group.
type CachingTransport struct {
	next   http.RoundTripper
	store  interfaces.Cache
	policy *policy.CachePolicy
	logger *zap.Logger
	group  singleflight.Group
}

// NewCachingTransport wraps next with the response cache layer.
func NewCachingTransport(next http.RoundTripper, store interfaces.Cache, cachePolicy *policy.CachePolicy, logger *zap.Logger) *CachingTransport {
	return &CachingTransport{
		next:   next,
		store:  store,
		policy: cachePolicy,
		logger: logger,
	}
}

// upstreamResult is the shared outcome of one upstream call.
type upstreamResult struct {
	status int
	header http.Header
	body   []byte
}

func (t *CachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ttlOverride, hasOverride := t.ttlOverride(req)

	if !t.cacheable(req) {
		return t.next.RoundTrip(req)
	}

	category := t.policy.CategoryForPath(req.URL.Path)
	key := cache.RequestKey(category, req.URL)
	metrics.RecordCacheRequest(string(category))

	if data, found := t.store.Get(key); found {
		metrics.RecordCacheHit(string(category), "transport")
		t.logger.Debug("Cache hit", zap.String("key", key))
		return synthesizeResponse(req, data), nil
	}
	metrics.RecordCacheMiss(string(category))

	v, err, _ := t.group.Do(key, func() (interface{}, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			ttl := t.policy.TTLFor(category)
			if hasOverride {
				ttl = ttlOverride
			}
			// Cache population is best-effort: the store never errors and a
			// failed write must not fail the request.
			t.store.Set(key, body, ttl)
		}

		return &upstreamResult{
			status: resp.StatusCode,
			header: resp.Header.Clone(),
			body:   body,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	result := v.(*upstreamResult)
	return &http.Response{
		StatusCode:    result.status,
		Status:        fmt.Sprintf("%d %s", result.status, http.StatusText(result.status)),
		Header:        result.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(result.body)),
		ContentLength: int64(len(result.body)),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Request:       req,
	}, nil
}

// cacheable applies the reject-fast gate: global disable, non-read method,
// excluded path, or an explicit caller opt-out via header or query param.
func (t *CachingTransport) cacheable(req *http.Request) bool {
	if !t.policy.Enabled {
		return false
	}
	if !t.policy.CacheableMethod(req.Method) {
		return false
	}
	if t.policy.Excluded(req.URL.Path) {
		return false
	}
	if req.Header.Get("Cache-Control") == "no-cache" {
		return false
	}
	if req.URL.Query().Get("cache") == "false" {
		return false
	}
	return true
}

// ttlOverride extracts and strips the internal TTL header.
func (t *CachingTransport) ttlOverride(req *http.Request) (time.Duration, bool) {
	raw := req.Header.Get(HeaderCacheTTL)
	if raw == "" {
		return 0, false
	}
	req.Header.Del(HeaderCacheTTL)

	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		t.logger.Warn("Invalid cache TTL override", zap.String("value", raw))
		return 0, false
	}
	return ttl, true
}

// synthesizeResponse builds a 200 response carrying the cached body.
func synthesizeResponse(req *http.Request, data []byte) *http.Response {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set(HeaderCacheStatus, "HIT")

	return &http.Response{
		StatusCode:    http.StatusOK,
		Status:        "200 OK",
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: int64(len(data)),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Request:       req,
	}
}
