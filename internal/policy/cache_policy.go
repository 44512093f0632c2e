// Package policy holds the static rule tables driving the transport layers:
// which requests are cacheable and for how long, and which failures are
// retried.
package policy

import (
	"net/http"
	"strings"
	"time"

	"github.com/bsalter/interactions-client/internal/models"
)

// DefaultTTLs is the per-category TTL table. All entries of a category share
// one TTL; there is no per-entry override below the request level.
var DefaultTTLs = map[models.CacheCategory]time.Duration{
	models.CategoryAuth:            30 * time.Minute,
	models.CategorySite:            30 * time.Minute,
	models.CategoryUserSites:       30 * time.Minute,
	models.CategoryInteraction:     10 * time.Minute,
	models.CategoryInteractionList: 5 * time.Minute,
	models.CategorySearch:          2 * time.Minute,
	models.CategoryDefault:         5 * time.Minute,
}

// DefaultExcludedPaths are path substrings never served from cache.
var DefaultExcludedPaths = []string{"auth/", "login", "logout", "token", "session"}

// CachePolicy decides whether a request may be cached and which TTL applies.
type CachePolicy struct {
	Enabled       bool
	ExcludedPaths []string
	TTLs          map[models.CacheCategory]time.Duration
}

// NewCachePolicy returns the default policy with caching enabled.
func NewCachePolicy() *CachePolicy {
	ttls := make(map[models.CacheCategory]time.Duration, len(DefaultTTLs))
	for category, ttl := range DefaultTTLs {
		ttls[category] = ttl
	}
	return &CachePolicy{
		Enabled:       true,
		ExcludedPaths: DefaultExcludedPaths,
		TTLs:          ttls,
	}
}

// CacheableMethod reports whether the HTTP method is a read method.
func (p *CachePolicy) CacheableMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// Excluded reports whether the path matches the exclusion list.
func (p *CachePolicy) Excluded(path string) bool {
	for _, excluded := range p.ExcludedPaths {
		if strings.Contains(path, excluded) {
			return true
		}
	}
	return false
}

// CategoryForPath maps a request path to its cache category by substring
// inspection. Interaction wins over search, search over site, and anything
// unrecognized falls back to the default category.
func (p *CachePolicy) CategoryForPath(path string) models.CacheCategory {
	switch {
	case strings.Contains(path, "interaction"):
		return models.CategoryInteraction
	case strings.Contains(path, "search"):
		return models.CategorySearch
	case strings.Contains(path, "site"):
		return models.CategorySite
	default:
		return models.CategoryDefault
	}
}

// TTLFor returns the TTL for a category, falling back to the default
// category and finally to the built-in table.
func (p *CachePolicy) TTLFor(category models.CacheCategory) time.Duration {
	if ttl, ok := p.TTLs[category]; ok {
		return ttl
	}
	if ttl, ok := p.TTLs[models.CategoryDefault]; ok {
		return ttl
	}
	return DefaultTTLs[models.CategoryDefault]
}
