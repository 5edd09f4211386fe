package routing

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultRouteCacheSize is the default maximum number of cached routes.
const DefaultRouteCacheSize = 10000

// DefaultRouteCacheTTL is the default lifetime of a cached route.
const DefaultRouteCacheTTL = 1 * time.Hour

// RouteCache caches routing results keyed by normalized message text.
// Only anonymous (non-personalized) results are ever written here; the
// pipeline enforces that so one user's feedback adjustment cannot leak into
// another user's lookups. Backed by an expirable LRU, safe for concurrent
// use without caller coordination.
type RouteCache struct {
	entries *expirable.LRU[string, AgentMatch]

	hits   atomic.Int64
	misses atomic.Int64
}

// RouteCacheConfig configures the route cache.
type RouteCacheConfig struct {
	MaxSize int           // Maximum entries (default: 10000)
	TTL     time.Duration // Entry lifetime (default: 1 hour)
}

// DefaultRouteCacheConfig returns sensible defaults.
func DefaultRouteCacheConfig() RouteCacheConfig {
	return RouteCacheConfig{
		MaxSize: DefaultRouteCacheSize,
		TTL:     DefaultRouteCacheTTL,
	}
}

// NewRouteCache creates a route cache.
func NewRouteCache(cfg RouteCacheConfig) *RouteCache {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultRouteCacheSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultRouteCacheTTL
	}

	return &RouteCache{
		entries: expirable.NewLRU[string, AgentMatch](cfg.MaxSize, nil, cfg.TTL),
	}
}

// Get returns the cached match for the normalized key, or nil.
func (c *RouteCache) Get(normalized string) *AgentMatch {
	match, ok := c.entries.Get(normalized)
	if !ok {
		c.misses.Add(1)
		return nil
	}
	c.hits.Add(1)
	copied := match
	return &copied
}

// Set stores a match under the normalized key.
func (c *RouteCache) Set(normalized string, match *AgentMatch) {
	if match == nil || match.Agent == nil {
		return
	}
	c.entries.Add(normalized, *match)
}

// Purge empties the cache. Administrative agent mutations call this so stale
// selections do not outlive the agent set that produced them.
func (c *RouteCache) Purge() {
	c.entries.Purge()
}

// RouteCacheStats reports cache activity.
type RouteCacheStats struct {
	Size   int
	Hits   int64
	Misses int64
}

// Stats returns a snapshot of cache counters.
func (c *RouteCache) Stats() RouteCacheStats {
	return RouteCacheStats{
		Size:   c.entries.Len(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
