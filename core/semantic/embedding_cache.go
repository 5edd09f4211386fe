package semantic

import (
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

const (
	defaultEmbedCacheCounters = 1e6
	defaultEmbedCacheMaxCost  = 1 << 26 // 64MB of vectors
	defaultEmbedCacheBuffer   = 64

	// DefaultEmbeddingTTL bounds how long a message embedding stays cached.
	// Embedding calls are the most expensive step in the semantic stage.
	DefaultEmbeddingTTL = 30 * time.Minute
)

// EmbeddingCache caches message embeddings by normalized text with a TTL and
// a cost-based size bound. Safe for concurrent use.
type EmbeddingCache struct {
	cache  *ristretto.Cache
	ttl    time.Duration
	mu     sync.RWMutex
	closed bool
}

// EmbeddingCacheConfig configures the embedding cache.
type EmbeddingCacheConfig struct {
	NumCounters int64
	MaxCost     int64
	TTL         time.Duration
}

// NewEmbeddingCache creates an embedding cache.
func NewEmbeddingCache(cfg EmbeddingCacheConfig) (*EmbeddingCache, error) {
	counters := cfg.NumCounters
	if counters <= 0 {
		counters = defaultEmbedCacheCounters
	}
	maxCost := cfg.MaxCost
	if maxCost <= 0 {
		maxCost = defaultEmbedCacheMaxCost
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultEmbeddingTTL
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: counters,
		MaxCost:     maxCost,
		BufferItems: defaultEmbedCacheBuffer,
	})
	if err != nil {
		return nil, err
	}

	return &EmbeddingCache{cache: cache, ttl: ttl}, nil
}

// Get returns the cached embedding for the normalized text.
func (c *EmbeddingCache) Get(normalized string) ([]float32, bool) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, false
	}
	c.mu.RUnlock()

	value, found := c.cache.Get(normalized)
	if !found {
		return nil, false
	}
	vec, ok := value.([]float32)
	return vec, ok
}

// Set stores an embedding, costed by its byte size.
func (c *EmbeddingCache) Set(normalized string, vec []float32) bool {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return false
	}
	c.mu.RUnlock()

	if len(vec) == 0 {
		return false
	}
	cost := int64(len(vec)*4 + len(normalized))
	return c.cache.SetWithTTL(normalized, vec, cost, c.ttl)
}

// Wait blocks until pending sets are visible. Tests use this; ristretto
// applies writes asynchronously.
func (c *EmbeddingCache) Wait() {
	c.cache.Wait()
}

// Close releases cache resources.
func (c *EmbeddingCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cache.Close()
}
