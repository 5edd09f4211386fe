package routing_test

import (
	"testing"
	"time"

	"github.com/naru-ai/naru/core/agents"
	"github.com/naru-ai/naru/core/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMatch() *routing.AgentMatch {
	return &routing.AgentMatch{
		Agent:         &agents.Agent{ID: "code-review", Name: "리뷰어"},
		Confidence:    0.95,
		MatchedSignal: "리뷰",
		Method:        routing.MethodKeyword,
	}
}

func TestRouteCache_GetSet(t *testing.T) {
	cache := routing.NewRouteCache(routing.DefaultRouteCacheConfig())

	assert.Nil(t, cache.Get("이 mr 리뷰"))

	cache.Set("이 mr 리뷰", sampleMatch())

	cached := cache.Get("이 mr 리뷰")
	require.NotNil(t, cached)
	assert.Equal(t, "code-review", cached.Agent.ID)
	assert.Equal(t, routing.MethodKeyword, cached.Method)
	assert.Equal(t, 0.95, cached.Confidence)
}

func TestRouteCache_IgnoresNil(t *testing.T) {
	cache := routing.NewRouteCache(routing.DefaultRouteCacheConfig())

	cache.Set("key", nil)
	cache.Set("key", &routing.AgentMatch{})

	assert.Nil(t, cache.Get("key"))
}

func TestRouteCache_TTLExpiry(t *testing.T) {
	cache := routing.NewRouteCache(routing.RouteCacheConfig{
		MaxSize: 10,
		TTL:     20 * time.Millisecond,
	})

	cache.Set("key", sampleMatch())
	require.NotNil(t, cache.Get("key"))

	time.Sleep(40 * time.Millisecond)
	assert.Nil(t, cache.Get("key"))
}

func TestRouteCache_SizeBound(t *testing.T) {
	cache := routing.NewRouteCache(routing.RouteCacheConfig{MaxSize: 2, TTL: time.Hour})

	cache.Set("one", sampleMatch())
	cache.Set("two", sampleMatch())
	cache.Set("three", sampleMatch())

	assert.LessOrEqual(t, cache.Stats().Size, 2)
}

func TestRouteCache_Purge(t *testing.T) {
	cache := routing.NewRouteCache(routing.DefaultRouteCacheConfig())

	cache.Set("key", sampleMatch())
	cache.Purge()

	assert.Nil(t, cache.Get("key"))
	assert.Equal(t, 0, cache.Stats().Size)
}

func TestRouteCache_Stats(t *testing.T) {
	cache := routing.NewRouteCache(routing.DefaultRouteCacheConfig())

	cache.Get("miss")
	cache.Set("key", sampleMatch())
	cache.Get("key")

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}
