package semantic

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/naru-ai/naru/core/agents"
	"github.com/naru-ai/naru/core/routing"
)

const (
	// DefaultTopK is how many nearest examples one search requests.
	DefaultTopK = 5

	// DefaultScoreThreshold is the minimum raw cosine similarity a result
	// must reach before priority weighting applies.
	DefaultScoreThreshold = 0.7

	// DefaultSearchCacheTTL bounds cached search results; shorter than the
	// embedding TTL because index contents change more often.
	DefaultSearchCacheTTL = 10 * time.Minute

	// DefaultSearchCacheSize bounds the search result cache entries.
	DefaultSearchCacheSize = 4096

	// signalMaxRunes truncates matched example text in the routing signal.
	signalMaxRunes = 80
)

// Stage is the semantic routing stage. It embeds the message, searches the
// vector index for similar labeled examples and converts similarity into a
// priority-weighted confidence.
type Stage struct {
	registry       *agents.Registry
	embedder       Embedder
	index          VectorIndex
	embedCache     *EmbeddingCache
	searchCache    *expirable.LRU[string, []SearchResult]
	topK           int
	scoreThreshold float64
	logger         *slog.Logger
}

// StageConfig configures the semantic stage.
type StageConfig struct {
	Registry *agents.Registry
	Embedder Embedder
	Index    VectorIndex

	// TopK defaults to 5.
	TopK int

	// ScoreThreshold defaults to 0.7.
	ScoreThreshold float64

	// EmbeddingCache is optional; a default-sized cache is built when nil.
	EmbeddingCache *EmbeddingCache

	// SearchCacheTTL defaults to 10 minutes, SearchCacheSize to 4096.
	SearchCacheTTL  time.Duration
	SearchCacheSize int

	// Logger is optional, uses slog.Default() if nil.
	Logger *slog.Logger
}

// NewStage creates the semantic stage.
func NewStage(cfg StageConfig) (*Stage, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if cfg.Index == nil {
		return nil, fmt.Errorf("vector index is required")
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	threshold := cfg.ScoreThreshold
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}
	ttl := cfg.SearchCacheTTL
	if ttl <= 0 {
		ttl = DefaultSearchCacheTTL
	}
	size := cfg.SearchCacheSize
	if size <= 0 {
		size = DefaultSearchCacheSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	embedCache := cfg.EmbeddingCache
	if embedCache == nil {
		var err error
		embedCache, err = NewEmbeddingCache(EmbeddingCacheConfig{})
		if err != nil {
			return nil, err
		}
	}

	return &Stage{
		registry:       cfg.Registry,
		embedder:       cfg.Embedder,
		index:          cfg.Index,
		embedCache:     embedCache,
		searchCache:    expirable.NewLRU[string, []SearchResult](size, nil, ttl),
		topK:           topK,
		scoreThreshold: threshold,
		logger:         logger,
	}, nil
}

// Name implements routing.Stage.
func (s *Stage) Name() string { return "semantic" }

// Match implements routing.Stage. Any embedding or search failure logs a
// warning and falls through with nil; the index and the embedding service
// each get exactly one attempt per call.
func (s *Stage) Match(ctx context.Context, q *routing.Query) *routing.AgentMatch {
	vector, ok := s.embedding(ctx, q.Normalized)
	if !ok {
		return nil
	}

	results, ok := s.search(ctx, vector)
	if !ok || len(results) == 0 {
		return nil
	}

	best, bestScore, example := s.pickBest(results)
	if best == nil {
		return nil
	}

	return &routing.AgentMatch{
		Agent:         best,
		Confidence:    bestScore,
		MatchedSignal: truncateRunes(example, signalMaxRunes),
		Method:        routing.MethodSemantic,
	}
}

func (s *Stage) embedding(ctx context.Context, normalized string) ([]float32, bool) {
	if vec, ok := s.embedCache.Get(normalized); ok {
		return vec, true
	}

	vec, err := s.embedder.Embed(ctx, normalized)
	if err != nil {
		s.logger.Warn("embedding unavailable", "error", err)
		return nil, false
	}

	s.embedCache.Set(normalized, vec)
	return vec, true
}

func (s *Stage) search(ctx context.Context, vector []float32) ([]SearchResult, bool) {
	key := searchKey(vector, s.topK)
	if cached, ok := s.searchCache.Get(key); ok {
		return cached, true
	}

	results, err := s.index.Search(ctx, vector, s.topK)
	if err != nil {
		s.logger.Warn("vector search unavailable", "error", err)
		return nil, false
	}

	s.searchCache.Add(key, results)
	return results, true
}

// pickBest applies the score threshold and priority weighting:
// adjusted = raw * (1 + priority/1000), capped at 1.0. The returned example
// is the one behind the winning adjusted score, not merely the winning
// agent's first result.
func (s *Stage) pickBest(results []SearchResult) (*agents.Agent, float64, string) {
	var best *agents.Agent
	var bestScore float64
	var bestExample string

	for _, r := range results {
		raw := clampScore(r.RawScore)
		if raw < s.scoreThreshold {
			continue
		}
		agent := s.registry.GetEnabled(r.AgentID)
		if agent == nil {
			continue
		}

		adjusted := raw * (1 + float64(agent.Priority)/1000)
		if adjusted > 1.0 {
			adjusted = 1.0
		}
		if adjusted > bestScore {
			best = agent
			bestScore = adjusted
			bestExample = r.ExampleText
		}
	}
	return best, bestScore, bestExample
}

// clampScore bounds a raw cosine score to [0,1]; unrelated text can come
// back slightly negative.
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// searchKey derives a cache key from the embedding contents and K.
func searchKey(vector []float32, topK int) string {
	h := fnv.New64a()
	var buf [4]byte
	for _, v := range vector {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		h.Write(buf[:])
	}
	return fmt.Sprintf("%x:%d", h.Sum64(), topK)
}

// truncateRunes shortens text to at most n runes.
func truncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
