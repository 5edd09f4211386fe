package routing

import (
	"context"
	"log/slog"

	"github.com/naru-ai/naru/core/agents"
	"github.com/naru-ai/naru/core/korean"
)

// Pipeline orchestrates the classifier cascade. It owns the anonymous route
// cache and guarantees a non-nil result: when every stage misses, the
// registry's default agent is returned with confidence 0.5.
//
// The pipeline holds no request-scoped mutable state, so concurrent Route
// calls are safe. Each external dependency behind a stage is given exactly
// one attempt per request; retries belong to the collaborator's own client.
type Pipeline struct {
	registry     *agents.Registry
	normalizer   *korean.Normalizer
	stages       []Stage
	cache        *RouteCache
	personalizer Personalizer
	logger       *slog.Logger
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	Registry *agents.Registry

	// Stages run in order; the first non-nil match wins. Typically keyword,
	// pattern, fuzzy, semantic, LLM fallback.
	Stages []Stage

	// Personalizer is optional; without it user ids are ignored.
	Personalizer Personalizer

	// CacheConfig is optional; zero values take defaults.
	CacheConfig RouteCacheConfig

	// Logger is optional, uses slog.Default() if nil.
	Logger *slog.Logger
}

// NewPipeline creates a routing pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		registry:     cfg.Registry,
		normalizer:   korean.NewNormalizer(),
		stages:       cfg.Stages,
		cache:        NewRouteCache(cfg.CacheConfig),
		personalizer: cfg.Personalizer,
		logger:       logger,
	}
}

// Route classifies an anonymous message. Results are served from and written
// to the shared route cache.
func (p *Pipeline) Route(ctx context.Context, message string) *AgentMatch {
	return p.route(ctx, message, "")
}

// RouteForUser classifies a message with a user identity. The user's feedback
// history is consulted first and rescales whatever stage wins; personalized
// results never touch the shared cache.
func (p *Pipeline) RouteForUser(ctx context.Context, message, userID string) *AgentMatch {
	return p.route(ctx, message, userID)
}

func (p *Pipeline) route(ctx context.Context, message, userID string) *AgentMatch {
	normalized, tokens := p.normalizer.Normalize(message)
	q := &Query{Raw: message, Normalized: normalized, Tokens: tokens}

	anonymous := userID == ""

	if anonymous {
		if cached := p.cache.Get(normalized); cached != nil {
			p.logger.Debug("route cache hit", "method", MethodCache, "agent", cached.Agent.ID)
			return cached
		}
	} else if p.personalizer != nil {
		if rec := p.personalizer.Recommend(ctx, normalized, userID); rec != nil {
			p.logger.Debug("feedback recommendation accepted",
				"agent", rec.Agent.ID, "confidence", rec.Confidence, "user", userID)
			return rec
		}
	}

	match := p.runStages(ctx, q)

	if match != nil {
		// Only stage products are rescaled; the default fallback keeps its
		// fixed confidence.
		if !anonymous && p.personalizer != nil {
			match = p.personalizer.Rescale(ctx, userID, match)
		}
	} else {
		match = p.defaultMatch()
		p.logger.Debug("no stage matched, using default", "agent", match.Agent.ID)
	}

	match.Confidence = clamp01(match.Confidence)

	if anonymous {
		p.cache.Set(normalized, match)
	}

	return match
}

func (p *Pipeline) runStages(ctx context.Context, q *Query) *AgentMatch {
	for _, stage := range p.stages {
		match := stage.Match(ctx, q)
		if match == nil {
			continue
		}
		p.logger.Debug("stage matched",
			"stage", stage.Name(),
			"agent", match.Agent.ID,
			"confidence", match.Confidence,
			"signal", match.MatchedSignal)
		return match
	}
	return nil
}

// defaultMatch builds the terminal fallback: the general-purpose agent, or
// any enabled agent when none is flagged default.
func (p *Pipeline) defaultMatch() *AgentMatch {
	agent := p.registry.DefaultAgent()
	if agent == nil {
		// Every agent disabled; fall back to the static general definition so
		// routing still returns a usable result.
		agent = BuiltinDefault()
	}
	return &AgentMatch{
		Agent:         agent,
		Confidence:    ConfidenceDefault,
		MatchedSignal: "no stage matched",
		Method:        MethodDefault,
	}
}

// BuiltinDefault returns the static general-purpose agent definition used
// when the registry has no enabled agent at all.
func BuiltinDefault() *agents.Agent {
	for _, a := range agents.BuiltinAgents() {
		if a.IsDefault {
			return a
		}
	}
	return agents.BuiltinAgents()[0]
}

// InvalidateCache empties the route cache. Call after administrative agent
// mutations.
func (p *Pipeline) InvalidateCache() {
	p.cache.Purge()
}

// CacheStats exposes route cache counters.
func (p *Pipeline) CacheStats() RouteCacheStats {
	return p.cache.Stats()
}
