package feedback

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/naru-ai/naru/core/agents"
	"github.com/naru-ai/naru/core/routing"
)

const (
	// recommendAcceptMin is the minimum learner confidence a direct
	// recommendation needs before it overrides the cascade.
	recommendAcceptMin = 0.80

	// recommendTopK bounds how much history the learner consults.
	recommendTopK = 5
)

// Adjuster applies a Learner to routing results. It implements
// routing.Personalizer; all learner failures degrade to the unpersonalized
// result.
type Adjuster struct {
	registry *agents.Registry
	learner  Learner
	logger   *slog.Logger
}

// AdjusterConfig configures an Adjuster.
type AdjusterConfig struct {
	Registry *agents.Registry
	Learner  Learner

	// Logger is optional, uses slog.Default() if nil.
	Logger *slog.Logger
}

// NewAdjuster creates an Adjuster.
func NewAdjuster(cfg AdjusterConfig) (*Adjuster, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Learner == nil {
		return nil, fmt.Errorf("learner is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Adjuster{registry: cfg.Registry, learner: cfg.Learner, logger: logger}, nil
}

// Recommend implements routing.Personalizer. A recommendation is used only
// when the learner is confident (>= 0.80) and names a known enabled agent;
// its confidence is capped at 0.90 so explicit classifier matches can still
// outrank it.
func (a *Adjuster) Recommend(ctx context.Context, query, userID string) *routing.AgentMatch {
	rec, err := a.learner.Recommend(ctx, query, userID, recommendTopK)
	if err != nil {
		a.logger.Warn("feedback learner unavailable", "user", userID, "error", err)
		return nil
	}
	if rec == nil || rec.Confidence < recommendAcceptMin {
		return nil
	}

	agent := a.registry.GetEnabled(rec.AgentID)
	if agent == nil {
		a.logger.Warn("feedback recommendation names unknown agent", "user", userID, "agent", rec.AgentID)
		return nil
	}

	confidence := rec.Confidence
	if confidence > routing.ConfidenceFeedbackCap {
		confidence = routing.ConfidenceFeedbackCap
	}

	signal := rec.Reason
	if signal == "" {
		signal = "user history: " + agent.ID
	}

	return &routing.AgentMatch{
		Agent:         agent,
		Confidence:    confidence,
		MatchedSignal: signal,
		Method:        routing.MethodFeedback,
	}
}

// Rescale implements routing.Personalizer. The match keeps its method; the
// adjusted confidence is clamped to [0,1]. A learner error leaves the match
// untouched.
func (a *Adjuster) Rescale(ctx context.Context, userID string, match *routing.AgentMatch) *routing.AgentMatch {
	if match == nil || match.Agent == nil {
		return match
	}

	adjusted, err := a.learner.AdjustScore(ctx, userID, match.Agent.ID, match.Confidence)
	if err != nil {
		a.logger.Warn("feedback rescale unavailable", "user", userID, "error", err)
		return match
	}

	out := *match
	out.Confidence = clamp01(adjusted)
	return &out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
