// Package feedback implements per-user routing personalization: a learner
// backed by recorded satisfaction signals, and an adjuster that applies the
// learner's output to routing results without ever touching shared state.
package feedback

import "context"

// Recommendation is a learner's direct suggestion for a (user, query) pair.
type Recommendation struct {
	AgentID    string
	Confidence float64
	Reason     string
}

// Learner is the external personalization collaborator. Errors mean
// "unavailable"; the adjuster degrades to unpersonalized behavior.
type Learner interface {
	// Recommend suggests an agent for the user's query, or nil when the
	// user's history supports no suggestion.
	Recommend(ctx context.Context, query, userID string, topK int) (*Recommendation, error)

	// AdjustScore nudges a base confidence by the user's history with the
	// agent. The result is not yet clamped; the adjuster clamps.
	AdjustScore(ctx context.Context, userID, agentID string, base float64) (float64, error)
}
