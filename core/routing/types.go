// Package routing implements the classifier cascade that selects an agent
// for a free-text message: keyword, pattern, Korean fuzzy, semantic, then LLM
// fallback, then a deterministic default, with a shared anonymous result cache and
// per-user feedback adjustment.
package routing

import (
	"context"

	"github.com/naru-ai/naru/core/agents"
)

// Method identifies which classifier produced a match.
type Method string

const (
	MethodKeyword  Method = "KEYWORD"
	MethodPattern  Method = "PATTERN"
	MethodFuzzy    Method = "FUZZY"
	MethodSemantic Method = "SEMANTIC"
	MethodLLM      Method = "LLM"
	MethodFeedback Method = "FEEDBACK_LEARNING"
	MethodCache    Method = "CACHE"
	MethodDefault  Method = "DEFAULT"
)

// Confidence bands per stage. An earlier, cheaper stage that matches always
// short-circuits later stages, so bands are ordered by stage position.
const (
	ConfidenceKeyword      = 0.95
	ConfidencePattern      = 0.85
	ConfidenceFuzzyExact   = 0.98
	ConfidenceFuzzySub     = 0.95
	ConfidenceFuzzyChoseng = 0.90
	ConfidenceFuzzySynonym = 0.88
	ConfidenceFuzzyTypo    = 0.80
	ConfidenceLLM          = 0.80
	ConfidenceFeedbackCap  = 0.90
	ConfidenceDefault      = 0.50
)

// AgentMatch is the routing result: the selected agent, a confidence in
// [0,1], a free-text explanation of what matched, and the producing method.
type AgentMatch struct {
	Agent         *agents.Agent `json:"agent"`
	Confidence    float64       `json:"confidence"`
	MatchedSignal string        `json:"matched_signal"`
	Method        Method        `json:"method"`
}

// Query carries one message through the cascade: the raw text plus the
// normalized form and token list every lexical stage shares.
type Query struct {
	Raw        string
	Normalized string
	Tokens     []string
}

// Stage is one classifier in the cascade. A nil result means "no match from
// this stage"; stages swallow collaborator failures and return nil rather
// than surfacing errors to the pipeline.
type Stage interface {
	Name() string
	Match(ctx context.Context, q *Query) *AgentMatch
}

// Personalizer adjusts routing with per-user feedback signals. Implemented in
// core/feedback; declared here so the pipeline does not depend on it.
type Personalizer interface {
	// Recommend returns a direct per-user recommendation, or nil.
	Recommend(ctx context.Context, query, userID string) *AgentMatch

	// Rescale nudges a match's confidence by the user's history with that
	// agent. The match's method is preserved.
	Rescale(ctx context.Context, userID string, match *AgentMatch) *AgentMatch
}

// clamp01 bounds a confidence to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
