package routing

import (
	"context"
	"strings"

	"github.com/naru-ai/naru/core/agents"
)

// KeywordStage matches per-agent keyword lists against the normalized
// message by case-insensitive substring containment. Agents are iterated in
// registration order; the first hit wins.
type KeywordStage struct {
	registry *agents.Registry
}

// NewKeywordStage creates a KeywordStage over the registry.
func NewKeywordStage(registry *agents.Registry) *KeywordStage {
	return &KeywordStage{registry: registry}
}

// Name implements Stage.
func (s *KeywordStage) Name() string { return "keyword" }

// Match implements Stage.
func (s *KeywordStage) Match(_ context.Context, q *Query) *AgentMatch {
	for _, agent := range s.registry.EnabledSnapshot() {
		for _, keyword := range agent.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(q.Normalized, strings.ToLower(keyword)) {
				return &AgentMatch{
					Agent:         agent,
					Confidence:    ConfidenceKeyword,
					MatchedSignal: keyword,
					Method:        MethodKeyword,
				}
			}
		}
	}
	return nil
}
