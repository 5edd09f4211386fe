package routing

import (
	"context"
	"regexp"

	"github.com/naru-ai/naru/core/agents"
)

// patternRule maps one compiled expression to its target agent id.
type patternRule struct {
	re      *regexp.Regexp
	agentID string
	label   string
}

// defaultPatternRules covers conversational surface forms the explicit
// keyword lists miss, Korean and English. Compiled once at package init and
// reused for every request; order matters, first match wins.
var defaultPatternRules = []patternRule{
	{
		re:      regexp.MustCompile(`(?i)(merge\s*request|pull\s*request|\bmr\b|\bpr\b|머지\s*리퀘|풀\s*리퀘)`),
		agentID: agents.BuiltinCodeReviewID,
		label:   "merge-request mention",
	},
	{
		re:      regexp.MustCompile(`(?i)(리뷰|검토|코드\s*좀\s*봐|review\s+(this|my)|봐\s*주)`),
		agentID: agents.BuiltinCodeReviewID,
		label:   "review vocabulary",
	},
	{
		re:      regexp.MustCompile(`(?i)(버그|에러|오류|장애|죽(어|는)|깨지|터지|crash|exception|stack\s*trace|\berror\b|\bbug\b)`),
		agentID: agents.BuiltinDebugID,
		label:   "bug/error vocabulary",
	},
	{
		re:      regexp.MustCompile(`(?i)(안\s*돼|안\s*되|고쳐|수정\s*해|작동\s*안|동작\s*안|(fix|repair)\s+(this|it|the))`),
		agentID: agents.BuiltinDebugID,
		label:   "fix vocabulary",
	},
	{
		re:      regexp.MustCompile(`(?i)(어떻게|무엇|뭐야|뭔가요|왜\s|설명\s*해|알려\s*줘|^(how|what|why|explain)\b)`),
		agentID: agents.BuiltinGeneralID,
		label:   "explanatory question",
	},
}

// PatternStage routes intents captured by fixed regular expressions rather
// than per-agent keywords. Patterns are compiled once, not per call.
type PatternStage struct {
	registry *agents.Registry
	rules    []patternRule
}

// NewPatternStage creates a PatternStage with the default rule set.
func NewPatternStage(registry *agents.Registry) *PatternStage {
	return &PatternStage{registry: registry, rules: defaultPatternRules}
}

// Name implements Stage.
func (s *PatternStage) Name() string { return "pattern" }

// Match implements Stage. The first rule whose expression matches anywhere in
// the normalized message, and whose target agent exists and is enabled, wins.
func (s *PatternStage) Match(_ context.Context, q *Query) *AgentMatch {
	for _, rule := range s.rules {
		if !rule.re.MatchString(q.Normalized) {
			continue
		}
		agent := s.registry.GetEnabled(rule.agentID)
		if agent == nil {
			continue
		}
		return &AgentMatch{
			Agent:         agent,
			Confidence:    ConfidencePattern,
			MatchedSignal: rule.label,
			Method:        MethodPattern,
		}
	}
	return nil
}
