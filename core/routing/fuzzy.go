package routing

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/naru-ai/naru/core/agents"
	"github.com/naru-ai/naru/core/korean"
)

// DefaultTypoThreshold is the maximum accepted edit distance for the
// typo-tolerant tier.
const DefaultTypoThreshold = 2

// FuzzyKoreanStage matches agent keywords phonetically and typo-tolerantly
// against the token list. Per agent the tiers run in fixed priority order:
// exact token, substring, leading-consonant, synonym, edit distance. Agents
// are iterated by descending priority, ties by registration order.
type FuzzyKoreanStage struct {
	registry      *agents.Registry
	typoThreshold int
}

// NewFuzzyKoreanStage creates a FuzzyKoreanStage with the default typo
// threshold.
func NewFuzzyKoreanStage(registry *agents.Registry) *FuzzyKoreanStage {
	return NewFuzzyKoreanStageWithThreshold(registry, DefaultTypoThreshold)
}

// NewFuzzyKoreanStageWithThreshold creates a FuzzyKoreanStage with an explicit
// typo threshold; zero or negative takes the default.
func NewFuzzyKoreanStageWithThreshold(registry *agents.Registry, typoThreshold int) *FuzzyKoreanStage {
	if typoThreshold <= 0 {
		typoThreshold = DefaultTypoThreshold
	}
	return &FuzzyKoreanStage{
		registry:      registry,
		typoThreshold: typoThreshold,
	}
}

// Name implements Stage.
func (s *FuzzyKoreanStage) Name() string { return "fuzzy-korean" }

// Match implements Stage.
func (s *FuzzyKoreanStage) Match(_ context.Context, q *Query) *AgentMatch {
	snapshot := s.registry.EnabledSnapshot()

	// Descending priority; sort is stable so ties keep registration order.
	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].Priority > snapshot[j].Priority
	})

	messageChoseong := korean.LeadingConsonants(q.Normalized)

	for _, agent := range snapshot {
		if m := s.matchAgent(agent, q, messageChoseong); m != nil {
			return m
		}
	}
	return nil
}

func (s *FuzzyKoreanStage) matchAgent(agent *agents.Agent, q *Query, messageChoseong string) *AgentMatch {
	type tier struct {
		confidence float64
		check      func(keyword string) (string, bool)
	}

	tiers := []tier{
		{ConfidenceFuzzyExact, func(kw string) (string, bool) { return s.exactToken(q.Tokens, kw) }},
		{ConfidenceFuzzySub, func(kw string) (string, bool) { return s.substring(q.Normalized, kw) }},
		{ConfidenceFuzzyChoseng, func(kw string) (string, bool) { return s.choseong(messageChoseong, kw) }},
		{ConfidenceFuzzySynonym, func(kw string) (string, bool) { return s.synonym(q.Tokens, kw) }},
		{ConfidenceFuzzyTypo, func(kw string) (string, bool) { return s.typo(q.Tokens, kw) }},
	}

	for _, tier := range tiers {
		for _, keyword := range agent.Keywords {
			kw := strings.ToLower(keyword)
			if kw == "" {
				continue
			}
			if signal, ok := tier.check(kw); ok {
				return &AgentMatch{
					Agent:         agent,
					Confidence:    tier.confidence,
					MatchedSignal: signal,
					Method:        MethodFuzzy,
				}
			}
		}
	}
	return nil
}

func (s *FuzzyKoreanStage) exactToken(tokens []string, keyword string) (string, bool) {
	for _, tok := range tokens {
		if strings.EqualFold(tok, keyword) {
			return tok, true
		}
	}
	return "", false
}

func (s *FuzzyKoreanStage) substring(normalized, keyword string) (string, bool) {
	if strings.Contains(normalized, keyword) {
		return keyword, true
	}
	return "", false
}

// choseong matches by leading-consonant string: the keyword's choseong must
// appear inside the message's. Only applies to keywords containing Hangul,
// otherwise plain Latin keywords would trivially self-match.
func (s *FuzzyKoreanStage) choseong(messageChoseong, keyword string) (string, bool) {
	if !korean.ContainsHangul(keyword) {
		return "", false
	}
	kc := korean.LeadingConsonants(keyword)
	if kc != "" && strings.Contains(messageChoseong, kc) {
		return fmt.Sprintf("%s ~ %s", kc, keyword), true
	}
	return "", false
}

func (s *FuzzyKoreanStage) synonym(tokens []string, keyword string) (string, bool) {
	for _, tok := range tokens {
		if tok != keyword && korean.SameMeaning(tok, keyword) {
			return fmt.Sprintf("%s -> %s", tok, keyword), true
		}
	}
	return "", false
}

// typo accepts a token whose edit distance to the keyword is at most the
// threshold and also less than half the token's length, so short tokens
// cannot match everything.
func (s *FuzzyKoreanStage) typo(tokens []string, keyword string) (string, bool) {
	for _, tok := range tokens {
		dist := korean.DistanceWithThreshold(tok, keyword, s.typoThreshold)
		if dist > s.typoThreshold {
			continue
		}
		if dist*2 < len([]rune(tok)) {
			return fmt.Sprintf("%s ~ %s (d=%d)", tok, keyword, dist), true
		}
	}
	return "", false
}
