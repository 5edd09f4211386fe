package routing_test

import (
	"context"
	"testing"

	"github.com/naru-ai/naru/core/agents"
	"github.com/naru-ai/naru/core/korean"
	"github.com/naru-ai/naru/core/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *agents.Registry {
	t.Helper()
	r, err := agents.NewRegistry(context.Background(), agents.RegistryConfig{})
	require.NoError(t, err)
	return r
}

func queryFor(text string) *routing.Query {
	normalized, tokens := korean.NewNormalizer().Normalize(text)
	return &routing.Query{Raw: text, Normalized: normalized, Tokens: tokens}
}

func TestKeywordStage_Match(t *testing.T) {
	stage := routing.NewKeywordStage(newTestRegistry(t))

	match := stage.Match(context.Background(), queryFor("이 MR 리뷰해줘"))
	require.NotNil(t, match)
	assert.Equal(t, agents.BuiltinCodeReviewID, match.Agent.ID)
	assert.Equal(t, routing.MethodKeyword, match.Method)
	assert.Equal(t, routing.ConfidenceKeyword, match.Confidence)
}

func TestKeywordStage_NoMatch(t *testing.T) {
	stage := routing.NewKeywordStage(newTestRegistry(t))

	assert.Nil(t, stage.Match(context.Background(), queryFor("오늘 날씨 어때")))
}

func TestKeywordStage_CaseInsensitive(t *testing.T) {
	stage := routing.NewKeywordStage(newTestRegistry(t))

	match := stage.Match(context.Background(), queryFor("REVIEW my changes"))
	require.NotNil(t, match)
	assert.Equal(t, agents.BuiltinCodeReviewID, match.Agent.ID)
}

func TestKeywordStage_SkipsDisabledAgents(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()
	require.True(t, registry.SetEnabled(ctx, agents.BuiltinCodeReviewID, false))

	stage := routing.NewKeywordStage(registry)
	match := stage.Match(ctx, queryFor("코드리뷰 부탁"))
	if match != nil {
		assert.NotEqual(t, agents.BuiltinCodeReviewID, match.Agent.ID)
	}
}

func TestKeywordStage_FirstRegisteredWins(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	// Two custom agents share a keyword; the earlier registration wins.
	require.True(t, registry.Add(ctx, &agents.Agent{
		ID: "first", Name: "first", Enabled: true, Keywords: []string{"성능"},
	}))
	require.True(t, registry.Add(ctx, &agents.Agent{
		ID: "second", Name: "second", Enabled: true, Keywords: []string{"성능"},
	}))

	stage := routing.NewKeywordStage(registry)
	match := stage.Match(ctx, queryFor("성능 측정 부탁"))
	require.NotNil(t, match)
	assert.Equal(t, "first", match.Agent.ID)
}
