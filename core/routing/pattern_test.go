package routing_test

import (
	"context"
	"testing"

	"github.com/naru-ai/naru/core/agents"
	"github.com/naru-ai/naru/core/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternStage_MergeRequestMention(t *testing.T) {
	stage := routing.NewPatternStage(newTestRegistry(t))

	match := stage.Match(context.Background(), queryFor("merge request 하나 올렸어요"))
	require.NotNil(t, match)
	assert.Equal(t, agents.BuiltinCodeReviewID, match.Agent.ID)
	assert.Equal(t, routing.MethodPattern, match.Method)
	assert.Equal(t, routing.ConfidencePattern, match.Confidence)
}

func TestPatternStage_BugVocabulary(t *testing.T) {
	stage := routing.NewPatternStage(newTestRegistry(t))

	for _, msg := range []string{
		"프로덕션에서 오류 발생",
		"app keeps throwing an exception",
		"서버가 죽어요",
	} {
		match := stage.Match(context.Background(), queryFor(msg))
		require.NotNil(t, match, "message %q", msg)
		assert.Equal(t, agents.BuiltinDebugID, match.Agent.ID, "message %q", msg)
	}
}

func TestPatternStage_ExplanatoryQuestion(t *testing.T) {
	stage := routing.NewPatternStage(newTestRegistry(t))

	match := stage.Match(context.Background(), queryFor("이건 어떻게 동작하나요"))
	require.NotNil(t, match)
	assert.Equal(t, agents.BuiltinGeneralID, match.Agent.ID)
}

func TestPatternStage_NoMatch(t *testing.T) {
	stage := routing.NewPatternStage(newTestRegistry(t))

	assert.Nil(t, stage.Match(context.Background(), queryFor("점심 메뉴 추천")))
}

func TestPatternStage_SkipsDisabledTarget(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()
	require.True(t, registry.SetEnabled(ctx, agents.BuiltinDebugID, false))

	stage := routing.NewPatternStage(registry)
	match := stage.Match(ctx, queryFor("프로덕션에서 오류 발생"))
	if match != nil {
		assert.NotEqual(t, agents.BuiltinDebugID, match.Agent.ID)
	}
}
