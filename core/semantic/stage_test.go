package semantic_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/naru-ai/naru/core/agents"
	"github.com/naru-ai/naru/core/routing"
	"github.com/naru-ai/naru/core/semantic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) Dimension() int { return 3 }

func newStage(t *testing.T, registry *agents.Registry, embedder semantic.Embedder, index semantic.VectorIndex) *semantic.Stage {
	t.Helper()
	stage, err := semantic.NewStage(semantic.StageConfig{
		Registry: registry,
		Embedder: embedder,
		Index:    index,
	})
	require.NoError(t, err)
	return stage
}

func newSemanticRegistry(t *testing.T) *agents.Registry {
	t.Helper()
	r, err := agents.NewRegistry(context.Background(), agents.RegistryConfig{})
	require.NoError(t, err)
	return r
}

func semQuery(text string) *routing.Query {
	return &routing.Query{Raw: text, Normalized: text, Tokens: strings.Fields(text)}
}

func TestStage_Match(t *testing.T) {
	registry := newSemanticRegistry(t)
	index := &fakeIndex{results: []semantic.SearchResult{
		{AgentID: agents.BuiltinCodeReviewID, ExampleText: "이 MR 리뷰해줘", RawScore: 0.9},
	}}
	stage := newStage(t, registry, &fakeEmbedder{}, index)

	match := stage.Match(context.Background(), semQuery("머지 요청 좀 봐줄래"))
	require.NotNil(t, match)
	assert.Equal(t, agents.BuiltinCodeReviewID, match.Agent.ID)
	assert.Equal(t, routing.MethodSemantic, match.Method)
	assert.Equal(t, "이 MR 리뷰해줘", match.MatchedSignal)

	// code-review has priority 100: 0.9 * 1.1.
	assert.InDelta(t, 0.99, match.Confidence, 1e-9)
}

func TestStage_BelowThreshold(t *testing.T) {
	registry := newSemanticRegistry(t)
	index := &fakeIndex{results: []semantic.SearchResult{
		{AgentID: agents.BuiltinCodeReviewID, ExampleText: "이 MR 리뷰해줘", RawScore: 0.65},
	}}
	stage := newStage(t, registry, &fakeEmbedder{}, index)

	assert.Nil(t, stage.Match(context.Background(), semQuery("점심 뭐 먹지")))
}

func TestStage_PriorityWeighting(t *testing.T) {
	registry := newSemanticRegistry(t)
	ctx := context.Background()
	require.True(t, registry.Add(ctx, &agents.Agent{
		ID: "incident", Name: "incident", Enabled: true, Priority: 500,
	}))

	// A lower raw score with a high priority outweighs a higher raw score
	// with none; the weighted score is still capped at 1.0.
	index := &fakeIndex{results: []semantic.SearchResult{
		{AgentID: agents.BuiltinGeneralID, ExampleText: "이 개념 좀 설명해줘", RawScore: 0.8},
		{AgentID: "incident", ExampleText: "서버 터졌어요", RawScore: 0.75},
	}}
	stage := newStage(t, registry, &fakeEmbedder{}, index)

	match := stage.Match(ctx, semQuery("큰일났어요"))
	require.NotNil(t, match)
	assert.Equal(t, "incident", match.Agent.ID)
	assert.Equal(t, 1.0, match.Confidence)
}

func TestStage_SignalIsWinningExample(t *testing.T) {
	registry := newSemanticRegistry(t)

	// The same agent appears twice; the signal must come from the result
	// that produced the best score, not the agent's first result.
	index := &fakeIndex{results: []semantic.SearchResult{
		{AgentID: agents.BuiltinCodeReviewID, ExampleText: "diff 좀 봐줘", RawScore: 0.72},
		{AgentID: agents.BuiltinCodeReviewID, ExampleText: "이 MR 리뷰해줘", RawScore: 0.9},
	}}
	stage := newStage(t, registry, &fakeEmbedder{}, index)

	match := stage.Match(context.Background(), semQuery("머지 요청 좀 봐줄래"))
	require.NotNil(t, match)
	assert.Equal(t, agents.BuiltinCodeReviewID, match.Agent.ID)
	assert.Equal(t, "이 MR 리뷰해줘", match.MatchedSignal)
}

func TestStage_SkipsDisabledAndUnknownAgents(t *testing.T) {
	registry := newSemanticRegistry(t)
	ctx := context.Background()
	require.True(t, registry.SetEnabled(ctx, agents.BuiltinDebugID, false))

	index := &fakeIndex{results: []semantic.SearchResult{
		{AgentID: agents.BuiltinDebugID, ExampleText: "에러 로그 좀 봐줘", RawScore: 0.95},
		{AgentID: "never-registered", ExampleText: "???", RawScore: 0.99},
	}}
	stage := newStage(t, registry, &fakeEmbedder{}, index)

	assert.Nil(t, stage.Match(ctx, semQuery("로그 봐줘")))
}

func TestStage_EmbedFailureFallsThrough(t *testing.T) {
	registry := newSemanticRegistry(t)
	index := &fakeIndex{results: []semantic.SearchResult{
		{AgentID: agents.BuiltinGeneralID, ExampleText: "이 개념 좀 설명해줘", RawScore: 0.9},
	}}
	stage := newStage(t, registry, &fakeEmbedder{err: errors.New("embed service down")}, index)

	assert.Nil(t, stage.Match(context.Background(), semQuery("hello")))
	assert.Zero(t, index.searches)
}

func TestStage_SearchFailureFallsThrough(t *testing.T) {
	registry := newSemanticRegistry(t)
	index := &fakeIndex{err: errors.New("index down")}
	stage := newStage(t, registry, &fakeEmbedder{}, index)

	assert.Nil(t, stage.Match(context.Background(), semQuery("hello")))
	assert.Equal(t, 1, index.searches)
}

func TestStage_SearchResultsCached(t *testing.T) {
	registry := newSemanticRegistry(t)
	index := &fakeIndex{results: []semantic.SearchResult{
		{AgentID: agents.BuiltinGeneralID, ExampleText: "이 개념 좀 설명해줘", RawScore: 0.9},
	}}
	stage := newStage(t, registry, &fakeEmbedder{}, index)

	ctx := context.Background()
	require.NotNil(t, stage.Match(ctx, semQuery("개념 설명")))
	require.NotNil(t, stage.Match(ctx, semQuery("개념 설명")))

	// Same embedding, so the second call hits the search cache.
	assert.Equal(t, 1, index.searches)
}

func TestStage_EmbeddingsCached(t *testing.T) {
	registry := newSemanticRegistry(t)
	embedCache, err := semantic.NewEmbeddingCache(semantic.EmbeddingCacheConfig{})
	require.NoError(t, err)
	defer embedCache.Close()

	embedder := &fakeEmbedder{}
	index := &fakeIndex{results: []semantic.SearchResult{
		{AgentID: agents.BuiltinGeneralID, ExampleText: "이 개념 좀 설명해줘", RawScore: 0.9},
	}}
	stage, err := semantic.NewStage(semantic.StageConfig{
		Registry:       registry,
		Embedder:       embedder,
		Index:          index,
		EmbeddingCache: embedCache,
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NotNil(t, stage.Match(ctx, semQuery("개념 설명")))
	embedCache.Wait()
	require.NotNil(t, stage.Match(ctx, semQuery("개념 설명")))

	assert.Equal(t, 1, embedder.calls)
}

func TestStage_SignalTruncated(t *testing.T) {
	registry := newSemanticRegistry(t)
	long := strings.Repeat("리", 200)
	index := &fakeIndex{results: []semantic.SearchResult{
		{AgentID: agents.BuiltinGeneralID, ExampleText: long, RawScore: 0.9},
	}}
	stage := newStage(t, registry, &fakeEmbedder{}, index)

	match := stage.Match(context.Background(), semQuery("무엇이든"))
	require.NotNil(t, match)
	assert.Equal(t, 80, len([]rune(match.MatchedSignal)))
}

func TestStage_RawScoreClamped(t *testing.T) {
	registry := newSemanticRegistry(t)
	index := &fakeIndex{results: []semantic.SearchResult{
		{AgentID: agents.BuiltinGeneralID, ExampleText: "이 개념 좀 설명해줘", RawScore: 1.3},
	}}
	stage := newStage(t, registry, &fakeEmbedder{}, index)

	match := stage.Match(context.Background(), semQuery("설명"))
	require.NotNil(t, match)
	assert.Equal(t, 1.0, match.Confidence)
}
