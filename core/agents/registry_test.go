package agents_test

import (
	"context"
	"testing"

	"github.com/naru-ai/naru/core/agents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *agents.Registry {
	t.Helper()
	r, err := agents.NewRegistry(context.Background(), agents.RegistryConfig{})
	require.NoError(t, err)
	return r
}

func TestRegistry_SeedsBuiltins(t *testing.T) {
	r := newTestRegistry(t)

	assert.Equal(t, 3, r.Len())
	require.NotNil(t, r.Get(agents.BuiltinGeneralID))
	require.NotNil(t, r.Get(agents.BuiltinCodeReviewID))
	require.NotNil(t, r.Get(agents.BuiltinDebugID))
}

func TestRegistry_Add(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	ok := r.Add(ctx, &agents.Agent{ID: "deploy", Name: "배포 도우미", Enabled: true})
	assert.True(t, ok)
	assert.NotNil(t, r.Get("deploy"))

	// Duplicate id fails.
	ok = r.Add(ctx, &agents.Agent{ID: "deploy", Name: "another"})
	assert.False(t, ok)

	// Invalid definition fails.
	ok = r.Add(ctx, &agents.Agent{ID: "", Name: "nameless"})
	assert.False(t, ok)
}

func TestRegistry_Update(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	ok := r.Update(ctx, &agents.Agent{ID: "missing", Name: "ghost"})
	assert.False(t, ok)

	updated := r.Get(agents.BuiltinDebugID)
	updated.Description = "changed"
	assert.True(t, r.Update(ctx, updated))
	assert.Equal(t, "changed", r.Get(agents.BuiltinDebugID).Description)
}

func TestRegistry_Remove_ProtectsBuiltins(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	assert.False(t, r.Remove(ctx, agents.BuiltinGeneralID))
	assert.False(t, r.Remove(ctx, agents.BuiltinCodeReviewID))
	assert.False(t, r.Remove(ctx, agents.BuiltinDebugID))

	// Builtin remains present and routable afterwards.
	require.NotNil(t, r.GetEnabled(agents.BuiltinGeneralID))

	// Custom agents can be removed.
	require.True(t, r.Add(ctx, &agents.Agent{ID: "temp", Name: "temp", Enabled: true}))
	assert.True(t, r.Remove(ctx, "temp"))
	assert.Nil(t, r.Get("temp"))

	// Removing an unknown id fails.
	assert.False(t, r.Remove(ctx, "never-existed"))
}

func TestRegistry_SetEnabled(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	assert.False(t, r.SetEnabled(ctx, "missing", true))

	assert.True(t, r.SetEnabled(ctx, agents.BuiltinDebugID, false))
	assert.Nil(t, r.GetEnabled(agents.BuiltinDebugID))

	assert.True(t, r.SetEnabled(ctx, agents.BuiltinDebugID, true))
	assert.NotNil(t, r.GetEnabled(agents.BuiltinDebugID))
}

func TestRegistry_EnabledSnapshot_RegistrationOrder(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.True(t, r.Add(ctx, &agents.Agent{ID: "z-last", Name: "last", Enabled: true}))
	require.True(t, r.SetEnabled(ctx, agents.BuiltinDebugID, false))

	snapshot := r.EnabledSnapshot()
	ids := make([]string, 0, len(snapshot))
	for _, a := range snapshot {
		ids = append(ids, a.ID)
	}

	// Disabled agents are excluded; order is registration order, not sorted.
	assert.Equal(t, []string{agents.BuiltinGeneralID, agents.BuiltinCodeReviewID, "z-last"}, ids)
}

func TestRegistry_DefaultAgent(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	// The general agent carries the default flag.
	assert.Equal(t, agents.BuiltinGeneralID, r.DefaultAgent().ID)

	// Without a flagged default, the first enabled agent wins.
	general := r.Get(agents.BuiltinGeneralID)
	general.IsDefault = false
	general.Enabled = false
	require.True(t, r.Update(ctx, general))
	assert.Equal(t, agents.BuiltinCodeReviewID, r.DefaultAgent().ID)
}

func TestRegistry_SnapshotIsolation(t *testing.T) {
	r := newTestRegistry(t)

	snapshot := r.EnabledSnapshot()
	snapshot[0].Name = "mutated"

	assert.NotEqual(t, "mutated", r.Get(snapshot[0].ID).Name)
}
