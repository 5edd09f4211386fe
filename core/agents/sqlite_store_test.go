package agents_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/naru-ai/naru/core/agents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *agents.SQLiteStore {
	t.Helper()
	store, err := agents.NewSQLiteStore(agents.SQLiteStoreConfig{
		Path: filepath.Join(t.TempDir(), "agents.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_SaveAndLoad(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &agents.Agent{
		ID: "perf", Name: "성능 분석가", Enabled: true,
		Keywords: []string{"성능", "느려"},
		Priority: 200,
	}))

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "perf", loaded[0].ID)
	assert.Equal(t, []string{"성능", "느려"}, loaded[0].Keywords)
	assert.Equal(t, 200, loaded[0].Priority)
}

func TestSQLiteStore_SaveOverwrites(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &agents.Agent{ID: "perf", Name: "v1", Enabled: true}))
	require.NoError(t, store.Save(ctx, &agents.Agent{ID: "perf", Name: "v2", Enabled: false}))

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "v2", loaded[0].Name)
	assert.False(t, loaded[0].Enabled)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &agents.Agent{ID: "perf", Name: "perf"}))
	require.NoError(t, store.Delete(ctx, "perf"))
	require.NoError(t, store.Delete(ctx, "never-existed"))

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestRegistry_SeededFromStore(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &agents.Agent{
		ID: "perf", Name: "성능 분석가", Enabled: true,
	}))

	registry, err := agents.NewRegistry(ctx, agents.RegistryConfig{Store: store})
	require.NoError(t, err)

	assert.NotNil(t, registry.Get("perf"))
	// Builtins are still present alongside stored agents.
	assert.NotNil(t, registry.Get(agents.BuiltinGeneralID))
}

func TestRegistry_MutationsPersist(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	registry, err := agents.NewRegistry(ctx, agents.RegistryConfig{Store: store})
	require.NoError(t, err)
	require.True(t, registry.Add(ctx, &agents.Agent{ID: "perf", Name: "perf", Enabled: true}))
	require.True(t, registry.SetEnabled(ctx, "perf", false))

	reloaded, err := agents.NewRegistry(ctx, agents.RegistryConfig{Store: store})
	require.NoError(t, err)

	perf := reloaded.Get("perf")
	require.NotNil(t, perf)
	assert.False(t, perf.Enabled)
}
