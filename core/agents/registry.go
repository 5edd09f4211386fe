package agents

import (
	"context"
	"log/slog"
	"sync"
)

// Store is the external registry collaborator. It owns durable persistence of
// agent records; the in-memory Registry is the cache of record for routing.
type Store interface {
	LoadAll(ctx context.Context) ([]*Agent, error)
	Save(ctx context.Context, agent *Agent) error
	Delete(ctx context.Context, id string) error
}

// Registry is the shared, read-mostly working set of agents. Reads take
// snapshots under RLock so a routing call never observes a partially updated
// agent; administrative mutations take the write lock.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]*Agent
	order  []string // registration order, drives keyword-stage iteration
	store  Store
	logger *slog.Logger
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// Store is optional; without it mutations are memory-only.
	Store Store

	// Logger is optional, uses slog.Default() if nil.
	Logger *slog.Logger
}

// NewRegistry creates a registry seeded with the builtin agents plus whatever
// the store holds. Store records override builtin definitions with the same id.
func NewRegistry(ctx context.Context, cfg RegistryConfig) (*Registry, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		byID:   make(map[string]*Agent),
		store:  cfg.Store,
		logger: logger,
	}

	for _, a := range BuiltinAgents() {
		r.insert(a)
	}

	if cfg.Store != nil {
		stored, err := cfg.Store.LoadAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, a := range stored {
			if !a.Validate() {
				logger.Warn("skipping invalid stored agent", "id", a.ID)
				continue
			}
			r.insert(a)
		}
	}

	return r, nil
}

// insert adds or replaces without locking; callers hold the write lock or are
// still constructing the registry.
func (r *Registry) insert(a *Agent) {
	a.CompileTools()
	if _, exists := r.byID[a.ID]; !exists {
		r.order = append(r.order, a.ID)
	}
	r.byID[a.ID] = a
}

// Add registers a new agent. Fails on invalid definitions and duplicate ids.
func (r *Registry) Add(ctx context.Context, a *Agent) bool {
	if !a.Validate() {
		return false
	}

	r.mu.Lock()
	if _, exists := r.byID[a.ID]; exists {
		r.mu.Unlock()
		return false
	}
	r.insert(a.Clone())
	r.mu.Unlock()

	r.persist(ctx, a)
	r.logger.Info("agent added", "id", a.ID, "name", a.Name)
	return true
}

// Update replaces an existing agent definition. Fails if the id is unknown.
func (r *Registry) Update(ctx context.Context, a *Agent) bool {
	if !a.Validate() {
		return false
	}

	r.mu.Lock()
	if _, exists := r.byID[a.ID]; !exists {
		r.mu.Unlock()
		return false
	}
	r.insert(a.Clone())
	r.mu.Unlock()

	r.persist(ctx, a)
	r.logger.Info("agent updated", "id", a.ID)
	return true
}

// Remove deletes an agent. Protected builtin ids always fail.
func (r *Registry) Remove(ctx context.Context, id string) bool {
	if IsProtected(id) {
		r.logger.Warn("refusing to remove protected agent", "id", id)
		return false
	}

	r.mu.Lock()
	if _, exists := r.byID[id]; !exists {
		r.mu.Unlock()
		return false
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.Delete(ctx, id); err != nil {
			r.logger.Warn("store delete failed", "id", id, "error", err)
		}
	}
	r.logger.Info("agent removed", "id", id)
	return true
}

// SetEnabled flips an agent's enabled flag. Fails if the id is unknown.
func (r *Registry) SetEnabled(ctx context.Context, id string, enabled bool) bool {
	r.mu.Lock()
	a, exists := r.byID[id]
	if !exists {
		r.mu.Unlock()
		return false
	}
	updated := a.Clone()
	updated.Enabled = enabled
	r.insert(updated)
	r.mu.Unlock()

	r.persist(ctx, updated)
	r.logger.Info("agent enabled flag changed", "id", id, "enabled", enabled)
	return true
}

// Get returns a clone of the agent, or nil if unknown.
func (r *Registry) Get(id string) *Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id].Clone()
}

// GetEnabled returns a clone of the agent only if it exists and is enabled.
func (r *Registry) GetEnabled(id string) *Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a := r.byID[id]
	if a == nil || !a.Enabled {
		return nil
	}
	return a.Clone()
}

// List returns clones of every agent in registration order.
func (r *Registry) List() []*Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Agent, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Clone())
	}
	return out
}

// EnabledSnapshot returns clones of every enabled agent in registration
// order. Stages iterate this stable snapshot for the whole routing call.
func (r *Registry) EnabledSnapshot() []*Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Agent, 0, len(r.order))
	for _, id := range r.order {
		if a := r.byID[id]; a.Enabled {
			out = append(out, a.Clone())
		}
	}
	return out
}

// DefaultAgent returns the agent flagged as default, or the first enabled
// agent when none is flagged. Returns nil only when the registry is empty of
// enabled agents, which the builtin seed prevents in practice.
func (r *Registry) DefaultAgent() *Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var firstEnabled *Agent
	for _, id := range r.order {
		a := r.byID[id]
		if !a.Enabled {
			continue
		}
		if a.IsDefault {
			return a.Clone()
		}
		if firstEnabled == nil {
			firstEnabled = a
		}
	}
	return firstEnabled.Clone()
}

// ToolAllowed reports whether the agent may use the tool.
func (r *Registry) ToolAllowed(agentID, tool string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[agentID].ToolAllowed(tool)
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *Registry) persist(ctx context.Context, a *Agent) {
	if r.store == nil {
		return
	}
	if err := r.store.Save(ctx, a); err != nil {
		r.logger.Warn("store save failed", "id", a.ID, "error", err)
	}
}
