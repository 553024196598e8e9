package sinks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/akave-ai/alephweb/internal/telemetry"
)

// Registry holds registered sink factories. Sink packages register their
// factory with GlobalRegistry in init().
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// GlobalRegistry is populated by the sink sub-packages.
var GlobalRegistry = NewRegistry()

// NewRegistry returns a new Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory for a sink type.
func (r *Registry) Register(factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[factory.Name()] = factory
}

// Create builds a sink of the given type.
func (r *Registry) Create(name string, deps Deps) (telemetry.Sink, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown sink type: %s", name)
	}
	return factory.Create(deps)
}

// Build creates every named sink. On failure the sinks built so far are closed.
func (r *Registry) Build(ctx context.Context, names []string, deps Deps) (telemetry.MultiSink, error) {
	seen := make(map[string]bool, len(names))
	out := make(telemetry.MultiSink, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		sink, err := r.Create(name, deps)
		if err != nil {
			_ = out.Close(ctx)
			return nil, fmt.Errorf("sink %s: %w", name, err)
		}
		out = append(out, sink)
	}
	return out, nil
}

// ListRegistered returns all registered sink type names, sorted.
func (r *Registry) ListRegistered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetTypeInfo returns the config spec for the given sink type. ok is false if the type is not registered.
func (r *Registry) GetTypeInfo(name string) (info SinkTypeInfo, ok bool) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return SinkTypeInfo{}, false
	}
	return factory.ConfigSpec(), true
}

// AllTypesInfo returns config specs for all registered sink types, sorted by type.
func (r *Registry) AllTypesInfo() []SinkTypeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SinkTypeInfo, 0, len(r.factories))
	for _, factory := range r.factories {
		out = append(out, factory.ConfigSpec())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
