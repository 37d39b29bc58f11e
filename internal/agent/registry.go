// internal/agent/registry.go
package agent

import (
	"fmt"
	"sort"
	"sync"

	"github.com/freely-dev/freely/internal/types"
)

// Registry holds the registered adapters and dispatches by tool type.
type Registry struct {
	mu       sync.RWMutex
	adapters map[types.ToolType]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[types.ToolType]Adapter)}
}

// Register adds an adapter, replacing any previous one for the same
// tool type.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.ToolType()] = a
}

// For returns the adapter for a tool type.
func (r *Registry) For(toolType types.ToolType) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[toolType]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for tool type %q", toolType)
	}
	return a, nil
}

// All returns the registered adapters sorted by name.
func (r *Registry) All() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
