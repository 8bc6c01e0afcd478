package tool

import (
	"fmt"
	"sort"
	"sync"
)

// Registry keeps the mapping between registration keys and tools. Keys
// usually equal the tool's name, but callers may register under a divergent
// key; Resolve covers both.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register inserts a tool keyed by its own name.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool is nil")
	}
	return r.RegisterAs(t.Name(), t)
}

// RegisterAs inserts a tool under an explicit key.
func (r *Registry) RegisterAs(key string, t Tool) error {
	if t == nil {
		return fmt.Errorf("tool is nil")
	}
	if key == "" {
		return fmt.Errorf("tool key is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[key]; exists {
		return fmt.Errorf("tool %s already registered", key)
	}
	r.tools[key] = t
	return nil
}

// Resolve locates a tool by name. The lookup first tries an exact key match;
// when absent it falls back to a linear scan for a tool whose declared name
// equals the requested one, since tools may be keyed differently than their
// name. A miss is not fatal to the step; it reports a descriptive result
// instead.
func (r *Registry) Resolve(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.tools[name]; ok {
		return t, true
	}
	for _, t := range r.tools {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Keys returns the registration keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.tools))
	for k := range r.tools {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
