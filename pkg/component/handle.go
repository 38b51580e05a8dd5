package component

import (
	"sync"

	"github.com/google/uuid"
)

// Handle is a non-owning reference to a registered value.
// The zero Handle resolves to nothing.
type Handle struct {
	id  uuid.UUID
	reg *Registry
}

// ID returns the handle's identifier.
func (h Handle) ID() uuid.UUID { return h.id }

// String returns the identifier in canonical form.
func (h Handle) String() string { return h.id.String() }

// IsZero reports whether h was never issued.
func (h Handle) IsZero() bool { return h.reg == nil }

// Registry maps handles to live values.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[uuid.UUID]any)}
}

// DefaultRegistry is used by components created without WithRegistry.
var DefaultRegistry = NewRegistry()

// Register stores v and returns a handle to it.
func (r *Registry) Register(v any) Handle {
	id := uuid.Must(uuid.NewV7())
	r.mu.Lock()
	r.entries[id] = v
	r.mu.Unlock()
	return Handle{id: id, reg: r}
}

// Unregister drops the value behind h. Later lookups fail.
func (r *Registry) Unregister(h Handle) {
	r.mu.Lock()
	delete(r.entries, h.id)
	r.mu.Unlock()
}

// Lookup returns the value behind h.
func (r *Registry) Lookup(h Handle) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[h.id]
	return v, ok
}

// Len returns the number of registered values.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Resolve returns the value behind h if it is still registered and has type T.
func Resolve[T any](h Handle) (T, bool) {
	var zero T
	if h.reg == nil {
		return zero, false
	}
	v, ok := h.reg.Lookup(h)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
