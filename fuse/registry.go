package fuse

import (
	"fmt"
	"sort"
	"sync"

	"github.com/opentrustprotocol/otp-go/judgment"
)

// Registry maps versioned operator ids to operators. There is no
// process-wide table: each caller builds its own registry, so tests
// and verifiers control exactly which operators they recognize.
type Registry struct {
	mu        sync.RWMutex
	operators map[string]Operator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{operators: make(map[string]Operator)}
}

// Register adds op under its id. An empty id or an id already present
// is an error: ids are formula contracts, and silent replacement would
// let one formula answer for another during verification.
func (r *Registry) Register(op Operator) error {
	id := op.ID()
	if id == "" {
		return fmt.Errorf("register operator: empty id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.operators[id]; exists {
		return fmt.Errorf("register operator: %q already registered", id)
	}
	r.operators[id] = op
	return nil
}

// MustRegister is Register that panics on error, for building
// registries in variable initializers.
func (r *Registry) MustRegister(op Operator) {
	if err := r.Register(op); err != nil {
		panic(err)
	}
}

// Get returns the operator registered under id.
func (r *Registry) Get(id string) (Operator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.operators[id]
	return op, ok
}

// IDs returns the registered operator ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.operators))
	for id := range r.operators {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DefaultRegistry returns a fresh registry holding the built-in
// operators, all stamping provenance from ts. A nil ts uses system
// time. Every call returns an independent registry.
func DefaultRegistry(ts judgment.TimestampSource) *Registry {
	r := NewRegistry()
	r.MustRegister(NewCAWA(ts))
	r.MustRegister(NewOptimistic(ts))
	r.MustRegister(NewPessimistic(ts))
	return r
}
