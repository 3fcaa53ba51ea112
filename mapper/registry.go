package mapper

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/opentrustprotocol/otp-go/judgment"
)

// Registry holds validated mapper definitions keyed by id. Construct
// one with NewRegistry and pass it explicitly; there is no process-wide
// registry.
type Registry struct {
	mu      sync.RWMutex
	mappers map[string]Mapper
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{mappers: make(map[string]Mapper)}
}

// Register validates m and adds it under its id. A duplicate id is an
// error: two definitions answering to one id would make provenance
// source_ids ambiguous.
func (r *Registry) Register(m Mapper) error {
	if errs := Validate(m); len(errs) > 0 {
		return fmt.Errorf("register mapper: %w", errs[0])
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := m.MapperID()
	if _, exists := r.mappers[id]; exists {
		return fmt.Errorf("register mapper: %q already registered", id)
	}
	r.mappers[id] = m
	return nil
}

// Get returns the mapper registered under id.
func (r *Registry) Get(id string) (Mapper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mappers[id]
	return m, ok
}

// List returns the registered mapper ids in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.mappers))
	for id := range r.mappers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of registered mappers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mappers)
}

// Apply resolves id and applies the mapper to value.
func (r *Registry) Apply(id string, value any) (judgment.Judgment, error) {
	m, ok := r.Get(id)
	if !ok {
		return judgment.Judgment{}, &judgment.ValidationError{
			Code:    judgment.ErrCodeInvalidInput,
			Field:   "id",
			Message: fmt.Sprintf("no mapper registered under %q", id),
		}
	}
	return m.ApplyValue(value)
}

// ExportJSON encodes every registered definition as one JSON object
// keyed by mapper id, each value in the ParseMapper form.
func (r *Registry) ExportJSON() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]json.RawMessage, len(r.mappers))
	for id, m := range r.mappers {
		data, err := MarshalMapper(m)
		if err != nil {
			return nil, fmt.Errorf("export mapper %q: %w", id, err)
		}
		out[id] = data
	}
	return json.Marshal(out)
}

// ImportJSON decodes an ExportJSON document and registers every
// definition in it. Nothing is registered unless every definition
// parses and validates.
func (r *Registry) ImportJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("import mappers: %w", err)
	}

	parsed := make([]Mapper, 0, len(raw))
	for key, entry := range raw {
		m, err := ParseMapper(entry)
		if err != nil {
			return fmt.Errorf("import mapper %q: %w", key, err)
		}
		if m.MapperID() != key {
			return fmt.Errorf("import mapper %q: definition declares id %q", key, m.MapperID())
		}
		parsed = append(parsed, m)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range parsed {
		if _, exists := r.mappers[m.MapperID()]; exists {
			return fmt.Errorf("import mapper %q: already registered", m.MapperID())
		}
	}
	for _, m := range parsed {
		r.mappers[m.MapperID()] = m
	}
	return nil
}
