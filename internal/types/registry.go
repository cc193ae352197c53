package types

import (
	"sync"

	"snex/internal/ident"
)

// Registry interns complex types by structural key so that equal
// instantiations share one descriptor. It is safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	byKey map[string]ComplexType
	order []ComplexType
}

func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]ComplexType)}
}

// Publish finalises t and registers it under its key. When the key is
// already taken the registered descriptor is returned instead and t is
// dropped; added reports which happened. Only finalised descriptors are
// published, so sessions sharing the registry never lay out a type another
// session is reading. Deferred template types are never registered.
func (r *Registry) Publish(t ComplexType) (ct ComplexType, added bool, err error) {
	if _, deferred := t.(*TemplatedComplexType); deferred {
		return t, false, nil
	}
	key := t.Key()
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byKey[key]; ok {
		return existing, false, nil
	}
	if err := t.FinaliseAlignment(); err != nil {
		return nil, false, err
	}
	r.byKey[key] = t
	r.order = append(r.order, t)
	return t, true, nil
}

func (r *Registry) Lookup(key string) (ComplexType, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ct, ok := r.byKey[key]
	return ct, ok
}

// LookupTemplate finds the instantiation of id with args.
func (r *Registry) LookupTemplate(id ident.ID, args []TemplateParameter) (ComplexType, bool) {
	return r.Lookup(TemplateKey(id, args))
}

// All returns the descriptors in registration order.
func (r *Registry) All() []ComplexType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ComplexType(nil), r.order...)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}
