package dispatch

import "sync"

// Registry maps dispatch names to their ordered candidate lists.
// Append-only: a candidate's position never moves once registered, because
// declaration order is the tie-break the default resolver depends on.
// Duplicate names are the whole point of multiple dispatch.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string][]*Implementation
	order []string // names in first-registration order, for introspection
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string][]*Implementation)}
}

// Append adds an implementation under name.
func (r *Registry) Append(name string, im *Implementation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.funcs[name]; !ok {
		r.order = append(r.order, name)
	}
	r.funcs[name] = append(r.funcs[name], im)
}

// Candidates returns the ordered candidate list for name. The returned
// slice is a snapshot: registrations after this call do not alter it.
func (r *Registry) Candidates(name string) ([]*Implementation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cands := r.funcs[name]
	if len(cands) == 0 {
		return nil, &NotBoundError{Name: name}
	}
	out := make([]*Implementation, len(cands))
	copy(out, cands)
	return out, nil
}

// Names returns the bound names in first-registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns (distinct names, total implementations).
func (r *Registry) Len() (names int, impls int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cands := range r.funcs {
		impls += len(cands)
	}
	return len(r.funcs), impls
}
