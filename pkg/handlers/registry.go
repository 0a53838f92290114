package handlers

import (
	"sync"

	"github.com/OHIF/Viewers-sub030/pkg/errors"
)

// Registry holds builders keyed by id in registration order.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	order []Handler
	byID  map[string]Handler
}

// NewRegistry returns a registry holding the given builders in order.
func NewRegistry(hs ...Handler) (*Registry, error) {
	r := &Registry{byID: make(map[string]Handler)}
	for _, h := range hs {
		if err := r.Register(h); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a builder.
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return errors.NewValidationError("handler", nil, "handler is nil")
	}
	id := h.ID()
	if id == "" {
		return errors.NewValidationError("id", id, "handler id is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byID == nil {
		r.byID = make(map[string]Handler)
	}
	if _, exists := r.byID[id]; exists {
		return errors.Join(errors.ErrAlreadyExists, errors.NewValidationError("id", id, "handler already registered"))
	}
	r.byID[id] = h
	r.order = append(r.order, h)
	return nil
}

// Resolve returns the first builder in order claiming the SOP class.
func (r *Registry) Resolve(sopClassUID string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.order {
		if Claims(h, sopClassUID) {
			return h, true
		}
	}
	return nil, false
}

// Matching returns every builder claiming the SOP class, in order.
func (r *Registry) Matching(sopClassUID string) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Handler
	for _, h := range r.order {
		if Claims(h, sopClassUID) {
			out = append(out, h)
		}
	}
	return out
}

// Get returns the builder with the id.
func (r *Registry) Get(id string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byID[id]
	return h, ok
}

// List returns the builders in registration order.
func (r *Registry) List() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Handler(nil), r.order...)
}

// Len returns the number of builders.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
