package diffeditor

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Registry tracks open diff editors by ID in opening order.
type Registry struct {
	mu      sync.RWMutex
	editors map[uuid.UUID]*DiffEditor
	order   []uuid.UUID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{editors: make(map[uuid.UUID]*DiffEditor)}
}

// Insert registers d.
func (r *Registry) Insert(d *DiffEditor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.editors[d.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, d.ID())
	}
	r.editors[d.ID()] = d
	r.order = append(r.order, d.ID())
	return nil
}

// Get returns the diff editor with the given ID.
func (r *Registry) Get(id uuid.UUID) (*DiffEditor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.editors[id]
	return d, ok
}

// Remove unregisters and disposes the diff editor with the given ID.
func (r *Registry) Remove(id uuid.UUID) error {
	r.mu.Lock()
	d, ok := r.editors[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.editors, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	d.Dispose()
	return nil
}

// All returns the registered diff editors in opening order.
func (r *Registry) All() []*DiffEditor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*DiffEditor, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.editors[id])
	}
	return all
}

// Len returns the number of registered diff editors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.editors)
}

// Infos returns the persisted form of every registered pairing.
func (r *Registry) Infos() []DiffEditorInfo {
	all := r.All()
	infos := make([]DiffEditorInfo, 0, len(all))
	for _, d := range all {
		infos = append(infos, d.Info())
	}
	return infos
}

// Close disposes every registered diff editor.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.editors
	r.editors = make(map[uuid.UUID]*DiffEditor)
	r.order = nil
	r.mu.Unlock()

	for _, d := range all {
		d.Dispose()
	}
}
