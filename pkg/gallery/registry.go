package gallery

import (
	"slices"
	"sync"
)

// Registry maps numeric ids to galleries so external code can refer to a
// gallery by id. It is passed to [New]; there is no process-wide registry.
type Registry interface {
	// Register stores g. A positive id is honoured (replacing any gallery
	// already stored under it); otherwise the next free id is assigned.
	// It returns the id g was stored under.
	Register(g *Gallery, id int) int

	// Lookup returns the gallery stored under id.
	Lookup(id int) (*Gallery, bool)

	// Remove deletes id. Removing an unknown id is a no-op.
	Remove(id int)

	// IDs returns the registered ids in ascending order.
	IDs() []int
}

// MemoryRegistry is an in-memory Registry safe for concurrent use.
// Assigned ids start at 1 and always exceed every id seen so far.
type MemoryRegistry struct {
	mu    sync.RWMutex
	items map[int]*Gallery
	last  int
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{items: make(map[int]*Gallery)}
}

func (r *MemoryRegistry) Register(g *Gallery, id int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id <= 0 {
		r.last++
		id = r.last
	} else if id > r.last {
		r.last = id
	}
	r.items[id] = g
	return id
}

func (r *MemoryRegistry) Lookup(id int) (*Gallery, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.items[id]
	return g, ok
}

func (r *MemoryRegistry) Remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}

func (r *MemoryRegistry) IDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

var _ Registry = (*MemoryRegistry)(nil)
