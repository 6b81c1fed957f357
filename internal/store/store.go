// internal/store/store.go
package store

import (
	"sync"

	"github.com/google/uuid"
)

// Cloner is implemented by entity types held in a Table. The table clones
// values on every read and write, so no caller ever holds a reference into
// stored state. Entities that are pure value types can return themselves.
type Cloner[V any] interface {
	Clone() V
}

// Table is an in-memory map of one entity type, keyed by UUID and guarded
// by a single mutex. The lock is held only for the duration of the map
// access (snapshot-then-release for All), never across anything blocking.
//
// There are no cross-table transactions: a sequence of operations spanning
// multiple tables is not atomic as a whole, and callers must treat a missing
// referenced entity as a normal not-found outcome.
type Table[V Cloner[V]] struct {
	mu      sync.Mutex
	entries map[uuid.UUID]V
}

// New returns an empty table.
func New[V Cloner[V]]() *Table[V] {
	return &Table[V]{
		entries: make(map[uuid.UUID]V),
	}
}

// Get returns a copy of the value stored under id, if present.
func (t *Table[V]) Get(id uuid.UUID) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.entries[id]
	if !ok {
		var zero V
		return zero, false
	}
	return v.Clone(), true
}

// Insert stores a copy of v under id, replacing any previous value.
func (t *Table[V]) Insert(id uuid.UUID, v V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[id] = v.Clone()
}

// Remove deletes the value stored under id and returns it, if present.
func (t *Table[V]) Remove(id uuid.UUID) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.entries[id]
	if !ok {
		var zero V
		return zero, false
	}
	delete(t.entries, id)
	return v, true
}

// All returns a point-in-time snapshot of every value in the table, in
// unspecified order. The snapshot is a copy, not a live view.
func (t *Table[V]) All() []V {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]V, 0, len(t.entries))
	for _, v := range t.entries {
		out = append(out, v.Clone())
	}
	return out
}

// Len returns the number of entries currently stored.
func (t *Table[V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
