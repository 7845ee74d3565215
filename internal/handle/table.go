// Package handle provides a generic table mapping opaque numeric handles
// to backend-side values.
//
// Handles are issued in increasing order starting at 1 and are never
// reused, so a stale handle can never alias a newer value. Zero is never
// issued and can serve as the "no handle" value.
//
//	t := handle.New[*list]()
//	h := t.Insert(l)
//	l, ok := t.Get(h)
//	t.Delete(h)
//
// Table is safe for concurrent use and must not be copied after creation.
package handle

import "sync"

// Table maps handles to values.
type Table[V any] struct {
	mu      sync.Mutex
	entries map[uint64]V
	next    uint64 // Last issued handle
}

// New creates an empty table.
func New[V any]() *Table[V] {
	return &Table[V]{
		entries: make(map[uint64]V),
	}
}

// Insert stores v under a fresh handle and returns it.
func (t *Table[V]) Insert(v V) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	t.entries[t.next] = v
	return t.next
}

// Get returns the value stored under h.
// Returns (value, true) if found, (zero, false) otherwise.
func (t *Table[V]) Get(h uint64) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.entries[h]
	return v, ok
}

// Replace stores v under an existing handle.
// Returns false if h is not in the table.
func (t *Table[V]) Replace(h uint64, v V) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[h]; !ok {
		return false
	}
	t.entries[h] = v
	return true
}

// Delete removes h from the table.
// Returns the removed value and true if the handle was found.
func (t *Table[V]) Delete(h uint64) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.entries[h]
	if ok {
		delete(t.entries, h)
	}
	return v, ok
}

// Len returns the number of live handles.
func (t *Table[V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}
