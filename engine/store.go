package engine

import (
	"sync"

	"github.com/lixenwraith/vignettes/core"
)

// Store is a typed component table keyed by entity, packed into parallel slices
// Iteration follows insertion order, which callers rely on for deterministic tie-breaks
type Store[T any] struct {
	mu     sync.RWMutex
	index  map[core.Entity]int
	keys   []core.Entity
	values []T
}

// NewStore creates an empty store for type T
func NewStore[T any]() *Store[T] {
	return &Store[T]{index: make(map[core.Entity]int)}
}

// Set inserts or replaces the value for e; a replaced value keeps its position
func (s *Store[T]) Set(e core.Entity, val T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[e]; ok {
		s.values[i] = val
		return
	}
	s.index[e] = len(s.keys)
	s.keys = append(s.keys, e)
	s.values = append(s.values, val)
}

// Get returns the value for e
func (s *Store[T]) Get(e core.Entity) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[e]
	if !ok {
		var zero T
		return zero, false
	}
	return s.values[i], true
}

// Has reports whether e has a value
func (s *Store[T]) Has(e core.Entity) bool {
	s.mu.RLock()
	_, ok := s.index[e]
	s.mu.RUnlock()
	return ok
}

// Remove deletes e and shifts later entries down, keeping their order
func (s *Store[T]) Remove(e core.Entity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[e]
	if !ok {
		return false
	}
	delete(s.index, e)
	copy(s.keys[i:], s.keys[i+1:])
	copy(s.values[i:], s.values[i+1:])
	last := len(s.keys) - 1
	var zero T
	s.values[last] = zero
	s.keys = s.keys[:last]
	s.values = s.values[:last]
	for j := i; j < last; j++ {
		s.index[s.keys[j]] = j
	}
	return true
}

// Entities returns a copy of the keys in insertion order
func (s *Store[T]) Entities() []core.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Entity(nil), s.keys...)
}

// Each calls fn for every entry in insertion order over a copy taken under the lock
// fn may mutate the store
func (s *Store[T]) Each(fn func(e core.Entity, val T)) {
	s.mu.RLock()
	keys := append([]core.Entity(nil), s.keys...)
	values := append([]T(nil), s.values...)
	s.mu.RUnlock()

	for i, e := range keys {
		fn(e, values[i])
	}
}

// Count returns the number of entries
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// Clear removes every entry
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = make(map[core.Entity]int)
	s.keys = nil
	s.values = nil
}
