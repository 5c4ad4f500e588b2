package status

import (
	"sort"
	"sync"
)

// MetricMap is a named set of metrics of type T, kept in key order
// Lookup of an existing key takes the read lock only; callers cache the pointer
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
	keys  []string // sorted on insert
}

// NewMetricMap creates an empty MetricMap
func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{items: make(map[string]*T)}
}

// Get returns the metric for key, registering a zero value on first use
func (m *MetricMap[T]) Get(key string) *T {
	m.mu.RLock()
	ptr, ok := m.items[key]
	m.mu.RUnlock()
	if ok {
		return ptr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ptr, ok := m.items[key]; ok {
		return ptr
	}
	ptr = new(T)
	m.items[key] = ptr
	i := sort.SearchStrings(m.keys, key)
	m.keys = append(m.keys, "")
	copy(m.keys[i+1:], m.keys[i:])
	m.keys[i] = key
	return ptr
}

// Keys returns the registered keys in sorted order
func (m *MetricMap[T]) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.keys...)
}

// Range visits every metric in key order; fn runs outside the lock
func (m *MetricMap[T]) Range(fn func(key string, ptr *T)) {
	m.mu.RLock()
	keys := append([]string(nil), m.keys...)
	ptrs := make([]*T, len(keys))
	for i, k := range keys {
		ptrs[i] = m.items[k]
	}
	m.mu.RUnlock()

	for i, k := range keys {
		fn(k, ptrs[i])
	}
}

// Count returns the number of registered metrics
func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}
