package engine

import "sync"

// Future is a single-fire readiness signal carrying a value
// Continuations registered before resolution run once, in registration order, on the
// resolving goroutine; continuations registered after resolution run immediately and
// synchronously on the caller's goroutine
type Future[T any] struct {
	mu      sync.Mutex
	done    bool
	value   T
	waiters []func(T)
	ch      chan struct{}
}

// NewFuture creates an unresolved future
func NewFuture[T any]() *Future[T] {
	return &Future[T]{ch: make(chan struct{})}
}

// Resolved creates a future that is already ready with v
func Resolved[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(v)
	return f
}

// Resolve fulfils the future; only the first call has effect
func (f *Future[T]) Resolve(v T) bool {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return false
	}
	f.done = true
	f.value = v
	waiters := f.waiters
	f.waiters = nil
	close(f.ch)
	f.mu.Unlock()

	for _, fn := range waiters {
		fn(v)
	}
	return true
}

// Then registers fn to run exactly once with the resolved value
func (f *Future[T]) Then(fn func(T)) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	if f.done {
		v := f.value
		f.mu.Unlock()
		fn(v)
		return
	}
	f.waiters = append(f.waiters, fn)
	f.mu.Unlock()
}

// Value returns the resolved value and whether resolution happened
func (f *Future[T]) Value() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.done
}

// Ready reports whether the future has resolved
func (f *Future[T]) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// Done returns a channel closed on resolution
func (f *Future[T]) Done() <-chan struct{} {
	return f.ch
}
