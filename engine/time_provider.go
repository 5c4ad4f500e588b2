package engine

import (
	"sync"
	"time"
)

// TimeProvider is the clock source for steppers and frame loops
type TimeProvider interface {
	Now() time.Time
}

// MonotonicTimeProvider reads the system clock with its monotonic component
type MonotonicTimeProvider struct{}

// NewMonotonicTimeProvider creates a system clock provider
func NewMonotonicTimeProvider() *MonotonicTimeProvider {
	return &MonotonicTimeProvider{}
}

// Now returns the current time with monotonic clock reading
func (p *MonotonicTimeProvider) Now() time.Time {
	return time.Now()
}

// MockTimeProvider is a manually driven clock for deterministic stepping in tests and replays
type MockTimeProvider struct {
	mu          sync.RWMutex
	currentTime time.Time
}

// NewMockTimeProvider creates a mock clock starting at startTime
func NewMockTimeProvider(startTime time.Time) *MockTimeProvider {
	return &MockTimeProvider{currentTime: startTime}
}

// Now returns the current mocked time
func (m *MockTimeProvider) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentTime
}

// SetTime sets the current time
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.mu.Lock()
	m.currentTime = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time
func (m *MockTimeProvider) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
	return m.currentTime
}
