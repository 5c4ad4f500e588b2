package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/status"
)

// DefaultMaxCatchUp bounds how many fixed steps a single wake may run
const DefaultMaxCatchUp = 8

// StepFunc advances a simulation by one fixed timestep
type StepFunc func(dt time.Duration)

// FixedStepper runs a StepFunc at a fixed rate, independent of the render loop
// Elapsed time accumulates between wakes; whole intervals are stepped and the
// remainder carried. When the stepper falls further behind than maxCatchUp steps
// the surplus intervals are dropped instead of spiralling
type FixedStepper struct {
	interval   time.Duration
	step       StepFunc
	clock      TimeProvider
	maxCatchUp int

	mu          sync.Mutex
	last        time.Time
	accumulator time.Duration
	primed      bool

	ticks     atomic.Uint64
	dropped   atomic.Uint64
	statTicks *atomic.Int64

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewFixedStepper configures a stepper targeting hz steps per second
func NewFixedStepper(hz float64, step StepFunc, clock TimeProvider) *FixedStepper {
	if hz <= 0 {
		hz = 120
	}
	if step == nil {
		step = func(time.Duration) {}
	}
	if clock == nil {
		clock = NewMonotonicTimeProvider()
	}
	interval := time.Duration(float64(time.Second) / hz)
	if interval <= 0 {
		interval = time.Second / 120
	}
	return &FixedStepper{
		interval:   interval,
		step:       step,
		clock:      clock,
		maxCatchUp: DefaultMaxCatchUp,
		stopChan:   make(chan struct{}),
	}
}

// SetMaxCatchUp changes the per-wake step bound, must be called before Start
func (s *FixedStepper) SetMaxCatchUp(n int) {
	if n > 0 {
		s.maxCatchUp = n
	}
}

// SetMetrics caches the step counter from reg
func (s *FixedStepper) SetMetrics(reg *status.Registry) {
	if reg != nil {
		s.statTicks = reg.Counter("engine.ticks")
	}
}

// Interval returns the fixed timestep
func (s *FixedStepper) Interval() time.Duration {
	return s.interval
}

// Ticks returns the number of steps executed
func (s *FixedStepper) Ticks() uint64 {
	return s.ticks.Load()
}

// Dropped returns the number of intervals discarded by the catch-up bound
func (s *FixedStepper) Dropped() uint64 {
	return s.dropped.Load()
}

// Advance reads the clock and runs every whole interval elapsed since the last call
// The first call only primes the clock. Returns the number of steps run
func (s *FixedStepper) Advance() int {
	now := s.clock.Now()

	s.mu.Lock()
	if !s.primed {
		s.primed = true
		s.last = now
		s.mu.Unlock()
		return 0
	}

	elapsed := now.Sub(s.last)
	s.last = now
	if elapsed > 0 {
		s.accumulator += elapsed
	}

	steps := int(s.accumulator / s.interval)
	if steps > s.maxCatchUp {
		s.dropped.Add(uint64(steps - s.maxCatchUp))
		steps = s.maxCatchUp
	}
	// Remainder below one interval is carried, surplus beyond the bound is dropped
	s.accumulator %= s.interval
	s.mu.Unlock()

	for i := 0; i < steps; i++ {
		s.step(s.interval)
		s.ticks.Add(1)
		if s.statTicks != nil {
			s.statTicks.Add(1)
		}
	}
	return steps
}

// Start begins stepping on a background goroutine until ctx is cancelled or Stop is called
func (s *FixedStepper) Start(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	s.Advance()

	s.wg.Add(1)
	core.Go(func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Advance()
			}
		}
	})
}

// Stop halts the background goroutine and waits for it to exit
func (s *FixedStepper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.running.Load() {
			s.wg.Wait()
		}
	})
}
