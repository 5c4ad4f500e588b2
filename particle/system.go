// Package particle emits and advects short-lived point particles
// Emitters are removed in two phases: removal stops emission, destruction
// waits for the last particle to expire
package particle

import (
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/engine"
	"github.com/lixenwraith/vignettes/status"
	"github.com/lixenwraith/vignettes/vmath"
)

var white = Color{1, 1, 1, 1}

type emitter struct {
	params         Params
	running        bool
	timer          float64
	particles      []Particle
	pendingRemoval bool
}

// EmitterView is a read-only summary for renderers
type EmitterView struct {
	ID             core.Entity
	Position       mgl64.Vec3
	Running        bool
	PendingRemoval bool
	Particles      int
}

// System owns all emitters, not safe for concurrent use
type System struct {
	emitters *engine.Arena[emitter]
	rng      *vmath.FastRand
	alive    int

	statSpawned *atomic.Int64
	statExpired *atomic.Int64
	statAlive   *status.Gauge
}

// NewSystem creates an empty system seeded for reproducible spawns
func NewSystem(seed uint64) *System {
	return &System{
		emitters: engine.NewArena[emitter](16),
		rng:      vmath.NewFastRand(seed),
	}
}

// SetMetrics caches counters from reg
func (s *System) SetMetrics(reg *status.Registry) {
	if reg == nil {
		return
	}
	s.statSpawned = reg.Counter("particle.spawned")
	s.statExpired = reg.Counter("particle.expired")
	s.statAlive = reg.Gauge("particle.alive")
}

// CreateEmitter registers a stopped, empty emitter
func (s *System) CreateEmitter(p Params) (core.Entity, error) {
	if err := p.Validate(); err != nil {
		return core.NoEntity, err
	}
	if p.MaxParticles == 0 {
		p.MaxParticles = DefaultMaxParticles
	}
	return s.emitters.Insert(emitter{params: p}), nil
}

func (s *System) lookup(h core.Entity) (*emitter, error) {
	e, ok := s.emitters.Get(h)
	if !ok {
		return nil, fmt.Errorf("emitter %s: %w", h, core.ErrStaleHandle)
	}
	return e, nil
}

// Start begins emission and resets the emission timer
func (s *System) Start(h core.Entity) error {
	e, err := s.lookup(h)
	if err != nil {
		return err
	}
	if e.pendingRemoval {
		return fmt.Errorf("start emitter %s: %w", h, core.ErrEmitterRemoved)
	}
	e.running = true
	e.timer = 0
	return nil
}

// Stop halts emission, live particles keep advecting
func (s *System) Stop(h core.Entity) error {
	e, err := s.lookup(h)
	if err != nil {
		return err
	}
	e.running = false
	return nil
}

// Remove stops the emitter and schedules destruction for when it has no particles
func (s *System) Remove(h core.Entity) error {
	e, err := s.lookup(h)
	if err != nil {
		return err
	}
	e.running = false
	e.pendingRemoval = true
	return nil
}

// SetPosition moves the spawn centre, existing particles are unaffected
func (s *System) SetPosition(h core.Entity, pos mgl64.Vec3) error {
	e, err := s.lookup(h)
	if err != nil {
		return err
	}
	e.params.Position = pos
	return nil
}

// Exists reports whether h is still allocated, including pending removal
func (s *System) Exists(h core.Entity) bool {
	return s.emitters.Has(h)
}

// Running reports whether h is emitting
func (s *System) Running(h core.Entity) bool {
	e, ok := s.emitters.Get(h)
	return ok && e.running
}

// Count returns the total live particle count
func (s *System) Count() int {
	return s.alive
}

// Particles returns a copy of h's live particles
func (s *System) Particles(h core.Entity) ([]Particle, error) {
	e, err := s.lookup(h)
	if err != nil {
		return nil, err
	}
	out := make([]Particle, len(e.particles))
	copy(out, e.particles)
	return out, nil
}

// Emitters lists every allocated emitter in slot order
func (s *System) Emitters() []EmitterView {
	out := make([]EmitterView, 0, s.emitters.Len())
	s.emitters.Each(func(h core.Entity, e *emitter) bool {
		out = append(out, EmitterView{
			ID:             h,
			Position:       e.params.Position,
			Running:        e.running,
			PendingRemoval: e.pendingRemoval,
			Particles:      len(e.particles),
		})
		return true
	})
	return out
}

// Advance emits for running emitters, advects every particle and expires the dead
// Emitters pending removal are destroyed once empty
func (s *System) Advance(dt float64) {
	if dt < 0 {
		return
	}

	s.emitters.Each(func(_ core.Entity, e *emitter) bool {
		if !e.running {
			return true
		}
		e.timer += dt
		if e.timer < e.params.TimeBetweenEmissions {
			return true
		}
		e.timer = 0
		s.spawn(e)
		return true
	})

	expired := 0
	var destroy []core.Entity
	s.emitters.Each(func(h core.Entity, e *emitter) bool {
		kept := e.particles[:0]
		for _, p := range e.particles {
			p.Remaining -= dt
			if p.Remaining <= 0 {
				expired++
				continue
			}
			p.Position = p.Position.Add(p.Velocity.Mul(dt))
			t := p.Age()
			p.Scale = 1
			if e.params.ScaleForT != nil {
				p.Scale = e.params.ScaleForT(t)
			}
			p.Color = white
			if e.params.ColorForT != nil {
				p.Color = e.params.ColorForT(t)
			}
			kept = append(kept, p)
		}
		e.particles = kept

		if e.pendingRemoval && len(e.particles) == 0 {
			destroy = append(destroy, h)
		}
		return true
	})

	for _, h := range destroy {
		s.destroy(h)
	}

	s.alive -= expired
	if s.statExpired != nil {
		s.statExpired.Add(int64(expired))
	}
	if s.statAlive != nil {
		s.statAlive.Set(float64(s.alive))
	}
}

// spawn adds count in [min, max] particles, capped by MaxParticles
func (s *System) spawn(e *emitter) {
	p := &e.params
	count := s.rng.IntRange(p.MinEmitCount, p.MaxEmitCount)
	if room := p.MaxParticles - len(e.particles); count > room {
		count = room
	}
	for i := 0; i < count; i++ {
		life := s.rng.Range(p.LifeMin, p.LifeMax)
		if p.LifeMax == p.LifeMin {
			life = p.LifeMin
		}
		e.particles = append(e.particles, Particle{
			Position:    p.Position.Add(s.rng.Direction().Mul(p.EmitRadius)),
			Velocity:    s.rng.VecRange(p.VelMin, p.VelMax),
			Remaining:   life,
			InitialLife: life,
			Scale:       1,
			Color:       white,
		})
	}
	if count > 0 {
		s.alive += count
		if s.statSpawned != nil {
			s.statSpawned.Add(int64(count))
		}
	}
}

func (s *System) destroy(h core.Entity) {
	e, ok := s.emitters.Get(h)
	if !ok {
		return
	}
	s.alive -= len(e.particles)
	if e.params.Resource != nil {
		e.params.Resource.Release()
	}
	s.emitters.Remove(h)
}

// Clear destroys every emitter immediately, releasing resources
func (s *System) Clear() {
	for _, h := range s.emitters.Handles() {
		s.destroy(h)
	}
	s.alive = 0
	if s.statAlive != nil {
		s.statAlive.Set(0)
	}
}
