package particle

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/status"
)

type releaseCounter struct {
	n int
}

func (r *releaseCounter) Release() { r.n++ }

func smokeParams() Params {
	return Params{
		TimeBetweenEmissions: 0.1,
		MinEmitCount:         2,
		MaxEmitCount:         10,
		LifeMin:              0.5,
		LifeMax:              1.0,
		VelMin:               mgl64.Vec3{-0.1, 0.2, -0.1},
		VelMax:               mgl64.Vec3{0.1, 0.5, 0.1},
		EmitRadius:           0.05,
	}
}

func TestEmitCountAndExpiry(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		s := NewSystem(seed)
		h, err := s.CreateEmitter(smokeParams())
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Start(h); err != nil {
			t.Fatal(err)
		}

		s.Advance(0.1)
		n := s.Count()
		if n < 2 || n > 10 {
			t.Fatalf("seed %d: count after first emission = %d, want [2,10]", seed, n)
		}

		s.Stop(h)
		for i := 0; i < 11; i++ {
			s.Advance(0.1)
		}
		if s.Count() != 0 {
			t.Errorf("seed %d: %d particles outlived lifeMax", seed, s.Count())
		}
	}
}

func TestNoEmissionBeforeInterval(t *testing.T) {
	s := NewSystem(3)
	h, _ := s.CreateEmitter(smokeParams())
	s.Start(h)
	s.Advance(0.05)
	if s.Count() != 0 {
		t.Errorf("emitted before interval: %d", s.Count())
	}
	s.Advance(0.06)
	if s.Count() == 0 {
		t.Error("no emission at interval")
	}
}

func TestStoppedEmitterDoesNotBlockOthers(t *testing.T) {
	s := NewSystem(5)
	stopped, _ := s.CreateEmitter(smokeParams())
	running, _ := s.CreateEmitter(smokeParams())
	_ = stopped
	s.Start(running)

	s.Advance(0.1)
	ps, _ := s.Particles(running)
	if len(ps) == 0 {
		t.Error("emitter after a stopped emitter never spawned")
	}
}

func TestCountNonIncreasingWithoutSpawns(t *testing.T) {
	s := NewSystem(8)
	h, _ := s.CreateEmitter(smokeParams())
	s.Start(h)
	for i := 0; i < 5; i++ {
		s.Advance(0.1)
	}
	s.Stop(h)

	reg := status.NewRegistry()
	s.SetMetrics(reg)
	expired := reg.Counter("particle.expired")

	prev := s.Count()
	for i := 0; i < 40; i++ {
		before := expired.Load()
		s.Advance(0.037)
		cur := s.Count()
		if cur > prev {
			t.Fatalf("count rose from %d to %d", prev, cur)
		}
		if int64(prev-cur) != expired.Load()-before {
			t.Fatalf("count fell by %d, expired %d", prev-cur, expired.Load()-before)
		}
		prev = cur
	}
}

func TestDeferredRemoval(t *testing.T) {
	s := NewSystem(13)
	res := &releaseCounter{}
	p := smokeParams()
	p.Resource = res
	h, _ := s.CreateEmitter(p)
	s.Start(h)
	s.Advance(0.1)

	if err := s.Remove(h); err != nil {
		t.Fatal(err)
	}
	if !s.Exists(h) {
		t.Fatal("emitter destroyed while particles alive")
	}
	if err := s.Start(h); !errors.Is(err, core.ErrEmitterRemoved) {
		t.Errorf("Start after Remove: %v", err)
	}

	for i := 0; i < 5 && s.Exists(h); i++ {
		s.Advance(0.1)
		if s.Exists(h) && res.n != 0 {
			t.Fatal("resource released before destruction")
		}
	}
	for i := 0; i < 10 && s.Exists(h); i++ {
		s.Advance(0.1)
	}
	if s.Exists(h) {
		t.Fatal("emitter never destroyed")
	}
	if res.n != 1 {
		t.Errorf("resource released %d times", res.n)
	}
	if _, err := s.Particles(h); !errors.Is(err, core.ErrStaleHandle) {
		t.Errorf("Particles after destroy: %v", err)
	}
}

func TestRemoveEmptyEmitterDestroysOnNextAdvance(t *testing.T) {
	s := NewSystem(1)
	h, _ := s.CreateEmitter(smokeParams())
	s.Remove(h)
	s.Advance(0)
	if s.Exists(h) {
		t.Error("empty emitter survived advance after removal")
	}
}

func TestMaxParticlesCap(t *testing.T) {
	s := NewSystem(21)
	p := smokeParams()
	p.MinEmitCount, p.MaxEmitCount = 10, 10
	p.LifeMin, p.LifeMax = 100, 100
	p.MaxParticles = 25
	h, _ := s.CreateEmitter(p)
	s.Start(h)
	for i := 0; i < 10; i++ {
		s.Advance(0.1)
	}
	if s.Count() != 25 {
		t.Errorf("count = %d, want cap 25", s.Count())
	}
}

func TestSpawnOnRadiusAndCurves(t *testing.T) {
	s := NewSystem(34)
	p := smokeParams()
	p.VelMin, p.VelMax = mgl64.Vec3{}, mgl64.Vec3{}
	p.Position = mgl64.Vec3{1, 2, 3}
	p.EmitRadius = 0.5
	p.ScaleForT = func(t float64) float64 { return 1 - t }
	p.ColorForT = func(t float64) Color { return Color{t, 0, 0, 1} }
	h, _ := s.CreateEmitter(p)
	s.Start(h)
	s.Advance(0.1)

	ps, _ := s.Particles(h)
	for _, q := range ps {
		d := q.Position.Sub(p.Position).Len()
		if d < 0.5-1e-9 || d > 0.5+1e-9 {
			t.Errorf("spawn offset length %v, want 0.5", d)
		}
		age := q.Age()
		if q.Scale != 1-age || q.Color[0] != age {
			t.Errorf("curves not applied: scale %v color %v age %v", q.Scale, q.Color, age)
		}
	}
}

func TestSetPositionAndValidate(t *testing.T) {
	s := NewSystem(2)
	bad := smokeParams()
	bad.MaxEmitCount = 1
	if _, err := s.CreateEmitter(bad); !errors.Is(err, core.ErrInvalidParams) {
		t.Errorf("inverted count range accepted: %v", err)
	}

	h, _ := s.CreateEmitter(smokeParams())
	s.SetPosition(h, mgl64.Vec3{4, 0, 0})
	views := s.Emitters()
	if len(views) != 1 || views[0].Position != (mgl64.Vec3{4, 0, 0}) {
		t.Errorf("Emitters() = %+v", views)
	}
}

func TestClearReleasesAll(t *testing.T) {
	s := NewSystem(2)
	a, b := &releaseCounter{}, &releaseCounter{}
	pa, pb := smokeParams(), smokeParams()
	pa.Resource, pb.Resource = a, b
	h, _ := s.CreateEmitter(pa)
	s.CreateEmitter(pb)
	s.Start(h)
	s.Advance(0.1)

	s.Clear()
	if a.n != 1 || b.n != 1 || s.Count() != 0 || len(s.Emitters()) != 0 {
		t.Errorf("Clear left a=%d b=%d count=%d", a.n, b.n, s.Count())
	}
}
