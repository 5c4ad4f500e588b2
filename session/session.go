// Package session composes the interaction core into a running experience
// The fixed physics clock and the render clock share one mutex; frames are no-ops
// until both the physics world and the assets are ready
package session

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/asset"
	"github.com/lixenwraith/vignettes/audio"
	"github.com/lixenwraith/vignettes/body"
	"github.com/lixenwraith/vignettes/engine"
	"github.com/lixenwraith/vignettes/event"
	"github.com/lixenwraith/vignettes/grab"
	"github.com/lixenwraith/vignettes/input"
	"github.com/lixenwraith/vignettes/particle"
	"github.com/lixenwraith/vignettes/physics"
	"github.com/lixenwraith/vignettes/scene"
	"github.com/lixenwraith/vignettes/status"
	"github.com/lixenwraith/vignettes/trigger"
	"github.com/lixenwraith/vignettes/vignette"
	"github.com/lixenwraith/vignettes/vmath"
)

// Deps are the collaborators a session is built from
// Records and Metrics may be nil; Cues nil is silent
type Deps struct {
	Input   input.Device
	Assets  asset.Store
	Cues    vignette.Cues
	Entries []vignette.Entry
	Metrics *status.Registry
	Records *event.Queue
}

// Session owns every core service and the vignette scheduler
type Session struct {
	mu sync.Mutex

	cfg     Config
	input   input.Device
	assets  asset.Store
	cues    vignette.Cues
	metrics *status.Registry
	records *event.Queue

	physics   *engine.Future[*physics.Space]
	installed chan struct{}
	space     *physics.Space
	bodies    *body.Registry
	differ    *trigger.Differ
	grabs     *grab.Tracker
	particles *particle.System
	stage     *scene.Stage
	sched     *vignette.Scheduler
	overlay   *TextOverlay
	vctx      *vignette.Context

	player  *PlayerRef
	simTime float64
	frames  uint64

	assetErrLogged bool
	closed         bool
}

// New creates a session and starts loading the physics world
func New(cfg Config, deps Deps) *Session {
	if cfg.PhysicsHz <= 0 {
		cfg.PhysicsHz = DefaultConfig().PhysicsHz
	}
	if cfg.MaxFrameDT <= 0 {
		cfg.MaxFrameDT = DefaultConfig().MaxFrameDT
	}
	if deps.Cues == nil {
		deps.Cues = audio.Silent{}
	}
	if deps.Metrics == nil {
		deps.Metrics = status.NewRegistry()
	}

	s := &Session{
		cfg:       cfg,
		input:     deps.Input,
		assets:    deps.Assets,
		cues:      deps.Cues,
		metrics:   deps.Metrics,
		records:   deps.Records,
		grabs:     grab.NewTracker(cfg.CaptureRadius),
		particles: particle.NewSystem(cfg.Seed),
		stage:     scene.NewStage(),
		overlay:   &TextOverlay{},
		installed: make(chan struct{}),
		player:    &PlayerRef{},
	}
	s.grabs.SetMetrics(s.metrics)
	s.particles.SetMetrics(s.metrics)

	s.sched = vignette.NewScheduler(s.stage, deps.Entries...)
	s.sched.SetMetrics(s.metrics)
	s.sched.SetObserver(func(tr vignette.Transition) {
		s.push(event.FromVignette(tr, s.steps(), s.simTime))
	})

	s.physics = physics.Load(physics.Config{Gravity: mgl64.Vec3{0, cfg.Gravity, 0}})
	s.physics.Then(s.install)
	return s
}

// install wires the physics-dependent services once the world is usable
func (s *Session) install(space *physics.Space) {
	s.mu.Lock()
	defer s.mu.Unlock()

	space.SetMetrics(s.metrics)
	s.space = space
	s.bodies = body.NewRegistry(space)
	s.differ = trigger.NewDiffer(space)
	s.differ.SetMetrics(s.metrics)
	s.differ.SetTap(func(ev trigger.Event) {
		s.push(event.FromTrigger(ev, s.simTime))
	})
	s.bodies.OnRemove(s.differ.ForgetBody)

	s.vctx = &vignette.Context{
		Bodies:    s.bodies,
		Triggers:  s.differ,
		Grabs:     s.grabs,
		Particles: s.particles,
		Input:     s.input,
		Assets:    s.assets,
		Overlay:   s.overlay,
		Cues:      s.cues,
		Player:    s.player,
		Rand:      vmath.NewFastRand(s.cfg.Seed),
	}
	close(s.installed)
	log.Printf("session: physics ready")
}

func (s *Session) push(r event.Record) {
	if s.records != nil {
		s.records.Push(r)
	}
}

func (s *Session) steps() uint64 {
	if s.space == nil {
		return 0
	}
	return s.space.Steps()
}

// Config returns the session configuration
func (s *Session) Config() Config {
	return s.cfg
}

// Metrics returns the session's metric registry
func (s *Session) Metrics() *status.Registry {
	return s.metrics
}

// Stage returns the stage holding attached sub-scenes
func (s *Session) Stage() *scene.Stage {
	return s.stage
}

// Overlay returns the text overlay
func (s *Session) Overlay() *TextOverlay {
	return s.overlay
}

// Ready reports whether physics and assets are both loaded
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readyLocked()
}

func (s *Session) readyLocked() bool {
	if s.space == nil {
		return false
	}
	if s.assets == nil {
		return true
	}
	err, done := s.assets.Loaded().Value()
	if done && err != nil && !s.assetErrLogged {
		log.Printf("session: asset load failed: %v", err)
		s.assetErrLogged = true
	}
	return done && err == nil
}

// WaitReady blocks until physics and assets have resolved or ctx is done
func (s *Session) WaitReady(ctx context.Context) error {
	select {
	case <-s.installed:
	case <-ctx.Done():
		return ctx.Err()
	}
	if s.assets != nil {
		select {
		case <-s.assets.Loaded().Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// PhysicsStep advances the world by dt seconds and diffs trigger overlaps
func (s *Session) PhysicsStep(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.space == nil || s.closed {
		return
	}
	s.space.Step(dt)
	s.differ.Step()
}

// Frame runs one render-clock update: grab tracking, the scheduler, then particles
// dt is clamped to [0, MaxFrameDT]; returns the scheduler's setup error, if any
func (s *Session) Frame(dt float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.readyLocked() {
		return nil
	}
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}
	if dt > s.cfg.MaxFrameDT {
		dt = s.cfg.MaxFrameDT
	}

	var controllers []input.ControllerState
	if s.input != nil {
		controllers = s.input.Controllers()
	}
	step := s.space.Steps()
	for _, tr := range s.grabs.Update(controllers) {
		s.push(event.FromGrab(tr, step, s.simTime))
		if tr.Kind == grab.Grabbed {
			s.cues.Play(audio.CueGrab)
		} else {
			s.cues.Play(audio.CueRelease)
		}
	}

	s.vctx.DT = dt
	err := s.sched.Update(s.vctx)

	s.particles.Advance(dt)
	s.overlay.Advance(dt)
	s.simTime += dt
	s.frames++
	return err
}

// Skip ends the current vignette and moves to the next
func (s *Session) Skip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vctx == nil || s.closed {
		return
	}
	s.sched.Skip(s.vctx)
}

// Player returns the player's reference position holder
func (s *Session) Player() *PlayerRef {
	return s.player
}

// Close tears down the current vignette and releases every emitter
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.vctx != nil {
		s.sched.Close(s.vctx)
	}
	s.particles.Clear()
	s.grabs.Clear()
}

// PhysicsStepFunc adapts PhysicsStep to a fixed stepper callback
func (s *Session) PhysicsStepFunc() engine.StepFunc {
	return func(dt time.Duration) {
		s.PhysicsStep(dt.Seconds())
	}
}
