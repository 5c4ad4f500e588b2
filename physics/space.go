package physics

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/akmonengine/feather"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/engine"
	"github.com/lixenwraith/vignettes/status"
	"github.com/lixenwraith/vignettes/vmath"
)

// Config holds world-wide constants
type Config struct {
	Gravity  mgl64.Vec3
	Capacity int
}

// DefaultConfig returns earth gravity along -Y
func DefaultConfig() Config {
	return Config{Gravity: mgl64.Vec3{0, -9.8, 0}, Capacity: 64}
}

// Space is the simulation world over a feather world
// feather holds body membership, gravity and integration, the space adds handles, colliders,
// sensors and kinematic targets
// Not safe for concurrent use, callers serialize access
type Space struct {
	cfg    Config
	world  *feather.World
	bodies *engine.Arena[rigidBody]
	steps  uint64

	statSteps    *atomic.Int64
	statSwitches *atomic.Int64
	statBodies   *status.Gauge
}

// NewSpace creates an empty world
func NewSpace(cfg Config) *Space {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 64
	}
	return &Space{
		cfg:    cfg,
		world:  &feather.World{Gravity: cfg.Gravity},
		bodies: engine.NewArena[rigidBody](cfg.Capacity),
	}
}

// Load prepares a world off the caller's goroutine and resolves the future once usable
func Load(cfg Config) *engine.Future[*Space] {
	f := engine.NewFuture[*Space]()
	core.Go(func() {
		f.Resolve(NewSpace(cfg))
	})
	return f
}

// SetMetrics caches counters from reg
func (s *Space) SetMetrics(reg *status.Registry) {
	if reg == nil {
		return
	}
	s.statSteps = reg.Counter("physics.steps")
	s.statSwitches = reg.Counter("physics.kind_switches")
	s.statBodies = reg.Gauge("physics.bodies")
	s.statBodies.Set(float64(s.bodies.Len()))
}

// Gravity returns the configured acceleration
func (s *Space) Gravity() mgl64.Vec3 {
	return s.world.Gravity
}

// SetGravity replaces the configured acceleration
func (s *Space) SetGravity(g mgl64.Vec3) {
	s.cfg.Gravity = g
	s.world.Gravity = g
}

// Steps returns the number of completed steps
func (s *Space) Steps() uint64 {
	return s.steps
}

// Len returns the live body count
func (s *Space) Len() int {
	return s.bodies.Len()
}

func (s *Space) updateBodyGauge() {
	if s.statBodies != nil {
		s.statBodies.Set(float64(s.bodies.Len()))
	}
}

func (s *Space) lookup(h core.Entity) (*rigidBody, error) {
	b, ok := s.bodies.Get(h)
	if !ok {
		return nil, fmt.Errorf("body %s: %w", h, core.ErrStaleHandle)
	}
	return b, nil
}

// CreateBody inserts a body without colliders
func (s *Space) CreateBody(desc BodyDesc) core.Entity {
	rb := newRigidBody(desc.Kind, desc.Pose, desc.Mass, nil)
	rb.Velocity = desc.LinearVelocity
	rb.AngularVelocity = desc.AngularVelocity
	h := s.bodies.Insert(rigidBody{kind: desc.Kind, rb: rb, mass: desc.Mass})
	s.world.AddBody(rb)
	s.updateBodyGauge()
	return h
}

// RemoveBody destroys the body and its colliders, false when h is already stale
func (s *Space) RemoveBody(h core.Entity) bool {
	if b, found := s.bodies.Get(h); found {
		s.world.RemoveBody(b.rb)
	}
	ok := s.bodies.Remove(h)
	if ok {
		s.updateBodyGauge()
	}
	return ok
}

// Contains reports whether h refers to a live body
func (s *Space) Contains(h core.Entity) bool {
	return s.bodies.Has(h)
}

// Clear removes every body
func (s *Space) Clear() {
	s.world = &feather.World{Gravity: s.world.Gravity}
	s.bodies.Clear()
	s.updateBodyGauge()
}

// AddCollider attaches c and returns its index on the body
func (s *Space) AddCollider(h core.Entity, c Collider) (int, error) {
	b, err := s.lookup(h)
	if err != nil {
		return 0, err
	}
	if err := c.Shape.Validate(); err != nil {
		return 0, err
	}
	c.Offset = c.Offset.Normalized()
	b.colliders = append(b.colliders, c)
	if len(b.colliders) == 1 {
		// First collider replaces the placeholder mass shape
		s.rebuild(b)
	}
	return len(b.colliders) - 1, nil
}

// Collider returns a copy of collider idx
func (s *Space) Collider(h core.Entity, idx int) (Collider, error) {
	b, err := s.lookup(h)
	if err != nil {
		return Collider{}, err
	}
	if idx < 0 || idx >= len(b.colliders) {
		return Collider{}, fmt.Errorf("body %s collider %d: %w", h, idx, core.ErrInvalidCollider)
	}
	return b.colliders[idx], nil
}

// ColliderCount returns the number of colliders on h, 0 when stale
func (s *Space) ColliderCount(h core.Entity) int {
	b, ok := s.bodies.Get(h)
	if !ok {
		return 0
	}
	return len(b.colliders)
}

// SetColliderSensor flags a collider as a sensor, sensors never block or appear in queries
func (s *Space) SetColliderSensor(h core.Entity, idx int, sensor bool) error {
	b, err := s.lookup(h)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(b.colliders) {
		return fmt.Errorf("body %s collider %d: %w", h, idx, core.ErrInvalidCollider)
	}
	b.colliders[idx].Sensor = sensor
	return nil
}

// EachSensor visits every sensor-flagged collider in slot order until fn returns false
func (s *Space) EachSensor(fn func(h core.Entity, idx int, c Collider) bool) {
	s.bodies.Each(func(h core.Entity, b *rigidBody) bool {
		for i, c := range b.colliders {
			if c.Sensor && !fn(h, i, c) {
				return false
			}
		}
		return true
	})
}

// ColliderWorldPose returns the world pose of collider idx after the last step
func (s *Space) ColliderWorldPose(h core.Entity, idx int) (vmath.Pose, error) {
	b, err := s.lookup(h)
	if err != nil {
		return vmath.Pose{}, err
	}
	if idx < 0 || idx >= len(b.colliders) {
		return vmath.Pose{}, fmt.Errorf("body %s collider %d: %w", h, idx, core.ErrInvalidCollider)
	}
	return b.colliderPose(idx), nil
}

// Kind returns the body kind
func (s *Space) Kind(h core.Entity) (BodyKind, error) {
	b, err := s.lookup(h)
	if err != nil {
		return 0, err
	}
	return b.kind, nil
}

// SetKind switches the body kind unconditionally
// A pending kinematic target is discarded, velocities carry over so a released body keeps its motion
func (s *Space) SetKind(h core.Entity, kind BodyKind) error {
	b, err := s.lookup(h)
	if err != nil {
		return err
	}
	b.kind = kind
	b.hasTarget = false
	s.rebuild(b)
	if kind == BodyFixed {
		b.stop()
	}
	if s.statSwitches != nil {
		s.statSwitches.Add(1)
	}
	return nil
}

// SetKinematicTarget stages the pose the body reaches at the end of the next step
func (s *Space) SetKinematicTarget(h core.Entity, target vmath.Pose) error {
	b, err := s.lookup(h)
	if err != nil {
		return err
	}
	if b.kind != BodyKinematicPositioned {
		return fmt.Errorf("body %s is %s: %w", h, b.kind, core.ErrNotKinematic)
	}
	b.target = target.Normalized()
	b.hasTarget = true
	return nil
}

// Pose returns the world pose after the last step
func (s *Space) Pose(h core.Entity) (vmath.Pose, error) {
	b, err := s.lookup(h)
	if err != nil {
		return vmath.Pose{}, err
	}
	return b.pose(), nil
}

// SetPose teleports the body
func (s *Space) SetPose(h core.Entity, p vmath.Pose) error {
	b, err := s.lookup(h)
	if err != nil {
		return err
	}
	b.setPose(p)
	b.hasTarget = false
	return nil
}

// SetLinearVelocity overwrites the linear velocity
func (s *Space) SetLinearVelocity(h core.Entity, v mgl64.Vec3) error {
	b, err := s.lookup(h)
	if err != nil {
		return err
	}
	b.rb.Velocity = v
	return nil
}

// SetAngularVelocity overwrites the angular velocity, radians per second about each world axis
func (s *Space) SetAngularVelocity(h core.Entity, w mgl64.Vec3) error {
	b, err := s.lookup(h)
	if err != nil {
		return err
	}
	b.rb.AngularVelocity = w
	return nil
}

// State returns a value copy of the body
func (s *Space) State(h core.Entity) (BodyState, error) {
	b, err := s.lookup(h)
	if err != nil {
		return BodyState{}, err
	}
	return stateOf(b), nil
}

func stateOf(b *rigidBody) BodyState {
	return BodyState{
		Kind:            b.kind,
		Pose:            b.pose(),
		LinearVelocity:  b.rb.Velocity,
		AngularVelocity: b.rb.AngularVelocity,
		Mass:            b.mass,
		Colliders:       len(b.colliders),
	}
}

// Each visits live bodies in slot order until fn returns false
func (s *Space) Each(fn func(h core.Entity, st BodyState) bool) {
	s.bodies.Each(func(h core.Entity, b *rigidBody) bool {
		return fn(h, stateOf(b))
	})
}

// QueryIntersections calls fn for every non-sensor collider overlapping shape at pose
// A body appears once per overlapping collider, iteration stops when fn returns false
func (s *Space) QueryIntersections(shape Shape, pose vmath.Pose, fn func(h core.Entity, collider int) bool) {
	pose = pose.Normalized()
	s.bodies.Each(func(h core.Entity, b *rigidBody) bool {
		for i := range b.colliders {
			c := &b.colliders[i]
			if c.Sensor {
				continue
			}
			if Intersects(shape, pose, c.Shape, b.colliderPose(i)) {
				if !fn(h, i) {
					return false
				}
			}
		}
		return true
	})
}

// Step advances every body by dt seconds
// Kinematic targets are consumed here, once
func (s *Space) Step(dt float64) {
	if dt <= 0 || math.IsNaN(dt) {
		return
	}

	s.bodies.Each(func(h core.Entity, b *rigidBody) bool {
		switch b.kind {
		case BodyKinematicPositioned:
			s.stepKinematic(b, dt)
		case BodyDynamic:
			s.stepDynamic(h, b, dt)
		}
		return true
	})

	s.steps++
	if s.statSteps != nil {
		s.statSteps.Add(1)
	}
}

func (s *Space) stepKinematic(b *rigidBody, dt float64) {
	if !b.hasTarget {
		b.stop()
		return
	}
	from := b.pose()
	b.rb.Velocity = b.target.Position.Sub(from.Position).Mul(1 / dt)
	b.rb.AngularVelocity = angularVelocityBetween(from.Rotation, b.target.Rotation, dt)
	b.setPose(b.target)
	b.hasTarget = false
}

func (s *Space) stepDynamic(h core.Entity, b *rigidBody, dt float64) {
	prev := b.pose()
	b.rb.Integrate(dt, s.world.Gravity)
	b.setPose(b.pose())
	next := b.pose()

	// Resting contact: a body entering fixed scenery stays where it was and loses its velocity
	if len(b.colliders) > 0 && !s.blocked(h, b, prev) && s.blocked(h, b, next) {
		b.setPose(prev)
		b.stop()
	}
}

// rebuild replaces the feather body after a kind or mass shape change, keeping pose and velocity
func (s *Space) rebuild(b *rigidBody) {
	old := b.rb
	rb := newRigidBody(b.kind, b.pose(), b.mass, b.colliders)
	rb.Velocity = old.Velocity
	rb.AngularVelocity = old.AngularVelocity
	s.world.RemoveBody(old)
	s.world.AddBody(rb)
	b.rb = rb
}

// blocked reports whether b at pose overlaps any solid collider of a fixed body
func (s *Space) blocked(self core.Entity, b *rigidBody, pose vmath.Pose) bool {
	hit := false
	s.bodies.Each(func(h core.Entity, other *rigidBody) bool {
		if h == self || other.kind != BodyFixed {
			return true
		}
		for j := range other.colliders {
			oc := &other.colliders[j]
			if oc.Sensor {
				continue
			}
			op := other.colliderPose(j)
			for i := range b.colliders {
				c := &b.colliders[i]
				if c.Sensor {
					continue
				}
				if Intersects(c.Shape, pose.Mul(c.Offset), oc.Shape, op) {
					hit = true
					return false
				}
			}
		}
		return true
	})
	return hit
}

// angularVelocityBetween returns the world angular velocity rotating from to to over dt
func angularVelocityBetween(from, to mgl64.Quat, dt float64) mgl64.Vec3 {
	d := to.Mul(from.Inverse()).Normalize()
	if d.W < 0 {
		d = mgl64.Quat{W: -d.W, V: d.V.Mul(-1)}
	}
	sinHalf := d.V.Len()
	if sinHalf < 1e-12 {
		return mgl64.Vec3{}
	}
	angle := 2 * math.Atan2(sinHalf, d.W)
	return d.V.Mul(angle / (sinHalf * dt))
}
