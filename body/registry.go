// Package body is the rigid-body registry over the physics world
// It owns body creation policy (mass selects dynamic or fixed), kind switching,
// kinematic targets and the one-way pose copy to visuals
package body

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/physics"
	"github.com/lixenwraith/vignettes/vmath"
)

// Kind aliases the physics body kind
type Kind = physics.BodyKind

const (
	Dynamic             = physics.BodyDynamic
	KinematicPositioned = physics.BodyKinematicPositioned
	Fixed               = physics.BodyFixed
)

// Visual receives post-step world poses, typically a scene node
type Visual interface {
	SetPose(p vmath.Pose)
}

// Spec describes a body and its first collider
// A nil Shape creates an empty body; Rotation zero value means identity
type Spec struct {
	Position       mgl64.Vec3
	Rotation       mgl64.Quat
	Mass           float64
	Shape          *physics.Shape
	ColliderOffset vmath.Pose
	Sensor         bool
}

// KindForMass returns Dynamic for positive mass, Fixed otherwise
func KindForMass(mass float64) Kind {
	if mass > 0 {
		return Dynamic
	}
	return Fixed
}

// Registry creates and tracks bodies in a physics space
// Mutated only by its owner, callers serialize access
type Registry struct {
	space    *physics.Space
	onRemove []func(core.Entity)
}

// NewRegistry wraps space
func NewRegistry(space *physics.Space) *Registry {
	return &Registry{space: space}
}

// Space returns the underlying world
func (r *Registry) Space() *physics.Space {
	return r.space
}

// OnRemove registers fn to run after each body removal, e.g. sensor cleanup
func (r *Registry) OnRemove(fn func(core.Entity)) {
	r.onRemove = append(r.onRemove, fn)
}

// CreateBody inserts a body from spec
func (r *Registry) CreateBody(spec Spec) (core.Entity, error) {
	if spec.Mass < 0 {
		return core.NoEntity, fmt.Errorf("mass %g: %w", spec.Mass, core.ErrInvalidParams)
	}
	if spec.Shape != nil {
		if err := spec.Shape.Validate(); err != nil {
			return core.NoEntity, err
		}
	}

	rot := spec.Rotation
	if rot.Len() == 0 {
		rot = mgl64.QuatIdent()
	}
	h := r.space.CreateBody(physics.BodyDesc{
		Kind: KindForMass(spec.Mass),
		Pose: vmath.Pose{Position: spec.Position, Rotation: rot},
		Mass: spec.Mass,
	})

	if spec.Shape != nil {
		offset := spec.ColliderOffset
		if offset.Rotation.Len() == 0 {
			offset.Rotation = mgl64.QuatIdent()
		}
		if _, err := r.space.AddCollider(h, physics.Collider{Shape: *spec.Shape, Offset: offset, Sensor: spec.Sensor}); err != nil {
			r.space.RemoveBody(h)
			return core.NoEntity, err
		}
	}
	return h, nil
}

// CreateEmptyBody inserts a body with no colliders
func (r *Registry) CreateEmptyBody(pose vmath.Pose, mass float64) (core.Entity, error) {
	return r.CreateBody(Spec{Position: pose.Position, Rotation: pose.Rotation, Mass: mass})
}

// CreateCuboidBody inserts a body with one cuboid collider of the given half extents
func (r *Registry) CreateCuboidBody(pose vmath.Pose, mass float64, halfExtents mgl64.Vec3, offset vmath.Pose) (core.Entity, error) {
	shape := physics.Cuboid(halfExtents[0], halfExtents[1], halfExtents[2])
	return r.CreateBody(Spec{Position: pose.Position, Rotation: pose.Rotation, Mass: mass, Shape: &shape, ColliderOffset: offset})
}

// CreateCylinderBody inserts a body with one Y-aligned cylinder collider
func (r *Registry) CreateCylinderBody(pose vmath.Pose, mass, halfHeight, radius float64, offset vmath.Pose) (core.Entity, error) {
	shape := physics.Cylinder(halfHeight, radius)
	return r.CreateBody(Spec{Position: pose.Position, Rotation: pose.Rotation, Mass: mass, Shape: &shape, ColliderOffset: offset})
}

// CreateCapsuleBody inserts a body with one Y-aligned capsule collider
func (r *Registry) CreateCapsuleBody(pose vmath.Pose, mass, halfHeight, radius float64, offset vmath.Pose) (core.Entity, error) {
	shape := physics.Capsule(halfHeight, radius)
	return r.CreateBody(Spec{Position: pose.Position, Rotation: pose.Rotation, Mass: mass, Shape: &shape, ColliderOffset: offset})
}

// AttachCollider adds another collider and returns its index
func (r *Registry) AttachCollider(h core.Entity, shape physics.Shape, offset vmath.Pose, sensor bool) (int, error) {
	if offset.Rotation.Len() == 0 {
		offset.Rotation = mgl64.QuatIdent()
	}
	return r.space.AddCollider(h, physics.Collider{Shape: shape, Offset: offset, Sensor: sensor})
}

// Kind returns the current body kind
func (r *Registry) Kind(h core.Entity) (Kind, error) {
	return r.space.Kind(h)
}

// SetBodyKind switches kind, leaving the world untouched when already in kind
func (r *Registry) SetBodyKind(h core.Entity, kind Kind) error {
	cur, err := r.space.Kind(h)
	if err != nil {
		return err
	}
	if cur == kind {
		return nil
	}
	return r.space.SetKind(h, kind)
}

// SetKinematicTarget stages translation and rotation for the next step
func (r *Registry) SetKinematicTarget(h core.Entity, translation mgl64.Vec3, rotation mgl64.Quat) error {
	return r.space.SetKinematicTarget(h, vmath.Pose{Position: translation, Rotation: rotation})
}

// Pose returns the body's world pose after the last step
func (r *Registry) Pose(h core.Entity) (vmath.Pose, error) {
	return r.space.Pose(h)
}

// SyncVisual copies the body's world pose onto v
func (r *Registry) SyncVisual(v Visual, h core.Entity) error {
	p, err := r.space.Pose(h)
	if err != nil {
		return err
	}
	v.SetPose(p)
	return nil
}

// ResetDynamicBody teleports h to pos with identity rotation and zeroes its velocities
func (r *Registry) ResetDynamicBody(h core.Entity, pos mgl64.Vec3) error {
	if err := r.space.SetPose(h, vmath.PoseAt(pos)); err != nil {
		return err
	}
	if err := r.space.SetLinearVelocity(h, mgl64.Vec3{}); err != nil {
		return err
	}
	return r.space.SetAngularVelocity(h, mgl64.Vec3{})
}

// RemoveBody destroys h and its colliders, listeners see the stale handle
func (r *Registry) RemoveBody(h core.Entity) error {
	if !r.space.RemoveBody(h) {
		return fmt.Errorf("remove body %s: %w", h, core.ErrStaleHandle)
	}
	for _, fn := range r.onRemove {
		fn(h)
	}
	return nil
}

// ForEachBody visits every live body in slot order
func (r *Registry) ForEachBody(fn func(h core.Entity, st physics.BodyState)) {
	r.space.Each(func(h core.Entity, st physics.BodyState) bool {
		fn(h, st)
		return true
	})
}

// Clear removes every body, running removal listeners for each
func (r *Registry) Clear() {
	var handles []core.Entity
	r.ForEachBody(func(h core.Entity, _ physics.BodyState) {
		handles = append(handles, h)
	})
	for _, h := range handles {
		r.RemoveBody(h)
	}
}
