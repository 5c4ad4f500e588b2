package physics

import (
	"fmt"

	"github.com/akmonengine/feather/actor"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/vmath"
)

// BodyKind selects how the world moves a body
type BodyKind uint8

const (
	// BodyDynamic is integrated under gravity and velocity
	BodyDynamic BodyKind = iota
	// BodyKinematicPositioned follows staged targets, ignoring forces
	BodyKinematicPositioned
	// BodyFixed never moves, used for mass-less scenery
	BodyFixed
)

func (k BodyKind) String() string {
	switch k {
	case BodyDynamic:
		return "dynamic"
	case BodyKinematicPositioned:
		return "kinematic"
	case BodyFixed:
		return "fixed"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Collider is a shape attached to a body at a local offset
type Collider struct {
	Shape  Shape
	Offset vmath.Pose
	Sensor bool
}

// BodyDesc describes a body at creation
type BodyDesc struct {
	Kind            BodyKind
	Pose            vmath.Pose
	Mass            float64
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

// BodyState is a value copy of a body for readers
type BodyState struct {
	Kind            BodyKind
	Pose            vmath.Pose
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Mass            float64
	Colliders       int
}

// rigidBody pairs a feather body with the colliders and targets feather has no notion of
// Kinematic and fixed bodies are static to feather, the space moves kinematic ones itself
type rigidBody struct {
	kind      BodyKind
	rb        *actor.RigidBody
	mass      float64
	colliders []Collider

	target    vmath.Pose
	hasTarget bool
}

// defaultProxy stands in for a body with no colliders yet
var defaultProxy = Ball(0.05)

func newRigidBody(kind BodyKind, pose vmath.Pose, mass float64, colliders []Collider) *actor.RigidBody {
	shape := defaultProxy
	if len(colliders) > 0 {
		shape = colliders[0].Shape
	}
	rs := shape.rigidShape()

	bodyType, density := actor.BodyTypeStatic, 0.0
	if kind == BodyDynamic {
		bodyType, density = actor.BodyTypeDynamic, 1.0
		// Gravity is applied as force over mass, a zero density would divide by zero
		if vol := rs.ComputeMass(1); mass > 0 && vol > 0 {
			density = mass / vol
		}
	}
	return actor.NewRigidBody(transformOf(pose.Normalized()), rs, bodyType, density)
}

func (b *rigidBody) pose() vmath.Pose {
	return vmath.Pose{Position: b.rb.Transform.Position, Rotation: b.rb.Transform.Rotation}
}

func (b *rigidBody) setPose(p vmath.Pose) {
	p = p.Normalized()
	b.rb.Transform.Position = p.Position
	b.rb.Transform.Rotation = p.Rotation
	b.rb.Transform.InverseRotation = p.Rotation.Inverse()
}

func (b *rigidBody) stop() {
	b.rb.Velocity = mgl64.Vec3{}
	b.rb.AngularVelocity = mgl64.Vec3{}
}

func (b *rigidBody) colliderPose(i int) vmath.Pose {
	return b.pose().Mul(b.colliders[i].Offset.Normalized())
}
