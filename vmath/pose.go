package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used by the comparison helpers
const Epsilon = 1e-9

// Pose is a rigid transform: rotation followed by translation
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// IdentityPose returns the pose at the origin with no rotation
func IdentityPose() Pose {
	return Pose{Rotation: mgl64.QuatIdent()}
}

// PoseAt returns an unrotated pose at p
func PoseAt(p mgl64.Vec3) Pose {
	return Pose{Position: p, Rotation: mgl64.QuatIdent()}
}

// Normalized returns the pose with a unit rotation, a zero quaternion becomes identity
func (p Pose) Normalized() Pose {
	if p.Rotation.Len() < Epsilon {
		p.Rotation = mgl64.QuatIdent()
		return p
	}
	p.Rotation = p.Rotation.Normalize()
	return p
}

// Apply maps a point from local space into the pose's parent space
func (p Pose) Apply(local mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Rotate(local).Add(p.Position)
}

// ApplyInverse maps a point from parent space into local space
func (p Pose) ApplyInverse(world mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Inverse().Rotate(world.Sub(p.Position))
}

// Mul composes p with child, child expressed in p's local frame
func (p Pose) Mul(child Pose) Pose {
	return Pose{
		Position: p.Apply(child.Position),
		Rotation: p.Rotation.Mul(child.Rotation).Normalize(),
	}
}

// Inverse returns the pose that undoes p
func (p Pose) Inverse() Pose {
	inv := p.Rotation.Inverse()
	return Pose{
		Position: inv.Rotate(p.Position.Mul(-1)),
		Rotation: inv,
	}
}

// ApproxEqual compares positions and orientations within eps
// q and -q describe the same orientation
func (p Pose) ApproxEqual(o Pose, eps float64) bool {
	if !VecApproxEqual(p.Position, o.Position, eps) {
		return false
	}
	d := math.Abs(p.Rotation.Dot(o.Rotation))
	return d > 1-eps
}

// VecApproxEqual compares each component within eps
func VecApproxEqual(a, b mgl64.Vec3, eps float64) bool {
	return math.Abs(a[0]-b[0]) <= eps && math.Abs(a[1]-b[1]) <= eps && math.Abs(a[2]-b[2]) <= eps
}
