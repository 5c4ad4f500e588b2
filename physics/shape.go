package physics

import (
	"fmt"
	"math"

	"github.com/akmonengine/feather/actor"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/vmath"
)

// ShapeKind identifies the collider primitive
type ShapeKind uint8

const (
	ShapeCuboid ShapeKind = iota
	ShapeCylinder
	ShapeCapsule
	ShapeBall
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCuboid:
		return "cuboid"
	case ShapeCylinder:
		return "cylinder"
	case ShapeCapsule:
		return "capsule"
	case ShapeBall:
		return "ball"
	default:
		return fmt.Sprintf("shape(%d)", uint8(k))
	}
}

// Shape is a convex primitive in its local frame
// Cylinders and capsules are aligned on the local Y axis
type Shape struct {
	Kind        ShapeKind
	HalfExtents mgl64.Vec3 // cuboid only
	HalfHeight  float64    // cylinder, capsule
	Radius      float64    // cylinder, capsule, ball
}

func Cuboid(hx, hy, hz float64) Shape {
	return Shape{Kind: ShapeCuboid, HalfExtents: mgl64.Vec3{hx, hy, hz}}
}

func Cylinder(halfHeight, radius float64) Shape {
	return Shape{Kind: ShapeCylinder, HalfHeight: halfHeight, Radius: radius}
}

// Capsule is a Y-aligned segment of half length halfHeight swept by radius
func Capsule(halfHeight, radius float64) Shape {
	return Shape{Kind: ShapeCapsule, HalfHeight: halfHeight, Radius: radius}
}

func Ball(radius float64) Shape {
	return Shape{Kind: ShapeBall, Radius: radius}
}

// Validate rejects non-positive or non-finite extents
func (s Shape) Validate() error {
	bad := func(v float64) bool { return !(v > 0) || math.IsInf(v, 0) }
	switch s.Kind {
	case ShapeCuboid:
		if bad(s.HalfExtents[0]) || bad(s.HalfExtents[1]) || bad(s.HalfExtents[2]) {
			return fmt.Errorf("cuboid half extents %v: %w", s.HalfExtents, core.ErrInvalidShape)
		}
	case ShapeCylinder, ShapeCapsule:
		if bad(s.HalfHeight) || bad(s.Radius) {
			return fmt.Errorf("%s half height %g radius %g: %w", s.Kind, s.HalfHeight, s.Radius, core.ErrInvalidShape)
		}
	case ShapeBall:
		if bad(s.Radius) {
			return fmt.Errorf("ball radius %g: %w", s.Radius, core.ErrInvalidShape)
		}
	default:
		return fmt.Errorf("%s: %w", s.Kind, core.ErrInvalidShape)
	}
	return nil
}

// BoundingRadius returns the radius of the smallest origin-centred sphere enclosing the shape
func (s Shape) BoundingRadius() float64 {
	switch s.Kind {
	case ShapeCuboid:
		return s.HalfExtents.Len()
	case ShapeCylinder:
		return math.Hypot(s.HalfHeight, s.Radius)
	case ShapeCapsule:
		return s.HalfHeight + s.Radius
	case ShapeBall:
		return s.Radius
	}
	return 0
}

// Support returns the farthest local point along dir
// A zero dir yields an arbitrary boundary point
func (s Shape) Support(dir mgl64.Vec3) mgl64.Vec3 {
	switch s.Kind {
	case ShapeCuboid:
		return mgl64.Vec3{
			sign(dir[0]) * s.HalfExtents[0],
			sign(dir[1]) * s.HalfExtents[1],
			sign(dir[2]) * s.HalfExtents[2],
		}
	case ShapeCylinder:
		p := mgl64.Vec3{0, sign(dir[1]) * s.HalfHeight, 0}
		if l := math.Hypot(dir[0], dir[2]); l > 1e-12 {
			p[0] = dir[0] / l * s.Radius
			p[2] = dir[2] / l * s.Radius
		}
		return p
	case ShapeCapsule:
		return mgl64.Vec3{0, sign(dir[1]) * s.HalfHeight, 0}.Add(scaledDir(dir, s.Radius))
	case ShapeBall:
		return scaledDir(dir, s.Radius)
	}
	return mgl64.Vec3{}
}

// rigidShape returns the feather shape used for mass and inertia
// Cylinders and capsules integrate as their bounding box
func (s Shape) rigidShape() actor.ShapeInterface {
	switch s.Kind {
	case ShapeBall:
		return &actor.Sphere{Radius: s.Radius}
	case ShapeCylinder:
		return &actor.Box{HalfExtents: mgl64.Vec3{s.Radius, s.HalfHeight, s.Radius}}
	case ShapeCapsule:
		return &actor.Box{HalfExtents: mgl64.Vec3{s.Radius, s.HalfHeight + s.Radius, s.Radius}}
	default:
		return &actor.Box{HalfExtents: s.HalfExtents}
	}
}

// supporter maps a world direction to the farthest world point of a posed shape
type supporter func(dir mgl64.Vec3) mgl64.Vec3

// posedSupport returns the world support function of s at p
// Cuboids and balls query a feather body, cylinders and capsules use the local support
func (s Shape) posedSupport(p vmath.Pose) supporter {
	switch s.Kind {
	case ShapeCuboid, ShapeBall:
		rb := actor.NewRigidBody(transformOf(p), s.rigidShape(), actor.BodyTypeStatic, 0)
		return func(dir mgl64.Vec3) mgl64.Vec3 {
			return rb.SupportWorld(unit(dir))
		}
	default:
		inv := p.Rotation.Inverse()
		return func(dir mgl64.Vec3) mgl64.Vec3 {
			return p.Apply(s.Support(inv.Rotate(dir)))
		}
	}
}

// transformOf converts a pose into a feather transform
func transformOf(p vmath.Pose) actor.Transform {
	t := actor.NewTransform()
	t.Position = p.Position
	t.Rotation = p.Rotation
	t.InverseRotation = p.Rotation.Inverse()
	return t
}

func unit(dir mgl64.Vec3) mgl64.Vec3 {
	l := dir.Len()
	if l < 1e-12 {
		return mgl64.Vec3{1, 0, 0}
	}
	return dir.Mul(1 / l)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func scaledDir(dir mgl64.Vec3, r float64) mgl64.Vec3 {
	l := dir.Len()
	if l < 1e-12 {
		return mgl64.Vec3{r, 0, 0}
	}
	return dir.Mul(r / l)
}
