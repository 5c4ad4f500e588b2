package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/vmath"
)

func TestIntersectsPairs(t *testing.T) {
	tilt := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1})

	tests := []struct {
		name string
		a    Shape
		pa   vmath.Pose
		b    Shape
		pb   vmath.Pose
		want bool
	}{
		{"balls overlapping", Ball(1), vmath.PoseAt(mgl64.Vec3{0, 0, 0}), Ball(1), vmath.PoseAt(mgl64.Vec3{1.5, 0, 0}), true},
		{"balls apart", Ball(1), vmath.PoseAt(mgl64.Vec3{0, 0, 0}), Ball(1), vmath.PoseAt(mgl64.Vec3{2.5, 0, 0}), false},
		{"cuboids overlapping", Cuboid(1, 1, 1), vmath.IdentityPose(), Cuboid(1, 1, 1), vmath.PoseAt(mgl64.Vec3{1.5, 0.5, 0}), true},
		{"cuboids apart", Cuboid(1, 1, 1), vmath.IdentityPose(), Cuboid(1, 1, 1), vmath.PoseAt(mgl64.Vec3{2.1, 0, 0}), false},
		// Rotated 45 degrees the corner reaches sqrt(2) along X
		{"rotated cuboid corner", Cuboid(1, 1, 1), vmath.Pose{Rotation: tilt}, Ball(0.2), vmath.PoseAt(mgl64.Vec3{1.5, 0, 0}), true},
		{"unrotated cuboid misses", Cuboid(1, 1, 1), vmath.IdentityPose(), Ball(0.2), vmath.PoseAt(mgl64.Vec3{1.5, 0, 0}), false},
		{"ball inside cylinder", Cylinder(0.1, 0.21), vmath.IdentityPose(), Ball(0.05), vmath.PoseAt(mgl64.Vec3{0.1, 0, 0}), true},
		{"ball above cylinder", Cylinder(0.1, 0.21), vmath.IdentityPose(), Ball(0.05), vmath.PoseAt(mgl64.Vec3{0, 0.2, 0}), false},
		{"ball beside cylinder rim", Cylinder(0.1, 0.21), vmath.IdentityPose(), Ball(0.05), vmath.PoseAt(mgl64.Vec3{0.3, 0, 0}), false},
		{"capsule tip", Capsule(0.5, 0.1), vmath.IdentityPose(), Ball(0.1), vmath.PoseAt(mgl64.Vec3{0, 0.65, 0}), true},
		{"capsule clear of tip", Capsule(0.5, 0.1), vmath.IdentityPose(), Ball(0.1), vmath.PoseAt(mgl64.Vec3{0, 0.85, 0}), false},
		{"cuboid on cylinder table", Cuboid(0.1, 0.02, 0.2), vmath.PoseAt(mgl64.Vec3{0.5, 0.08, 0}), Cylinder(0.07, 1.55), vmath.IdentityPose(), true},
		{"deep balls", Ball(1.02), vmath.IdentityPose(), Ball(0.86), vmath.PoseAt(mgl64.Vec3{0.575, -1.12, -0.036}), true},
		{"ball deep in cuboid", Cuboid(1, 1, 1), vmath.Pose{Rotation: tilt}, Ball(0.86), vmath.PoseAt(mgl64.Vec3{0.5, -1, 0}), true},
		{"capsule deep in cylinder", Cylinder(1, 1.2), vmath.IdentityPose(), Capsule(0.3, 0.4), vmath.Pose{Position: mgl64.Vec3{0.5, -1, 0}, Rotation: tilt}, true},
		{"same centre", Cuboid(0.5, 0.5, 0.5), vmath.IdentityPose(), Ball(0.1), vmath.IdentityPose(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Intersects(tt.a, tt.pa, tt.b, tt.pb); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
			if got := Intersects(tt.b, tt.pb, tt.a, tt.pa); got != tt.want {
				t.Errorf("Intersects() swapped = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSupportCylinder(t *testing.T) {
	s := Cylinder(0.5, 2)
	got := s.Support(mgl64.Vec3{1, 1, 0})
	want := mgl64.Vec3{2, 0.5, 0}
	if !vmath.VecApproxEqual(got, want, 1e-12) {
		t.Errorf("Support() = %v, want %v", got, want)
	}
}

func TestShapeValidate(t *testing.T) {
	valid := []Shape{Cuboid(1, 1, 1), Cylinder(0.1, 0.2), Capsule(0.3, 0.1), Ball(1)}
	for _, s := range valid {
		if err := s.Validate(); err != nil {
			t.Errorf("%s: unexpected error %v", s.Kind, err)
		}
	}

	invalid := []Shape{Cuboid(0, 1, 1), Cylinder(-1, 0.2), Capsule(0.3, math.NaN()), Ball(0), {Kind: ShapeKind(99)}}
	for _, s := range invalid {
		if err := s.Validate(); err == nil {
			t.Errorf("%s: expected error", s.Kind)
		}
	}
}

// distanceToShape returns the distance from world point q to shape s at p, zero inside
func distanceToShape(s Shape, p vmath.Pose, q mgl64.Vec3) float64 {
	l := p.ApplyInverse(q)
	switch s.Kind {
	case ShapeCuboid:
		var d mgl64.Vec3
		for i := 0; i < 3; i++ {
			d[i] = math.Max(math.Abs(l[i])-s.HalfExtents[i], 0)
		}
		return d.Len()
	case ShapeBall:
		return math.Max(l.Len()-s.Radius, 0)
	case ShapeCapsule:
		axis := mgl64.Vec3{0, math.Max(-s.HalfHeight, math.Min(s.HalfHeight, l[1])), 0}
		return math.Max(l.Sub(axis).Len()-s.Radius, 0)
	case ShapeCylinder:
		dr := math.Max(math.Hypot(l[0], l[2])-s.Radius, 0)
		dy := math.Max(math.Abs(l[1])-s.HalfHeight, 0)
		return math.Hypot(dr, dy)
	}
	return math.Inf(1)
}

// boxesOverlap is the separating axis test for two cuboids
// margin is the smallest normalised distance of any axis from the separation threshold
func boxesOverlap(a Shape, pa vmath.Pose, b Shape, pb vmath.Pose) (bool, float64) {
	axesOf := func(p vmath.Pose) [3]mgl64.Vec3 {
		return [3]mgl64.Vec3{
			p.Rotation.Rotate(mgl64.Vec3{1, 0, 0}),
			p.Rotation.Rotate(mgl64.Vec3{0, 1, 0}),
			p.Rotation.Rotate(mgl64.Vec3{0, 0, 1}),
		}
	}
	ua, ub := axesOf(pa), axesOf(pb)
	candidates := append(ua[:], ub[:]...)
	for i := range ua {
		for j := range ub {
			if c := ua[i].Cross(ub[j]); c.Len() > 1e-6 {
				candidates = append(candidates, c.Normalize())
			}
		}
	}

	centre := pb.Position.Sub(pa.Position)
	overlap, margin := true, math.Inf(1)
	for _, axis := range candidates {
		ra, rb := 0.0, 0.0
		for i := 0; i < 3; i++ {
			ra += math.Abs(axis.Dot(ua[i])) * a.HalfExtents[i]
			rb += math.Abs(axis.Dot(ub[i])) * b.HalfExtents[i]
		}
		gap := math.Abs(centre.Dot(axis)) - (ra + rb)
		if gap > 0 {
			overlap = false
		}
		margin = math.Min(margin, math.Abs(gap))
	}
	return overlap, margin
}

func randomShape(rng *rand.Rand, kind ShapeKind) Shape {
	size := func() float64 { return 0.05 + rng.Float64()*0.95 }
	switch kind {
	case ShapeCuboid:
		return Cuboid(size(), size(), size())
	case ShapeCylinder:
		return Cylinder(size(), size())
	case ShapeCapsule:
		return Capsule(size(), size())
	}
	return Ball(size())
}

func randomPose(rng *rand.Rand, spread float64) vmath.Pose {
	pos := mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}.Mul(spread)
	axis := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
	if axis.Len() < 1e-6 {
		axis = mgl64.Vec3{0, 1, 0}
	}
	return vmath.Pose{Position: pos, Rotation: mgl64.QuatRotate(rng.Float64()*2*math.Pi, axis.Normalize())}
}

var allKinds = []ShapeKind{ShapeCuboid, ShapeCylinder, ShapeCapsule, ShapeBall}

func TestIntersectsBallAgainstEveryShape(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			checked := 0
			for i := 0; i < 20000; i++ {
				other := randomShape(rng, kind)
				po := randomPose(rng, 1.5)
				ball := randomShape(rng, ShapeBall)
				pb := randomPose(rng, 1.5)

				gap := distanceToShape(other, po, pb.Position) - ball.Radius
				if math.Abs(gap) < 1e-4 {
					continue
				}
				want := gap <= 0
				checked++
				if got := Intersects(other, po, ball, pb); got != want {
					t.Fatalf("case %d: %s %+v at %+v vs ball %g at %v: got %v, want %v (gap %g)",
						i, kind, other, po, ball.Radius, pb.Position, got, want, gap)
				}
				if got := Intersects(ball, pb, other, po); got != want {
					t.Fatalf("case %d swapped: got %v, want %v (gap %g)", i, got, want, gap)
				}
			}
			if checked < 10000 {
				t.Errorf("only %d cases away from the boundary", checked)
			}
		})
	}
}

func TestIntersectsCuboidPairs(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 20000; i++ {
		a, b := randomShape(rng, ShapeCuboid), randomShape(rng, ShapeCuboid)
		pa, pb := randomPose(rng, 1.5), randomPose(rng, 1.5)
		want, margin := boxesOverlap(a, pa, b, pb)
		if margin < 1e-4 {
			continue
		}
		if got := Intersects(a, pa, b, pb); got != want {
			t.Fatalf("case %d: %+v at %+v vs %+v at %+v: got %v, want %v", i, a, pa, b, pb, got, want)
		}
	}
}

func TestIntersectsContainedCentre(t *testing.T) {
	// A shape whose centre sits strictly inside another always overlaps it
	rng := rand.New(rand.NewSource(13))
	for _, ka := range allKinds {
		for _, kb := range allKinds {
			for i := 0; i < 2000; i++ {
				a, b := randomShape(rng, ka), randomShape(rng, kb)
				pa, pb := randomPose(rng, 1), randomPose(rng, 1)
				// Pull b's centre well inside a
				pb.Position = pa.Apply(a.Support(mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}).Mul(0.5))
				if !Intersects(a, pa, b, pb) || !Intersects(b, pb, a, pa) {
					t.Fatalf("%s/%s case %d: centre inside but no overlap", ka, kb, i)
				}
			}
		}
	}
}

func TestIntersectsDeepBallOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50000; i++ {
		ra, rb := 0.05+rng.Float64(), 0.05+rng.Float64()
		pa, pb := randomPose(rng, 1), randomPose(rng, 1)
		d := pa.Position.Sub(pb.Position).Len()
		if math.Abs(d-(ra+rb)) < 1e-9 {
			continue
		}
		if got, want := Intersects(Ball(ra), pa, Ball(rb), pb), d < ra+rb; got != want {
			t.Fatalf("case %d: radii %g %g distance %g: got %v, want %v", i, ra, rb, d, got, want)
		}
	}
}
