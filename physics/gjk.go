package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/vmath"
)

const (
	gjkMaxIterations = 96
	gjkTolerance     = 1e-9
)

// Intersects reports whether two posed shapes overlap, touching counts as overlap
func Intersects(a Shape, pa vmath.Pose, b Shape, pb vmath.Pose) bool {
	pa, pb = pa.Normalized(), pb.Normalized()

	centre := pa.Position.Sub(pb.Position)
	reach := a.BoundingRadius() + b.BoundingRadius()
	if centre.Dot(centre) > reach*reach {
		return false
	}
	if a.Kind == ShapeBall && b.Kind == ShapeBall {
		return true
	}

	sa, sb := a.posedSupport(pa), b.posedSupport(pb)
	return gjkOverlap(func(d mgl64.Vec3) mgl64.Vec3 {
		return sa(d).Sub(sb(d.Mul(-1)))
	}, centre)
}

// gjkOverlap tests whether the convex set behind support contains the origin
// The simplex is reduced to the feature closest to the origin each iteration, v is that closest point
func gjkOverlap(support supporter, start mgl64.Vec3) bool {
	if start.Dot(start) < gjkTolerance {
		start = mgl64.Vec3{1, 0, 0}
	}

	var s simplex
	v := support(start)
	s.push(v)

	for i := 0; i < gjkMaxIterations; i++ {
		if v.Dot(v) <= gjkTolerance*gjkTolerance {
			return true
		}
		w := support(v.Mul(-1))
		// Plane through w with normal v separates the set from the origin
		if w.Dot(v) > 0 {
			return false
		}
		s.push(w)

		var contained bool
		v, contained = s.closest()
		if contained {
			return true
		}
	}
	return v.Dot(v) <= 1e-12
}

// simplex holds up to four Minkowski points
type simplex struct {
	pts [4]mgl64.Vec3
	n   int
}

func (s *simplex) push(p mgl64.Vec3) {
	s.pts[s.n] = p
	s.n++
}

func (s *simplex) set(pts ...mgl64.Vec3) {
	s.n = copy(s.pts[:], pts)
}

// closest reduces the simplex to the smallest feature holding the point nearest the origin
// contained is true when a tetrahedron encloses the origin
func (s *simplex) closest() (mgl64.Vec3, bool) {
	switch s.n {
	case 1:
		return s.pts[0], false
	case 2:
		p, keep := closestOnSegment(s.pts[0], s.pts[1])
		s.set(keep...)
		return p, false
	case 3:
		p, keep := closestOnTriangle(s.pts[0], s.pts[1], s.pts[2])
		s.set(keep...)
		return p, false
	default:
		return s.closestTetrahedron()
	}
}

func (s *simplex) closestTetrahedron() (mgl64.Vec3, bool) {
	a, b, c, d := s.pts[0], s.pts[1], s.pts[2], s.pts[3]
	faces := [4][4]mgl64.Vec3{
		{a, b, c, d},
		{a, c, d, b},
		{a, d, b, c},
		{b, d, c, a},
	}

	best := mgl64.Vec3{}
	var bestKeep []mgl64.Vec3
	bestDist := -1.0
	for _, f := range faces {
		if !originOutside(f[0], f[1], f[2], f[3]) {
			continue
		}
		p, keep := closestOnTriangle(f[0], f[1], f[2])
		if dist := p.Dot(p); bestDist < 0 || dist < bestDist {
			best, bestKeep, bestDist = p, keep, dist
		}
	}
	if bestDist < 0 {
		return mgl64.Vec3{}, true
	}
	s.set(bestKeep...)
	return best, false
}

// originOutside reports whether the origin lies on the far side of plane abc from d
// A flat tetrahedron treats every face as outside
func originOutside(a, b, c, d mgl64.Vec3) bool {
	n := b.Sub(a).Cross(c.Sub(a))
	signO := a.Mul(-1).Dot(n)
	signD := d.Sub(a).Dot(n)
	if signD*signD < 1e-24 {
		return true
	}
	return signO*signD < 0
}

func closestOnSegment(a, b mgl64.Vec3) (mgl64.Vec3, []mgl64.Vec3) {
	ab := b.Sub(a)
	den := ab.Dot(ab)
	if den < 1e-24 {
		return a, []mgl64.Vec3{a}
	}
	t := -a.Dot(ab) / den
	switch {
	case t <= 0:
		return a, []mgl64.Vec3{a}
	case t >= 1:
		return b, []mgl64.Vec3{b}
	}
	return a.Add(ab.Mul(t)), []mgl64.Vec3{a, b}
}

// closestOnTriangle finds the point of abc nearest the origin by Voronoi region
func closestOnTriangle(a, b, c mgl64.Vec3) (mgl64.Vec3, []mgl64.Vec3) {
	ab := b.Sub(a)
	ac := c.Sub(a)

	ap := a.Mul(-1)
	d1, d2 := ab.Dot(ap), ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a, []mgl64.Vec3{a}
	}

	bp := b.Mul(-1)
	d3, d4 := ab.Dot(bp), ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b, []mgl64.Vec3{b}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		t := d1 / (d1 - d3)
		return a.Add(ab.Mul(t)), []mgl64.Vec3{a, b}
	}

	cp := c.Mul(-1)
	d5, d6 := ab.Dot(cp), ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c, []mgl64.Vec3{c}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		t := d2 / (d2 - d6)
		return a.Add(ac.Mul(t)), []mgl64.Vec3{a, c}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		t := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(t)), []mgl64.Vec3{b, c}
	}

	sum := va + vb + vc
	if sum < 1e-24 {
		// Collinear corners, fall back to the nearest edge
		return nearestEdge(a, b, c)
	}
	v, w := vb/sum, vc/sum
	return a.Add(ab.Mul(v)).Add(ac.Mul(w)), []mgl64.Vec3{a, b, c}
}

func nearestEdge(a, b, c mgl64.Vec3) (mgl64.Vec3, []mgl64.Vec3) {
	best, keep := closestOnSegment(a, b)
	for _, e := range [2][2]mgl64.Vec3{{a, c}, {b, c}} {
		if p, k := closestOnSegment(e[0], e[1]); p.Dot(p) < best.Dot(best) {
			best, keep = p, k
		}
	}
	return best, keep
}
