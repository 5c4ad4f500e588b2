package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// FastRand is a xorshift64 generator, not safe for concurrent use
// Each owner (particle system, content) holds its own so runs are reproducible per seed
type FastRand struct {
	state uint64
}

func NewFastRand(seed uint64) *FastRand {
	if seed == 0 {
		seed = 1
	}
	return &FastRand{state: seed}
}

func (r *FastRand) Next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Intn returns a value in [0, n), 0 when n <= 0
func (r *FastRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint64(n))
}

// Float64 returns a value in [0, 1)
func (r *FastRand) Float64() float64 {
	return float64(r.Next()>>11) / (1 << 53)
}

// Range returns a value in [lo, hi)
func (r *FastRand) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// IntRange returns a value in [lo, hi], inclusive on both ends
func (r *FastRand) IntRange(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + r.Intn(hi-lo+1)
}

// VecRange returns a vector with each component drawn independently from [lo[i], hi[i])
func (r *FastRand) VecRange(lo, hi mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		r.Range(lo[0], hi[0]),
		r.Range(lo[1], hi[1]),
		r.Range(lo[2], hi[2]),
	}
}

// Direction returns a uniformly distributed unit vector
func (r *FastRand) Direction() mgl64.Vec3 {
	z := r.Range(-1, 1)
	theta := r.Range(0, 2*math.Pi)
	s := math.Sqrt(1 - z*z)
	return mgl64.Vec3{s * math.Cos(theta), s * math.Sin(theta), z}
}
