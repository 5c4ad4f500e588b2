package vmath

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Lerp interpolates a to b by t, t unclamped
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 limits t to [0, 1]
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// SafeNormalize returns v scaled to unit length, or fallback when v is degenerate
func SafeNormalize(v, fallback mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < Epsilon {
		return fallback
	}
	return v.Mul(1 / l)
}

// Horizontal drops the Y component
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], 0, v[2]}
}
