package particle

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/core"
)

// DefaultMaxParticles caps an emitter when Params.MaxParticles is zero
const DefaultMaxParticles = 256

// Color is linear RGBA
type Color = mgl64.Vec4

// Resource is the render-side allocation bound to an emitter, released on destruction
type Resource interface {
	Release()
}

// Params configures an emitter; times in seconds, velocities in metres per second
type Params struct {
	TimeBetweenEmissions float64
	MinEmitCount         int
	MaxEmitCount         int
	LifeMin              float64
	LifeMax              float64
	VelMin               mgl64.Vec3
	VelMax               mgl64.Vec3
	EmitRadius           float64
	MaxParticles         int
	Position             mgl64.Vec3

	// Curves over normalized age t in [0, 1]; nil means constant 1 and white
	ScaleForT func(t float64) float64
	ColorForT func(t float64) Color

	Resource Resource
}

// Validate rejects inverted ranges and negative quantities
func (p Params) Validate() error {
	switch {
	case !(p.TimeBetweenEmissions >= 0) || math.IsInf(p.TimeBetweenEmissions, 0):
		return fmt.Errorf("time between emissions %g: %w", p.TimeBetweenEmissions, core.ErrInvalidParams)
	case p.MinEmitCount < 0 || p.MaxEmitCount < p.MinEmitCount:
		return fmt.Errorf("emit count [%d, %d]: %w", p.MinEmitCount, p.MaxEmitCount, core.ErrInvalidParams)
	case !(p.LifeMin > 0) || p.LifeMax < p.LifeMin:
		return fmt.Errorf("lifetime [%g, %g]: %w", p.LifeMin, p.LifeMax, core.ErrInvalidParams)
	case p.EmitRadius < 0:
		return fmt.Errorf("emit radius %g: %w", p.EmitRadius, core.ErrInvalidParams)
	case p.MaxParticles < 0:
		return fmt.Errorf("max particles %d: %w", p.MaxParticles, core.ErrInvalidParams)
	}
	for i := 0; i < 3; i++ {
		if p.VelMax[i] < p.VelMin[i] {
			return fmt.Errorf("velocity axis %d [%g, %g]: %w", i, p.VelMin[i], p.VelMax[i], core.ErrInvalidParams)
		}
	}
	return nil
}

// Particle is a value copy of one live particle
type Particle struct {
	Position    mgl64.Vec3
	Velocity    mgl64.Vec3
	Remaining   float64
	InitialLife float64
	Scale       float64
	Color       Color
}

// Age returns normalized age in [0, 1]
func (p Particle) Age() float64 {
	if p.InitialLife <= 0 {
		return 1
	}
	t := 1 - p.Remaining/p.InitialLife
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
