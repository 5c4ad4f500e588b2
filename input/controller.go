// Package input provides controller state for the interaction core
// Devices report per-controller world pose, an analog grab value and a
// readiness flag; the tracker and vignettes read value copies only
package input

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/vmath"
)

// ControllerState is a value copy of one tracked controller
type ControllerState struct {
	ID        int
	Position  mgl64.Vec3
	Rotation  mgl64.Quat
	GrabValue float64 // analog grip in [0, 1]
	Connected bool
}

// Pose returns the controller's world pose
func (c ControllerState) Pose() vmath.Pose {
	return vmath.Pose{Position: c.Position, Rotation: c.Rotation}.Normalized()
}

// Device is the input collaborator polled once per frame
type Device interface {
	// Ready reports whether the device is presenting, e.g. an XR session started
	Ready() bool
	// Controllers returns a snapshot ordered by controller ID
	Controllers() []ControllerState
}

// ClampGrab limits an analog value to [0, 1]
func ClampGrab(v float64) float64 {
	return vmath.Clamp01(v)
}
