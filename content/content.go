// Package content holds the built-in vignettes and registers them by name
package content

import (
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/registry"
	"github.com/lixenwraith/vignettes/vignette"
	"github.com/lixenwraith/vignettes/vmath"
)

var floorHalfExtents = mgl64.Vec3{4, 0.01, 4}

// Register adds every built-in vignette to the registry
func Register() {
	registry.RegisterVignette("welcome", NewWelcome())
	registry.RegisterVignette("birthday", NewBirthday())
	registry.RegisterVignette("sister", NewSister())
}

// logFailure records a failed per-frame call, the vignette keeps running
func logFailure(name, op string, err error) {
	if err != nil {
		log.Printf("vignette %s: %s: %v", name, op, err)
	}
}

// addFloor creates the fixed floor slab every room stands on
func addFloor(ctx *vignette.Context) (core.Entity, error) {
	h, err := ctx.Bodies.CreateCuboidBody(vmath.IdentityPose(), 0, floorHalfExtents, vmath.IdentityPose())
	if err != nil {
		return core.NoEntity, err
	}
	ctx.Defer(removeBody(ctx, h))
	return h, nil
}

func removeBody(ctx *vignette.Context, h core.Entity) func() {
	return func() { ctx.Bodies.RemoveBody(h) }
}
