package vignette

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/asset"
	"github.com/lixenwraith/vignettes/body"
	"github.com/lixenwraith/vignettes/grab"
	"github.com/lixenwraith/vignettes/input"
	"github.com/lixenwraith/vignettes/particle"
	"github.com/lixenwraith/vignettes/scene"
	"github.com/lixenwraith/vignettes/trigger"
	"github.com/lixenwraith/vignettes/vmath"
)

// Overlay shows transient text to the player
type Overlay interface {
	ShowText(text string, seconds float64)
}

// Cues plays named audio cues
type Cues interface {
	Play(name string)
}

// Player moves the reference position the player stands at
type Player interface {
	SetPlayerPosition(p mgl64.Vec3)
}

// Context carries the services a vignette may drive
// The scheduler sets Scene and DT before every call
type Context struct {
	Bodies    *body.Registry
	Triggers  *trigger.Differ
	Grabs     *grab.Tracker
	Particles *particle.System
	Input     input.Device
	Assets    asset.Store
	Overlay   Overlay
	Cues      Cues
	Player    Player
	Rand      *vmath.FastRand

	Scene *scene.Graph
	DT    float64

	cleanups []func()
}

// Defer registers fn to run when the current vignette is torn down, last registered first
func (c *Context) Defer(fn func()) {
	c.cleanups = append(c.cleanups, fn)
}

// ShowText forwards to the overlay when one is configured
func (c *Context) ShowText(text string, seconds float64) {
	if c.Overlay != nil {
		c.Overlay.ShowText(text, seconds)
	}
}

// Play forwards to the cue player when one is configured
func (c *Context) Play(name string) {
	if c.Cues != nil {
		c.Cues.Play(name)
	}
}

// SetPlayerPosition forwards to the player rig when one is configured
func (c *Context) SetPlayerPosition(p mgl64.Vec3) {
	if c.Player != nil {
		c.Player.SetPlayerPosition(p)
	}
}

func (c *Context) runCleanups() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		c.cleanups[i]()
	}
	c.cleanups = nil
}
