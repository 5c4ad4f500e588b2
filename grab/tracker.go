// Package grab arbitrates exclusive pairing between controllers and grabbable objects
package grab

import (
	"fmt"
	"sync/atomic"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/engine"
	"github.com/lixenwraith/vignettes/input"
	"github.com/lixenwraith/vignettes/status"
	"github.com/lixenwraith/vignettes/vmath"
)

const (
	// PressThreshold is the analog value at or above which a grip counts as held
	PressThreshold = 0.4
	// DefaultCaptureRadius is the acquisition distance in metres
	DefaultCaptureRadius = 0.2
)

// NoController marks an unheld grabbable
const NoController = -1

// Target locates a grabbable object in world space
type Target interface {
	WorldPose() (vmath.Pose, bool)
}

// TargetFunc adapts a function to Target
type TargetFunc func() (vmath.Pose, bool)

func (f TargetFunc) WorldPose() (vmath.Pose, bool) { return f() }

// Grabbable is the tracker's record of one object
type Grabbable struct {
	Name      string
	Target    Target
	Radius    float64
	IsGrabbed bool
	Holder    int
	GrabPose  vmath.Pose
}

// Held reports whether a controller holds the object
func (g *Grabbable) Held() bool {
	return g.IsGrabbed
}

// TransitionKind is Grabbed or Released
type TransitionKind uint8

const (
	Grabbed TransitionKind = iota
	Released
)

func (k TransitionKind) String() string {
	if k == Grabbed {
		return "grabbed"
	}
	return "released"
}

// Transition is a pairing change produced by Update
type Transition struct {
	Grabbable  core.Entity
	Name       string
	Controller int
	Kind       TransitionKind
	Pose       vmath.Pose
}

type handState struct {
	hasGrabbed bool
	holding    core.Entity
}

// Tracker pairs controllers with grabbables once per frame
// Not safe for concurrent use
type Tracker struct {
	items   *engine.Store[*Grabbable] // registration order is the visit order
	hands   map[int]*handState
	nextIdx uint32
	radius  float64

	statAcquired *atomic.Int64
	statReleased *atomic.Int64
}

// NewTracker creates a tracker using radius as the default capture distance
func NewTracker(radius float64) *Tracker {
	if radius <= 0 {
		radius = DefaultCaptureRadius
	}
	return &Tracker{
		items:  engine.NewStore[*Grabbable](),
		hands:  make(map[int]*handState),
		radius: radius,
	}
}

// SetMetrics caches transition counters from reg
func (t *Tracker) SetMetrics(reg *status.Registry) {
	if reg == nil {
		return
	}
	t.statAcquired = reg.Counter("grab.acquired")
	t.statReleased = reg.Counter("grab.released")
}

// Register adds target in registration order; radius <= 0 uses the default
func (t *Tracker) Register(name string, target Target, radius float64) (core.Entity, error) {
	if target == nil {
		return core.NoEntity, fmt.Errorf("grabbable %q without target: %w", name, core.ErrInvalidParams)
	}
	if radius <= 0 {
		radius = t.radius
	}
	t.nextIdx++
	h := core.NewEntity(t.nextIdx, 1)
	t.items.Set(h, &Grabbable{Name: name, Target: target, Radius: radius, Holder: NoController, GrabPose: vmath.IdentityPose()})
	return h, nil
}

// Unregister removes a grabbable, freeing its holder
func (t *Tracker) Unregister(h core.Entity) error {
	g, ok := t.items.Get(h)
	if !ok {
		return fmt.Errorf("grabbable %s: %w", h, core.ErrStaleHandle)
	}
	if g.IsGrabbed {
		t.release(h, g, nil)
	}
	t.items.Remove(h)
	return nil
}

// Get returns a copy of the grabbable record
func (t *Tracker) Get(h core.Entity) (Grabbable, bool) {
	g, ok := t.items.Get(h)
	if !ok {
		return Grabbable{}, false
	}
	return *g, true
}

// Holding returns the grabbable held by controller id
func (t *Tracker) Holding(id int) (core.Entity, bool) {
	hs, ok := t.hands[id]
	if !ok || !hs.hasGrabbed {
		return core.NoEntity, false
	}
	return hs.holding, true
}

// Len returns the number of registered grabbables
func (t *Tracker) Len() int {
	return t.items.Count()
}

func (t *Tracker) hand(id int) *handState {
	hs, ok := t.hands[id]
	if !ok {
		hs = &handState{}
		t.hands[id] = hs
	}
	return hs
}

// Update runs one tick of acquisition, refresh and release
// Grabbables are visited in registration order, controllers in the given order
func (t *Tracker) Update(controllers []input.ControllerState) []Transition {
	var out []Transition

	byID := make(map[int]input.ControllerState, len(controllers))
	for _, c := range controllers {
		byID[c.ID] = c
	}

	for _, h := range t.items.Entities() {
		g, _ := t.items.Get(h)

		if g.IsGrabbed {
			c, ok := byID[g.Holder]
			if !ok || !c.Connected || c.GrabValue < PressThreshold {
				out = t.release(h, g, out)
				continue
			}
			g.GrabPose = c.Pose()
			continue
		}

		target, ok := g.Target.WorldPose()
		if !ok {
			continue
		}
		for _, c := range controllers {
			if !c.Connected || c.GrabValue < PressThreshold {
				continue
			}
			hs := t.hand(c.ID)
			if hs.hasGrabbed {
				continue
			}
			if c.Position.Sub(target.Position).Len() >= g.Radius {
				continue
			}

			g.IsGrabbed = true
			g.Holder = c.ID
			g.GrabPose = c.Pose()
			hs.hasGrabbed = true
			hs.holding = h
			if t.statAcquired != nil {
				t.statAcquired.Add(1)
			}
			out = append(out, Transition{Grabbable: h, Name: g.Name, Controller: c.ID, Kind: Grabbed, Pose: g.GrabPose})
			break
		}
	}
	return out
}

func (t *Tracker) release(h core.Entity, g *Grabbable, out []Transition) []Transition {
	holder := g.Holder
	if hs, ok := t.hands[holder]; ok && hs.holding == h {
		hs.hasGrabbed = false
		hs.holding = core.NoEntity
	}
	g.IsGrabbed = false
	g.Holder = NoController
	if t.statReleased != nil {
		t.statReleased.Add(1)
	}
	return append(out, Transition{Grabbable: h, Name: g.Name, Controller: holder, Kind: Released, Pose: g.GrabPose})
}

// Clear unregisters everything and resets controller flags
func (t *Tracker) Clear() {
	t.items.Clear()
	t.hands = make(map[int]*handState)
}
