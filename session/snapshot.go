package session

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/physics"
)

// maxParticlesPerEmitter bounds the particles copied into one snapshot
const maxParticlesPerEmitter = 64

// BodyView is a rendered rigid body
type BodyView struct {
	ID       string     `json:"id"`
	Kind     string     `json:"kind"`
	Position mgl64.Vec3 `json:"position"`
	Rotation [4]float64 `json:"rotation"` // w, x, y, z
	Radius   float64    `json:"radius"`   // bounding radius of all colliders
	Sensors  int        `json:"sensors"`
}

// TriggerView is a rendered trigger volume
type TriggerView struct {
	ID       string     `json:"id"`
	Shape    string     `json:"shape"`
	Position mgl64.Vec3 `json:"position"`
	Radius   float64    `json:"radius"`
	Inside   int        `json:"inside"`
}

// ParticleView is a rendered particle
type ParticleView struct {
	Position mgl64.Vec3 `json:"position"`
	Scale    float64    `json:"scale"`
	Alpha    float64    `json:"alpha"`
}

// ControllerView is a rendered controller
type ControllerView struct {
	ID        int        `json:"id"`
	Position  mgl64.Vec3 `json:"position"`
	Grab      float64    `json:"grab"`
	Connected bool       `json:"connected"`
	Holding   string     `json:"holding,omitempty"`
}

// Snapshot is a consistent copy of session state for renderers and recorders
type Snapshot struct {
	Ready       bool               `json:"ready"`
	Step        uint64             `json:"step"`
	Frame       uint64             `json:"frame"`
	Time        float64            `json:"time"`
	Vignette    string             `json:"vignette"`
	Slot        string             `json:"slot"`
	Overlay     string             `json:"overlay,omitempty"`
	Player      mgl64.Vec3         `json:"player"`
	Bodies      []BodyView         `json:"bodies"`
	Triggers    []TriggerView      `json:"triggers"`
	Particles   []ParticleView     `json:"particles"`
	Controllers []ControllerView   `json:"controllers"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Snapshot copies the current state under the session lock
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Ready:    s.readyLocked(),
		Frame:    s.frames,
		Time:     s.simTime,
		Vignette: s.sched.CurrentName(),
		Overlay:  s.overlay.Text(),
		Player:   s.player.Position(),
		Metrics:  s.metrics.Snapshot(),
	}
	_, slot := s.sched.Current()
	snap.Slot = slot.String()

	if s.space != nil {
		snap.Step = s.space.Steps()
		s.bodies.ForEachBody(func(h core.Entity, st physics.BodyState) {
			bv := BodyView{
				ID:       h.String(),
				Kind:     st.Kind.String(),
				Position: st.Pose.Position,
				Rotation: [4]float64{st.Pose.Rotation.W, st.Pose.Rotation.V[0], st.Pose.Rotation.V[1], st.Pose.Rotation.V[2]},
			}
			for i := 0; i < st.Colliders; i++ {
				c, err := s.space.Collider(h, i)
				if err != nil {
					continue
				}
				if r := c.Offset.Position.Len() + c.Shape.BoundingRadius(); r > bv.Radius {
					bv.Radius = r
				}
				if c.Sensor {
					bv.Sensors++
				}
			}
			snap.Bodies = append(snap.Bodies, bv)
		})
		for _, t := range s.differ.Triggers() {
			snap.Triggers = append(snap.Triggers, TriggerView{
				ID:       t.Subject.String(),
				Shape:    t.Shape.Kind.String(),
				Position: t.Pose.Position,
				Radius:   t.Shape.BoundingRadius(),
				Inside:   t.Inside,
			})
		}
	}

	for _, e := range s.particles.Emitters() {
		ps, err := s.particles.Particles(e.ID)
		if err != nil {
			continue
		}
		if len(ps) > maxParticlesPerEmitter {
			ps = ps[:maxParticlesPerEmitter]
		}
		for _, p := range ps {
			snap.Particles = append(snap.Particles, ParticleView{Position: p.Position, Scale: p.Scale, Alpha: p.Color[3]})
		}
	}

	if s.input != nil {
		for _, c := range s.input.Controllers() {
			cv := ControllerView{ID: c.ID, Position: c.Position, Grab: c.GrabValue, Connected: c.Connected}
			if h, ok := s.grabs.Holding(c.ID); ok {
				if g, ok := s.grabs.Get(h); ok {
					cv.Holding = g.Name
				}
			}
			snap.Controllers = append(snap.Controllers, cv)
		}
	}
	return snap
}
