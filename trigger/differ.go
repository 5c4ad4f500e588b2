// Package trigger turns per-step overlap sets into Enter/Exit events
// Each subject keeps the previous step's set; differences against the
// current set become events on the subject's own queue, drained by consumers
// at their own pace
package trigger

import (
	"fmt"
	"sync/atomic"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/engine"
	"github.com/lixenwraith/vignettes/physics"
	"github.com/lixenwraith/vignettes/status"
	"github.com/lixenwraith/vignettes/vmath"
)

// World is the slice of the simulation the differ samples
type World interface {
	QueryIntersections(shape physics.Shape, pose vmath.Pose, fn func(h core.Entity, collider int) bool)
	Collider(h core.Entity, idx int) (physics.Collider, error)
	ColliderWorldPose(h core.Entity, idx int) (vmath.Pose, error)
	SetColliderSensor(h core.Entity, idx int, sensor bool) error
	EachSensor(fn func(h core.Entity, idx int, c physics.Collider) bool)
	Steps() uint64
}

type sensorKey struct {
	body     core.Entity
	collider int
}

// tracker holds one subject's overlap state and undrained events
type tracker struct {
	subject Subject
	shape   physics.Shape
	pose    vmath.Pose

	current []core.Entity
	inside  map[core.Entity]struct{}
	queue   []Event
}

func newTracker(s Subject, shape physics.Shape, pose vmath.Pose) *tracker {
	return &tracker{
		subject: s,
		shape:   shape,
		pose:    pose,
		inside:  make(map[core.Entity]struct{}),
	}
}

// Differ samples triggers and sensors after each simulation step
// Not safe for concurrent use, callers serialize with the world
type Differ struct {
	world    World
	triggers *engine.Arena[*tracker]
	sensors  map[sensorKey]*tracker
	order    []sensorKey

	tap       func(Event)
	statEnter *atomic.Int64
	statExit  *atomic.Int64
}

// NewDiffer creates a differ sampling world
func NewDiffer(world World) *Differ {
	return &Differ{
		world:    world,
		triggers: engine.NewArena[*tracker](16),
		sensors:  make(map[sensorKey]*tracker),
	}
}

// SetMetrics caches event counters from reg
func (d *Differ) SetMetrics(reg *status.Registry) {
	if reg == nil {
		return
	}
	d.statEnter = reg.Counter("trigger.enter")
	d.statExit = reg.Counter("trigger.exit")
}

// SetTap registers fn to observe every event as it is queued
func (d *Differ) SetTap(fn func(Event)) {
	d.tap = fn
}

// CreateTrigger registers a free-standing shape at pose
func (d *Differ) CreateTrigger(shape physics.Shape, pose vmath.Pose) (Subject, error) {
	if err := shape.Validate(); err != nil {
		return Subject{}, err
	}
	t := newTracker(Subject{Kind: SubjectTrigger}, shape, pose.Normalized())
	h := d.triggers.Insert(t)
	t.subject.ID = h
	return t.subject, nil
}

// CreateCylinderTrigger registers a Y-aligned cylinder trigger
func (d *Differ) CreateCylinderTrigger(halfHeight, radius float64, pose vmath.Pose) (Subject, error) {
	return d.CreateTrigger(physics.Cylinder(halfHeight, radius), pose)
}

func (d *Differ) trigger(s Subject) (*tracker, error) {
	if s.Kind != SubjectTrigger {
		return nil, fmt.Errorf("%s is not a trigger: %w", s, core.ErrStaleHandle)
	}
	t, ok := d.triggers.Get(s.ID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", s, core.ErrStaleHandle)
	}
	return *t, nil
}

// SetTriggerPose moves a trigger, the new pose is sampled on the next step
func (d *Differ) SetTriggerPose(s Subject, pose vmath.Pose) error {
	t, err := d.trigger(s)
	if err != nil {
		return err
	}
	t.pose = pose.Normalized()
	return nil
}

// TriggerPose returns the trigger's current pose
func (d *Differ) TriggerPose(s Subject) (vmath.Pose, error) {
	t, err := d.trigger(s)
	if err != nil {
		return vmath.Pose{}, err
	}
	return t.pose, nil
}

// RemoveTrigger drops the trigger and its undrained events immediately
func (d *Differ) RemoveTrigger(s Subject) error {
	if _, err := d.trigger(s); err != nil {
		return err
	}
	d.triggers.Remove(s.ID)
	return nil
}

// EnableSensor flags a body collider as a sensor and starts tracking it
// Enabling an already tracked sensor returns the same subject
func (d *Differ) EnableSensor(body core.Entity, collider int) (Subject, error) {
	c, err := d.world.Collider(body, collider)
	if err != nil {
		return Subject{}, err
	}
	key := sensorKey{body, collider}
	if t, ok := d.sensors[key]; ok {
		return t.subject, nil
	}
	if !c.Sensor {
		if err := d.world.SetColliderSensor(body, collider, true); err != nil {
			return Subject{}, err
		}
	}
	return d.track(key, c.Shape).subject, nil
}

func (d *Differ) track(key sensorKey, shape physics.Shape) *tracker {
	t := newTracker(Subject{Kind: SubjectSensor, ID: key.body, Collider: key.collider}, shape, vmath.IdentityPose())
	d.sensors[key] = t
	d.order = append(d.order, key)
	return t
}

// adopt tracks colliders flagged as sensors through the world rather than EnableSensor
func (d *Differ) adopt() {
	d.world.EachSensor(func(h core.Entity, idx int, c physics.Collider) bool {
		key := sensorKey{h, idx}
		if _, ok := d.sensors[key]; !ok {
			d.track(key, c.Shape)
		}
		return true
	})
}

// ForgetBody drops sensor subjects owned by a removed body
// Bodies inside other subjects leave through the normal Exit on the next step
func (d *Differ) ForgetBody(body core.Entity) {
	kept := d.order[:0]
	for _, key := range d.order {
		if key.body == body {
			delete(d.sensors, key)
			continue
		}
		kept = append(kept, key)
	}
	d.order = kept
}

// Step samples every subject against the world's current poses
func (d *Differ) Step() {
	step := d.world.Steps()
	d.adopt()

	d.triggers.Each(func(_ core.Entity, t **tracker) bool {
		d.sample(*t, (*t).pose, core.NoEntity, step)
		return true
	})

	for _, key := range d.order {
		t := d.sensors[key]
		pose, err := d.world.ColliderWorldPose(key.body, key.collider)
		if err != nil {
			// Owner removed without ForgetBody; sampled as empty so occupants exit
			d.diff(t, nil, step)
			continue
		}
		d.sample(t, pose, key.body, step)
	}
}

func (d *Differ) sample(t *tracker, pose vmath.Pose, self core.Entity, step uint64) {
	var current []core.Entity
	seen := make(map[core.Entity]struct{})
	d.world.QueryIntersections(t.shape, pose, func(h core.Entity, _ int) bool {
		if h == self {
			return true
		}
		if _, dup := seen[h]; !dup {
			seen[h] = struct{}{}
			current = append(current, h)
		}
		return true
	})
	d.diff(t, current, step)
}

// diff queues Exit for bodies gone from the set, then Enter for new ones
func (d *Differ) diff(t *tracker, current []core.Entity, step uint64) {
	next := make(map[core.Entity]struct{}, len(current))
	for _, h := range current {
		next[h] = struct{}{}
	}

	for _, h := range t.current {
		if _, still := next[h]; !still {
			d.emit(t, Event{Subject: t.subject, Other: h, Kind: Exit, Step: step})
		}
	}
	for _, h := range current {
		if _, was := t.inside[h]; !was {
			d.emit(t, Event{Subject: t.subject, Other: h, Kind: Enter, Step: step})
		}
	}

	t.current = current
	t.inside = next
}

func (d *Differ) emit(t *tracker, ev Event) {
	t.queue = append(t.queue, ev)
	if ev.Kind == Enter {
		if d.statEnter != nil {
			d.statEnter.Add(1)
		}
	} else if d.statExit != nil {
		d.statExit.Add(1)
	}
	if d.tap != nil {
		d.tap(ev)
	}
}

func (d *Differ) lookup(s Subject) (*tracker, error) {
	if s.Kind == SubjectTrigger {
		return d.trigger(s)
	}
	if t, ok := d.sensors[sensorKey{s.ID, s.Collider}]; ok {
		return t, nil
	}
	// Distinguish a bad handle or index from a collider that was never a sensor
	c, err := d.world.Collider(s.ID, s.Collider)
	if err != nil {
		return nil, err
	}
	if c.Sensor {
		// Flagged since the last step, nothing sampled yet
		return d.track(sensorKey{s.ID, s.Collider}, c.Shape), nil
	}
	return nil, fmt.Errorf("%s: %w", s, core.ErrNotSensor)
}

// Drain returns the subject's queued events in step order and clears the queue
func (d *Differ) Drain(s Subject) ([]Event, error) {
	t, err := d.lookup(s)
	if err != nil {
		return nil, err
	}
	out := t.queue
	t.queue = nil
	return out, nil
}

// Pending returns the number of undrained events for s
func (d *Differ) Pending(s Subject) int {
	t, err := d.lookup(s)
	if err != nil {
		return 0
	}
	return len(t.queue)
}

// Inside returns the bodies currently overlapping s, in discovery order
func (d *Differ) Inside(s Subject) ([]core.Entity, error) {
	t, err := d.lookup(s)
	if err != nil {
		return nil, err
	}
	out := make([]core.Entity, len(t.current))
	copy(out, t.current)
	return out, nil
}

// TriggerView is a read-only copy of a trigger for renderers
type TriggerView struct {
	Subject Subject
	Shape   physics.Shape
	Pose    vmath.Pose
	Inside  int
}

// Triggers returns every live trigger in slot order
func (d *Differ) Triggers() []TriggerView {
	out := make([]TriggerView, 0, d.triggers.Len())
	d.triggers.Each(func(_ core.Entity, t **tracker) bool {
		out = append(out, TriggerView{Subject: (*t).subject, Shape: (*t).shape, Pose: (*t).pose, Inside: len((*t).current)})
		return true
	})
	return out
}

// Clear removes every trigger and sensor subject
func (d *Differ) Clear() {
	d.triggers.Clear()
	d.sensors = make(map[sensorKey]*tracker)
	d.order = nil
}
