package body

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/physics"
	"github.com/lixenwraith/vignettes/status"
	"github.com/lixenwraith/vignettes/vmath"
)

type recordingVisual struct {
	poses []vmath.Pose
}

func (v *recordingVisual) SetPose(p vmath.Pose) {
	v.poses = append(v.poses, p)
}

func newTestRegistry() (*Registry, *status.Registry) {
	reg := status.NewRegistry()
	space := physics.NewSpace(physics.DefaultConfig())
	space.SetMetrics(reg)
	return NewRegistry(space), reg
}

func TestCreateBodyKindFromMass(t *testing.T) {
	r, _ := newTestRegistry()

	tests := []struct {
		name string
		mass float64
		want Kind
	}{
		{"positive mass is dynamic", 10, Dynamic},
		{"zero mass is fixed", 0, Fixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := r.CreateCuboidBody(vmath.IdentityPose(), tt.mass, mgl64.Vec3{0.1, 0.02, 0.2}, vmath.PoseAt(mgl64.Vec3{0, 0, 0.1}))
			if err != nil {
				t.Fatal(err)
			}
			k, _ := r.Kind(h)
			if k != tt.want {
				t.Errorf("Kind() = %s, want %s", k, tt.want)
			}
		})
	}

	if _, err := r.CreateEmptyBody(vmath.IdentityPose(), -1); !errors.Is(err, core.ErrInvalidParams) {
		t.Errorf("negative mass: %v", err)
	}
}

func TestCreateBodyColliderOffset(t *testing.T) {
	r, _ := newTestRegistry()
	h, err := r.CreateCuboidBody(vmath.PoseAt(mgl64.Vec3{1, 0, 0}), 10, mgl64.Vec3{0.1, 0.02, 0.2}, vmath.PoseAt(mgl64.Vec3{0, 0, 0.1}))
	if err != nil {
		t.Fatal(err)
	}
	p, err := r.Space().ColliderWorldPose(h, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !vmath.VecApproxEqual(p.Position, mgl64.Vec3{1, 0, 0.1}, 1e-12) {
		t.Errorf("collider world position = %v", p.Position)
	}
}

func TestSetBodyKindNoOpWhenUnchanged(t *testing.T) {
	r, reg := newTestRegistry()
	h, _ := r.CreateEmptyBody(vmath.IdentityPose(), 1)

	switches := reg.Counter("physics.kind_switches")
	if err := r.SetBodyKind(h, Dynamic); err != nil {
		t.Fatal(err)
	}
	if switches.Load() != 0 {
		t.Errorf("unchanged kind reached the world: %d switches", switches.Load())
	}

	r.SetBodyKind(h, KinematicPositioned)
	r.SetBodyKind(h, KinematicPositioned)
	r.SetBodyKind(h, Dynamic)
	if switches.Load() != 2 {
		t.Errorf("switches = %d, want 2", switches.Load())
	}
}

func TestKinematicTargetAndSync(t *testing.T) {
	r, _ := newTestRegistry()
	h, _ := r.CreateEmptyBody(vmath.IdentityPose(), 1)

	if err := r.SetKinematicTarget(h, mgl64.Vec3{1, 1, 1}, mgl64.QuatIdent()); !errors.Is(err, core.ErrNotKinematic) {
		t.Fatalf("dynamic body accepted target: %v", err)
	}

	r.SetBodyKind(h, KinematicPositioned)
	if err := r.SetKinematicTarget(h, mgl64.Vec3{1, 1, 1}, mgl64.QuatIdent()); err != nil {
		t.Fatal(err)
	}

	v := &recordingVisual{}
	r.SyncVisual(v, h)
	r.Space().Step(1.0 / 120)
	r.SyncVisual(v, h)

	if len(v.poses) != 2 {
		t.Fatalf("visual saw %d poses", len(v.poses))
	}
	if !vmath.VecApproxEqual(v.poses[0].Position, mgl64.Vec3{}, 1e-12) {
		t.Errorf("pre-step visual = %v", v.poses[0].Position)
	}
	if !vmath.VecApproxEqual(v.poses[1].Position, mgl64.Vec3{1, 1, 1}, 1e-12) {
		t.Errorf("post-step visual = %v", v.poses[1].Position)
	}
}

func TestRemoveBodyNotifiesAndInvalidates(t *testing.T) {
	r, _ := newTestRegistry()
	h, _ := r.CreateCylinderBody(vmath.IdentityPose(), 0, 0.07, 1.55, vmath.IdentityPose())

	var removed []core.Entity
	r.OnRemove(func(e core.Entity) { removed = append(removed, e) })

	if err := r.RemoveBody(h); err != nil {
		t.Fatal(err)
	}
	if len(removed) != 1 || removed[0] != h {
		t.Errorf("listener saw %v", removed)
	}
	if _, err := r.Pose(h); !errors.Is(err, core.ErrStaleHandle) {
		t.Errorf("Pose after remove: %v", err)
	}
	if err := r.RemoveBody(h); !errors.Is(err, core.ErrStaleHandle) {
		t.Errorf("double remove: %v", err)
	}
	if len(removed) != 1 {
		t.Error("listener ran for stale remove")
	}
}

func TestResetDynamicBody(t *testing.T) {
	r, _ := newTestRegistry()
	h, _ := r.CreateEmptyBody(vmath.PoseAt(mgl64.Vec3{0, 5, 0}), 1)
	for i := 0; i < 30; i++ {
		r.Space().Step(1.0 / 120)
	}

	if err := r.ResetDynamicBody(h, mgl64.Vec3{2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	st, _ := r.Space().State(h)
	if !vmath.VecApproxEqual(st.Pose.Position, mgl64.Vec3{2, 3, 4}, 1e-12) {
		t.Errorf("position = %v", st.Pose.Position)
	}
	if st.LinearVelocity.Len() != 0 {
		t.Errorf("velocity = %v", st.LinearVelocity)
	}
}

func TestClearRemovesAll(t *testing.T) {
	r, _ := newTestRegistry()
	r.CreateEmptyBody(vmath.IdentityPose(), 1)
	r.CreateCapsuleBody(vmath.IdentityPose(), 2, 0.3, 0.1, vmath.IdentityPose())

	n := 0
	r.OnRemove(func(core.Entity) { n++ })
	r.Clear()

	if n != 2 {
		t.Errorf("listener ran %d times", n)
	}
	count := 0
	r.ForEachBody(func(core.Entity, physics.BodyState) { count++ })
	if count != 0 {
		t.Errorf("%d bodies survived Clear", count)
	}
}
