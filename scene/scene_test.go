package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/vmath"
)

func buildTree() *Node {
	root := NewNode("root")
	table := NewNode("Table")
	table.Local = vmath.PoseAt(mgl64.Vec3{0, 1, 0})
	root.Add(table)
	for _, name := range []string{"CandleFire1", "CandleFire2", "Cake"} {
		c := NewNode(name)
		c.Local = vmath.PoseAt(mgl64.Vec3{0.5, 0, 0})
		table.Add(c)
	}
	return root
}

func TestFindAndPrefix(t *testing.T) {
	root := buildTree()
	if root.Find("Cake") == nil {
		t.Fatal("Find(Cake) = nil")
	}
	if root.Find("Missing") != nil {
		t.Error("Find(Missing) found something")
	}
	fires := root.FindPrefix("CandleFire")
	if len(fires) != 2 || fires[0].Name != "CandleFire1" {
		t.Errorf("FindPrefix = %d nodes", len(fires))
	}
}

func TestWorldPoseComposes(t *testing.T) {
	root := buildTree()
	root.Local = vmath.Pose{Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})}
	cake := root.Find("Cake")

	got := cake.WorldPosition()
	// Table lifts by 1, cake offset +X rotated to -Z
	want := mgl64.Vec3{0, 1, -0.5}
	if !vmath.VecApproxEqual(got, want, 1e-9) {
		t.Errorf("WorldPosition() = %v, want %v", got, want)
	}
}

func TestSetPoseIsWorld(t *testing.T) {
	root := buildTree()
	cake := root.Find("Cake")
	target := vmath.PoseAt(mgl64.Vec3{3, 3, 3})
	cake.SetPose(target)
	if !cake.WorldPose().ApproxEqual(target, 1e-9) {
		t.Errorf("WorldPose() = %+v", cake.WorldPose())
	}
}

func TestCloneIsDeep(t *testing.T) {
	root := buildTree()
	c := root.Clone()
	c.Find("Cake").Visible = false
	c.Find("Table").Local = vmath.IdentityPose()

	if !root.Find("Cake").Visible {
		t.Error("clone shares nodes with original")
	}
	if c.Find("Cake").Parent() != c.Find("Table") {
		t.Error("clone parent links not rewired")
	}
	if c.Find("Cake").EffectiveVisible() {
		t.Error("hidden node reported visible")
	}
}

func TestReparent(t *testing.T) {
	root := buildTree()
	cake := root.Find("Cake")
	root.Add(cake)
	if len(root.Find("Table").Children) != 2 {
		t.Error("reparented node still under old parent")
	}
	if cake.Parent() != root {
		t.Error("parent not updated")
	}
}

func TestStageNotifies(t *testing.T) {
	s := NewStage()
	var events []StageEvent
	cancel := s.Subscribe(func(ev StageEvent) { events = append(events, ev) })

	g := NewGraph("welcome")
	s.Attach(g)
	s.Attach(g)
	if len(s.Graphs()) != 1 {
		t.Fatalf("Graphs() = %d", len(s.Graphs()))
	}
	if !s.Detach(g) || s.Detach(g) {
		t.Error("Detach results wrong")
	}
	cancel()
	s.Attach(g)

	if len(events) != 2 || events[0].Kind != Attached || events[1].Kind != Detached {
		t.Errorf("events = %+v", events)
	}
}
