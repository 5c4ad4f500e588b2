package render

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/session"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func rowText(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		ch, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(ch)
	}
	return b.String()
}

func TestProjectCentre(t *testing.T) {
	screen := newScreen(t, 80, 24)
	term := NewTerminal(screen)

	x, y, ok := term.Project(mgl64.Vec3{0, 5, -0.5})
	if !ok {
		t.Fatal("view centre should be on the map")
	}
	if x != 40 || y != 11 {
		t.Errorf("centre projected to (%d, %d), want (40, 11)", x, y)
	}

	// One metre right is a quarter of the width; height is ignored
	x2, y2, _ := term.Project(mgl64.Vec3{1, 0, -0.5})
	if x2-x != 20 || y2 != y {
		t.Errorf("one metre right projected to (%d, %d)", x2, y2)
	}

	if _, _, ok := term.Project(mgl64.Vec3{10, 0, 0}); ok {
		t.Error("far point should be off the map")
	}
}

func TestDrawSnapshot(t *testing.T) {
	screen := newScreen(t, 120, 30)
	term := NewTerminal(screen)

	snap := session.Snapshot{
		Ready:    true,
		Step:     42,
		Vignette: "birthday",
		Slot:     "active",
		Overlay:  "Blow out the candles",
		Player:   mgl64.Vec3{0, 0.5, 0},
		Bodies: []session.BodyView{
			{ID: "floor", Kind: "fixed", Radius: 5.6},
			{ID: "paddle", Kind: "dynamic", Position: mgl64.Vec3{1, 0.8, -0.5}, Radius: 0.3},
			{ID: "cube", Kind: "kinematic", Position: mgl64.Vec3{-1, 1.2, -0.5}, Radius: 0.3, Sensors: 1},
		},
		Triggers:    []session.TriggerView{{ID: "zone", Shape: "cylinder", Position: mgl64.Vec3{0, 1, -1}, Radius: 0.1, Inside: 1}},
		Particles:   []session.ParticleView{{Position: mgl64.Vec3{0.5, 1, -1}, Scale: 0.05, Alpha: 0.5}},
		Controllers: []session.ControllerView{{ID: 0, Position: mgl64.Vec3{1, 0.8, -0.5}, Connected: true, Grab: 1, Holding: "paddle"}},
		Metrics:     map[string]float64{"trigger.enter": 3},
	}
	term.Draw(snap)

	status := rowText(screen, 0)
	for _, want := range []string{"birthday", "active", "step 42", "holding paddle", "trigger.enter=3"} {
		if !strings.Contains(status, want) {
			t.Errorf("status bar %q missing %q", status, want)
		}
	}
	if bottom := rowText(screen, 29); !strings.Contains(bottom, "Blow out the candles") {
		t.Errorf("overlay line = %q", bottom)
	}

	check := func(p mgl64.Vec3, want rune, fg tcell.Color) {
		t.Helper()
		x, y, _ := term.Project(p)
		ch, _, style, _ := screen.GetContent(x, y)
		if ch != want {
			t.Errorf("cell (%d, %d) = %q, want %q", x, y, ch, want)
		}
		if got, _, _ := style.Decompose(); got != fg {
			t.Errorf("cell (%d, %d) color = %v, want %v", x, y, got, fg)
		}
	}
	// Controller is drawn over the body it holds
	check(mgl64.Vec3{1, 0, -0.5}, '0', RgbControllerHold)
	check(mgl64.Vec3{-1, 0, -0.5}, '◆', RgbSensor)
	check(mgl64.Vec3{0, 0, -1}, '○', RgbTriggerActive)
	check(mgl64.Vec3{0, 0, 0}, '@', RgbPlayer)

	// Room-sized fixed bodies tint the floor instead of drawing a glyph
	x, y, _ := term.Project(mgl64.Vec3{0.25, 0, 0.25})
	_, _, style, _ := screen.GetContent(x, y)
	if _, bg, _ := style.Decompose(); bg != RgbFloor {
		t.Errorf("floor cell background = %v, want floor tint", bg)
	}
}

func TestDrawLoadingAndHelp(t *testing.T) {
	screen := newScreen(t, 80, 24)
	term := NewTerminal(screen)
	term.Draw(session.Snapshot{Vignette: "welcome", Slot: "not-created"})

	if status := rowText(screen, 0); !strings.Contains(status, "LOADING") {
		t.Errorf("status bar %q should show loading", status)
	}
	if bottom := rowText(screen, 23); !strings.Contains(bottom, "space grip") {
		t.Errorf("empty overlay should show key help, got %q", bottom)
	}
}

func TestDimFadesToBackground(t *testing.T) {
	if Dim(RgbParticle, 0) != RgbBackground {
		t.Error("zero alpha should render as background")
	}
	r, g, b := Dim(tcell.NewRGBColor(200, 100, 50), 0.5).RGB()
	if r != 100 || g != 50 || b != 25 {
		t.Errorf("Dim half = (%d, %d, %d)", r, g, b)
	}
	if Dim(RgbParticle, 2) != RgbParticle {
		t.Error("alpha above one should clamp")
	}
}
