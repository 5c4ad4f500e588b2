package asset

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/vmath"
)

func waitLoaded(t *testing.T, l *Library) {
	t.Helper()
	select {
	case <-l.Loaded().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("library never loaded")
	}
}

func TestDefaultRoomScenes(t *testing.T) {
	l := NewLibrary()
	l.LoadDefault()
	waitLoaded(t, l)

	if err, _ := l.Loaded().Value(); err != nil {
		t.Fatalf("load error: %v", err)
	}
	names := l.Names()
	want := []string{"birthday", "sister", "welcome"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v", names)
		}
	}

	g, err := l.Scene("birthday")
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Root.FindPrefix("CandleFire")) != 3 {
		t.Error("birthday scene missing candle flames")
	}
	fire := g.Find("CandleFire2")
	if !vmath.VecApproxEqual(fire.WorldPosition(), mgl64.Vec3{0, 0.98, -1.08}, 1e-9) {
		t.Errorf("CandleFire2 at %v", fire.WorldPosition())
	}
}

func TestSceneIsPrivateCopy(t *testing.T) {
	l := NewLibrary()
	if err := l.LoadSync([]byte(DefaultRoomDocument)); err != nil {
		t.Fatal(err)
	}
	a, _ := l.Scene("sister")
	a.Find("Ball").Visible = false
	b, _ := l.Scene("sister")
	if !b.Find("Ball").Visible {
		t.Error("scene copies share nodes")
	}
}

func TestSceneErrors(t *testing.T) {
	l := NewLibrary()
	if _, err := l.Scene("welcome"); !errors.Is(err, core.ErrNotReady) {
		t.Errorf("before load: %v", err)
	}
	l.LoadDefault()
	waitLoaded(t, l)
	if _, err := l.Scene("attic"); !errors.Is(err, core.ErrUnknownName) {
		t.Errorf("unknown scene: %v", err)
	}
}

func TestOnAllLoadedOnce(t *testing.T) {
	l := NewLibrary()
	calls := make(chan struct{}, 4)
	l.OnAllLoaded(func() { calls <- struct{}{} })
	l.LoadDefault()
	waitLoaded(t, l)

	// Registered after load: runs synchronously
	late := false
	l.OnAllLoaded(func() { late = true })
	if !late {
		t.Error("late handler did not run immediately")
	}

	l.Load([]byte(DefaultRoomDocument))
	time.Sleep(20 * time.Millisecond)
	if len(calls) != 1 {
		t.Errorf("handler ran %d times", len(calls))
	}
}

func TestDecodeRejectsBadVectors(t *testing.T) {
	_, err := Decode([]byte(`{"name":"room","children":[{"name":"x","position":[1,2]}]}`))
	if !errors.Is(err, core.ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
	if _, err := Decode([]byte(`{`)); err == nil {
		t.Error("malformed JSON accepted")
	}
}

func TestFailedLoadNotReady(t *testing.T) {
	l := NewLibrary()
	l.Load([]byte(`not json`))
	waitLoaded(t, l)
	if l.Ready() {
		t.Error("failed load reported ready")
	}
	ran := false
	l.OnAllLoaded(func() { ran = true })
	if ran {
		t.Error("handler ran after failed load")
	}
}
