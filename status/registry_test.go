package status

import (
	"sync"
	"testing"
)

func TestRegistryCachedPointers(t *testing.T) {
	r := NewRegistry()
	a := r.Counter("physics.steps")
	b := r.Counter("physics.steps")
	if a != b {
		t.Fatal("expected Get to return the cached pointer for an existing key")
	}
	a.Add(3)
	if got := b.Load(); got != 3 {
		t.Errorf("counter = %d, want 3", got)
	}
}

func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry()
	r.Counter("trigger.enter").Add(2)
	r.Gauge("particle.alive").Set(17.5)

	snap := r.Snapshot()
	if snap["trigger.enter"] != 2 {
		t.Errorf("trigger.enter = %v, want 2", snap["trigger.enter"])
	}
	if snap["particle.alive"] != 17.5 {
		t.Errorf("particle.alive = %v, want 17.5", snap["particle.alive"])
	}
	if r.TotalCount() != 2 {
		t.Errorf("TotalCount() = %d, want 2", r.TotalCount())
	}
}

func TestMetricMapKeysSorted(t *testing.T) {
	m := NewMetricMap[Gauge]()
	m.Get("b")
	m.Get("a")
	m.Get("c")
	keys := m.Keys()
	want := []string{"a", "b", "c"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", keys, want)
		}
	}
}

func TestGaugeConcurrentAdd(t *testing.T) {
	var g Gauge
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				g.Add(0.5)
			}
		}()
	}
	wg.Wait()
	if got := g.Get(); got != 400 {
		t.Errorf("Get() = %v, want 400", got)
	}
}
