package engine

import (
	"testing"

	"github.com/lixenwraith/vignettes/core"
)

func TestArenaInsertGet(t *testing.T) {
	a := NewArena[string](4)
	e := a.Insert("paddle")

	v, ok := a.Get(e)
	if !ok || *v != "paddle" {
		t.Fatalf("Get() = %v, %v", v, ok)
	}
	if a.Len() != 1 {
		t.Errorf("Len() = %d, want 1", a.Len())
	}
}

func TestArenaStaleHandleAfterReuse(t *testing.T) {
	a := NewArena[int](4)
	first := a.Insert(1)
	if !a.Remove(first) {
		t.Fatal("Remove() of live handle returned false")
	}

	second := a.Insert(2)
	if second.Index() != first.Index() {
		t.Fatalf("expected slot reuse, got index %d then %d", first.Index(), second.Index())
	}
	if second == first {
		t.Fatal("reused slot must carry a new generation")
	}
	if _, ok := a.Get(first); ok {
		t.Error("stale handle resolved after slot reuse")
	}
	if a.Remove(first) {
		t.Error("Remove() of stale handle returned true")
	}
	if v, ok := a.Get(second); !ok || *v != 2 {
		t.Errorf("Get(second) = %v, %v", v, ok)
	}
}

func TestArenaRemoveDuringEach(t *testing.T) {
	a := NewArena[int](8)
	var handles []core.Entity
	for i := 0; i < 6; i++ {
		handles = append(handles, a.Insert(i))
	}

	visited := 0
	a.Each(func(e core.Entity, v *int) bool {
		visited++
		// Removing the current and a later slot must not skip or repeat live ones
		if *v == 1 {
			a.Remove(e)
			a.Remove(handles[4])
		}
		return true
	})

	if visited != 5 {
		t.Errorf("visited %d slots, want 5", visited)
	}
	if a.Len() != 4 {
		t.Errorf("Len() = %d, want 4", a.Len())
	}
}

func TestArenaHandlesOrderAndClear(t *testing.T) {
	a := NewArena[int](4)
	h0 := a.Insert(10)
	h1 := a.Insert(11)
	h2 := a.Insert(12)
	a.Remove(h1)

	got := a.Handles()
	if len(got) != 2 || got[0] != h0 || got[1] != h2 {
		t.Fatalf("Handles() = %v", got)
	}

	a.Clear()
	if a.Len() != 0 {
		t.Errorf("Len() after Clear = %d", a.Len())
	}
	if a.Has(h0) || a.Has(h2) {
		t.Error("handles survived Clear")
	}
}

func TestArenaRejectsInvalid(t *testing.T) {
	a := NewArena[int](1)
	if _, ok := a.Get(core.NoEntity); ok {
		t.Error("NoEntity resolved")
	}
	if _, ok := a.Get(core.NewEntity(99, 1)); ok {
		t.Error("out of range index resolved")
	}
}
