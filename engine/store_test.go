package engine

import (
	"testing"

	"github.com/lixenwraith/vignettes/core"
)

func TestStoreInsertionOrderSurvivesRemoval(t *testing.T) {
	s := NewStore[int]()
	ids := []core.Entity{core.NewEntity(1, 1), core.NewEntity(2, 1), core.NewEntity(3, 1), core.NewEntity(4, 1)}
	for i, e := range ids {
		s.Set(e, i)
	}

	s.Remove(ids[1])

	got := s.Entities()
	want := []core.Entity{ids[0], ids[2], ids[3]}
	if len(got) != len(want) {
		t.Fatalf("Entities() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Entities() = %v, want %v", got, want)
		}
	}
}

func TestStoreUpdateKeepsPosition(t *testing.T) {
	s := NewStore[string]()
	a, b := core.NewEntity(1, 1), core.NewEntity(2, 1)
	s.Set(a, "a")
	s.Set(b, "b")
	s.Set(a, "a2")

	if s.Count() != 2 {
		t.Errorf("Count() = %d, want 2", s.Count())
	}
	if got := s.Entities(); got[0] != a {
		t.Errorf("update moved entity: %v", got)
	}
	if v, _ := s.Get(a); v != "a2" {
		t.Errorf("Get(a) = %q", v)
	}
}

func TestStoreEachAllowsMutation(t *testing.T) {
	s := NewStore[int]()
	var ids []core.Entity
	for i := 1; i <= 5; i++ {
		e := core.NewEntity(uint32(i), 1)
		ids = append(ids, e)
		s.Set(e, i)
	}

	var visited []int
	s.Each(func(e core.Entity, v int) {
		visited = append(visited, v)
		if v%2 == 1 {
			s.Remove(e)
		}
	})

	if len(visited) != 5 || visited[0] != 1 || visited[4] != 5 {
		t.Fatalf("visited = %v", visited)
	}
	got := s.Entities()
	if len(got) != 2 || got[0] != ids[1] || got[1] != ids[3] {
		t.Errorf("Entities() = %v", got)
	}
	if s.Has(ids[0]) {
		t.Error("removed entity still present")
	}
	if v, ok := s.Get(ids[3]); !ok || v != 4 {
		t.Errorf("Get after shift = %d, %v", v, ok)
	}

	s.Clear()
	if s.Count() != 0 || s.Has(ids[1]) {
		t.Error("Clear left entries behind")
	}
}
