package engine

import "github.com/lixenwraith/vignettes/core"

type arenaSlot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// Arena is a generational slot allocator
// Removal frees the slot in place and bumps its generation, so handles held past
// removal resolve to nothing instead of aliasing the next occupant
// Not safe for concurrent use: each arena is mutated only by its owning subsystem
type Arena[T any] struct {
	slots []arenaSlot[T]
	free  []uint32
	count int
}

// NewArena creates an empty arena with capacity hint
func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		slots: make([]arenaSlot[T], 0, capacity),
	}
}

// Insert stores val in a free slot and returns its handle
func (a *Arena[T]) Insert(val T) core.Entity {
	a.count++

	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.value = val
		s.live = true
		return core.NewEntity(idx, s.generation)
	}

	idx := uint32(len(a.slots))
	a.slots = append(a.slots, arenaSlot[T]{value: val, generation: 1, live: true})
	return core.NewEntity(idx, 1)
}

// Get returns a pointer to the live value for e
// The pointer is valid until the slot is removed
func (a *Arena[T]) Get(e core.Entity) (*T, bool) {
	s := a.slot(e)
	if s == nil {
		return nil, false
	}
	return &s.value, true
}

// Has reports whether e refers to a live slot
func (a *Arena[T]) Has(e core.Entity) bool {
	return a.slot(e) != nil
}

// Remove frees the slot held by e; returns false for stale handles
func (a *Arena[T]) Remove(e core.Entity) bool {
	s := a.slot(e)
	if s == nil {
		return false
	}

	var zero T
	s.value = zero
	s.live = false
	s.generation++
	if s.generation == 0 {
		// Wrapped: generation 0 marks invalid handles
		s.generation = 1
	}
	a.free = append(a.free, e.Index())
	a.count--
	return true
}

// Len returns the number of live slots
func (a *Arena[T]) Len() int {
	return a.count
}

// Each visits live slots in slot order until fn returns false
// fn may remove any slot, including the one being visited
func (a *Arena[T]) Each(fn func(e core.Entity, val *T) bool) {
	n := len(a.slots)
	for i := 0; i < n; i++ {
		s := &a.slots[i]
		if !s.live {
			continue
		}
		if !fn(core.NewEntity(uint32(i), s.generation), &s.value) {
			return
		}
	}
}

// Handles returns the handles of all live slots in slot order
func (a *Arena[T]) Handles() []core.Entity {
	out := make([]core.Entity, 0, a.count)
	for i := range a.slots {
		if a.slots[i].live {
			out = append(out, core.NewEntity(uint32(i), a.slots[i].generation))
		}
	}
	return out
}

// Clear frees every slot, invalidating all outstanding handles
func (a *Arena[T]) Clear() {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.live {
			continue
		}
		var zero T
		s.value = zero
		s.live = false
		s.generation++
		if s.generation == 0 {
			s.generation = 1
		}
		a.free = append(a.free, uint32(i))
	}
	a.count = 0
}

func (a *Arena[T]) slot(e core.Entity) *arenaSlot[T] {
	if !e.Valid() {
		return nil
	}
	idx := e.Index()
	if int(idx) >= len(a.slots) {
		return nil
	}
	s := &a.slots[idx]
	if !s.live || s.generation != e.Generation() {
		return nil
	}
	return s
}
