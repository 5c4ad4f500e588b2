package core

import "fmt"

// Entity is a generational handle into a slot arena
// Lower 32 bits hold the slot index, upper 32 bits the slot generation
// The zero value is never issued and means "no entity"
type Entity uint64

// NoEntity is the invalid handle
const NoEntity Entity = 0

// NewEntity packs a slot index and generation into a handle
func NewEntity(index, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// Index returns the slot index
func (e Entity) Index() uint32 {
	return uint32(e)
}

// Generation returns the slot generation the handle was issued for
func (e Entity) Generation() uint32 {
	return uint32(e >> 32)
}

// Valid reports whether the handle could have been issued by an arena
func (e Entity) Valid() bool {
	return e.Generation() != 0
}

func (e Entity) String() string {
	if !e.Valid() {
		return "entity(none)"
	}
	return fmt.Sprintf("entity(%d:%d)", e.Index(), e.Generation())
}
