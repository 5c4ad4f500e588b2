package input

import (
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// State is a thread-safe controller table implementing Device
// Writers are input sources (keyboard rig, stream hub); the session reads snapshots
type State struct {
	mu          sync.RWMutex
	ready       bool
	controllers map[int]ControllerState
}

// NewState creates a table with count connected controllers at the origin
func NewState(count int) *State {
	s := &State{controllers: make(map[int]ControllerState, count)}
	for i := 0; i < count; i++ {
		s.controllers[i] = ControllerState{ID: i, Rotation: mgl64.QuatIdent(), Connected: true}
	}
	return s
}

// Ready reports the readiness flag
func (s *State) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// SetReady sets the readiness flag
func (s *State) SetReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

// Controllers returns a copy ordered by ID
func (s *State) Controllers() []ControllerState {
	s.mu.RLock()
	out := make([]ControllerState, 0, len(s.controllers))
	for _, c := range s.controllers {
		out = append(out, c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Controller returns the controller with id
func (s *State) Controller(id int) (ControllerState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.controllers[id]
	return c, ok
}

// Set replaces a controller, the grab value is clamped
func (s *State) Set(c ControllerState) {
	c.GrabValue = ClampGrab(c.GrabValue)
	if c.Rotation.Len() == 0 {
		c.Rotation = mgl64.QuatIdent()
	}
	s.mu.Lock()
	s.controllers[c.ID] = c
	s.mu.Unlock()
}

// Update applies fn to a controller under the write lock
// Unknown IDs start from a connected controller at the origin
func (s *State) Update(id int, fn func(c *ControllerState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.controllers[id]
	if !ok {
		c = ControllerState{ID: id, Rotation: mgl64.QuatIdent(), Connected: true}
	}
	fn(&c)
	c.ID = id
	c.GrabValue = ClampGrab(c.GrabValue)
	s.controllers[id] = c
}

// Remove drops a controller from the table
func (s *State) Remove(id int) {
	s.mu.Lock()
	delete(s.controllers, id)
	s.mu.Unlock()
}
