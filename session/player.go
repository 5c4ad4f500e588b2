package session

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// PlayerRef is the player's reference position in world space
// Vignettes move it on setup; input rigs place controllers relative to it
type PlayerRef struct {
	mu  sync.Mutex
	pos mgl64.Vec3
}

// SetPlayerPosition moves the reference position
func (p *PlayerRef) SetPlayerPosition(pos mgl64.Vec3) {
	p.mu.Lock()
	p.pos = pos
	p.mu.Unlock()
}

// Position returns the reference position
func (p *PlayerRef) Position() mgl64.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}
