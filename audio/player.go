// Package audio synthesizes short interaction cues and plays them through the speaker
package audio

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Cues plays named audio cues
type Cues interface {
	Play(name string)
}

// Silent discards every cue
type Silent struct{}

// Play does nothing
func (Silent) Play(string) {}

// Player mixes cues into a single speaker stream
type Player struct {
	mu          sync.Mutex
	cfg         *Config
	mixer       *beep.Mixer
	initialized bool
	played      atomic.Int64
}

// NewPlayer creates a player; cfg nil uses defaults
func NewPlayer(cfg *Config) *Player {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Player{
		cfg:   cfg,
		mixer: &beep.Mixer{},
	}
}

// Initialize opens the speaker; a no-op when already open or audio is disabled
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized || !p.cfg.Enabled {
		return nil
	}

	rate := beep.SampleRate(p.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(time.Millisecond*100)); err != nil {
		return err
	}

	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Initialized reports whether the speaker is open
func (p *Player) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// Play starts the named cue; unknown names and uninitialized players are ignored
func (p *Player) Play(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}

	s := Synthesize(name, p.cfg)
	if s == nil {
		log.Printf("audio: unknown cue %q", name)
		return
	}

	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
	p.played.Add(1)
}

// Played returns the number of cues handed to the mixer
func (p *Player) Played() int64 {
	return p.played.Load()
}

// Close stops all cues and closes the speaker
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}

	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()

	speaker.Close()
	p.initialized = false
}
