// Package vignette sequences scripted segments over a looping playlist
// Exactly one slot is live at a time; a finished slot is torn down in the
// same frame and the next factory runs on the following frame
package vignette

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/lixenwraith/vignettes/scene"
	"github.com/lixenwraith/vignettes/status"
)

// SlotState is the lifecycle position of the current slot
type SlotState uint8

const (
	NotCreated SlotState = iota
	SetUp
	Active
	Done
	TornDown
)

func (s SlotState) String() string {
	switch s {
	case NotCreated:
		return "not-created"
	case SetUp:
		return "set-up"
	case Active:
		return "active"
	case Done:
		return "done"
	case TornDown:
		return "torn-down"
	default:
		return fmt.Sprintf("slot(%d)", uint8(s))
	}
}

// Entry is a named playlist slot
type Entry struct {
	Name    string
	Factory Factory
}

// Transition describes a slot state change
type Transition struct {
	Index int
	Name  string
	From  SlotState
	To    SlotState
}

// Scheduler runs playlist entries in order, wrapping to the first after the last
// Not safe for concurrent use
type Scheduler struct {
	entries []Entry
	stage   *scene.Stage

	index   int
	current Vignette
	state   SlotState

	observer        func(Transition)
	statTransitions *atomic.Int64
}

// NewScheduler creates a scheduler attaching sub-scenes to stage
func NewScheduler(stage *scene.Stage, entries ...Entry) *Scheduler {
	if stage == nil {
		stage = scene.NewStage()
	}
	return &Scheduler{entries: entries, stage: stage}
}

// SetMetrics caches the transition counter from reg
func (s *Scheduler) SetMetrics(reg *status.Registry) {
	if reg != nil {
		s.statTransitions = reg.Counter("vignette.transitions")
	}
}

// SetObserver registers fn for every slot transition
func (s *Scheduler) SetObserver(fn func(Transition)) {
	s.observer = fn
}

// Len returns the playlist length
func (s *Scheduler) Len() int {
	return len(s.entries)
}

// Index returns the playlist position of the current slot
func (s *Scheduler) Index() int {
	return s.index
}

// Current returns the live vignette and its state, nil before creation
func (s *Scheduler) Current() (Vignette, SlotState) {
	return s.current, s.state
}

// CurrentName returns the playlist name of the current slot
func (s *Scheduler) CurrentName() string {
	if len(s.entries) == 0 {
		return ""
	}
	return s.entries[s.index].Name
}

func (s *Scheduler) transition(to SlotState) {
	from := s.state
	s.state = to
	if s.statTransitions != nil {
		s.statTransitions.Add(1)
	}
	if s.observer != nil {
		s.observer(Transition{Index: s.index, Name: s.entries[s.index].Name, From: from, To: to})
	}
}

// Update drives one render frame
// Setup failures tear the slot down, advance the playlist and return the error
func (s *Scheduler) Update(ctx *Context) error {
	if len(s.entries) == 0 {
		return nil
	}

	if s.current == nil {
		entry := s.entries[s.index]
		ctx.cleanups = nil
		v, err := entry.Factory(ctx)
		if err != nil {
			log.Printf("vignette %s: create failed: %v", entry.Name, err)
			s.advance()
			return fmt.Errorf("create vignette %q: %w", entry.Name, err)
		}
		s.current = v
		s.state = NotCreated
	}

	if s.state == NotCreated {
		ctx.Scene = s.current.Scene()
		if ctx.Scene != nil {
			s.stage.Attach(ctx.Scene)
		}
		if err := s.current.Setup(ctx); err != nil {
			name := s.entries[s.index].Name
			log.Printf("vignette %s: setup failed: %v", name, err)
			s.teardown(ctx)
			s.advance()
			return fmt.Errorf("setup vignette %q: %w", name, err)
		}
		s.transition(SetUp)
		log.Printf("vignette %s: set up", s.entries[s.index].Name)
	}

	if s.state == SetUp {
		s.transition(Active)
	}

	ctx.Scene = s.current.Scene()
	s.current.Update(ctx)

	if s.current.Done() {
		s.transition(Done)
		s.teardown(ctx)
		log.Printf("vignette %s: done", s.entries[s.index].Name)
		s.advance()
	}
	return nil
}

// Skip tears down the current slot and advances, as if it had finished
func (s *Scheduler) Skip(ctx *Context) {
	if s.current == nil || len(s.entries) == 0 {
		return
	}
	if s.state == NotCreated {
		s.current = nil
		s.advance()
		return
	}
	s.transition(Done)
	s.teardown(ctx)
	s.advance()
}

// Close tears down the current slot without advancing
func (s *Scheduler) Close(ctx *Context) {
	if s.current == nil {
		return
	}
	if s.state != NotCreated {
		s.teardown(ctx)
	}
	s.current = nil
	s.state = NotCreated
}

// teardown runs the vignette's teardown, deferred cleanups, then detaches its scene
func (s *Scheduler) teardown(ctx *Context) {
	ctx.Scene = s.current.Scene()
	s.current.Teardown(ctx)
	ctx.runCleanups()
	if g := s.current.Scene(); g != nil {
		s.stage.Detach(g)
	}
	ctx.Scene = nil
	if s.state != NotCreated {
		s.transition(TornDown)
	}
}

func (s *Scheduler) advance() {
	s.current = nil
	s.state = NotCreated
	s.index = (s.index + 1) % len(s.entries)
}
