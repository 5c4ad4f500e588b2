package input

import (
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
)

// RigAction is a virtual controller operation bound to a key
type RigAction uint8

const (
	RigNone RigAction = iota
	RigLeft
	RigRight
	RigForward
	RigBack
	RigUp
	RigDown
	RigGrab
	RigNextController
	RigPresent
	RigQuit
)

// DefaultRigRunes maps printable keys to rig actions
var DefaultRigRunes = map[rune]RigAction{
	'a': RigLeft,
	'd': RigRight,
	'w': RigForward,
	's': RigBack,
	'e': RigUp,
	'q': RigDown,
	' ': RigGrab,
	'x': RigQuit,
}

// DefaultRigKeys maps special keys to rig actions
var DefaultRigKeys = map[tcell.Key]RigAction{
	tcell.KeyLeft:   RigLeft,
	tcell.KeyRight:  RigRight,
	tcell.KeyUp:     RigForward,
	tcell.KeyDown:   RigBack,
	tcell.KeyPgUp:   RigUp,
	tcell.KeyPgDn:   RigDown,
	tcell.KeyTab:    RigNextController,
	tcell.KeyEnter:  RigPresent,
	tcell.KeyCtrlC:  RigQuit,
	tcell.KeyEscape: RigQuit,
}

// KeyboardRig drives controllers in a State from terminal key events
// Movement is in the horizontal X/Z plane plus raise and lower, the grab key toggles the grip
type KeyboardRig struct {
	state  *State
	count  int
	active int
	step   float64

	runes map[rune]RigAction
	keys  map[tcell.Key]RigAction
}

// NewKeyboardRig binds to state, cycling over count controllers, moving step metres per key press
func NewKeyboardRig(state *State, count int, step float64) *KeyboardRig {
	if count < 1 {
		count = 1
	}
	if step <= 0 {
		step = 0.05
	}
	return &KeyboardRig{
		state: state,
		count: count,
		step:  step,
		runes: DefaultRigRunes,
		keys:  DefaultRigKeys,
	}
}

// Active returns the controller ID receiving key input
func (k *KeyboardRig) Active() int {
	return k.active
}

// Resolve maps a key event to its rig action
func (k *KeyboardRig) Resolve(ev *tcell.EventKey) RigAction {
	if ev.Key() == tcell.KeyRune {
		return k.runes[ev.Rune()]
	}
	return k.keys[ev.Key()]
}

// HandleEvent applies ev and returns the action taken
// Non-key events map to RigNone
func (k *KeyboardRig) HandleEvent(ev tcell.Event) RigAction {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return RigNone
	}
	action := k.Resolve(key)
	k.Apply(action)
	return action
}

// Apply performs action on the active controller
func (k *KeyboardRig) Apply(action RigAction) {
	var delta mgl64.Vec3
	switch action {
	case RigLeft:
		delta = mgl64.Vec3{-k.step, 0, 0}
	case RigRight:
		delta = mgl64.Vec3{k.step, 0, 0}
	case RigForward:
		delta = mgl64.Vec3{0, 0, -k.step}
	case RigBack:
		delta = mgl64.Vec3{0, 0, k.step}
	case RigUp:
		delta = mgl64.Vec3{0, k.step, 0}
	case RigDown:
		delta = mgl64.Vec3{0, -k.step, 0}
	case RigGrab:
		k.state.Update(k.active, func(c *ControllerState) {
			if c.GrabValue >= 0.5 {
				c.GrabValue = 0
			} else {
				c.GrabValue = 1
			}
		})
		return
	case RigNextController:
		k.active = (k.active + 1) % k.count
		return
	case RigPresent:
		k.state.SetReady(true)
		return
	default:
		return
	}
	k.state.Update(k.active, func(c *ControllerState) {
		c.Position = c.Position.Add(delta)
	})
}

// Place moves a controller to an absolute position
func (k *KeyboardRig) Place(id int, pos mgl64.Vec3) {
	k.state.Update(id, func(c *ControllerState) {
		c.Position = pos
	})
}
