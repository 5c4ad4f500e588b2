package trigger

import (
	"fmt"

	"github.com/lixenwraith/vignettes/core"
)

// SubjectKind distinguishes free-standing triggers from body sensors
type SubjectKind uint8

const (
	SubjectTrigger SubjectKind = iota
	SubjectSensor
)

// Subject identifies an event source
// For triggers ID is the trigger handle and Collider is 0; for sensors ID is the owning body
type Subject struct {
	Kind     SubjectKind
	ID       core.Entity
	Collider int
}

func (s Subject) String() string {
	if s.Kind == SubjectSensor {
		return fmt.Sprintf("sensor(%s/%d)", s.ID, s.Collider)
	}
	return fmt.Sprintf("trigger(%s)", s.ID)
}

// EventKind is Enter or Exit
type EventKind uint8

const (
	Enter EventKind = iota
	Exit
)

func (k EventKind) String() string {
	if k == Enter {
		return "enter"
	}
	return "exit"
}

// Event reports a body crossing a subject's boundary during simulation step Step
type Event struct {
	Subject Subject
	Other   core.Entity
	Kind    EventKind
	Step    uint64
}
