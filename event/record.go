// Package event carries interaction records from the session to lossy observers
package event

import (
	"github.com/lixenwraith/vignettes/grab"
	"github.com/lixenwraith/vignettes/trigger"
	"github.com/lixenwraith/vignettes/vignette"
)

// Kind identifies the source of a record
type Kind string

const (
	KindTrigger  Kind = "trigger"
	KindGrab     Kind = "grab"
	KindVignette Kind = "vignette"
)

// Record is a flat, JSON-friendly interaction record
type Record struct {
	Kind       Kind    `json:"kind"`
	Step       uint64  `json:"step"`
	Time       float64 `json:"t"`
	Subject    string  `json:"subject,omitempty"`
	Other      uint64  `json:"other,omitempty"`
	Name       string  `json:"name,omitempty"`
	Controller int     `json:"controller,omitempty"`
	Detail     string  `json:"detail"`
}

// FromTrigger converts a trigger enter/exit event
func FromTrigger(e trigger.Event, t float64) Record {
	return Record{
		Kind:    KindTrigger,
		Step:    e.Step,
		Time:    t,
		Subject: e.Subject.String(),
		Other:   uint64(e.Other),
		Detail:  e.Kind.String(),
	}
}

// FromGrab converts a grab or release transition
func FromGrab(tr grab.Transition, step uint64, t float64) Record {
	return Record{
		Kind:       KindGrab,
		Step:       step,
		Time:       t,
		Subject:    tr.Grabbable.String(),
		Name:       tr.Name,
		Controller: tr.Controller,
		Detail:     tr.Kind.String(),
	}
}

// FromVignette converts a scheduler slot transition
func FromVignette(tr vignette.Transition, step uint64, t float64) Record {
	return Record{
		Kind:   KindVignette,
		Step:   step,
		Time:   t,
		Name:   tr.Name,
		Detail: tr.From.String() + "->" + tr.To.String(),
	}
}

// Sink receives records drained from a queue
type Sink interface {
	Record(r Record)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(r Record)

func (f SinkFunc) Record(r Record) { f(r) }

// Pump drains q into every sink in order and returns the number of records moved
func Pump(q *Queue, sinks ...Sink) int {
	records := q.Consume()
	for _, r := range records {
		for _, s := range sinks {
			s.Record(r)
		}
	}
	return len(records)
}
