package core

import "errors"

// Usage errors are programming mistakes at the call site and are never retried
var (
	// ErrStaleHandle is returned when a handle refers to a removed or reused slot
	ErrStaleHandle = errors.New("stale or unknown handle")

	// ErrNotSensor is returned when draining events from a collider never flagged as a sensor
	ErrNotSensor = errors.New("collider is not flagged as a sensor")

	// ErrInvalidCollider is returned for a collider index outside the body's collider list
	ErrInvalidCollider = errors.New("invalid collider index")

	// ErrEmitterRemoved is returned when starting an emitter already marked for removal
	ErrEmitterRemoved = errors.New("emitter is pending removal")

	// ErrNotKinematic is returned when staging a kinematic target on a non-kinematic body
	ErrNotKinematic = errors.New("body is not kinematic")

	// ErrInvalidShape is returned for shape descriptors with non-positive extents
	ErrInvalidShape = errors.New("invalid shape descriptor")

	// ErrInvalidParams is returned for emitter or body parameters out of range
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrNotReady is returned by operations that need a collaborator that has not finished loading
	ErrNotReady = errors.New("not ready")

	// ErrUnknownName is returned by name lookups (scenes, vignettes) that find nothing
	ErrUnknownName = errors.New("unknown name")
)
