// Package simerr defines the typed error taxonomy used across simcore.
//
// Every recoverable failure a component can produce implements error and
// wraps one of the sentinel values below so callers can test kind with
// errors.Is, and carries enough structured context for errors.As to pull
// out entity/property/stream identities without string parsing.
package simerr

import (
	"errors"
	"fmt"
)

// Sentinels. Wrapped by the concrete error types below via Unwrap.
var (
	ErrInvalidTime       = errors.New("invalid time")
	ErrMissingProperty   = errors.New("missing required property")
	ErrDuplicateProperty = errors.New("duplicate property")
	ErrPropertyNotSet    = errors.New("property not set")
	ErrSetOnDerived      = errors.New("cannot set a derived property")
	ErrUnknownStream     = errors.New("unknown rng stream")
	ErrUnknownPlugin     = errors.New("unknown data plugin")
	ErrEmptySample       = errors.New("cannot sample from an empty population")
)

// InvalidTimeError is returned when a plan is scheduled at a non-finite,
// negative, or past time.
type InvalidTimeError struct {
	Time float64
	Now  float64
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid plan time %v (current time %v)", e.Time, e.Now)
}

func (e *InvalidTimeError) Unwrap() error { return ErrInvalidTime }

// MissingPropertyError is returned by AddEntity when an Explicit property
// of the entity's type was not supplied.
type MissingPropertyError struct {
	EntityType string
	Property   string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("entity type %q missing required property %q", e.EntityType, e.Property)
}

func (e *MissingPropertyError) Unwrap() error { return ErrMissingProperty }

// DuplicatePropertyError is returned by AddEntity when the same property
// is supplied more than once in the initializer list.
type DuplicatePropertyError struct {
	EntityType string
	Property   string
}

func (e *DuplicatePropertyError) Error() string {
	return fmt.Sprintf("entity type %q received duplicate property %q", e.EntityType, e.Property)
}

func (e *DuplicatePropertyError) Unwrap() error { return ErrDuplicateProperty }

// EmptySampleError is returned when a query-driven sample is requested
// from a predicate that currently matches no entities.
type EmptySampleError struct {
	Query string
}

func (e *EmptySampleError) Error() string {
	return fmt.Sprintf("cannot sample: query %q matched no entities", e.Query)
}

func (e *EmptySampleError) Unwrap() error { return ErrEmptySample }

// PropertyNotSetPanic is the value recovered from a panic raised when an
// Explicit property is read before it has ever been set.
type PropertyNotSetPanic struct {
	EntityType string
	Property   string
	EntityID   uint64
}

func (e *PropertyNotSetPanic) Error() string {
	return fmt.Sprintf("property %q not set on %s entity %d", e.Property, e.EntityType, e.EntityID)
}

func (e *PropertyNotSetPanic) Unwrap() error { return ErrPropertyNotSet }

// SetOnDerivedPanic is the value recovered from a panic raised when code
// calls SetProperty on a Derived property.
type SetOnDerivedPanic struct {
	Property string
}

func (e *SetOnDerivedPanic) Error() string {
	return fmt.Sprintf("property %q is derived and cannot be set directly", e.Property)
}

func (e *SetOnDerivedPanic) Unwrap() error { return ErrSetOnDerived }

// InternalPanic guards invariants the registration scheme makes
// unreachable in correct code (unknown stream/plugin slot).
type InternalPanic struct {
	Message string
	Err     error
}

func (e *InternalPanic) Error() string { return "internal: " + e.Message }

func (e *InternalPanic) Unwrap() error { return e.Err }

// PanicUnknownStream raises an InternalPanic wrapping ErrUnknownStream.
func PanicUnknownStream(name string) {
	panic(&InternalPanic{Message: fmt.Sprintf("unknown rng stream %q: %v", name, ErrUnknownStream), Err: ErrUnknownStream})
}

// PanicUnknownPlugin raises an InternalPanic wrapping ErrUnknownPlugin.
func PanicUnknownPlugin(name string) {
	panic(&InternalPanic{Message: fmt.Sprintf("unknown data plugin %q: %v", name, ErrUnknownPlugin), Err: ErrUnknownPlugin})
}
