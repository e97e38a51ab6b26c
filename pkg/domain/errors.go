package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found or has expired.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoSession is returned when a singleton is requested outside of a session context.
var ErrNoSession = errors.New("no session in context")

// ErrSessionInvalidated is returned when an operation targets a destroyed session.
var ErrSessionInvalidated = errors.New("session invalidated")

// ErrConstruction is the category shared by every singleton construction failure.
// Use errors.Is(err, ErrConstruction) to detect it.
var ErrConstruction = errors.New("session singleton construction failed")

// ErrCyclicConstruction is returned when a factory requests its own type again
// while it is still being constructed.
var ErrCyclicConstruction = errors.New("cyclic session singleton construction")

// ErrTypeMismatch is returned when a cached value does not have the requested type.
var ErrTypeMismatch = errors.New("session singleton type mismatch")

// ConstructionCause classifies why a singleton could not be built.
type ConstructionCause string

const (
	CauseNoFactory   ConstructionCause = "no factory"
	CauseFactoryErr  ConstructionCause = "factory error"
	CausePanic       ConstructionCause = "factory panic"
	CauseNilInstance ConstructionCause = "nil instance"
	CauseCycle       ConstructionCause = "cycle"
)

// ConstructionError reports a failed attempt to build a session singleton.
// It is a configuration defect: callers should not retry.
type ConstructionError struct {
	TypeName string
	Cause    ConstructionCause
	Err      error
}

func (e *ConstructionError) Error() string {
	var hint string
	switch e.Cause {
	case CauseNoFactory:
		hint = "probably there is no factory for this type"
	case CauseFactoryErr:
		hint = "the factory returned an error"
	case CausePanic:
		hint = "the factory panicked"
	case CauseNilInstance:
		hint = "the factory returned a nil instance"
	case CauseCycle:
		hint = "the factory requested its own type while being constructed"
	default:
		hint = "unable to create an instance"
	}
	msg := fmt.Sprintf("could not create the session singleton instance of '%s': %s", e.TypeName, hint)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *ConstructionError) Unwrap() error { return e.Err }

// Is makes every ConstructionError match ErrConstruction.
func (e *ConstructionError) Is(target error) bool { return target == ErrConstruction }
