package services

import "fmt"

// ResolutionError means a named routine/workout could not be matched for an
// operation that must not create it (deletes). Surfaced to the user as a
// "not found" message.
type ResolutionError struct {
	Kind string // "routine" or "workout"
	Name string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// ValidationError carries a user-facing message about a payload that cannot
// be dispatched (missing names, no valid sets).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// PersistenceError wraps a failed store read/write. Callers must not issue
// dependent writes after one.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
