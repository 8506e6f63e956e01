package modules

import "fmt"

// ValidationError is a locally detected precondition failure. It is raised
// before any network call and never mutates engine state.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NotFoundError marks a referenced step, course or quiz that is absent from
// the current catalog. Callers render an "unavailable" placeholder.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found", e.What) }
