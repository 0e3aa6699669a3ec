package lifecycle

import (
	"fmt"

	"github.com/pkg/errors"
)

// Precondition failures, detected against a just-read snapshot before any
// write is issued. They never leave side effects behind.
var (
	ErrNotFound          = errors.New("aggregate not found")
	ErrInvalidTransition = errors.New("status does not allow this transition")
	ErrValidation        = errors.New("invalid input")
)

// StepError reports a store write that failed mid-saga. Writes that already
// committed are left standing; recovery is an operator re-running the
// remaining steps or repairing the aggregate by hand.
type StepError struct {
	Step int    // zero-based index of the failed step
	Name string // step name, e.g. "profile.flags"
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Step, e.Name, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// IsPrecondition reports whether err is one of the before-any-write failures.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrValidation)
}
