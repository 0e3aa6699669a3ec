// Package lifecycle holds the primitives shared by the artist lifecycles:
// ordered multi-store write sequences (sagas) and their outcome reporting.
//
// There is no distributed transaction and no compensating rollback. A saga
// stops at the first failed write, leaves earlier writes in place, and
// reports exactly how far it got. There is also no optimistic-concurrency
// guard: two operators racing on the same aggregate both pass the snapshot
// precondition check, and the last write wins attribution.
package lifecycle

import "context"

// Step is one independently-committed write in a saga.
type Step struct {
	Name  string
	Apply func(ctx context.Context) error
}

// Saga is a fixed, explicit sequence of writes executed strictly in order.
type Saga struct {
	Operation string
	Steps     []Step
}

// Outcome classifies how far an operation got.
type Outcome string

const (
	// OutcomeApplied means every step committed.
	OutcomeApplied Outcome = "applied"
	// OutcomeRejected means a precondition failed before any write.
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means the first write failed; nothing committed and the
	// operation is safe to retry as-is.
	OutcomeFailed Outcome = "failed"
	// OutcomePartial means the operation failed after one or more writes
	// committed; the failed step index tells the operator where to resume.
	OutcomePartial Outcome = "partial"
)

// Result reports what a coordinator call did.
type Result struct {
	Operation    string  `json:"operation"`
	Outcome      Outcome `json:"outcome"`
	StepsApplied int     `json:"steps_applied"`
	FailedStep   string  `json:"failed_step,omitempty"`
	Err          error   `json:"-"`
}

// Rejected builds the result for a precondition failure.
func Rejected(operation string, err error) Result {
	return Result{Operation: operation, Outcome: OutcomeRejected, Err: err}
}

// Run executes the saga's steps in order, stopping at the first failure.
func Run(ctx context.Context, saga *Saga) Result {
	for i, step := range saga.Steps {
		if err := step.Apply(ctx); err != nil {
			stepErr := &StepError{Step: i, Name: step.Name, Err: err}
			outcome := OutcomePartial
			if i == 0 {
				outcome = OutcomeFailed
			}
			return Result{
				Operation:    saga.Operation,
				Outcome:      outcome,
				StepsApplied: i,
				FailedStep:   step.Name,
				Err:          stepErr,
			}
		}
	}
	return Result{
		Operation:    saga.Operation,
		Outcome:      OutcomeApplied,
		StepsApplied: len(saga.Steps),
	}
}
