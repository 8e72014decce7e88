package operation

import "time"

// Phase is the lifecycle position of an operation.
type Phase int

const (
	// PhaseIdle means the operation has never been started.
	PhaseIdle Phase = iota

	// PhasePending means the latest invocation has not completed yet.
	PhasePending

	// PhaseSucceeded means the latest invocation completed with a value.
	PhaseSucceeded

	// PhaseFailed means the latest invocation completed with an error.
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the observable state of one operation kind.
// Value is meaningful only in PhaseSucceeded and Message only in PhaseFailed.
type State[T any] struct {
	Phase      Phase
	Value      T
	Message    string
	Generation uint64
}

// Pending reports whether the state is PhasePending.
func (s State[T]) Pending() bool { return s.Phase == PhasePending }

// Succeeded reports whether the state is PhaseSucceeded.
func (s State[T]) Succeeded() bool { return s.Phase == PhaseSucceeded }

// Failed reports whether the state is PhaseFailed.
func (s State[T]) Failed() bool { return s.Phase == PhaseFailed }

// Outcome classifies a finished call for observers.
type Outcome string

const (
	// OutcomeSucceeded is a current completion without error.
	OutcomeSucceeded Outcome = "succeeded"

	// OutcomeFailed is a current completion with an error.
	OutcomeFailed Outcome = "failed"

	// OutcomeStale is a completion discarded by the generation guard.
	OutcomeStale Outcome = "stale"
)

// Completion describes one finished call. It is delivered to observers for
// every call, whether or not it was applied.
type Completion struct {
	Kind       Kind
	Generation uint64
	Outcome    Outcome

	// Message is the normalized failure message, empty on success.
	Message string

	// Stale is true when a later invocation superseded this one, or the
	// machine was detached before the call finished.
	Stale bool

	// Duration is the wall time the call took.
	Duration time.Duration

	// Err is the raw error returned by the call, if any.
	Err error

	// At is the completion time.
	At time.Time
}

// Observer is notified about invocations of a Machine.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	// OperationStarted is called when an invocation starts.
	OperationStarted(kind Kind, generation uint64)

	// OperationCompleted is called when an invocation's call returns.
	OperationCompleted(c Completion)
}
