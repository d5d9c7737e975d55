package game

import "errors"

// Action is an opaque, domain-defined decision. Concrete actions must be
// comparable with == so the engine can tell tried actions apart.
type Action any

// State is the capability contract a decision domain implements to be
// searchable. States are immutable - operations on State always return a
// new value, never mutate in place. A State must be evaluable even when it
// is not terminal, since rollouts can be cut off at a depth cap.
type State interface {
	// Reset returns a fresh initial state for the domain. The searcher
	// never calls it; callers use it to start a run.
	Reset() State

	// NextState applies action and returns the successor state together
	// with the transition reward. Returns ErrInvalidAction when action is
	// not legal for this state.
	NextState(action Action) (State, float64, error)

	// Evaluate scores this state as a single real value.
	Evaluate() float64

	// PossibleActions returns the legal actions in a stable order. An
	// empty slice means a dead end.
	PossibleActions() []Action

	// IsTerminated reports whether this state ends the decision process.
	IsTerminated() bool
}

// ErrInvalidAction is returned by NextState for an action that is not
// legal in the current state.
var ErrInvalidAction = errors.New("action is not legal for this state")
