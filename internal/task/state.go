// Package task defines the task lifecycle states shared by the memory
// store and the controller.
package task

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidState marks a state name outside the enumerated set, or a
// transition rejected by strict checking.
var ErrInvalidState = errors.New("invalid state")

// State represents the lifecycle state of a task.
type State string

const (
	StatePlanning    State = "PLANNING"     // Initial state, plan not yet executed
	StateCoding      State = "CODING"       // Agent is applying code changes
	StateExecuting   State = "EXECUTING"    // Agent is running commands/tests
	StateVerifying   State = "VERIFYING"    // Work done, verification in progress
	StateFailedRetry State = "FAILED_RETRY" // A step failed, retry budget remains
	StateRollback    State = "ROLLBACK"     // Mandatory rollback to canonical state
	StateCompleted   State = "COMPLETED"    // Successfully verified
)

// AllStates lists every valid state in declaration order.
var AllStates = []State{
	StatePlanning,
	StateCoding,
	StateExecuting,
	StateVerifying,
	StateFailedRetry,
	StateRollback,
	StateCompleted,
}

// IsTerminal reports whether the state ends a task's lifecycle.
// COMPLETED and ROLLBACK are terminal: no further automatic transition
// is implied, though a new task may begin afterwards.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateRollback
}

// Valid reports whether s is one of the enumerated states.
func (s State) Valid() bool {
	for _, v := range AllStates {
		if s == v {
			return true
		}
	}
	return false
}

// ValidStateNames returns the state names for error messages.
func ValidStateNames() []string {
	names := make([]string, len(AllStates))
	for i, s := range AllStates {
		names[i] = string(s)
	}
	return names
}

// Parse converts a raw state name into a State.
func Parse(raw string) (State, error) {
	s := State(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q (valid: %s)", ErrInvalidState, raw, strings.Join(ValidStateNames(), ", "))
	}
	return s, nil
}

// transitions is the directed adjacency table of the nominal task flow.
// It is only enforced when strict transition checking is enabled; the
// default mode accepts any valid state from any other, matching the
// permissive behavior agents rely on for out-of-order recovery.
var transitions = map[State][]State{
	StatePlanning:    {StateCoding, StateExecuting, StateFailedRetry, StateRollback, StateCompleted},
	StateCoding:      {StateExecuting, StateVerifying, StateFailedRetry, StateRollback},
	StateExecuting:   {StateVerifying, StateCoding, StateFailedRetry, StateRollback},
	StateVerifying:   {StateCompleted, StateCoding, StateExecuting, StateFailedRetry, StateRollback},
	StateFailedRetry: {StatePlanning, StateCoding, StateExecuting, StateVerifying, StateRollback},
	StateRollback:    {StatePlanning},
	StateCompleted:   {},
}

// CanTransition reports whether from -> to is part of the nominal flow.
// Self-transitions are always allowed so that re-entering a state (e.g.
// repeated FAILED_RETRY) is not an error.
func CanTransition(from, to State) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
