package controller

import "github.com/ahmed-coding/Gravitas-Core/internal/task"

var nextActions = map[task.State]string{
	task.StatePlanning:    "Complete plan; transition to CODING.",
	task.StateCoding:      "Apply code changes; transition to EXECUTING.",
	task.StateExecuting:   "Run commands/tests; transition to VERIFYING.",
	task.StateVerifying:   "Verify via terminal/browser; then COMPLETED or retry.",
	task.StateFailedRetry: "Retry with different approach or escalate.",
	task.StateRollback:    "Restore from canonical state; re-plan.",
	task.StateCompleted:   "Task done; no further action.",
}

// NextActionForState maps a task state to the guidance the agent should
// follow next. Pure lookup; every operation that reports a state uses it.
func NextActionForState(state task.State) string {
	if action, ok := nextActions[state]; ok {
		return action
	}
	return "Check state and proceed."
}
