package app

import (
	"errors"
	"fmt"

	ctrl "github.com/ahmed-coding/Gravitas-Core/internal/controller"
	"github.com/ahmed-coding/Gravitas-Core/internal/task"
	"github.com/ahmed-coding/Gravitas-Core/types"
)

// CreateTask starts a new task in PLANNING and makes it the live one.
func (a *App) CreateTask(goal, taskID string) *types.Envelope {
	taskCtx, err := a.controller.CreateTask(goal, taskID)
	if err != nil {
		if goal == "" {
			return codedFailure(types.CodeInvalidInput, "goal is required", "State what the task should achieve.")
		}
		return storageFailure(err, "Check database.")
	}

	obs := map[string]any{
		"task_id": taskCtx.TaskID,
		"goal":    taskCtx.Goal,
		"state":   taskCtx.State,
	}
	return types.Success(obs, "Proceed with planning; then transition to CODING.")
}

// Transition moves a task to a new state.
func (a *App) Transition(taskID, newState string) *types.Envelope {
	state, err := a.controller.Transition(taskID, newState)
	if errors.Is(err, task.ErrInvalidState) {
		return codedFailure(types.CodeInvalidState, err.Error(), "Use one of the required states.")
	}
	if err != nil {
		if taskID == "" {
			return codedFailure(types.CodeInvalidInput, "task_id is required", "Identify the task to transition.")
		}
		return storageFailure(err, "Check database.")
	}

	obs := map[string]any{"task_id": taskID, "state": state}
	return types.Success(obs, ctrl.NextActionForState(state))
}

// RecordStepFailure runs the retry-rollback escalation for a failed
// step. The envelope reports success: the failure was recorded and a
// deliberate state change made; the guidance tells the agent what to
// do differently.
func (a *App) RecordStepFailure(taskID, reason string) *types.Envelope {
	result, err := a.controller.RecordStepFailure(taskID, reason)
	if err != nil {
		if taskID == "" || reason == "" {
			return codedFailure(types.CodeInvalidInput, "task_id and reason are required", "Identify the task and what failed.")
		}
		return storageFailure(err, "Check database.")
	}

	obs := map[string]any{
		"task_id":     result.TaskID,
		"state":       result.State,
		"retry_count": result.RetryCount,
	}
	if result.Reason != "" {
		obs["reason"] = result.Reason
	}
	return types.Success(obs, result.NextAction)
}

// GetTaskState reports a task's persisted state, policy, and guidance.
func (a *App) GetTaskState(taskID string) *types.Envelope {
	report, err := a.controller.GetState(taskID)
	if isNotFound(err) {
		return codedFailure(types.CodeTaskNotFound,
			fmt.Sprintf("task not found: %s", taskID),
			"Create or list tasks.")
	}
	if err != nil {
		return storageFailure(err, "Check database.")
	}

	obs := map[string]any{
		"task_id":                 report.TaskID,
		"state":                   report.State,
		"goal":                    report.Goal,
		"policy":                  report.Policy,
		"retry_count":             report.StepRetryCount,
		"identical_failure_count": report.IdenticalFailureCount,
	}
	return types.Success(obs, report.NextAction)
}
