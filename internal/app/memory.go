package app

import (
	"fmt"

	"github.com/ahmed-coding/Gravitas-Core/internal/memory"
	"github.com/ahmed-coding/Gravitas-Core/types"
)

// GetLastState reports the most recent snapshot and the active task. A
// fresh project is a successful empty baseline, not a failure.
func (a *App) GetLastState() *types.Envelope {
	state, err := a.store.GetLastState()
	if err != nil {
		return storageFailure(err, "Check database path and permissions.")
	}

	if !state.HasSnapshot {
		obs := map[string]any{
			"project_root": state.ProjectRoot,
			"has_snapshot": false,
			"active_task":  state.ActiveTask,
			"message":      "No prior state; fresh session.",
		}
		return types.Success(obs, "Initialize task and take first snapshot.")
	}

	obs := map[string]any{
		"project_root":  state.ProjectRoot,
		"has_snapshot":  true,
		"last_snapshot": state.LastSnapshot,
		"active_task":   state.ActiveTask,
	}
	return types.Success(obs, "Resume or create task; run verification if needed.")
}

// GetCanonicalState reports the last verified snapshot usable for
// rollback, or a successful "none set" baseline.
func (a *App) GetCanonicalState() *types.Envelope {
	snap, updatedAt, err := a.store.Canonical()
	if isNotFound(err) {
		obs := map[string]any{
			"project_root":  a.store.ProjectRoot(),
			"has_canonical": false,
			"message":       "No canonical state set yet.",
		}
		return types.Success(obs, "Complete a verified run to set canonical state.")
	}
	if err != nil {
		return storageFailure(err, "Check database.")
	}

	obs := map[string]any{
		"project_root":         a.store.ProjectRoot(),
		"has_canonical":        true,
		"canonical_snapshot":   snap,
		"canonical_updated_at": updatedAt,
	}
	return types.Success(obs, "Use for rollback or model handover.")
}

// SaveSnapshot persists a context snapshot for a task. A fresh snapshot
// id is generated when none is given.
func (a *App) SaveSnapshot(snapshotID, taskID string, projectMap map[string]any, safeToEdit, doNotTouch []string, metadata map[string]any) *types.Envelope {
	if taskID == "" {
		return codedFailure(types.CodeInvalidInput, "task_id is required", "Provide the owning task id.")
	}
	if snapshotID == "" {
		snapshotID = memory.NewSnapshotID()
	}

	err := a.store.SaveSnapshot(snapshotID, taskID, projectMap, safeToEdit, doNotTouch, metadata)
	if isNotFound(err) {
		return codedFailure(types.CodeTaskNotFound,
			fmt.Sprintf("task not found: %s", taskID),
			"Create the task before saving snapshots for it.")
	}
	if err != nil {
		return storageFailure(err, "Check database.")
	}
	return types.Success(map[string]any{"snapshot_id": snapshotID, "task_id": taskID}, "Proceed.")
}

// SetCanonical advances the canonical pointer to snapshotID.
func (a *App) SetCanonical(snapshotID string) *types.Envelope {
	err := a.store.SetCanonical(snapshotID)
	if isNotFound(err) {
		return codedFailure(types.CodeSnapshotNotFound,
			fmt.Sprintf("snapshot not found: %s", snapshotID),
			"Save a snapshot first, then set it canonical.")
	}
	if err != nil {
		return storageFailure(err, "Check database.")
	}
	return types.Success(map[string]any{"snapshot_id": snapshotID}, "Canonical state set.")
}

// RecordFailure appends a failure to the durable ledger.
func (a *App) RecordFailure(reason string, context map[string]any) *types.Envelope {
	if reason == "" {
		return codedFailure(types.CodeInvalidInput, "reason is required", "Describe what failed.")
	}
	id, err := a.store.RecordFailure(reason, context)
	if err != nil {
		return storageFailure(err, "Retry record_failure or check DB.")
	}
	obs := map[string]any{"failure_id": id, "reason": reason}
	return types.Success(obs, "Avoid repeating this strategy; consider rollback or new approach.")
}

// GetFailureSummary lists recent failures, newest first, optionally
// scoped to one task.
func (a *App) GetFailureSummary(taskID string, limit int) *types.Envelope {
	failures, err := a.store.FailureSummary(taskID, limit)
	if err != nil {
		return storageFailure(err, "Check database.")
	}
	if failures == nil {
		failures = []memory.FailureRecord{}
	}
	obs := map[string]any{"failures": failures, "count": len(failures)}
	return types.Success(obs, "Review recent failures before retrying.")
}

// ResumeTask loads a task with its latest snapshot and recent failures.
func (a *App) ResumeTask(taskID string) *types.Envelope {
	bundle, err := a.store.ResumeTask(taskID)
	if isNotFound(err) {
		return codedFailure(types.CodeTaskNotFound,
			fmt.Sprintf("task not found: %s", taskID),
			"List tasks or create a new one.")
	}
	if err != nil {
		return storageFailure(err, "Check database.")
	}

	obs := map[string]any{
		"task":            bundle.Task,
		"latest_snapshot": bundle.LatestSnapshot,
		"recent_failures": bundle.RecentFailures,
	}
	next := fmt.Sprintf("Resume from state %s; avoid repeating recorded failures.", bundle.Task.State)
	return types.Success(obs, next)
}

// RecordToolUsage logs a successful tool invocation.
func (a *App) RecordToolUsage(toolName string, arguments map[string]any, outcomeSummary, taskID string) *types.Envelope {
	if err := a.store.RecordToolUsage(toolName, arguments, outcomeSummary, taskID); err != nil {
		return storageFailure(err, "Check database.")
	}
	return types.Success(map[string]any{"tool_name": toolName}, "Recorded.")
}
