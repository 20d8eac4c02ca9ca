package app

import "github.com/ahmed-coding/Gravitas-Core/types"

// BuildResumePackage assembles the handover bundle for a model swap,
// editor restart, or crash recovery. Always well-formed, even on a
// completely fresh project.
func (a *App) BuildResumePackage(taskID string) *types.Envelope {
	pkg, err := a.builder.Build(taskID)
	if err != nil {
		return storageFailure(err, "Check database.")
	}

	obs := map[string]any{
		"current_goal":           pkg.CurrentGoal,
		"active_task_id":         pkg.ActiveTaskID,
		"task_state":             pkg.TaskState,
		"known_constraints":      pkg.KnownConstraints,
		"failure_memory_summary": pkg.FailureMemorySummary,
		"project_root":           pkg.ProjectRoot,
	}
	return types.Success(obs, "Resume task from state; avoid repeating failures; respect safe_to_edit and do_not_touch.")
}
