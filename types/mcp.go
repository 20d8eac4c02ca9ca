/*
Copyright © 2026 Ahmed Coding
*/
package types

// Parameter types for MCP tool calls. The mcp tags become the tool
// input schema descriptions shown to the calling model.

// RecordFailureParams for record_failure
type RecordFailureParams struct {
	Reason  string         `json:"reason" mcp:"Short description of what failed (required)"`
	Context map[string]any `json:"context,omitempty" mcp:"Opaque context map; may include task_id to associate the failure with a task"`
}

// ResumeTaskParams for resume_task
type ResumeTaskParams struct {
	TaskID string `json:"task_id" mcp:"ID of the task to resume (required)"`
}

// FailureSummaryParams for get_failure_summary
type FailureSummaryParams struct {
	TaskID string `json:"task_id,omitempty" mcp:"Restrict to one task; all tasks when omitted"`
	Limit  int    `json:"limit,omitempty" mcp:"Maximum number of failures to return (default 50)"`
}

// SaveSnapshotParams for memory_save_snapshot
type SaveSnapshotParams struct {
	SnapshotID string         `json:"snapshot_id,omitempty" mcp:"Snapshot ID; generated when omitted"`
	TaskID     string         `json:"task_id" mcp:"Owning task ID (required)"`
	ProjectMap map[string]any `json:"project_map,omitempty" mcp:"Project structure map"`
	SafeToEdit []string       `json:"safe_to_edit,omitempty" mcp:"Paths the agent may modify"`
	DoNotTouch []string       `json:"do_not_touch,omitempty" mcp:"Paths the agent must not modify"`
	Metadata   map[string]any `json:"metadata,omitempty" mcp:"Optional snapshot metadata"`
}

// SetCanonicalParams for memory_set_canonical
type SetCanonicalParams struct {
	SnapshotID string `json:"snapshot_id" mcp:"Snapshot ID to mark as the verified canonical state (required)"`
}

// RecordToolUsageParams for record_tool_usage
type RecordToolUsageParams struct {
	ToolName       string         `json:"tool_name" mcp:"Name of the tool that was invoked (required)"`
	Arguments      map[string]any `json:"arguments,omitempty" mcp:"Arguments the tool was invoked with"`
	OutcomeSummary string         `json:"outcome_summary,omitempty" mcp:"Short summary of the outcome"`
	TaskID         string         `json:"task_id,omitempty" mcp:"Task the invocation belongs to"`
}

// CreateTaskParams for controller_create_task
type CreateTaskParams struct {
	Goal   string `json:"goal" mcp:"What the task should achieve (required)"`
	TaskID string `json:"task_id,omitempty" mcp:"Task ID; generated when omitted"`
}

// TransitionParams for controller_transition
type TransitionParams struct {
	TaskID   string `json:"task_id" mcp:"Task to transition (required)"`
	NewState string `json:"new_state" mcp:"Target state: PLANNING, CODING, EXECUTING, VERIFYING, FAILED_RETRY, ROLLBACK, COMPLETED (required)"`
}

// StepFailureParams for controller_record_step_failure
type StepFailureParams struct {
	TaskID string `json:"task_id" mcp:"Task whose step failed (required)"`
	Reason string `json:"reason" mcp:"Short failure reason; identical reasons escalate to rollback (required)"`
}

// GetStateParams for controller_get_state
type GetStateParams struct {
	TaskID string `json:"task_id" mcp:"Task to inspect (required)"`
}

// ResumePackageParams for get_model_resume_package
type ResumePackageParams struct {
	TaskID string `json:"task_id,omitempty" mcp:"Target task; falls back to the active task when omitted"`
}

// EmptyParams for tools that take no arguments
type EmptyParams struct{}
