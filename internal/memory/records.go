package memory

import (
	"time"

	"github.com/ahmed-coding/Gravitas-Core/internal/task"
)

// TaskRecord is a single task or subtask in the ledger.
type TaskRecord struct {
	ID          string         `json:"id"`
	ParentID    string         `json:"parent_id,omitempty"`
	Goal        string         `json:"goal"`
	State       task.State     `json:"state"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Metadata    map[string]any `json:"metadata"`

	// Durable retry state. Persisted alongside the task so a restarted
	// process reconstructs exact escalation counters via ResumeTask
	// instead of silently resetting them to zero.
	StepRetryCount        int    `json:"step_retry_count"`
	LastFailureReason     string `json:"last_failure_reason,omitempty"`
	IdenticalFailureCount int    `json:"identical_failure_count"`
}

// ContextSnapshot is an immutable point-in-time record of project
// structure and edit constraints, owned by exactly one task.
type ContextSnapshot struct {
	ID         string         `json:"id"`
	TaskID     string         `json:"task_id"`
	CreatedAt  time.Time      `json:"created_at"`
	ProjectMap map[string]any `json:"project_map"`
	SafeToEdit []string       `json:"safe_to_edit"`
	DoNotTouch []string       `json:"do_not_touch"`
	Metadata   map[string]any `json:"metadata"`
}

// FailureRecord is an append-only record of a failed strategy or command.
type FailureRecord struct {
	ID        string         `json:"id"`
	Reason    string         `json:"reason"`
	Context   map[string]any `json:"context"`
	CreatedAt time.Time      `json:"created_at"`
	TaskID    string         `json:"task_id,omitempty"`
}

// ToolUsageRecord is append-only telemetry of a successful tool
// invocation. Purely diagnostic; never read by control-flow logic.
type ToolUsageRecord struct {
	ID             string         `json:"id"`
	ToolName       string         `json:"tool_name"`
	Arguments      map[string]any `json:"arguments"`
	OutcomeSummary string         `json:"outcome_summary"`
	CreatedAt      time.Time      `json:"created_at"`
	TaskID         string         `json:"task_id,omitempty"`
}
