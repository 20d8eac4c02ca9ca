// Package controller is the deterministic control plane for agent tasks:
// state transitions, bounded retries, and forced rollbacks. It owns the
// live retry counters for the task in flight and mirrors every decision
// into durable storage so a restarted process resumes with the exact
// retry budget it had before the crash.
package controller

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ahmed-coding/Gravitas-Core/internal/memory"
	"github.com/ahmed-coding/Gravitas-Core/internal/task"
)

// TaskContext is the live, process-local view of the task currently
// being worked on. Exactly one exists per controller at a time.
type TaskContext struct {
	TaskID                string
	Goal                  string
	State                 task.State
	StepRetryCount        int
	LastFailureReason     string
	IdenticalFailureCount int
	Metadata              map[string]any
}

// Controller applies the retry-rollback policy on top of the store.
type Controller struct {
	store  *memory.Store
	policy RetryPolicy
	// strict rejects transitions outside the adjacency table instead of
	// accepting any target state. Off by default for agent flexibility.
	strict bool

	mu  sync.Mutex
	ctx *TaskContext
}

// StepFailureResult describes the escalation decision for one failure.
type StepFailureResult struct {
	TaskID                string     `json:"task_id"`
	State                 task.State `json:"state"`
	Reason                string     `json:"reason,omitempty"`
	RetryCount            int        `json:"retry_count"`
	IdenticalFailureCount int        `json:"identical_failure_count"`
	NextAction            string     `json:"next_recommended_action"`
	FailureID             string     `json:"failure_id"`
}

// StateReport is the controller's answer to "where is this task now".
type StateReport struct {
	TaskID                string      `json:"task_id"`
	State                 task.State  `json:"state"`
	Goal                  string      `json:"goal"`
	Policy                RetryPolicy `json:"policy"`
	StepRetryCount        int         `json:"step_retry_count"`
	IdenticalFailureCount int         `json:"identical_failure_count"`
	NextAction            string      `json:"next_recommended_action"`
}

// New builds a controller over the given store. An invalid policy is an
// error rather than a silent fallback.
func New(store *memory.Store, policy RetryPolicy, strict bool) (*Controller, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Controller{store: store, policy: policy, strict: strict}, nil
}

// CreateTask persists a new task in PLANNING and makes it the live
// context. A fresh id is generated when none is given.
func (c *Controller) CreateTask(goal, taskID string) (*TaskContext, error) {
	if goal == "" {
		return nil, fmt.Errorf("goal is required")
	}
	if taskID == "" {
		taskID = memory.NewTaskID()
	}
	if err := c.store.UpsertTask(taskID, goal, task.StatePlanning, "", nil); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx = &TaskContext{TaskID: taskID, Goal: goal, State: task.StatePlanning}
	ctx := *c.ctx
	return &ctx, nil
}

// Transition moves the task to newState. The target is validated against
// the set of legal state names; in strict mode it must additionally be
// reachable from the task's current state. A terminal target resets the
// retry counters, in memory and durably.
func (c *Controller) Transition(taskID, newState string) (task.State, error) {
	if taskID == "" {
		return "", fmt.Errorf("task id is required")
	}
	next, err := task.Parse(newState)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Carry the existing goal forward; a transition never rewrites it.
	// Only a genuinely unknown task proceeds with an empty goal; a
	// storage fault must fail the transition rather than overwrite the
	// stored goal.
	goal := ""
	current := task.State("")
	if c.ctx != nil && c.ctx.TaskID == taskID {
		goal = c.ctx.Goal
		current = c.ctx.State
	} else if rec, err := c.store.GetTask(taskID); err == nil {
		goal = rec.Goal
		current = rec.State
	} else if !errors.Is(err, memory.ErrNotFound) {
		return "", err
	}

	if c.strict && current != "" && !task.CanTransition(current, next) {
		return "", fmt.Errorf("%w: transition %s -> %s not allowed", task.ErrInvalidState, current, next)
	}

	if err := c.store.UpsertTask(taskID, goal, next, "", nil); err != nil {
		return "", err
	}

	if c.ctx != nil && c.ctx.TaskID == taskID {
		c.ctx.State = next
		if next.IsTerminal() {
			c.ctx.StepRetryCount = 0
			c.ctx.IdenticalFailureCount = 0
			c.ctx.LastFailureReason = ""
		}
	}
	if next.IsTerminal() {
		if err := c.store.SaveRetryState(taskID, 0, "", 0); err != nil {
			return "", err
		}
	}
	return next, nil
}

// RecordStepFailure runs the escalation algorithm for one failed step.
//
// The identical-failure check takes priority over the retry budget: a
// repeat of the previous reason at the threshold forces ROLLBACK even
// with retries left. Every branch durably writes the resulting state
// and counters, and appends a failure record for the audit trail.
func (c *Controller) RecordStepFailure(taskID, reason string) (*StepFailureResult, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task id is required")
	}
	if reason == "" {
		return nil, fmt.Errorf("reason is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx == nil || c.ctx.TaskID != taskID {
		c.ctx = c.hydrateContext(taskID)
	}
	ctx := c.ctx

	ctx.StepRetryCount++
	if reason == ctx.LastFailureReason {
		ctx.IdenticalFailureCount++
	} else {
		ctx.LastFailureReason = reason
		ctx.IdenticalFailureCount = 1
	}

	var newState task.State
	var note, action string
	switch {
	case ctx.IdenticalFailureCount >= c.policy.IdenticalFailureThreshold:
		newState = task.StateRollback
		note = "Repeated identical failure; mandatory rollback."
		action = "Perform rollback using canonical state; then re-plan."
	case ctx.StepRetryCount >= c.policy.MaxRetriesPerStep:
		newState = task.StateFailedRetry
		note = "Max retries per step exceeded."
		action = "Escalate or rollback; do not retry same step again."
	default:
		newState = task.StateFailedRetry
		action = "Retry with a different approach; avoid repeating same failure."
	}

	if err := c.store.UpsertTask(taskID, ctx.Goal, newState, "", nil); err != nil {
		return nil, err
	}
	if err := c.store.SaveRetryState(taskID, ctx.StepRetryCount, ctx.LastFailureReason, ctx.IdenticalFailureCount); err != nil {
		return nil, err
	}
	failureID, err := c.store.RecordFailure(reason, map[string]any{
		"task_id":     taskID,
		"retry_count": ctx.StepRetryCount,
	})
	if err != nil {
		return nil, err
	}
	ctx.State = newState

	return &StepFailureResult{
		TaskID:                taskID,
		State:                 newState,
		Reason:                note,
		RetryCount:            ctx.StepRetryCount,
		IdenticalFailureCount: ctx.IdenticalFailureCount,
		NextAction:            action,
		FailureID:             failureID,
	}, nil
}

// hydrateContext rebuilds the live context for taskID from the durable
// counters, so escalation picks up exactly where it left off before a
// restart. An unknown task gets a fresh context in FAILED_RETRY.
func (c *Controller) hydrateContext(taskID string) *TaskContext {
	rec, err := c.store.GetTask(taskID)
	if err != nil {
		return &TaskContext{TaskID: taskID, State: task.StateFailedRetry}
	}
	return &TaskContext{
		TaskID:                rec.ID,
		Goal:                  rec.Goal,
		State:                 rec.State,
		StepRetryCount:        rec.StepRetryCount,
		LastFailureReason:     rec.LastFailureReason,
		IdenticalFailureCount: rec.IdenticalFailureCount,
		Metadata:              rec.Metadata,
	}
}

// GetState reports the persisted state of a task along with the active
// policy and the recommended next action. Fails with memory.ErrNotFound
// for an unknown task.
func (c *Controller) GetState(taskID string) (*StateReport, error) {
	rec, err := c.store.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	return &StateReport{
		TaskID:                rec.ID,
		State:                 rec.State,
		Goal:                  rec.Goal,
		Policy:                c.policy,
		StepRetryCount:        rec.StepRetryCount,
		IdenticalFailureCount: rec.IdenticalFailureCount,
		NextAction:            NextActionForState(rec.State),
	}, nil
}

// IsComplete reports whether the task has reached a terminal state.
func (c *Controller) IsComplete(taskID string) (bool, error) {
	rec, err := c.store.GetTask(taskID)
	if err != nil {
		return false, err
	}
	return rec.State.IsTerminal(), nil
}
