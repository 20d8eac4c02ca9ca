package memory

import (
	"errors"
	"fmt"
)

// LastState is the quick orientation view: the most recent snapshot in
// the store plus the task currently in flight. Either half may be nil.
type LastState struct {
	ProjectRoot  string           `json:"project_root"`
	HasSnapshot  bool             `json:"has_snapshot"`
	LastSnapshot *ContextSnapshot `json:"last_snapshot,omitempty"`
	ActiveTask   *TaskRecord      `json:"active_task,omitempty"`
}

// ResumeState is the full warm-start bundle for one task: the task
// record, its newest snapshot, and its recent failure history.
type ResumeState struct {
	Task           *TaskRecord      `json:"task"`
	LatestSnapshot *ContextSnapshot `json:"latest_snapshot,omitempty"`
	RecentFailures []FailureRecord  `json:"recent_failures"`
}

// maxResumeFailures caps the failure history attached to a resume
// bundle so a long-suffering task cannot flood the context window.
const maxResumeFailures = 20

// GetLastState reports the latest snapshot and the active task. A fresh
// store yields a valid empty baseline rather than an error.
func (s *Store) GetLastState() (*LastState, error) {
	state := &LastState{ProjectRoot: s.root}

	snap, err := s.LatestSnapshot()
	if err == nil {
		state.HasSnapshot = true
		state.LastSnapshot = snap
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	active, err := s.ActiveTask()
	if err == nil {
		state.ActiveTask = active
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return state, nil
}

// ResumeTask assembles everything needed to pick a task back up after a
// crash or restart. Fails with ErrNotFound when the task is unknown; a
// missing snapshot or empty failure history is not an error.
func (s *Store) ResumeTask(taskID string) (*ResumeState, error) {
	t, err := s.GetTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("resume task %s: %w", taskID, err)
	}

	state := &ResumeState{Task: t, RecentFailures: []FailureRecord{}}

	snap, err := s.LatestSnapshotForTask(taskID)
	if err == nil {
		state.LatestSnapshot = snap
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	failures, err := s.FailureSummary(taskID, maxResumeFailures)
	if err != nil {
		return nil, err
	}
	if failures != nil {
		state.RecentFailures = failures
	}

	return state, nil
}
