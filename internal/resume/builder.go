// Package resume assembles the handover bundle a fresh model instance
// needs to pick up work mid-task: the goal, the task state, the edit
// constraints from the best-known snapshot, and the recent failure
// history. Pure read/compose; nothing here writes to the store.
package resume

import (
	"errors"

	"github.com/ahmed-coding/Gravitas-Core/internal/memory"
)

// maxFailures caps the failure memory carried in a package.
const maxFailures = 30

// Constraints are the edit boundaries from the resolved snapshot.
type Constraints struct {
	SafeToEdit []string `json:"safe_to_edit"`
	DoNotTouch []string `json:"do_not_touch"`
}

// FailureMemory is the condensed view of one past failure.
type FailureMemory struct {
	Reason  string         `json:"reason"`
	Context map[string]any `json:"context"`
}

// Package is the handover bundle. Always well-formed: every field is
// populated with an empty default rather than omitted, so a fresh
// project with no history still yields a usable package.
type Package struct {
	CurrentGoal          string          `json:"current_goal"`
	ActiveTaskID         string          `json:"active_task_id"`
	TaskState            string          `json:"task_state"`
	KnownConstraints     Constraints     `json:"known_constraints"`
	FailureMemorySummary []FailureMemory `json:"failure_memory_summary"`
	ProjectRoot          string          `json:"project_root"`
}

// Builder composes resume packages from a store.
type Builder struct {
	store *memory.Store
}

// NewBuilder returns a Builder over the given store.
func NewBuilder(store *memory.Store) *Builder {
	return &Builder{store: store}
}

// Build assembles the package. With a taskID it targets that task,
// falling back to the active task when the id is unknown; without one
// it targets the active task. The snapshot is the newest in the store,
// falling back to the canonical snapshot.
func (b *Builder) Build(taskID string) (*Package, error) {
	pkg := &Package{
		ActiveTaskID: taskID,
		KnownConstraints: Constraints{
			SafeToEdit: []string{},
			DoNotTouch: []string{},
		},
		FailureMemorySummary: []FailureMemory{},
		ProjectRoot:          b.store.ProjectRoot(),
	}

	last, err := b.store.GetLastState()
	if err != nil {
		return nil, err
	}

	var target *memory.TaskRecord
	if taskID != "" {
		if rec, err := b.store.GetTask(taskID); err == nil {
			target = rec
		} else if !errors.Is(err, memory.ErrNotFound) {
			return nil, err
		}
	}
	if target == nil {
		target = last.ActiveTask
	}
	if target != nil {
		pkg.CurrentGoal = target.Goal
		pkg.ActiveTaskID = target.ID
		pkg.TaskState = string(target.State)
	}

	snapshot := last.LastSnapshot
	if snapshot == nil {
		if canon, _, err := b.store.Canonical(); err == nil {
			snapshot = canon
		} else if !errors.Is(err, memory.ErrNotFound) {
			return nil, err
		}
	}
	if snapshot != nil {
		if snapshot.SafeToEdit != nil {
			pkg.KnownConstraints.SafeToEdit = snapshot.SafeToEdit
		}
		if snapshot.DoNotTouch != nil {
			pkg.KnownConstraints.DoNotTouch = snapshot.DoNotTouch
		}
	}

	failures, err := b.store.FailureSummary(taskID, maxFailures)
	if err != nil {
		return nil, err
	}
	for _, f := range failures {
		pkg.FailureMemorySummary = append(pkg.FailureMemorySummary, FailureMemory{
			Reason:  f.Reason,
			Context: f.Context,
		})
	}

	return pkg, nil
}
