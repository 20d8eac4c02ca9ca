package resume

import (
	"os"
	"testing"

	"github.com/ahmed-coding/Gravitas-Core/internal/memory"
	"github.com/ahmed-coding/Gravitas-Core/internal/task"
)

func newTestStore(t *testing.T) *memory.Store {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "gravitas-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := memory.NewStore(tmpDir)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBuild_FreshProject(t *testing.T) {
	store := newTestStore(t)
	b := NewBuilder(store)

	pkg, err := b.Build("")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if pkg.CurrentGoal != "" || pkg.TaskState != "" {
		t.Errorf("fresh project should yield empty goal/state: %+v", pkg)
	}
	if pkg.KnownConstraints.SafeToEdit == nil || pkg.KnownConstraints.DoNotTouch == nil {
		t.Error("constraints must be empty lists, not nil")
	}
	if pkg.FailureMemorySummary == nil {
		t.Error("failure memory must be an empty list, not nil")
	}
	if pkg.ProjectRoot == "" {
		t.Error("project root must always be set")
	}
}

func TestBuild_TargetsGivenTask(t *testing.T) {
	store := newTestStore(t)
	b := NewBuilder(store)

	if err := store.UpsertTask("task-1", "migrate db", task.StateExecuting, "", nil); err != nil {
		t.Fatalf("insert task: %v", err)
	}
	if err := store.SaveSnapshot("snap-1", "task-1", nil, []string{"internal/db/"}, []string{"migrations/old/"}, nil); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	if _, err := store.RecordFailure("migration timeout", map[string]any{"task_id": "task-1"}); err != nil {
		t.Fatalf("record failure: %v", err)
	}

	pkg, err := b.Build("task-1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if pkg.CurrentGoal != "migrate db" || pkg.ActiveTaskID != "task-1" {
		t.Errorf("pkg = %+v", pkg)
	}
	if pkg.TaskState != "EXECUTING" {
		t.Errorf("task state = %q", pkg.TaskState)
	}
	if len(pkg.KnownConstraints.SafeToEdit) != 1 || pkg.KnownConstraints.SafeToEdit[0] != "internal/db/" {
		t.Errorf("safe_to_edit = %v", pkg.KnownConstraints.SafeToEdit)
	}
	if len(pkg.FailureMemorySummary) != 1 || pkg.FailureMemorySummary[0].Reason != "migration timeout" {
		t.Errorf("failure memory = %+v", pkg.FailureMemorySummary)
	}
}

func TestBuild_FallsBackToActiveTask(t *testing.T) {
	store := newTestStore(t)
	b := NewBuilder(store)

	if err := store.UpsertTask("task-live", "fix ci", task.StateCoding, "", nil); err != nil {
		t.Fatalf("insert task: %v", err)
	}

	// Unknown target id: fall back to the active task.
	pkg, err := b.Build("task-ghost")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if pkg.ActiveTaskID != "task-live" || pkg.CurrentGoal != "fix ci" {
		t.Errorf("pkg = %+v", pkg)
	}

	// No target id at all: same fallback.
	pkg, err = b.Build("")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if pkg.ActiveTaskID != "task-live" {
		t.Errorf("active task id = %q", pkg.ActiveTaskID)
	}
}

func TestBuild_CanonicalSnapshotFallback(t *testing.T) {
	store := newTestStore(t)
	b := NewBuilder(store)

	if err := store.UpsertTask("task-1", "goal", task.StatePlanning, "", nil); err != nil {
		t.Fatalf("insert task: %v", err)
	}
	if err := store.SaveSnapshot("snap-1", "task-1", nil, []string{"cmd/"}, nil, nil); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	if err := store.SetCanonical("snap-1"); err != nil {
		t.Fatalf("set canonical: %v", err)
	}

	pkg, err := b.Build("task-1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(pkg.KnownConstraints.SafeToEdit) != 1 || pkg.KnownConstraints.SafeToEdit[0] != "cmd/" {
		t.Errorf("safe_to_edit = %v", pkg.KnownConstraints.SafeToEdit)
	}
}
