package controller

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/ahmed-coding/Gravitas-Core/internal/memory"
	"github.com/ahmed-coding/Gravitas-Core/internal/task"
)

func newTestController(t *testing.T, policy RetryPolicy, strict bool) (*Controller, *memory.Store) {
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

	c, err := New(store, policy, strict)
	if err != nil {
		t.Fatalf("create controller: %v", err)
	}
	return c, store
}

func TestNew_RejectsInvalidPolicy(t *testing.T) {
	c, _ := newTestController(t, DefaultPolicy(), false)

	store := c.store
	if _, err := New(store, RetryPolicy{MaxRetriesPerStep: 0, IdenticalFailureThreshold: 2}, false); err == nil {
		t.Error("expected error for zero retry budget")
	}
	if _, err := New(store, RetryPolicy{MaxRetriesPerStep: 3, IdenticalFailureThreshold: 0}, false); err == nil {
		t.Error("expected error for zero identical-failure threshold")
	}
}

func TestCreateTask_StartsInPlanning(t *testing.T) {
	c, store := newTestController(t, DefaultPolicy(), false)

	ctx, err := c.CreateTask("add auth", "")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if ctx.TaskID == "" {
		t.Fatal("expected generated task id")
	}
	if ctx.State != task.StatePlanning {
		t.Errorf("state = %s, want PLANNING", ctx.State)
	}

	rec, err := store.GetTask(ctx.TaskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if rec.State != task.StatePlanning || rec.Goal != "add auth" {
		t.Errorf("persisted task = %+v", rec)
	}

	if _, err := c.CreateTask("", ""); err == nil {
		t.Error("expected error for empty goal")
	}
}

func TestTransition_RejectsUnknownState(t *testing.T) {
	c, _ := newTestController(t, DefaultPolicy(), false)

	ctx, err := c.CreateTask("goal", "")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	_, err = c.Transition(ctx.TaskID, "SHIPPING")
	if err == nil {
		t.Fatal("expected error for unknown state")
	}
	if !strings.Contains(err.Error(), "PLANNING") {
		t.Errorf("error should list valid states, got: %v", err)
	}
}

func TestTransition_PermissiveByDefault(t *testing.T) {
	c, store := newTestController(t, DefaultPolicy(), false)

	ctx, err := c.CreateTask("goal", "task-p")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	// PLANNING -> VERIFYING skips the graph; permissive mode allows it.
	state, err := c.Transition(ctx.TaskID, "VERIFYING")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if state != task.StateVerifying {
		t.Errorf("state = %s", state)
	}

	rec, err := store.GetTask("task-p")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if rec.Goal != "goal" {
		t.Errorf("transition must not rewrite the goal, got %q", rec.Goal)
	}
}

func TestTransition_StrictMode(t *testing.T) {
	c, _ := newTestController(t, DefaultPolicy(), true)

	ctx, err := c.CreateTask("goal", "")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := c.Transition(ctx.TaskID, "VERIFYING"); err == nil {
		t.Error("strict mode should reject PLANNING -> VERIFYING")
	}
	if _, err := c.Transition(ctx.TaskID, "CODING"); err != nil {
		t.Errorf("strict mode should allow PLANNING -> CODING: %v", err)
	}
}

func TestTransition_StorageErrorFailsTransition(t *testing.T) {
	c, store := newTestController(t, DefaultPolicy(), false)

	if err := store.UpsertTask("task-1", "keep this goal", task.StateCoding, "", nil); err != nil {
		t.Fatalf("insert task: %v", err)
	}
	// No live context for task-1, so Transition must read it back. A
	// failing read is a storage fault, not an unknown task, and must
	// abort the transition instead of upserting an empty goal.
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	_, err := c.Transition("task-1", "EXECUTING")
	if err == nil {
		t.Fatal("expected storage error to fail the transition")
	}
	if errors.Is(err, memory.ErrNotFound) || errors.Is(err, task.ErrInvalidState) {
		t.Errorf("err = %v, want a raw storage error", err)
	}
}

func TestTransition_TerminalResetsCounters(t *testing.T) {
	c, store := newTestController(t, DefaultPolicy(), false)

	ctx, err := c.CreateTask("goal", "task-r")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := c.RecordStepFailure(ctx.TaskID, "tests failed"); err != nil {
		t.Fatalf("record failure: %v", err)
	}

	rec, err := store.GetTask("task-r")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if rec.StepRetryCount != 1 {
		t.Fatalf("retry count = %d, want 1", rec.StepRetryCount)
	}

	if _, err := c.Transition("task-r", "COMPLETED"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	rec, err = store.GetTask("task-r")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if rec.StepRetryCount != 0 || rec.IdenticalFailureCount != 0 || rec.LastFailureReason != "" {
		t.Errorf("counters not reset on terminal transition: %+v", rec)
	}
}

func TestRecordStepFailure_IdenticalFailurePriority(t *testing.T) {
	// Threshold 2 beats a budget of 3: two identical reasons force
	// ROLLBACK with a retry still in hand.
	policy := RetryPolicy{MaxRetriesPerStep: 3, IdenticalFailureThreshold: 2, HardStopOnRepeatedFailure: true}
	c, _ := newTestController(t, policy, false)

	ctx, err := c.CreateTask("goal", "")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	first, err := c.RecordStepFailure(ctx.TaskID, "test failed")
	if err != nil {
		t.Fatalf("first failure: %v", err)
	}
	if first.State != task.StateFailedRetry {
		t.Errorf("first state = %s, want FAILED_RETRY", first.State)
	}

	second, err := c.RecordStepFailure(ctx.TaskID, "test failed")
	if err != nil {
		t.Fatalf("second failure: %v", err)
	}
	if second.State != task.StateRollback {
		t.Errorf("second state = %s, want ROLLBACK", second.State)
	}
	if second.RetryCount != 2 {
		t.Errorf("retry count = %d, want 2", second.RetryCount)
	}

	report, err := c.GetState(ctx.TaskID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if report.State != task.StateRollback {
		t.Errorf("persisted state = %s, want ROLLBACK", report.State)
	}
}

func TestRecordStepFailure_RetryEscalation(t *testing.T) {
	policy := RetryPolicy{MaxRetriesPerStep: 3, IdenticalFailureThreshold: 2, HardStopOnRepeatedFailure: true}
	c, _ := newTestController(t, policy, false)

	ctx, err := c.CreateTask("goal", "")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	reasons := []string{"compile error", "tests failed", "lint error"}
	var results []*StepFailureResult
	for _, r := range reasons {
		res, err := c.RecordStepFailure(ctx.TaskID, r)
		if err != nil {
			t.Fatalf("failure %q: %v", r, err)
		}
		results = append(results, res)
	}

	for i, res := range results {
		if res.State != task.StateFailedRetry {
			t.Errorf("failure %d state = %s, want FAILED_RETRY", i+1, res.State)
		}
	}
	if results[2].Reason == "" || !strings.Contains(results[2].Reason, "Max retries") {
		t.Errorf("third failure should signal max retries, got %q", results[2].Reason)
	}
	if results[1].Reason != "" {
		t.Errorf("second failure should not carry an escalation note, got %q", results[1].Reason)
	}
}

func TestRecordStepFailure_SurvivesRestart(t *testing.T) {
	policy := RetryPolicy{MaxRetriesPerStep: 3, IdenticalFailureThreshold: 2, HardStopOnRepeatedFailure: true}
	c, store := newTestController(t, policy, false)

	ctx, err := c.CreateTask("goal", "task-crash")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := c.RecordStepFailure(ctx.TaskID, "test failed"); err != nil {
		t.Fatalf("first failure: %v", err)
	}

	// A new controller over the same store stands in for the restarted
	// process. The identical-failure streak must carry over.
	c2, err := New(store, policy, false)
	if err != nil {
		t.Fatalf("second controller: %v", err)
	}
	res, err := c2.RecordStepFailure("task-crash", "test failed")
	if err != nil {
		t.Fatalf("failure after restart: %v", err)
	}
	if res.State != task.StateRollback {
		t.Errorf("state after restart = %s, want ROLLBACK (counters lost)", res.State)
	}
}

func TestRecordStepFailure_UnknownTaskGetsFreshContext(t *testing.T) {
	c, store := newTestController(t, DefaultPolicy(), false)

	res, err := c.RecordStepFailure("task-new", "boom")
	if err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if res.State != task.StateFailedRetry {
		t.Errorf("state = %s, want FAILED_RETRY", res.State)
	}
	if res.FailureID == "" {
		t.Error("expected a failure record id")
	}

	// The failure lands in the durable ledger too.
	failures, err := store.FailureSummary("task-new", 0)
	if err != nil {
		t.Fatalf("failure summary: %v", err)
	}
	if len(failures) != 1 || failures[0].Reason != "boom" {
		t.Errorf("failures = %+v", failures)
	}
}

func TestScenario_AddAuthRollback(t *testing.T) {
	policy := RetryPolicy{MaxRetriesPerStep: 3, IdenticalFailureThreshold: 2, HardStopOnRepeatedFailure: true}
	c, _ := newTestController(t, policy, false)

	ctx, err := c.CreateTask("add auth", "")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if ctx.State != task.StatePlanning {
		t.Fatalf("initial state = %s", ctx.State)
	}

	for _, next := range []string{"CODING", "EXECUTING"} {
		if _, err := c.Transition(ctx.TaskID, next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	if _, err := c.RecordStepFailure(ctx.TaskID, "test failed"); err != nil {
		t.Fatalf("first failure: %v", err)
	}
	second, err := c.RecordStepFailure(ctx.TaskID, "test failed")
	if err != nil {
		t.Fatalf("second failure: %v", err)
	}
	if second.State != task.StateRollback {
		t.Fatalf("second failure state = %s, want ROLLBACK", second.State)
	}

	report, err := c.GetState(ctx.TaskID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if report.State != task.StateRollback {
		t.Errorf("reported state = %s, want ROLLBACK", report.State)
	}

	done, err := c.IsComplete(ctx.TaskID)
	if err != nil {
		t.Fatalf("is complete: %v", err)
	}
	if !done {
		t.Error("ROLLBACK is terminal; IsComplete should report true")
	}
}

func TestGetState_NotFound(t *testing.T) {
	c, _ := newTestController(t, DefaultPolicy(), false)
	if _, err := c.GetState("task-ghost"); !errors.Is(err, memory.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestNextActionForState(t *testing.T) {
	if got := NextActionForState(task.StateRollback); !strings.Contains(got, "canonical") {
		t.Errorf("ROLLBACK action = %q", got)
	}
	if got := NextActionForState(task.State("???")); got != "Check state and proceed." {
		t.Errorf("fallback action = %q", got)
	}
}
