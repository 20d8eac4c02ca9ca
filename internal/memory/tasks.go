package memory

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ahmed-coding/Gravitas-Core/internal/task"
)

// UpsertTask inserts the task if absent, otherwise overwrites goal,
// state, updated_at, and metadata. completed_at records the time of the
// most recent terminal transition: it is set whenever the written state
// is terminal and is never cleared by a later non-terminal write.
func (s *Store) UpsertTask(id, goal string, state task.State, parentID string, metadata map[string]any) error {
	if id == "" {
		return fmt.Errorf("task id is required")
	}
	if !state.Valid() {
		return fmt.Errorf("invalid state: %q", state)
	}

	metaJSON, err := mapJSON(metadata)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(timeFormat)
	var completedAt any
	if state.IsTerminal() {
		completedAt = now
	}

	_, err = s.db.Exec(`
		INSERT INTO tasks (id, parent_id, goal, state, created_at, updated_at, completed_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			goal = excluded.goal,
			state = excluded.state,
			updated_at = excluded.updated_at,
			completed_at = CASE
				WHEN excluded.state IN ('COMPLETED', 'ROLLBACK') THEN excluded.updated_at
				ELSE completed_at
			END,
			metadata = excluded.metadata
	`, id, nullString(parentID), goal, string(state), now, now, completedAt, metaJSON)
	if err != nil {
		return fmt.Errorf("upsert task: %w", err)
	}
	return nil
}

// SaveRetryState persists the escalation counters for a task so that a
// restarted controller can resume with the exact retry budget.
func (s *Store) SaveRetryState(id string, stepRetryCount int, lastFailureReason string, identicalFailureCount int) error {
	if id == "" {
		return fmt.Errorf("task id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE tasks
		SET step_retry_count = ?, last_failure_reason = ?, identical_failure_count = ?
		WHERE id = ?
	`, stepRetryCount, nullString(lastFailureReason), identicalFailureCount, id)
	if err != nil {
		return fmt.Errorf("save retry state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save retry state rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetTask fetches a task by id. Returns ErrNotFound if absent.
func (s *Store) GetTask(id string) (*TaskRecord, error) {
	return s.scanTask(s.db.QueryRow(`
		SELECT id, parent_id, goal, state, created_at, updated_at, completed_at, metadata,
		       step_retry_count, last_failure_reason, identical_failure_count
		FROM tasks WHERE id = ?
	`, id))
}

// ActiveTask returns the most recently updated task whose state is not
// terminal, or ErrNotFound when every task has finished (or none exist).
func (s *Store) ActiveTask() (*TaskRecord, error) {
	return s.scanTask(s.db.QueryRow(`
		SELECT id, parent_id, goal, state, created_at, updated_at, completed_at, metadata,
		       step_retry_count, last_failure_reason, identical_failure_count
		FROM tasks
		WHERE state NOT IN ('COMPLETED', 'ROLLBACK')
		ORDER BY updated_at DESC LIMIT 1
	`))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanTask(row rowScanner) (*TaskRecord, error) {
	var t TaskRecord
	var parentID, completedAt, metadata, lastReason sql.NullString
	var createdAt, updatedAt string
	var state string

	err := row.Scan(&t.ID, &parentID, &t.Goal, &state, &createdAt, &updatedAt, &completedAt, &metadata,
		&t.StepRetryCount, &lastReason, &t.IdenticalFailureCount)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}

	t.ParentID = parentID.String
	t.State = task.State(state)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	if completedAt.Valid {
		done := parseTime(completedAt.String)
		t.CompletedAt = &done
	}
	t.Metadata = parseMap(metadata)
	t.LastFailureReason = lastReason.String
	return &t, nil
}
