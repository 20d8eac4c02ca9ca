package memory

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordFailure appends a failure record and returns its id. The task
// association, if any, is taken from the "task_id" key of the context
// map. Failure ids are ULID-based so ordering by created_at stays
// stable even when records land within the same instant.
func (s *Store) RecordFailure(reason string, context map[string]any) (string, error) {
	ctxText, err := mapJSON(context)
	if err != nil {
		return "", err
	}

	var taskID string
	if context != nil {
		if v, ok := context["task_id"].(string); ok {
			taskID = v
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := newFailureID()
	now := time.Now().UTC().Format(timeFormat)
	_, err = s.db.Exec(`
		INSERT INTO failures (id, reason, context, created_at, task_id)
		VALUES (?, ?, ?, ?, ?)
	`, id, reason, ctxText, now, nullString(taskID))
	if err != nil {
		return "", fmt.Errorf("insert failure: %w", err)
	}
	return id, nil
}

// FailureSummary returns recent failures, newest first. Filtered to one
// task when taskID is non-empty; unfiltered otherwise. limit caps the
// result size (50 when <= 0).
func (s *Store) FailureSummary(taskID string, limit int) ([]FailureRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows *sql.Rows
	var err error
	if taskID != "" {
		rows, err = s.db.Query(`
			SELECT id, reason, context, created_at, task_id
			FROM failures WHERE task_id = ?
			ORDER BY created_at DESC, id DESC LIMIT ?
		`, taskID, limit)
	} else {
		rows, err = s.db.Query(`
			SELECT id, reason, context, created_at, task_id
			FROM failures ORDER BY created_at DESC, id DESC LIMIT ?
		`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var failures []FailureRecord
	for rows.Next() {
		var f FailureRecord
		var context, fTaskID sql.NullString
		var createdAt string
		if err := rows.Scan(&f.ID, &f.Reason, &context, &createdAt, &fTaskID); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		f.Context = parseMap(context)
		f.CreatedAt = parseTime(createdAt)
		f.TaskID = fTaskID.String
		failures = append(failures, f)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	return failures, nil
}
