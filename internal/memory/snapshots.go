package memory

import (
	"database/sql"
	"fmt"
	"time"
)

// SaveSnapshot inserts a new context snapshot. Snapshots are append-only:
// once written they are never mutated, only superseded by newer ones.
// Fails with ErrNotFound when taskID does not reference an existing task;
// the check is explicit so referential integrity holds even if the
// underlying store has foreign keys disabled.
func (s *Store) SaveSnapshot(id, taskID string, projectMap map[string]any, safeToEdit, doNotTouch []string, metadata map[string]any) error {
	if id == "" {
		return fmt.Errorf("snapshot id is required")
	}
	if taskID == "" {
		return fmt.Errorf("task id is required")
	}

	mapText, err := mapJSON(projectMap)
	if err != nil {
		return err
	}
	safeText, err := listJSON(safeToEdit)
	if err != nil {
		return err
	}
	touchText, err := listJSON(doNotTouch)
	if err != nil {
		return err
	}
	metaText, err := mapJSON(metadata)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE id = ?`, taskID).Scan(&exists); err != nil {
		return fmt.Errorf("check task: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}

	now := time.Now().UTC().Format(timeFormat)
	_, err = s.db.Exec(`
		INSERT INTO context_snapshots (id, task_id, created_at, project_map, safe_to_edit, do_not_touch, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, taskID, now, mapText, safeText, touchText, metaText)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// GetSnapshot fetches a snapshot by id. Returns ErrNotFound if absent.
func (s *Store) GetSnapshot(id string) (*ContextSnapshot, error) {
	return s.scanSnapshot(s.db.QueryRow(`
		SELECT id, task_id, created_at, project_map, safe_to_edit, do_not_touch, metadata
		FROM context_snapshots WHERE id = ?
	`, id))
}

// LatestSnapshot returns the most recently created snapshot irrespective
// of owning task, or ErrNotFound when the store holds none.
func (s *Store) LatestSnapshot() (*ContextSnapshot, error) {
	return s.scanSnapshot(s.db.QueryRow(`
		SELECT id, task_id, created_at, project_map, safe_to_edit, do_not_touch, metadata
		FROM context_snapshots ORDER BY created_at DESC, id DESC LIMIT 1
	`))
}

// LatestSnapshotForTask returns the newest snapshot owned by the task,
// or ErrNotFound when the task has none.
func (s *Store) LatestSnapshotForTask(taskID string) (*ContextSnapshot, error) {
	return s.scanSnapshot(s.db.QueryRow(`
		SELECT id, task_id, created_at, project_map, safe_to_edit, do_not_touch, metadata
		FROM context_snapshots WHERE task_id = ? ORDER BY created_at DESC, id DESC LIMIT 1
	`, taskID))
}

func (s *Store) scanSnapshot(row rowScanner) (*ContextSnapshot, error) {
	var snap ContextSnapshot
	var createdAt string
	var projectMap, safeToEdit, doNotTouch, metadata sql.NullString

	err := row.Scan(&snap.ID, &snap.TaskID, &createdAt, &projectMap, &safeToEdit, &doNotTouch, &metadata)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	snap.CreatedAt = parseTime(createdAt)
	snap.ProjectMap = parseMap(projectMap)
	snap.SafeToEdit = parseList(safeToEdit)
	snap.DoNotTouch = parseList(doNotTouch)
	snap.Metadata = parseMap(metadata)
	return &snap, nil
}
