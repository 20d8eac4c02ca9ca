package memory

import (
	"database/sql"
	"fmt"
	"time"
)

// SetCanonical replaces the singleton canonical pointer with the given
// snapshot. The pointer is only ever advanced by this explicit call,
// after external verification; saving a snapshot never moves it.
// Fails with ErrNotFound when the snapshot does not exist.
func (s *Store) SetCanonical(snapshotID string) error {
	if snapshotID == "" {
		return fmt.Errorf("snapshot id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM context_snapshots WHERE id = ?`, snapshotID).Scan(&exists); err != nil {
		return fmt.Errorf("check snapshot: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("snapshot %s: %w", snapshotID, ErrNotFound)
	}

	now := time.Now().UTC().Format(timeFormat)
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO canonical_state (id, snapshot_id, updated_at) VALUES (1, ?, ?)
	`, snapshotID, now)
	if err != nil {
		return fmt.Errorf("set canonical: %w", err)
	}
	return nil
}

// Canonical returns the canonical snapshot and the time the pointer was
// last advanced. Returns ErrNotFound when no canonical state is set, or
// when the pointer references a snapshot that has gone missing.
func (s *Store) Canonical() (*ContextSnapshot, time.Time, error) {
	var snapshotID, updatedAt string
	err := s.db.QueryRow(`SELECT snapshot_id, updated_at FROM canonical_state WHERE id = 1`).Scan(&snapshotID, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query canonical state: %w", err)
	}

	snap, err := s.GetSnapshot(snapshotID)
	if err != nil {
		return nil, time.Time{}, err
	}
	return snap, parseTime(updatedAt), nil
}
