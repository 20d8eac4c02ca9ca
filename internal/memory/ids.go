package memory

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewTaskID generates a ledger task id.
func NewTaskID() string {
	return "task-" + uuid.New().String()[:8]
}

// NewSnapshotID generates a context snapshot id.
func NewSnapshotID() string {
	return "snap-" + uuid.New().String()[:8]
}

// newFailureID generates a failure id. ULIDs are lexicographically
// time-ordered, so sorting by id is a stable tiebreak when two failures
// share the same created_at.
func newFailureID() string {
	return "fail-" + ulid.Make().String()
}

// newToolUsageID generates a tool-usage id.
func newToolUsageID() string {
	return "tool-" + ulid.Make().String()
}
