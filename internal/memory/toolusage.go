package memory

import (
	"fmt"
	"time"
)

// RecordToolUsage appends a successful tool invocation to the telemetry
// log. Fire-and-forget from the caller's perspective; nothing in the
// control plane reads this back.
func (s *Store) RecordToolUsage(toolName string, arguments map[string]any, outcomeSummary, taskID string) error {
	if toolName == "" {
		return fmt.Errorf("tool name is required")
	}
	argsText, err := mapJSON(arguments)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(timeFormat)
	_, err = s.db.Exec(`
		INSERT INTO tool_usage (id, tool_name, arguments, outcome_summary, created_at, task_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, newToolUsageID(), toolName, argsText, outcomeSummary, now, nullString(taskID))
	if err != nil {
		return fmt.Errorf("insert tool usage: %w", err)
	}
	return nil
}
