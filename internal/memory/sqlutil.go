package memory

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// timeFormat is the canonical timestamp encoding for all tables.
// Nanosecond precision keeps created_at ordering meaningful when two
// records land within the same second.
const timeFormat = time.RFC3339Nano

// checkRowsErr checks for errors that may have occurred during row
// iteration. Call after a for rows.Next() loop to catch iteration
// errors that rows.Next() doesn't report directly.
func checkRowsErr(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}
	return nil
}

// mapJSON marshals an opaque metadata/context map for a TEXT column.
// A nil map is stored as the empty object so reads never see NULL JSON.
func mapJSON(m map[string]any) (string, error) {
	if m == nil {
		m = map[string]any{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal map: %w", err)
	}
	return string(raw), nil
}

// listJSON marshals a string list for a TEXT column.
func listJSON(l []string) (string, error) {
	if l == nil {
		l = []string{}
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("marshal list: %w", err)
	}
	return string(raw), nil
}

// parseMap decodes a JSON object column, tolerating NULL and empty text.
func parseMap(ns sql.NullString) map[string]any {
	m := map[string]any{}
	if ns.Valid && ns.String != "" {
		_ = json.Unmarshal([]byte(ns.String), &m)
	}
	return m
}

// parseList decodes a JSON array column, tolerating NULL and empty text.
func parseList(ns sql.NullString) []string {
	l := []string{}
	if ns.Valid && ns.String != "" {
		_ = json.Unmarshal([]byte(ns.String), &l)
	}
	return l
}

// parseTime decodes a stored timestamp, accepting both second and
// nanosecond precision RFC3339.
func parseTime(raw string) time.Time {
	t, err := time.Parse(timeFormat, raw)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, raw)
	}
	return t
}

// nullString maps the empty string to NULL for optional TEXT columns.
func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
