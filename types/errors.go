/*
Copyright © 2026 Ahmed Coding
*/
package types

import "fmt"

// Error codes for the four failure categories the agent can encounter.
const (
	CodeTaskNotFound       = "TASK_NOT_FOUND"
	CodeSnapshotNotFound   = "SNAPSHOT_NOT_FOUND"
	CodeInvalidState       = "INVALID_STATE"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
)

// MCPError provides structured error information for MCP responses
type MCPError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewMCPError creates a new structured MCP error
func NewMCPError(code string, message string, details map[string]interface{}) *MCPError {
	return &MCPError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
