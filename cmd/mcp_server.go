/*
Copyright © 2026 Ahmed Coding
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ahmed-coding/Gravitas-Core/types"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server exposing the task ledger and controller",
	Long: `Start a Model Context Protocol (MCP) server over stdio so AI agents can
use the persistent task ledger: create and transition tasks, record step
failures under the retry/rollback policy, save and canonicalize context
snapshots, and build resume packages for model handover.

The server runs until the client disconnects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
		}
		return runMCPServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// envelopeResponse wraps a response envelope in an MCP tool result. The
// envelope itself carries success/failure; MCP-level IsError is reserved
// for faults in the tool machinery, which the app layer never leaks.
func envelopeResponse(env *types.Envelope) (*mcpsdk.CallToolResultFor[types.Envelope], error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, types.NewMCPError(types.CodeInvalidInput, "encode response", nil)
	}
	return &mcpsdk.CallToolResultFor[types.Envelope]{
		Content:           []mcpsdk.Content{&mcpsdk.TextContent{Text: string(payload)}},
		StructuredContent: *env,
	}, nil
}

func runMCPServer(ctx context.Context) error {
	// NOTE: MCP uses stdio transport. stdout MUST be pure JSON-RPC.
	// All status/debug output goes to stderr only.
	fmt.Fprintln(os.Stderr, "Gravitas MCP server starting...")

	a, err := newApp()
	if err != nil {
		return fmt.Errorf("initialize ledger: %w", err)
	}
	defer func() { _ = a.Close() }()

	impl := &mcpsdk.Implementation{
		Name:    "gravitas-mcp",
		Version: version,
	}
	serverOpts := &mcpsdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.InitializedParams) {
			fmt.Fprintln(os.Stderr, "MCP connection established")
			if viper.GetBool("verbose") {
				fmt.Fprintln(os.Stderr, "[DEBUG] Client initialized")
			}
		},
	}
	server := mcpsdk.NewServer(impl, serverOpts)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_last_state",
		Description: "Return the last known state: most recent context snapshot plus the active (non-terminal) task. Call this first in every session.",
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.EmptyParams]) (*mcpsdk.CallToolResultFor[types.Envelope], error) {
		logToolCall("get_last_state", nil)
		return envelopeResponse(a.GetLastState())
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_canonical_state",
		Description: "Return the last verified, immutable working state for rollback or recovery.",
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.EmptyParams]) (*mcpsdk.CallToolResultFor[types.Envelope], error) {
		logToolCall("get_canonical_state", nil)
		return envelopeResponse(a.GetCanonicalState())
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "record_failure",
		Description: "Record a failed strategy or command so it is never repeated. Include task_id in the context map to scope it to a task.",
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.RecordFailureParams]) (*mcpsdk.CallToolResultFor[types.Envelope], error) {
		logToolCall("record_failure", params.Arguments)
		return envelopeResponse(a.RecordFailure(params.Arguments.Reason, params.Arguments.Context))
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_failure_summary",
		Description: "List recent failures, newest first, optionally scoped to one task.",
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.FailureSummaryParams]) (*mcpsdk.CallToolResultFor[types.Envelope], error) {
		logToolCall("get_failure_summary", params.Arguments)
		return envelopeResponse(a.GetFailureSummary(params.Arguments.TaskID, params.Arguments.Limit))
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "resume_task",
		Description: "Load a task with its latest snapshot and recent failure history for resumption after a restart or model handover.",
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.ResumeTaskParams]) (*mcpsdk.CallToolResultFor[types.Envelope], error) {
		logToolCall("resume_task", params.Arguments)
		return envelopeResponse(a.ResumeTask(params.Arguments.TaskID))
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "memory_save_snapshot",
		Description: "Save a context snapshot (project map plus edit constraints) for the current task.",
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.SaveSnapshotParams]) (*mcpsdk.CallToolResultFor[types.Envelope], error) {
		logToolCall("memory_save_snapshot", params.Arguments)
		args := params.Arguments
		return envelopeResponse(a.SaveSnapshot(args.SnapshotID, args.TaskID, args.ProjectMap, args.SafeToEdit, args.DoNotTouch, args.Metadata))
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "memory_set_canonical",
		Description: "Mark a snapshot as the canonical (verified, immutable) state. Call only after external verification succeeds.",
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.SetCanonicalParams]) (*mcpsdk.CallToolResultFor[types.Envelope], error) {
		logToolCall("memory_set_canonical", params.Arguments)
		return envelopeResponse(a.SetCanonical(params.Arguments.SnapshotID))
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "record_tool_usage",
		Description: "Log a successful tool invocation for the telemetry trail.",
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.RecordToolUsageParams]) (*mcpsdk.CallToolResultFor[types.Envelope], error) {
		logToolCall("record_tool_usage", params.Arguments)
		args := params.Arguments
		return envelopeResponse(a.RecordToolUsage(args.ToolName, args.Arguments, args.OutcomeSummary, args.TaskID))
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "controller_create_task",
		Description: "Create a new task in PLANNING and make it the live task.",
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.CreateTaskParams]) (*mcpsdk.CallToolResultFor[types.Envelope], error) {
		logToolCall("controller_create_task", params.Arguments)
		return envelopeResponse(a.CreateTask(params.Arguments.Goal, params.Arguments.TaskID))
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "controller_transition",
		Description: "Transition a task to a new lifecycle state.",
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.TransitionParams]) (*mcpsdk.CallToolResultFor[types.Envelope], error) {
		logToolCall("controller_transition", params.Arguments)
		return envelopeResponse(a.Transition(params.Arguments.TaskID, params.Arguments.NewState))
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "controller_record_step_failure",
		Description: "Record a failed step. Repeated identical failures force ROLLBACK; exhausting the retry budget forces FAILED_RETRY.",
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.StepFailureParams]) (*mcpsdk.CallToolResultFor[types.Envelope], error) {
		logToolCall("controller_record_step_failure", params.Arguments)
		return envelopeResponse(a.RecordStepFailure(params.Arguments.TaskID, params.Arguments.Reason))
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "controller_get_state",
		Description: "Return a task's current state, retry counters, policy, and recommended next action.",
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.GetStateParams]) (*mcpsdk.CallToolResultFor[types.Envelope], error) {
		logToolCall("controller_get_state", params.Arguments)
		return envelopeResponse(a.GetTaskState(params.Arguments.TaskID))
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_model_resume_package",
		Description: "Generate the Model Resume Package for model swap, editor restart, or crash recovery: goal, task state, edit constraints, and failure memory.",
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.ResumePackageParams]) (*mcpsdk.CallToolResultFor[types.Envelope], error) {
		logToolCall("get_model_resume_package", params.Arguments)
		return envelopeResponse(a.BuildResumePackage(params.Arguments.TaskID))
	})

	logInfo("Registered 13 tools")
	if err := server.Run(ctx, mcpsdk.NewStdioTransport()); err != nil {
		logError("MCP server stopped: %v", err)
		return err
	}
	return nil
}
