/*
Copyright © 2026 Ahmed Coding
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ahmed-coding/Gravitas-Core/internal/app"
	"github.com/ahmed-coding/Gravitas-Core/internal/config"
	"github.com/ahmed-coding/Gravitas-Core/internal/controller"
	"github.com/spf13/viper"
)

// logInfo writes a status line to stderr. stdout is reserved for
// JSON-RPC when serving MCP and for command output otherwise.
func logInfo(format string, args ...any) {
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "[INFO] "+format+"\n", args...)
	}
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+format+"\n", args...)
}

// logToolCall traces an incoming tool invocation in verbose mode.
func logToolCall(name string, args any) {
	if !viper.GetBool("verbose") {
		return
	}
	payload, err := json.Marshal(args)
	if err != nil {
		payload = []byte("{}")
	}
	fmt.Fprintf(os.Stderr, "[TOOL] %s %s\n", name, payload)
}

// newApp wires the store and control plane from the loaded config.
func newApp() (*app.App, error) {
	root := config.GetProjectRoot()
	maxRetries, identicalThreshold, hardStop := config.PolicyFromConfig()

	a, err := app.New(root, app.Options{
		Policy: controller.RetryPolicy{
			MaxRetriesPerStep:         maxRetries,
			IdenticalFailureThreshold: identicalThreshold,
			HardStopOnRepeatedFailure: hardStop,
		},
		StrictTransitions: viper.GetBool("controller.strict_transitions"),
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger at %s: %w", root, err)
	}
	logInfo("Using ledger at %s", root)
	return a, nil
}
