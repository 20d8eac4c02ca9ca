/*
Copyright © 2026 Ahmed Coding
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd prints the current ledger state for humans and scripts.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last known and canonical state of the task ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		out := map[string]any{
			"last_state":      a.GetLastState(),
			"canonical_state": a.GetCanonicalState(),
		}
		payload, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("encode status: %w", err)
		}
		fmt.Println(string(payload))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
