/*
Copyright © 2026 Ahmed Coding
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// resumeCmd prints the Model Resume Package, optionally for one task.
var resumeCmd = &cobra.Command{
	Use:   "resume [task-id]",
	Short: "Build the Model Resume Package for handover or crash recovery",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		taskID := ""
		if len(args) == 1 {
			taskID = args[0]
		}

		env := a.BuildResumePackage(taskID)
		payload, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return fmt.Errorf("encode resume package: %w", err)
		}
		fmt.Println(string(payload))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}
