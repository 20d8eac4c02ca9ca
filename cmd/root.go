/*
Copyright © 2026 Ahmed Coding
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// version is the application version.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gravitas",
	Short: "Gravitas is the persistent memory and control plane for an autonomous coding agent.",
	Long: `Gravitas persists task progress, project-state snapshots, and failure
history across restarts and model swaps, and enforces a bounded
retry/rollback policy so the agent cannot loop forever on a failing step.

Run 'gravitas mcp' to expose the ledger over the Model Context Protocol.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
		os.Exit(0)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.gravitas.yaml or ./.gravitas.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("root", "", "project root owning the task ledger (default: auto-detected)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("root"))
}
