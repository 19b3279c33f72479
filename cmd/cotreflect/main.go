// Package main implements the cotreflect CLI: run chain-of-thought
// reflection pipelines against configured model backends and manage the
// snapshot library of completed runs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cotreflect/internal/config"
	"cotreflect/internal/logging"
)

var (
	configPath string
	debugMode  bool

	// cfg is resolved once in the root PersistentPreRunE and shared by all
	// subcommands.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cotreflect",
	Short: "Chain-of-thought reflection over pluggable model backends",
	Long: `cotreflect turns a single question into a structured multi-part answer:
an unreasoned initial guess, an explicit thinking trace, a reflection
critique, and a final refined answer. Completed runs can be saved as
snapshots and searched, exported, or deleted later.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if debugMode {
			cfg.Logging.DebugMode = true
		}
		if err := logging.Init(cfg.Logging); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		logging.Boot("cotreflect starting, config=%s", configPath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json (default: ~/.cotreflect/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
