// Package cmd implements CLI commands for the vpswatch daemon.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vpswatch/internal/config"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the config and rules files",
	Long:  "Load and validate the configuration and the alert rules file, checking formats, required fields, value ranges and cross-field constraints.",
	Run:   runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate executes the validate command logic.
func runValidate(cmd *cobra.Command, args []string) {
	configPath := GetConfigFile()

	// Load and validate configuration (Load internally calls Validate)
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Config validation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Config file valid: %s\n", configPath)

	// An empty rules path falls back to the built-in rule set
	rules, err := config.LoadRules(cfg.Rules.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Rules validation failed: %v\n", err)
		os.Exit(1)
	}
	if cfg.Rules.File != "" {
		fmt.Printf("✅ Rules file valid: %s (%d rules)\n", cfg.Rules.File, len(rules))
	} else {
		fmt.Printf("✅ Using built-in default rules (%d rules)\n", len(rules))
	}
}
