// Package cmd provides CLI commands for the vpswatch daemon.
package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"vpswatch/internal/config"
	"vpswatch/internal/store"
)

// Version information, injected at build time via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Global flags
var (
	cfgFile  string // Config file path
	logLevel string // Log level
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "vpswatch",
	Short: "Lightweight VPS monitoring and alerting daemon",
	Long: `vpswatch watches a single host: it samples CPU, memory, disk, load and
Docker container metrics, evaluates them against configurable alert rules,
and delivers alerts and periodic health reports over Telegram, Slack and
email.

All state lives in a local sqlite database, so the daemon runs standalone
with no external services beyond the notification channels.

Main features:
  - Periodic metric collection (gopsutil + Docker API)
  - Threshold alerting with per-rule cooldowns and severity levels
  - Health scoring with trend context and recommendations
  - Alert lifecycle management (acknowledge, resolve)
  - Excel and Markdown report export`,
	Version: Version,
	// Run displays help when called without any subcommands
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// init initializes the root command and its flags.
func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	// Customize version template
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// GetConfigFile returns the config file path from command line flag.
func GetConfigFile() string {
	return cfgFile
}

// GetLogLevel returns the log level from command line flag.
func GetLogLevel() string {
	return logLevel
}

// GetVersionInfo returns formatted version information.
func GetVersionInfo() string {
	return Version + "\n" +
		"Build Time: " + BuildTime + "\n" +
		"Git Commit: " + GitCommit + "\n" +
		"Go Version: " + runtime.Version() + "\n" +
		"OS/Arch: " + runtime.GOOS + "/" + runtime.GOARCH
}

// mustLoadConfig loads the configuration and builds the logger for one-shot
// commands, exiting the process on failure.
func mustLoadConfig() (*config.Config, zerolog.Logger) {
	configPath := GetConfigFile()
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Command line --log-level overrides config file setting
	logLevel := cfg.Logging.Level
	if GetLogLevel() != "info" {
		logLevel = GetLogLevel()
	}
	return cfg, setupLogger(logLevel, cfg.Logging.Format)
}

// mustOpenStore opens the database for one-shot commands, exiting on failure.
func mustOpenStore(cfg *config.Config, logger zerolog.Logger) *store.Store {
	st, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to open database: %v\n", err)
		os.Exit(1)
	}
	return st
}
