// Package cmd implements CLI commands for the vpswatch daemon.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"vpswatch/internal/config"
	"vpswatch/internal/engine"
	"vpswatch/internal/health"
	"vpswatch/internal/metrics"
	"vpswatch/internal/notify"
	"vpswatch/internal/service"
	"vpswatch/internal/store"
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitoring daemon",
	Long: `Run the monitoring daemon in the foreground:
1. Collects host metrics on the configured interval
2. Evaluates alert rules and delivers triggered alerts
3. Generates periodic health reports
4. Cleans up samples and alerts past their retention windows

The daemon stops gracefully on SIGINT or SIGTERM: cycles already in flight
finish before the process exits.

Examples:
  # Run with the default config
  vpswatch run -c config.yaml

  # Run with verbose logging
  vpswatch run -c config.yaml --log-level debug`,
	Run: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// runDaemon wires the daemon together and runs it until a shutdown signal.
func runDaemon(cmd *cobra.Command, args []string) {
	printBanner()

	// Step 1: Load configuration
	configPath := GetConfigFile()
	fmt.Printf("📋 Loading config: %s\n", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		// Use temporary console logger for config loading errors
		tmpLogger := setupLogger("error", "console")
		tmpLogger.Error().Err(err).Str("path", configPath).Msg("failed to load config")
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Step 2: Initialize logger with configuration
	// Command line --log-level overrides config file setting
	logLevel := cfg.Logging.Level
	if GetLogLevel() != "info" { // If explicitly set via command line
		logLevel = GetLogLevel()
	}
	logger := setupLogger(logLevel, cfg.Logging.Format)
	logger.Debug().
		Str("config_path", configPath).
		Str("log_level", logLevel).
		Str("log_format", cfg.Logging.Format).
		Msg("configuration loaded")

	// Step 3: Load alert rules
	rules, err := config.LoadRules(cfg.Rules.File)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.Rules.File).Msg("failed to load rules")
		fmt.Fprintf(os.Stderr, "❌ Failed to load alert rules: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Int("rules", len(rules)).Msg("alert rules loaded")

	// Step 4: Open the database
	st, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.Database.Path).Msg("failed to open database")
		fmt.Fprintf(os.Stderr, "❌ Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	// Step 5: Create the metrics source
	source, err := metrics.NewLocalSource(cfg.Monitor, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create metrics source")
		fmt.Fprintf(os.Stderr, "❌ Failed to create metrics source: %v\n", err)
		os.Exit(1)
	}

	// Step 6: Create notification channels, alert engine and health reporter
	notifier := notify.FromConfig(cfg.Notify, cfg.HTTP.Retry, logger)
	eng := engine.New(st, notifier, rules, logger)
	reporter := health.NewReporter(source, st, logger)

	// Step 7: Assemble the daemon
	daemon, err := service.NewDaemon(cfg, st, source, eng, reporter, notifier, logger,
		service.WithVersion(Version))
	if err != nil {
		logger.Error().Err(err).Msg("failed to create daemon")
		fmt.Fprintf(os.Stderr, "❌ Failed to create daemon: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ %d rule(s), %d notification channel(s)\n", len(rules), notifier.Channels())
	fmt.Printf("⏳ Daemon running, evaluating every %s. Press Ctrl+C to stop.\n",
		cfg.Monitor.EvaluateInterval)

	// Step 8: Run until SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := daemon.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("daemon exited with error")
		fmt.Fprintf(os.Stderr, "❌ Daemon failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("👋 Shutdown complete")
}

// setupLogger creates a zerolog logger with the specified level and format.
func setupLogger(level string, format string) zerolog.Logger {
	// Set log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Select output format based on configuration
	var output io.Writer
	if format == "json" {
		// JSON format - structured logging for log aggregation systems
		output = os.Stderr
	} else {
		// Console format - human-readable output for development
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// printBanner prints the application banner.
func printBanner() {
	fmt.Printf("🔍 vpswatch %s\n", Version)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}
