// Package cmd implements CLI commands for the vpswatch daemon.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vpswatch/internal/health"
	"vpswatch/internal/metrics"
	"vpswatch/internal/model"
	"vpswatch/internal/notify"
)

// Command flags
var (
	reportPush bool // Deliver the report to the notification channels
)

// reportCmd represents the report command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a health report now",
	Long: `Collect a fresh metrics snapshot, score it against the active alerts and
persist the resulting health report. With --push the report is also
delivered to the enabled notification channels.

Examples:
  # Generate and print a report
  vpswatch report -c config.yaml

  # Generate and deliver to the notification channels
  vpswatch report -c config.yaml --push`,
	Run: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().BoolVar(&reportPush, "push", false, "deliver the report to the enabled notification channels")
}

// runReport executes the report command logic.
func runReport(cmd *cobra.Command, args []string) {
	cfg, logger := mustLoadConfig()
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	source, err := metrics.NewLocalSource(cfg.Monitor, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create metrics source: %v\n", err)
		os.Exit(1)
	}
	reporter := health.NewReporter(source, st, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fmt.Println("⏳ Generating health report...")
	rep, err := reporter.Generate(ctx, model.ReportTypeManual)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Report generation failed: %v\n", err)
		os.Exit(1)
	}
	printReport(rep)

	if reportPush {
		notifier := notify.FromConfig(cfg.Notify, cfg.HTTP.Retry, logger)
		if notifier.Channels() == 0 {
			fmt.Println("⚠️  No notification channels enabled, skipping push")
			return
		}
		if err := notifier.PushReport(ctx, rep); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Delivery failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Report delivered to %d channel(s)\n", notifier.Channels())
	}
}

// printReport prints the health report summary to stdout.
func printReport(rep model.HealthReport) {
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("   Health score: %d/100 (%s)\n", rep.HealthScore, rep.ScoreLabel())
	if rep.Metrics != nil {
		if rep.Metrics.CPU != nil {
			fmt.Printf("   CPU: %.1f%%\n", rep.Metrics.CPU.UsagePercent)
		}
		if rep.Metrics.Memory != nil {
			fmt.Printf("   Memory: %.1f%%\n", rep.Metrics.Memory.UsagePercent)
		}
		if rep.Metrics.Disk != nil {
			fmt.Printf("   Disk: %.1f%%\n", rep.Metrics.Disk.UsagePercent)
		}
		if rep.Metrics.Load != nil {
			fmt.Printf("   Load: %.2f / %.2f / %.2f\n",
				rep.Metrics.Load.Load1, rep.Metrics.Load.Load5, rep.Metrics.Load.Load15)
		}
		if rep.Metrics.Docker != nil {
			fmt.Printf("   Containers: %d running, %d stopped\n",
				rep.Metrics.Docker.Running, rep.Metrics.Docker.Stopped)
		}
	}
	fmt.Printf("   Active alerts: %d\n", rep.Alerts.Total)
	if len(rep.Recommendations) > 0 {
		fmt.Println("   Recommendations:")
		for i, rec := range rep.Recommendations {
			fmt.Printf("   %d. %s\n", i+1, rec)
		}
	}
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}
