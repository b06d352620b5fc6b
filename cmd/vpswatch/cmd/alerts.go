// Package cmd implements CLI commands for the vpswatch daemon.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vpswatch/internal/model"
)

// Command flags
var (
	alertsAll   bool // Include acknowledged and resolved alerts
	alertsLimit int  // Maximum alerts to list
)

// alertsCmd represents the alerts command group.
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Inspect and manage alerts",
	Long: `Inspect and manage the alert history.

Examples:
  # List open alerts (active and acknowledged)
  vpswatch alerts list

  # List the full history including resolved alerts
  vpswatch alerts list --all --limit 50

  # Acknowledge an alert
  vpswatch alerts ack 6b8a1f2c-...

  # Resolve an alert
  vpswatch alerts resolve 6b8a1f2c-...`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// alertsListCmd lists alerts from the database.
var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List alerts",
	Run:   runAlertsList,
}

// alertsAckCmd acknowledges an alert.
var alertsAckCmd = &cobra.Command{
	Use:   "ack <alert-id>",
	Short: "Acknowledge an alert",
	Args:  cobra.ExactArgs(1),
	Run:   runAlertsAck,
}

// alertsResolveCmd resolves an alert.
var alertsResolveCmd = &cobra.Command{
	Use:   "resolve <alert-id>",
	Short: "Resolve an alert",
	Args:  cobra.ExactArgs(1),
	Run:   runAlertsResolve,
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsAckCmd)
	alertsCmd.AddCommand(alertsResolveCmd)

	alertsListCmd.Flags().BoolVar(&alertsAll, "all", false, "include acknowledged and resolved alerts")
	alertsListCmd.Flags().IntVar(&alertsLimit, "limit", 20, "maximum alerts to list with --all (0 = all)")
}

// runAlertsList executes the alerts list command logic.
func runAlertsList(cmd *cobra.Command, args []string) {
	cfg, logger := mustLoadConfig()
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var alerts []model.Alert
	var err error
	if alertsAll {
		alerts, err = st.ListAlerts(ctx, alertsLimit)
	} else {
		alerts, err = st.ListOpenAlerts(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to list alerts: %v\n", err)
		os.Exit(1)
	}

	if len(alerts) == 0 {
		fmt.Println("✅ No alerts")
		return
	}

	fmt.Printf("🔔 %d alert(s)\n", len(alerts))
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	for _, alert := range alerts {
		fmt.Printf("   %s [%s] %s  %s\n",
			statusMarker(alert.Status),
			alert.Severity,
			alert.TriggeredAt.Local().Format("2006-01-02 15:04"),
			alert.Message)
		fmt.Printf("      id: %s  rule: %s  status: %s\n", alert.ID, alert.RuleID, alert.Status)
	}
}

// runAlertsAck executes the alerts ack command logic.
func runAlertsAck(cmd *cobra.Command, args []string) {
	cfg, logger := mustLoadConfig()
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	alert, err := st.AcknowledgeAlert(ctx, args[0], time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to acknowledge alert: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Alert %s is now %s\n", alert.ID, alert.Status)
}

// runAlertsResolve executes the alerts resolve command logic.
func runAlertsResolve(cmd *cobra.Command, args []string) {
	cfg, logger := mustLoadConfig()
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	alert, err := st.ResolveAlert(ctx, args[0], time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to resolve alert: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Alert %s is now %s\n", alert.ID, alert.Status)
}

// statusMarker returns the list marker for an alert status.
func statusMarker(status model.AlertStatus) string {
	switch status {
	case model.AlertStatusActive:
		return "🔴"
	case model.AlertStatusAcknowledged:
		return "🟡"
	case model.AlertStatusResolved:
		return "🟢"
	default:
		return "⚪"
	}
}
