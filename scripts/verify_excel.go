//go:build ignore
// +build ignore

// This script generates a sample Excel export for manual verification of
// styles and layout. Run with: go run scripts/verify_excel.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vpswatch/internal/model"
	"vpswatch/internal/report/excel"
)

func main() {
	reports, alerts := createSampleData()

	writer := excel.NewWriter(time.UTC)

	outputPath := filepath.Join(".", "sample_health_report.xlsx")
	if err := writer.Write(reports, alerts, outputPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating export: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Excel export generated: %s\n", outputPath)
	fmt.Println("\nExport contents:")
	fmt.Printf("  - %d reports (scores across all three rating bands)\n", len(reports))
	fmt.Printf("  - %d alerts (mixed severities and statuses)\n", len(alerts))
	fmt.Println("\nPlease open the file to verify:")
	fmt.Println("  1. Summary sheet shows the latest report and export counts")
	fmt.Println("  2. History scores are colored: 75+ green, 60-74 yellow, below 60 red")
	fmt.Println("  3. Alerts are sorted critical first, severity cells colored to match")
	fmt.Println("  4. Header rows stay frozen when scrolling")
	fmt.Println("  5. Missing metrics and unset timestamps render as a dash")
}

// createSampleData builds reports and alerts covering every style the export
// applies. Reports are newest-first, the order the store returns them in.
func createSampleData() ([]model.HealthReport, []model.Alert) {
	now := time.Now().UTC()

	reports := []model.HealthReport{
		{
			ID:          "sample-report-3",
			ReportType:  model.ReportTypeDaily,
			HealthScore: 92,
			Metrics: &model.MetricsSnapshot{
				Timestamp: now,
				CPU:       &model.CPUMetrics{UsagePercent: 22.5},
				Memory:    &model.MemoryMetrics{UsagePercent: 41.0, UsedMB: 1680, TotalMB: 4096},
				Disk:      &model.DiskMetrics{UsagePercent: 55.0, UsedGB: 27.5, TotalGB: 50},
				Load:      &model.LoadMetrics{Load1: 0.42, Load5: 0.51, Load15: 0.47},
				Docker:    &model.DockerMetrics{Running: 3, Stopped: 0, Total: 3},
			},
			Alerts:      model.AlertSummary{},
			GeneratedAt: now,
		},
		{
			ID:          "sample-report-2",
			ReportType:  model.ReportTypeDaily,
			HealthScore: 68,
			Metrics: &model.MetricsSnapshot{
				Timestamp: now.Add(-24 * time.Hour),
				CPU:       &model.CPUMetrics{UsagePercent: 78.0},
				Memory:    &model.MemoryMetrics{UsagePercent: 72.3, UsedMB: 2961, TotalMB: 4096},
				Disk:      &model.DiskMetrics{UsagePercent: 81.0, UsedGB: 40.5, TotalGB: 50},
				Load:      &model.LoadMetrics{Load1: 2.1, Load5: 1.8, Load15: 1.5},
			},
			Alerts:          model.AlertSummary{Total: 2, High: 2},
			Recommendations: []string{"CPU usage is elevated. Review the busiest services."},
			GeneratedAt:     now.Add(-24 * time.Hour),
		},
		{
			// No metrics snapshot: every metric column should render as "-".
			ID:          "sample-report-1",
			ReportType:  model.ReportTypeManual,
			HealthScore: 45,
			Alerts:      model.AlertSummary{Total: 3, Critical: 1, High: 2},
			Recommendations: []string{
				"Disk usage is critical. Free up space or expand the volume.",
				"Resolve the active critical alerts before they affect availability.",
			},
			GeneratedAt: now.Add(-48 * time.Hour),
		},
	}

	acknowledged := now.Add(-30 * time.Minute)
	resolved := now.Add(-10 * time.Minute)

	alerts := []model.Alert{
		{
			ID:          "sample-alert-load",
			RuleID:      "load_high",
			RuleName:    "High System Load",
			Message:     "High System Load: 4.50 (threshold: 4.00)",
			Severity:    model.SeverityMedium,
			Status:      model.AlertStatusResolved,
			MetricValue: 4.5,
			TriggeredAt: now.Add(-3 * time.Hour),
			ResolvedAt:  &resolved,
		},
		{
			ID:          "sample-alert-disk",
			RuleID:      "disk_critical",
			RuleName:    "Critical Disk Usage",
			Message:     "Critical Disk Usage: 96.2% (threshold: 95.0%)",
			Severity:    model.SeverityCritical,
			Status:      model.AlertStatusActive,
			MetricValue: 96.2,
			TriggeredAt: now.Add(-1 * time.Hour),
		},
		{
			ID:             "sample-alert-cpu",
			RuleID:         "cpu_high",
			RuleName:       "High CPU Usage",
			Message:        "High CPU Usage: 85.0% (threshold: 80.0%)",
			Severity:       model.SeverityHigh,
			Status:         model.AlertStatusAcknowledged,
			MetricValue:    85.0,
			TriggeredAt:    now.Add(-2 * time.Hour),
			AcknowledgedAt: &acknowledged,
		},
		{
			ID:          "sample-alert-containers",
			RuleID:      "containers_down",
			RuleName:    "Containers Stopped",
			Message:     "Containers Stopped: 0 running (threshold: 1)",
			Severity:    model.SeverityLow,
			Status:      model.AlertStatusResolved,
			MetricValue: 0,
			TriggeredAt: now.Add(-5 * time.Hour),
			ResolvedAt:  &resolved,
		},
	}

	return reports, alerts
}
