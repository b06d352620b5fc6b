// Package report renders health reports and alerts for delivery and export.
package report

import (
	"fmt"
	"strings"

	"vpswatch/internal/model"
)

// maxRenderedRecommendations caps the recommendation list in rendered
// summaries. The persisted report always keeps the complete list.
const maxRenderedRecommendations = 3

func severityEmoji(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "🚨"
	case model.SeverityHigh:
		return "⚠️"
	case model.SeverityMedium:
		return "🟡"
	case model.SeverityLow:
		return "ℹ️"
	default:
		return "•"
	}
}

// RenderAlert formats one alert as a short markdown notification.
func RenderAlert(alert model.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s alert*\n", severityEmoji(alert.Severity), strings.ToUpper(string(alert.Severity)))
	fmt.Fprintf(&b, "%s\n", alert.Message)
	fmt.Fprintf(&b, "Rule: %s\n", alert.RuleID)
	fmt.Fprintf(&b, "Triggered: %s", alert.TriggeredAt.UTC().Format("2006-01-02 15:04:05 MST"))
	return b.String()
}

// RenderReport formats a health report as a markdown summary. At most three
// recommendations are shown; the rest are summarized by a count.
func RenderReport(r model.HealthReport) string {
	var b strings.Builder

	title := "Health Report"
	if r.ReportType == model.ReportTypeDaily {
		title = "Daily Health Report"
	}
	fmt.Fprintf(&b, "*%s*\n", title)
	fmt.Fprintf(&b, "Score: %d/100 (%s)\n", r.HealthScore, r.ScoreLabel())

	if r.Metrics != nil {
		b.WriteString("\n")
		if r.Metrics.CPU != nil {
			fmt.Fprintf(&b, "CPU: %.1f%%\n", r.Metrics.CPU.UsagePercent)
		}
		if r.Metrics.Memory != nil {
			fmt.Fprintf(&b, "Memory: %.1f%% (%.0f/%.0f MB)\n",
				r.Metrics.Memory.UsagePercent, r.Metrics.Memory.UsedMB, r.Metrics.Memory.TotalMB)
		}
		if r.Metrics.Disk != nil {
			fmt.Fprintf(&b, "Disk: %.1f%% (%.1f/%.1f GB)\n",
				r.Metrics.Disk.UsagePercent, r.Metrics.Disk.UsedGB, r.Metrics.Disk.TotalGB)
		}
		if r.Metrics.Load != nil {
			fmt.Fprintf(&b, "Load: %.2f / %.2f / %.2f\n",
				r.Metrics.Load.Load1, r.Metrics.Load.Load5, r.Metrics.Load.Load15)
		}
		if r.Metrics.Docker != nil {
			fmt.Fprintf(&b, "Containers: %d running, %d stopped\n",
				r.Metrics.Docker.Running, r.Metrics.Docker.Stopped)
		}
	}

	if r.Trends != nil && r.Trends.Samples > 0 {
		fmt.Fprintf(&b, "%dh averages: cpu %.1f%%, memory %.1f%%, disk %.1f%%\n",
			r.Trends.WindowHours, r.Trends.CPUAvg, r.Trends.MemoryAvg, r.Trends.DiskAvg)
	}

	fmt.Fprintf(&b, "\nActive alerts: %d", r.Alerts.Total)
	if breakdown := severityBreakdown(r.Alerts); breakdown != "" {
		fmt.Fprintf(&b, " (%s)", breakdown)
	}
	b.WriteString("\n")

	if len(r.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for i, rec := range r.Recommendations {
			if i == maxRenderedRecommendations {
				fmt.Fprintf(&b, "...and %d more\n", len(r.Recommendations)-maxRenderedRecommendations)
				break
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
		}
	}

	fmt.Fprintf(&b, "\nGenerated: %s", r.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	return b.String()
}

func severityBreakdown(summary model.AlertSummary) string {
	var parts []string
	if summary.Critical > 0 {
		parts = append(parts, fmt.Sprintf("%d critical", summary.Critical))
	}
	if summary.High > 0 {
		parts = append(parts, fmt.Sprintf("%d high", summary.High))
	}
	if summary.Medium > 0 {
		parts = append(parts, fmt.Sprintf("%d medium", summary.Medium))
	}
	if summary.Low > 0 {
		parts = append(parts, fmt.Sprintf("%d low", summary.Low))
	}
	return strings.Join(parts, ", ")
}
