// Package model provides data models for the vpswatch monitoring core.
package model

import "time"

// Report types distinguish scheduled reports from operator-requested ones.
const (
	ReportTypeDaily  = "daily"
	ReportTypeManual = "manual"
)

// MetricTrends carries windowed averages that give a report trend context.
type MetricTrends struct {
	WindowHours int     `json:"window_hours"`
	CPUAvg      float64 `json:"cpu_avg"`
	MemoryAvg   float64 `json:"memory_avg"`
	DiskAvg     float64 `json:"disk_avg"`
	Samples     int     `json:"samples"` // metric rows aggregated into the averages
}

// HealthReport is a point-in-time assessment of overall system condition:
// a 0-100 score, the inputs it was derived from, and ordered recommendations.
// Reports are immutable once persisted. Rendered summaries may truncate the
// recommendation list, but the persisted list is always complete.
type HealthReport struct {
	ID              string           `json:"id"`
	ReportType      string           `json:"report_type"`
	HealthScore     int              `json:"health_score"`
	Metrics         *MetricsSnapshot `json:"metrics,omitempty"`
	Trends          *MetricTrends    `json:"trends,omitempty"`
	Alerts          AlertSummary     `json:"alerts"`
	Recommendations []string         `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// ScoreLabel maps the health score to its display label.
func (r HealthReport) ScoreLabel() string {
	switch {
	case r.HealthScore >= 90:
		return "excellent"
	case r.HealthScore >= 75:
		return "good"
	case r.HealthScore >= 60:
		return "fair"
	default:
		return "poor"
	}
}
