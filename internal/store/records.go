// Package store persists vpswatch state in a local sqlite database.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"vpswatch/internal/model"
)

// ruleRecord is the persisted form of a model.AlertRule.
type ruleRecord struct {
	ID              string `gorm:"primaryKey"`
	Name            string
	MetricType      string
	Condition       string
	Threshold       float64
	Severity        string
	Enabled         bool
	CooldownMinutes int
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ruleRecord) TableName() string { return "alert_rules" }

func newRuleRecord(rule model.AlertRule) ruleRecord {
	return ruleRecord{
		ID:              rule.ID,
		Name:            rule.Name,
		MetricType:      string(rule.MetricType),
		Condition:       string(rule.Condition),
		Threshold:       rule.Threshold,
		Severity:        string(rule.Severity),
		Enabled:         rule.Enabled,
		CooldownMinutes: rule.CooldownMinutes,
		Description:     rule.Description,
	}
}

func (r ruleRecord) toModel() model.AlertRule {
	return model.AlertRule{
		ID:              r.ID,
		Name:            r.Name,
		MetricType:      model.MetricType(r.MetricType),
		Condition:       model.Condition(r.Condition),
		Threshold:       r.Threshold,
		Severity:        model.Severity(r.Severity),
		Enabled:         r.Enabled,
		CooldownMinutes: r.CooldownMinutes,
		Description:     r.Description,
	}
}

// alertRecord is the persisted form of a model.Alert. The snapshot captured
// at trigger time is stored as a JSON blob.
type alertRecord struct {
	ID             string `gorm:"primaryKey"`
	RuleID         string `gorm:"index"`
	RuleName       string
	Message        string
	Severity       string
	Status         string `gorm:"index"`
	MetricValue    float64
	TriggeredAt    time.Time `gorm:"index"`
	AcknowledgedAt *time.Time
	ResolvedAt     *time.Time
	Metadata       string
}

func (alertRecord) TableName() string { return "alerts" }

func newAlertRecord(alert model.Alert) (alertRecord, error) {
	rec := alertRecord{
		ID:             alert.ID,
		RuleID:         alert.RuleID,
		RuleName:       alert.RuleName,
		Message:        alert.Message,
		Severity:       string(alert.Severity),
		Status:         string(alert.Status),
		MetricValue:    alert.MetricValue,
		TriggeredAt:    alert.TriggeredAt,
		AcknowledgedAt: alert.AcknowledgedAt,
		ResolvedAt:     alert.ResolvedAt,
	}
	if alert.Metadata != nil {
		data, err := json.Marshal(alert.Metadata)
		if err != nil {
			return rec, fmt.Errorf("failed to encode alert metadata: %w", err)
		}
		rec.Metadata = string(data)
	}
	return rec, nil
}

func (r alertRecord) toModel() (model.Alert, error) {
	alert := model.Alert{
		ID:             r.ID,
		RuleID:         r.RuleID,
		RuleName:       r.RuleName,
		Message:        r.Message,
		Severity:       model.Severity(r.Severity),
		Status:         model.AlertStatus(r.Status),
		MetricValue:    r.MetricValue,
		TriggeredAt:    r.TriggeredAt,
		AcknowledgedAt: r.AcknowledgedAt,
		ResolvedAt:     r.ResolvedAt,
	}
	if r.Metadata != "" {
		var snapshot model.MetricsSnapshot
		if err := json.Unmarshal([]byte(r.Metadata), &snapshot); err != nil {
			return alert, fmt.Errorf("failed to decode alert metadata: %w", err)
		}
		alert.Metadata = &snapshot
	}
	return alert, nil
}

// metricSample is one persisted metric reading, used for trend queries and
// retention-bounded history.
type metricSample struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	MetricType string `gorm:"index:idx_samples_type_time"`
	Value      float64
	RecordedAt time.Time `gorm:"index:idx_samples_type_time"`
}

func (metricSample) TableName() string { return "metric_samples" }

// reportRecord is the persisted form of a model.HealthReport. Snapshot,
// trends and recommendations are stored as JSON blobs; the alert counts are
// flattened into columns for direct querying.
type reportRecord struct {
	ID              string `gorm:"primaryKey"`
	ReportType      string
	HealthScore     int
	Metrics         string
	Trends          string
	AlertsTotal     int
	AlertsCritical  int
	AlertsHigh      int
	AlertsMedium    int
	AlertsLow       int
	Recommendations string
	GeneratedAt     time.Time `gorm:"index"`
}

func (reportRecord) TableName() string { return "health_reports" }

func newReportRecord(report model.HealthReport) (reportRecord, error) {
	rec := reportRecord{
		ID:             report.ID,
		ReportType:     report.ReportType,
		HealthScore:    report.HealthScore,
		AlertsTotal:    report.Alerts.Total,
		AlertsCritical: report.Alerts.Critical,
		AlertsHigh:     report.Alerts.High,
		AlertsMedium:   report.Alerts.Medium,
		AlertsLow:      report.Alerts.Low,
		GeneratedAt:    report.GeneratedAt,
	}

	if report.Metrics != nil {
		data, err := json.Marshal(report.Metrics)
		if err != nil {
			return rec, fmt.Errorf("failed to encode report metrics: %w", err)
		}
		rec.Metrics = string(data)
	}
	if report.Trends != nil {
		data, err := json.Marshal(report.Trends)
		if err != nil {
			return rec, fmt.Errorf("failed to encode report trends: %w", err)
		}
		rec.Trends = string(data)
	}

	recs, err := json.Marshal(report.Recommendations)
	if err != nil {
		return rec, fmt.Errorf("failed to encode recommendations: %w", err)
	}
	rec.Recommendations = string(recs)

	return rec, nil
}

func (r reportRecord) toModel() (model.HealthReport, error) {
	report := model.HealthReport{
		ID:          r.ID,
		ReportType:  r.ReportType,
		HealthScore: r.HealthScore,
		Alerts: model.AlertSummary{
			Total:    r.AlertsTotal,
			Critical: r.AlertsCritical,
			High:     r.AlertsHigh,
			Medium:   r.AlertsMedium,
			Low:      r.AlertsLow,
		},
		GeneratedAt: r.GeneratedAt,
	}

	if r.Metrics != "" {
		var snapshot model.MetricsSnapshot
		if err := json.Unmarshal([]byte(r.Metrics), &snapshot); err != nil {
			return report, fmt.Errorf("failed to decode report metrics: %w", err)
		}
		report.Metrics = &snapshot
	}
	if r.Trends != "" {
		var trends model.MetricTrends
		if err := json.Unmarshal([]byte(r.Trends), &trends); err != nil {
			return report, fmt.Errorf("failed to decode report trends: %w", err)
		}
		report.Trends = &trends
	}
	if r.Recommendations != "" {
		if err := json.Unmarshal([]byte(r.Recommendations), &report.Recommendations); err != nil {
			return report, fmt.Errorf("failed to decode recommendations: %w", err)
		}
	}

	return report, nil
}
