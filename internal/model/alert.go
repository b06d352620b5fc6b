// Package model provides data models for the vpswatch monitoring core.
package model

import "time"

// AlertStatus tracks an alert through its lifecycle.
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// Alert records one instance of a rule's condition being satisfied. Alerts
// are created active. Resolved is terminal: a rule re-triggering after its
// cooldown always creates a new Alert instead of reopening an old one.
type Alert struct {
	ID             string           `json:"id"`
	RuleID         string           `json:"rule_id"`
	RuleName       string           `json:"rule_name"`
	Message        string           `json:"message"`
	Severity       Severity         `json:"severity"`
	Status         AlertStatus      `json:"status"`
	MetricValue    float64          `json:"metric_value"`
	TriggeredAt    time.Time        `json:"triggered_at"`
	AcknowledgedAt *time.Time       `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time       `json:"resolved_at,omitempty"`
	Metadata       *MetricsSnapshot `json:"metadata,omitempty"` // snapshot captured at trigger time
}

// Acknowledge moves an active alert to acknowledged and records the time.
// It reports whether the status changed; calls on an already-acknowledged
// or resolved alert are no-ops, never errors.
func (a *Alert) Acknowledge(now time.Time) bool {
	if a.Status != AlertStatusActive {
		return false
	}
	a.Status = AlertStatusAcknowledged
	a.AcknowledgedAt = &now
	return true
}

// Resolve moves an active or acknowledged alert to resolved and records the
// time. It reports whether the status changed; no operation transitions out
// of resolved.
func (a *Alert) Resolve(now time.Time) bool {
	if a.Status != AlertStatusActive && a.Status != AlertStatusAcknowledged {
		return false
	}
	a.Status = AlertStatusResolved
	a.ResolvedAt = &now
	return true
}

// IsOpen returns true while the alert still needs operator attention.
func (a *Alert) IsOpen() bool {
	return a.Status == AlertStatusActive || a.Status == AlertStatusAcknowledged
}

// IsCritical returns true if this alert carries critical severity.
func (a *Alert) IsCritical() bool {
	return a.Severity == SeverityCritical
}

// AlertSummary provides aggregated alert counts grouped by severity.
type AlertSummary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// NewAlertSummary creates a new AlertSummary from a list of alerts.
func NewAlertSummary(alerts []Alert) AlertSummary {
	var summary AlertSummary
	for _, alert := range alerts {
		summary.Total++
		switch alert.Severity {
		case SeverityCritical:
			summary.Critical++
		case SeverityHigh:
			summary.High++
		case SeverityMedium:
			summary.Medium++
		case SeverityLow:
			summary.Low++
		}
	}
	return summary
}
