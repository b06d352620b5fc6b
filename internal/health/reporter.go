// Package health derives a 0-100 health score and operator recommendations
// from a metrics snapshot and the currently active alerts. Scoring is a pure
// function of its inputs so reports are reproducible in tests.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vpswatch/internal/metrics"
	"vpswatch/internal/model"
)

// band is one scoring step for a metric: breaching the threshold costs the
// penalty and emits the advice string.
type band struct {
	threshold float64
	penalty   int
	advice    string
}

// Band tables are ordered most severe first; only the first matching band
// applies per metric.
var (
	cpuBands = []band{
		{90, 20, "CPU usage is critically high. Investigate runaway processes immediately."},
		{70, 10, "CPU usage is high. Review running processes."},
		{50, 5, "CPU usage is elevated. Keep an eye on load-heavy services."},
	}
	memoryBands = []band{
		{90, 20, "Memory usage is critically high. Restart leaking services or add swap."},
		{80, 10, "Memory usage is high. Check for memory-hungry processes."},
		{70, 5, "Memory usage is elevated. Monitor for growth."},
	}
	diskBands = []band{
		{95, 15, "Disk is almost full. Free up space immediately or expand the volume."},
		{85, 8, "Disk usage is high. Clean up old logs and unused images."},
		{75, 3, "Disk usage is elevated. Plan a cleanup."},
	}
	loadBands = []band{
		{8, 15, "Load average is critically high. The system is heavily oversubscribed."},
		{4, 8, "Load average is high. Check for CPU or I/O contention."},
		{2, 3, "Load average is elevated. Watch for sustained pressure."},
	}
)

// scoredMetrics pairs each scored metric type with its band table, in the
// order bands are checked and recommendations are emitted.
var scoredMetrics = []struct {
	metricType model.MetricType
	bands      []band
}{
	{model.MetricCPU, cpuBands},
	{model.MetricMemory, memoryBands},
	{model.MetricDisk, diskBands},
	{model.MetricLoad, loadBands},
}

func severityPenalty(s model.Severity) int {
	switch s {
	case model.SeverityCritical:
		return 15
	case model.SeverityHigh:
		return 10
	case model.SeverityMedium:
		return 5
	case model.SeverityLow:
		return 2
	default:
		return 0
	}
}

func matchBand(bands []band, value float64) (band, bool) {
	for _, b := range bands {
		if value > b.threshold {
			return b, true
		}
	}
	return band{}, false
}

// Score computes the health score for a snapshot and the active alerts:
// additive penalties subtracted from 100, clamped to [0,100]. A metric absent
// from the snapshot contributes no penalty.
func Score(snapshot model.MetricsSnapshot, alerts []model.Alert) int {
	score := 100

	for _, m := range scoredMetrics {
		value, ok := snapshot.Extract(m.metricType)
		if !ok {
			continue
		}
		if b, breached := matchBand(m.bands, value); breached {
			score -= b.penalty
		}
	}

	for _, alert := range alerts {
		score -= severityPenalty(alert.Severity)
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Recommendations derives operator advice from the same band checks used for
// scoring: one string per breached band, one keyed on the critical alert
// count, and a single healthy message when nothing is breached and no alerts
// are active.
func Recommendations(snapshot model.MetricsSnapshot, alerts []model.Alert) []string {
	var recs []string

	for _, m := range scoredMetrics {
		value, ok := snapshot.Extract(m.metricType)
		if !ok {
			continue
		}
		if b, breached := matchBand(m.bands, value); breached {
			recs = append(recs, b.advice)
		}
	}

	critical := 0
	for _, alert := range alerts {
		if alert.IsCritical() {
			critical++
		}
	}
	if critical == 1 {
		recs = append(recs, "1 critical alert is active. Address it before anything else.")
	} else if critical > 1 {
		recs = append(recs, fmt.Sprintf("%d critical alerts are active. Address them before anything else.", critical))
	}

	if len(recs) == 0 && len(alerts) == 0 {
		recs = append(recs, "System healthy. Continue regular monitoring.")
	}
	return recs
}

// BuildReport assembles an immutable health report from its inputs. The
// snapshot is deep-copied so later mutation never alters a persisted report.
func BuildReport(reportType string, snapshot model.MetricsSnapshot, alerts []model.Alert, trends *model.MetricTrends, now time.Time) model.HealthReport {
	return model.HealthReport{
		ID:              uuid.NewString(),
		ReportType:      reportType,
		HealthScore:     Score(snapshot, alerts),
		Metrics:         snapshot.Clone(),
		Trends:          trends,
		Alerts:          model.NewAlertSummary(alerts),
		Recommendations: Recommendations(snapshot, alerts),
		GeneratedAt:     now,
	}
}

// Store is the persistence surface the reporter depends on.
type Store interface {
	ListActiveAlerts(ctx context.Context) ([]model.Alert, error)
	MetricAverages(ctx context.Context, since time.Time) (map[model.MetricType]float64, int, error)
	SaveReport(ctx context.Context, report model.HealthReport) error
}

// Reporter generates and persists health reports from a live metrics source.
type Reporter struct {
	source metrics.Source
	store  Store
	logger zerolog.Logger

	// now and window are replaceable in tests.
	now    func() time.Time
	window time.Duration
}

// NewReporter creates a health reporter with a 24 hour trend window.
func NewReporter(source metrics.Source, store Store, logger zerolog.Logger) *Reporter {
	return &Reporter{
		source: source,
		store:  store,
		logger: logger.With().Str("component", "health").Logger(),
		now:    time.Now,
		window: 24 * time.Hour,
	}
}

// Generate collects a fresh snapshot, reads the active alerts and trend
// averages, builds the report and persists it. Source and store failures
// abort the cycle; a trend query failure only drops the trend context.
func (r *Reporter) Generate(ctx context.Context, reportType string) (model.HealthReport, error) {
	snapshot, err := r.source.Collect(ctx)
	if err != nil {
		return model.HealthReport{}, fmt.Errorf("failed to collect metrics: %w", err)
	}

	alerts, err := r.store.ListActiveAlerts(ctx)
	if err != nil {
		return model.HealthReport{}, fmt.Errorf("failed to list active alerts: %w", err)
	}

	now := r.now()
	report := BuildReport(reportType, snapshot, alerts, r.trends(ctx, now), now)

	if err := r.store.SaveReport(ctx, report); err != nil {
		return model.HealthReport{}, fmt.Errorf("failed to persist report: %w", err)
	}

	r.logger.Info().
		Str("report_id", report.ID).
		Str("report_type", report.ReportType).
		Int("score", report.HealthScore).
		Int("active_alerts", report.Alerts.Total).
		Msg("Health report generated")
	return report, nil
}

func (r *Reporter) trends(ctx context.Context, now time.Time) *model.MetricTrends {
	averages, samples, err := r.store.MetricAverages(ctx, now.Add(-r.window))
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to compute metric trends")
		return nil
	}
	if samples == 0 {
		return nil
	}
	return &model.MetricTrends{
		WindowHours: int(r.window / time.Hour),
		CPUAvg:      averages[model.MetricCPU],
		MemoryAvg:   averages[model.MetricMemory],
		DiskAvg:     averages[model.MetricDisk],
		Samples:     samples,
	}
}
