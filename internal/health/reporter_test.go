package health

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"vpswatch/internal/model"
)

func createTestSnapshot(cpu, memory, disk, load1 float64) model.MetricsSnapshot {
	return model.MetricsSnapshot{
		Timestamp: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		CPU:       &model.CPUMetrics{UsagePercent: cpu},
		Memory:    &model.MemoryMetrics{UsagePercent: memory},
		Disk:      &model.DiskMetrics{UsagePercent: disk},
		Load:      &model.LoadMetrics{Load1: load1},
	}
}

func activeAlert(severity model.Severity) model.Alert {
	return model.Alert{
		ID:       "alert-" + string(severity),
		Severity: severity,
		Status:   model.AlertStatusActive,
	}
}

// ============================================================
// Score
// ============================================================

func TestScore_Healthy(t *testing.T) {
	snapshot := createTestSnapshot(50, 50, 50, 1.0)

	if got := Score(snapshot, nil); got != 100 {
		t.Errorf("expected score 100, got %d", got)
	}
}

func TestScore_HighCPUWithCriticalAlert(t *testing.T) {
	snapshot := createTestSnapshot(96, 50, 50, 1.0)
	alerts := []model.Alert{activeAlert(model.SeverityCritical)}

	// 100 - 20 (cpu > 90) - 15 (critical alert) = 65.
	if got := Score(snapshot, alerts); got != 65 {
		t.Errorf("expected score 65, got %d", got)
	}
}

func TestScore_Bands(t *testing.T) {
	tests := []struct {
		name     string
		snapshot model.MetricsSnapshot
		want     int
	}{
		{"cpu critical band", model.MetricsSnapshot{CPU: &model.CPUMetrics{UsagePercent: 95}}, 80},
		{"cpu high band", model.MetricsSnapshot{CPU: &model.CPUMetrics{UsagePercent: 75}}, 90},
		{"cpu elevated band", model.MetricsSnapshot{CPU: &model.CPUMetrics{UsagePercent: 55}}, 95},
		{"cpu at band edge", model.MetricsSnapshot{CPU: &model.CPUMetrics{UsagePercent: 50}}, 100},
		{"memory critical band", model.MetricsSnapshot{Memory: &model.MemoryMetrics{UsagePercent: 95}}, 80},
		{"memory high band", model.MetricsSnapshot{Memory: &model.MemoryMetrics{UsagePercent: 85}}, 90},
		{"memory elevated band", model.MetricsSnapshot{Memory: &model.MemoryMetrics{UsagePercent: 75}}, 95},
		{"disk critical band", model.MetricsSnapshot{Disk: &model.DiskMetrics{UsagePercent: 96}}, 85},
		{"disk high band", model.MetricsSnapshot{Disk: &model.DiskMetrics{UsagePercent: 90}}, 92},
		{"disk elevated band", model.MetricsSnapshot{Disk: &model.DiskMetrics{UsagePercent: 80}}, 97},
		{"load critical band", model.MetricsSnapshot{Load: &model.LoadMetrics{Load1: 9}}, 85},
		{"load high band", model.MetricsSnapshot{Load: &model.LoadMetrics{Load1: 5}}, 92},
		{"load elevated band", model.MetricsSnapshot{Load: &model.LoadMetrics{Load1: 3}}, 97},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.snapshot, nil); got != tt.want {
				t.Errorf("expected score %d, got %d", tt.want, got)
			}
		})
	}
}

func TestScore_AlertPenalties(t *testing.T) {
	tests := []struct {
		name   string
		alerts []model.Alert
		want   int
	}{
		{"low", []model.Alert{activeAlert(model.SeverityLow)}, 98},
		{"medium", []model.Alert{activeAlert(model.SeverityMedium)}, 95},
		{"high", []model.Alert{activeAlert(model.SeverityHigh)}, 90},
		{"critical", []model.Alert{activeAlert(model.SeverityCritical)}, 85},
		{
			"one of each",
			[]model.Alert{
				activeAlert(model.SeverityLow),
				activeAlert(model.SeverityMedium),
				activeAlert(model.SeverityHigh),
				activeAlert(model.SeverityCritical),
			},
			68,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(model.MetricsSnapshot{}, tt.alerts); got != tt.want {
				t.Errorf("expected score %d, got %d", tt.want, got)
			}
		})
	}
}

func TestScore_ClampedAtZero(t *testing.T) {
	snapshot := createTestSnapshot(99, 99, 99, 20)
	alerts := []model.Alert{
		activeAlert(model.SeverityCritical),
		activeAlert(model.SeverityCritical),
		activeAlert(model.SeverityCritical),
	}

	// Raw total is 100 - 70 - 45 = -15; the score must clamp to 0.
	if got := Score(snapshot, alerts); got != 0 {
		t.Errorf("expected score 0, got %d", got)
	}
}

func TestScore_MissingSectionsNoPenalty(t *testing.T) {
	if got := Score(model.MetricsSnapshot{}, nil); got != 100 {
		t.Errorf("expected score 100 for an empty snapshot, got %d", got)
	}
}

func TestScore_MonotonicAcrossBands(t *testing.T) {
	tests := []struct {
		name     string
		build    func(value float64) model.MetricsSnapshot
		sequence []float64
	}{
		{
			"cpu",
			func(v float64) model.MetricsSnapshot {
				return model.MetricsSnapshot{CPU: &model.CPUMetrics{UsagePercent: v}}
			},
			[]float64{10, 49, 51, 69, 71, 89, 91, 99},
		},
		{
			"memory",
			func(v float64) model.MetricsSnapshot {
				return model.MetricsSnapshot{Memory: &model.MemoryMetrics{UsagePercent: v}}
			},
			[]float64{10, 69, 71, 79, 81, 89, 91, 99},
		},
		{
			"disk",
			func(v float64) model.MetricsSnapshot {
				return model.MetricsSnapshot{Disk: &model.DiskMetrics{UsagePercent: v}}
			},
			[]float64{10, 74, 76, 84, 86, 94, 96, 99},
		},
		{
			"load",
			func(v float64) model.MetricsSnapshot {
				return model.MetricsSnapshot{Load: &model.LoadMetrics{Load1: v}}
			},
			[]float64{0.5, 1.9, 2.1, 3.9, 4.1, 7.9, 8.1, 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			previous := 100
			for _, value := range tt.sequence {
				score := Score(tt.build(value), nil)
				if score > previous {
					t.Errorf("score increased from %d to %d at value %v", previous, score, value)
				}
				previous = score
			}
		})
	}
}

// ============================================================
// Recommendations
// ============================================================

func TestRecommendations_Healthy(t *testing.T) {
	snapshot := createTestSnapshot(50, 50, 50, 1.0)

	recs := Recommendations(snapshot, nil)
	want := []string{"System healthy. Continue regular monitoring."}
	if !reflect.DeepEqual(recs, want) {
		t.Errorf("expected %v, got %v", want, recs)
	}
}

func TestRecommendations_BreachedBands(t *testing.T) {
	snapshot := createTestSnapshot(75, 50, 88, 1.0)

	recs := Recommendations(snapshot, nil)
	want := []string{
		"CPU usage is high. Review running processes.",
		"Disk usage is high. Clean up old logs and unused images.",
	}
	if !reflect.DeepEqual(recs, want) {
		t.Errorf("expected %v, got %v", want, recs)
	}
}

func TestRecommendations_CriticalAlertCount(t *testing.T) {
	alerts := []model.Alert{
		activeAlert(model.SeverityCritical),
		activeAlert(model.SeverityCritical),
		activeAlert(model.SeverityHigh),
	}

	recs := Recommendations(model.MetricsSnapshot{}, alerts)
	want := []string{"2 critical alerts are active. Address them before anything else."}
	if !reflect.DeepEqual(recs, want) {
		t.Errorf("expected %v, got %v", want, recs)
	}
}

func TestRecommendations_SingleCriticalAlert(t *testing.T) {
	alerts := []model.Alert{activeAlert(model.SeverityCritical)}

	recs := Recommendations(model.MetricsSnapshot{}, alerts)
	want := []string{"1 critical alert is active. Address it before anything else."}
	if !reflect.DeepEqual(recs, want) {
		t.Errorf("expected %v, got %v", want, recs)
	}
}

func TestRecommendations_OpenAlertsSuppressHealthy(t *testing.T) {
	alerts := []model.Alert{activeAlert(model.SeverityLow)}

	recs := Recommendations(model.MetricsSnapshot{}, alerts)
	if len(recs) != 0 {
		t.Errorf("expected no recommendations with open non-critical alerts, got %v", recs)
	}
}

// ============================================================
// BuildReport
// ============================================================

func TestBuildReport(t *testing.T) {
	snapshot := createTestSnapshot(55, 50, 50, 1.0)
	alerts := []model.Alert{activeAlert(model.SeverityHigh)}
	trends := &model.MetricTrends{WindowHours: 24, CPUAvg: 48.5, Samples: 120}
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	report := BuildReport(model.ReportTypeManual, snapshot, alerts, trends, now)

	if report.ID == "" {
		t.Error("expected report to have an id")
	}
	if report.ReportType != model.ReportTypeManual {
		t.Errorf("expected report type manual, got %s", report.ReportType)
	}
	// 100 - 5 (cpu > 50) - 10 (high alert) = 85.
	if report.HealthScore != 85 {
		t.Errorf("expected score 85, got %d", report.HealthScore)
	}
	if report.Alerts.Total != 1 || report.Alerts.High != 1 {
		t.Errorf("unexpected alert summary: %+v", report.Alerts)
	}
	if len(report.Recommendations) != 1 {
		t.Errorf("expected 1 recommendation, got %v", report.Recommendations)
	}
	if !report.GeneratedAt.Equal(now) {
		t.Errorf("expected generated at %v, got %v", now, report.GeneratedAt)
	}

	// The report must hold its own copy of the snapshot.
	snapshot.CPU.UsagePercent = 99
	if report.Metrics.CPU.UsagePercent != 55 {
		t.Error("expected report metrics to be unaffected by later snapshot mutation")
	}
}

// ============================================================
// Reporter
// ============================================================

type fakeSource struct {
	snapshot model.MetricsSnapshot
	err      error
}

func (f *fakeSource) Collect(_ context.Context) (model.MetricsSnapshot, error) {
	return f.snapshot, f.err
}

type fakeStore struct {
	alerts    []model.Alert
	alertsErr error
	averages  map[model.MetricType]float64
	samples   int
	avgErr    error
	saved     []model.HealthReport
	saveErr   error
}

func (f *fakeStore) ListActiveAlerts(_ context.Context) ([]model.Alert, error) {
	return f.alerts, f.alertsErr
}

func (f *fakeStore) MetricAverages(_ context.Context, _ time.Time) (map[model.MetricType]float64, int, error) {
	return f.averages, f.samples, f.avgErr
}

func (f *fakeStore) SaveReport(_ context.Context, report model.HealthReport) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, report)
	return nil
}

func TestReporter_Generate(t *testing.T) {
	source := &fakeSource{snapshot: createTestSnapshot(55, 50, 50, 1.0)}
	store := &fakeStore{
		alerts:   []model.Alert{activeAlert(model.SeverityHigh)},
		averages: map[model.MetricType]float64{model.MetricCPU: 48.5, model.MetricMemory: 60, model.MetricDisk: 70},
		samples:  120,
	}
	r := NewReporter(source, store, zerolog.Nop())
	r.now = func() time.Time { return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC) }

	report, err := r.Generate(context.Background(), model.ReportTypeDaily)
	if err != nil {
		t.Fatalf("failed to generate report: %v", err)
	}

	if report.ReportType != model.ReportTypeDaily {
		t.Errorf("expected report type daily, got %s", report.ReportType)
	}
	if report.HealthScore != 85 {
		t.Errorf("expected score 85, got %d", report.HealthScore)
	}
	if report.Trends == nil {
		t.Fatal("expected trend context")
	}
	if report.Trends.WindowHours != 24 || report.Trends.CPUAvg != 48.5 || report.Trends.Samples != 120 {
		t.Errorf("unexpected trends: %+v", report.Trends)
	}
	if len(store.saved) != 1 || store.saved[0].ID != report.ID {
		t.Errorf("expected the returned report to be persisted")
	}
}

func TestReporter_Generate_SourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("source down")}
	r := NewReporter(source, &fakeStore{}, zerolog.Nop())

	if _, err := r.Generate(context.Background(), model.ReportTypeDaily); err == nil {
		t.Fatal("expected error when the source fails, got nil")
	}
}

func TestReporter_Generate_SaveError(t *testing.T) {
	source := &fakeSource{snapshot: createTestSnapshot(50, 50, 50, 1.0)}
	store := &fakeStore{saveErr: errors.New("store down")}
	r := NewReporter(source, store, zerolog.Nop())

	if _, err := r.Generate(context.Background(), model.ReportTypeDaily); err == nil {
		t.Fatal("expected error when persisting fails, got nil")
	}
}

func TestReporter_Generate_TrendFailureDropsTrends(t *testing.T) {
	source := &fakeSource{snapshot: createTestSnapshot(50, 50, 50, 1.0)}
	store := &fakeStore{avgErr: errors.New("query failed")}
	r := NewReporter(source, store, zerolog.Nop())

	report, err := r.Generate(context.Background(), model.ReportTypeManual)
	if err != nil {
		t.Fatalf("expected report despite trend failure, got %v", err)
	}
	if report.Trends != nil {
		t.Errorf("expected no trends, got %+v", report.Trends)
	}
	if len(store.saved) != 1 {
		t.Error("expected report to be persisted")
	}
}

func TestReporter_Generate_NoSamplesNoTrends(t *testing.T) {
	source := &fakeSource{snapshot: createTestSnapshot(50, 50, 50, 1.0)}
	store := &fakeStore{samples: 0}
	r := NewReporter(source, store, zerolog.Nop())

	report, err := r.Generate(context.Background(), model.ReportTypeManual)
	if err != nil {
		t.Fatalf("failed to generate report: %v", err)
	}
	if report.Trends != nil {
		t.Errorf("expected no trends without samples, got %+v", report.Trends)
	}
}
