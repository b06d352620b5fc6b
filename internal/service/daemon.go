// Package service assembles the monitoring daemon from its parts and drives
// the periodic evaluate, report and cleanup cycles.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"vpswatch/internal/config"
	"vpswatch/internal/engine"
	"vpswatch/internal/health"
	"vpswatch/internal/metrics"
	"vpswatch/internal/model"
	"vpswatch/internal/notify"
	"vpswatch/internal/scheduler"
	"vpswatch/internal/store"
)

// Daemon wires the metrics source, alert engine, health reporter and
// notification channels together and runs them on their configured cadences.
type Daemon struct {
	cfg      *config.Config
	store    *store.Store
	source   metrics.Source
	engine   *engine.Engine
	reporter *health.Reporter
	notifier *notify.Multi
	version  string
	logger   zerolog.Logger
}

// DaemonOption is a functional option for configuring a Daemon.
type DaemonOption func(*Daemon)

// NewDaemon creates a new Daemon with the given dependencies. A nil notifier
// disables report delivery; every other dependency is required.
func NewDaemon(
	cfg *config.Config,
	st *store.Store,
	source metrics.Source,
	eng *engine.Engine,
	reporter *health.Reporter,
	notifier *notify.Multi,
	logger zerolog.Logger,
	opts ...DaemonOption,
) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if source == nil {
		return nil, fmt.Errorf("metrics source is required")
	}
	if eng == nil {
		return nil, fmt.Errorf("alert engine is required")
	}
	if reporter == nil {
		return nil, fmt.Errorf("health reporter is required")
	}

	d := &Daemon{
		cfg:      cfg,
		store:    st,
		source:   source,
		engine:   eng,
		reporter: reporter,
		notifier: notifier,
		version:  "dev",
		logger:   logger.With().Str("component", "daemon").Logger(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// WithVersion sets the daemon version reported in the startup log.
func WithVersion(version string) DaemonOption {
	return func(d *Daemon) {
		d.version = version
	}
}

// Run starts the alert engine and the periodic cycles, then blocks until the
// context is cancelled. Cancellation is honored at cycle boundaries: a cycle
// that is already in flight finishes before Run returns.
func (d *Daemon) Run(ctx context.Context) error {
	channels := 0
	if d.notifier != nil {
		channels = d.notifier.Channels()
	}
	d.logger.Info().
		Str("version", d.version).
		Dur("evaluate_interval", d.cfg.Monitor.EvaluateInterval).
		Dur("report_interval", d.cfg.Monitor.ReportInterval).
		Dur("cleanup_interval", d.cfg.Monitor.CleanupInterval).
		Int("notify_channels", channels).
		Msg("Daemon starting")

	if err := d.engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start alert engine: %w", err)
	}
	defer d.engine.Stop()

	sched := scheduler.New(d.logger)
	sched.Add("evaluate", d.cfg.Monitor.EvaluateInterval, true, d.evaluateCycle)
	sched.Add("report", d.cfg.Monitor.ReportInterval, false, d.reportCycle)
	sched.Add("cleanup", d.cfg.Monitor.CleanupInterval, false, d.cleanupCycle)

	err := sched.Run(ctx)
	d.logger.Info().Msg("Daemon stopped")
	return err
}

// evaluateCycle collects a metrics snapshot, persists it for trend history
// and runs it through the alert engine. A failed persist only loses one trend
// sample, so evaluation still runs against the live snapshot.
func (d *Daemon) evaluateCycle(ctx context.Context) error {
	snapshot, err := d.source.Collect(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect metrics: %w", err)
	}

	if err := d.store.SaveMetrics(ctx, snapshot); err != nil {
		d.logger.Warn().Err(err).Msg("Failed to persist metric sample")
	}

	alerts := d.engine.CheckMetrics(ctx, snapshot)
	if len(alerts) > 0 {
		d.logger.Info().Int("alerts", len(alerts)).Msg("Evaluation cycle raised alerts")
	}
	return nil
}

// reportCycle generates the scheduled health report and pushes it to the
// notification channels. Delivery is best-effort; a failed push never fails
// the cycle once the report is persisted.
func (d *Daemon) reportCycle(ctx context.Context) error {
	report, err := d.reporter.Generate(ctx, model.ReportTypeDaily)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if d.notifier != nil && d.notifier.Channels() > 0 {
		if err := d.notifier.PushReport(ctx, report); err != nil {
			d.logger.Warn().
				Err(err).
				Str("report_id", report.ID).
				Msg("Failed to deliver health report")
		}
	}
	return nil
}

// cleanupCycle deletes metric samples and resolved alerts that have aged out
// of their retention windows.
func (d *Daemon) cleanupCycle(ctx context.Context) error {
	now := time.Now()
	metricsBefore := now.AddDate(0, 0, -d.cfg.Monitor.Retention.MetricsDays)
	alertsBefore := now.AddDate(0, 0, -d.cfg.Monitor.Retention.AlertsDays)

	metricsDeleted, alertsDeleted, err := d.store.Cleanup(ctx, metricsBefore, alertsBefore)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	d.logger.Info().
		Int64("metrics_deleted", metricsDeleted).
		Int64("alerts_deleted", alertsDeleted).
		Msg("Retention cleanup completed")
	return nil
}
