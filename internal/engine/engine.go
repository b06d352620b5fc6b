// Package engine evaluates alert rules against metric snapshots and owns the
// alert lifecycle, including cooldown-based suppression of repeat triggers.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vpswatch/internal/model"
)

// Store is the persistence surface the engine depends on.
type Store interface {
	SaveRule(ctx context.Context, rule model.AlertRule) error
	ListRules(ctx context.Context) ([]model.AlertRule, error)
	CreateAlert(ctx context.Context, alert model.Alert) error
	ListActiveAlerts(ctx context.Context) ([]model.Alert, error)
	AcknowledgeAlert(ctx context.Context, id string, now time.Time) (model.Alert, error)
	ResolveAlert(ctx context.Context, id string, now time.Time) (model.Alert, error)
	LastTriggered(ctx context.Context) (map[string]time.Time, error)
}

// Notifier delivers triggered alerts to subscribers. Delivery is best-effort;
// the engine never treats a delivery failure as an evaluation failure.
type Notifier interface {
	PushAlert(ctx context.Context, alert model.Alert) error
}

// Engine is the single owner of the rule set and the per-rule cooldown state.
// Construct one per process and drive it through Start, CheckMetrics and Stop.
type Engine struct {
	store    Store
	notifier Notifier
	seed     []model.AlertRule
	logger   zerolog.Logger

	// now is replaceable in tests.
	now func() time.Time

	mu        sync.RWMutex
	started   bool
	rules     map[string]model.AlertRule
	lastFired map[string]time.Time
}

// New creates an alert engine. The seed rules are written to the store on
// Start, so a declarative rules file takes effect on every boot. A nil
// notifier disables delivery.
func New(store Store, notifier Notifier, seed []model.AlertRule, logger zerolog.Logger) *Engine {
	return &Engine{
		store:     store,
		notifier:  notifier,
		seed:      seed,
		logger:    logger.With().Str("component", "engine").Logger(),
		now:       time.Now,
		rules:     make(map[string]model.AlertRule),
		lastFired: make(map[string]time.Time),
	}
}

// Start seeds the rule store, loads the evaluation set and rehydrates the
// cooldown state from the most recent trigger per rule, so a process restart
// never causes an immediate re-trigger burst.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return fmt.Errorf("alert engine already started")
	}

	for _, rule := range e.seed {
		if err := e.store.SaveRule(ctx, rule); err != nil {
			return fmt.Errorf("failed to seed rule %s: %w", rule.ID, err)
		}
	}

	rules, err := e.store.ListRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	e.rules = make(map[string]model.AlertRule, len(rules))
	for _, rule := range rules {
		e.rules[rule.ID] = rule
	}

	lastFired, err := e.store.LastTriggered(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore cooldown state: %w", err)
	}
	e.lastFired = lastFired
	if e.lastFired == nil {
		e.lastFired = make(map[string]time.Time)
	}

	e.started = true
	e.logger.Info().
		Int("rules", len(e.rules)).
		Int("cooldowns_restored", len(e.lastFired)).
		Msg("Alert engine started")
	return nil
}

// Stop takes the engine out of service. Subsequent CheckMetrics calls are
// no-ops until the engine is started again.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return
	}
	e.started = false
	e.logger.Info().Msg("Alert engine stopped")
}

// CheckMetrics evaluates every enabled rule against the snapshot, in
// ascending rule id order, and returns the alerts created this cycle.
//
// A rule whose metric is absent from the snapshot is skipped for the cycle.
// A rule that triggered less than its cooldown ago is suppressed. A store or
// notifier failure for one rule never blocks evaluation of the remaining
// rules; a failed persist leaves the cooldown untouched so the next cycle
// retries the alert.
func (e *Engine) CheckMetrics(ctx context.Context, snapshot model.MetricsSnapshot) []model.Alert {
	e.mu.RLock()
	started := e.started
	e.mu.RUnlock()
	if !started {
		e.logger.Debug().Msg("Engine not started, skipping evaluation")
		return nil
	}

	now := e.now()
	var created []model.Alert

	for _, rule := range e.Rules() {
		if !rule.Enabled {
			continue
		}

		value, ok := snapshot.Extract(rule.MetricType)
		if !ok {
			e.logger.Debug().
				Str("rule_id", rule.ID).
				Str("metric_type", string(rule.MetricType)).
				Msg("Metric unavailable, skipping rule")
			continue
		}

		if !rule.Condition.Matches(value, rule.Threshold) {
			continue
		}

		if e.inCooldown(rule, now) {
			e.logger.Debug().
				Str("rule_id", rule.ID).
				Float64("value", value).
				Msg("Trigger suppressed by cooldown")
			continue
		}

		alert := e.newAlert(rule, value, snapshot, now)
		if err := e.store.CreateAlert(ctx, alert); err != nil {
			e.logger.Error().
				Err(err).
				Str("rule_id", rule.ID).
				Msg("Failed to persist alert")
			continue
		}
		e.markFired(rule.ID, now)

		e.logger.Warn().
			Str("rule_id", rule.ID).
			Str("alert_id", alert.ID).
			Str("severity", string(alert.Severity)).
			Float64("value", value).
			Msg("Alert triggered")

		if e.notifier != nil {
			if err := e.notifier.PushAlert(ctx, alert); err != nil {
				e.logger.Warn().
					Err(err).
					Str("alert_id", alert.ID).
					Msg("Failed to deliver alert notification")
			}
		}

		created = append(created, alert)
	}

	return created
}

// SaveRule validates the rule, persists it and admits it into the evaluation
// set. An invalid rule is rejected before touching the store.
func (e *Engine) SaveRule(ctx context.Context, rule model.AlertRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	if err := e.store.SaveRule(ctx, rule); err != nil {
		return fmt.Errorf("failed to persist rule %s: %w", rule.ID, err)
	}

	e.mu.Lock()
	e.rules[rule.ID] = rule
	e.mu.Unlock()

	e.logger.Info().Str("rule_id", rule.ID).Msg("Alert rule saved")
	return nil
}

// Rules returns a point-in-time copy of the evaluation set, ordered by id.
func (e *Engine) Rules() []model.AlertRule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rules := make([]model.AlertRule, 0, len(e.rules))
	for _, rule := range e.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}

// ActiveAlerts returns the alerts currently in the active state.
func (e *Engine) ActiveAlerts(ctx context.Context) ([]model.Alert, error) {
	return e.store.ListActiveAlerts(ctx)
}

// Acknowledge marks an alert as acknowledged. Repeating the call, or calling
// it on a resolved alert, is a no-op rather than an error.
func (e *Engine) Acknowledge(ctx context.Context, id string) (model.Alert, error) {
	return e.store.AcknowledgeAlert(ctx, id, e.now())
}

// Resolve marks an alert as resolved. Resolved is terminal; repeating the
// call is a no-op rather than an error.
func (e *Engine) Resolve(ctx context.Context, id string) (model.Alert, error) {
	return e.store.ResolveAlert(ctx, id, e.now())
}

func (e *Engine) inCooldown(rule model.AlertRule, now time.Time) bool {
	if rule.CooldownMinutes <= 0 {
		return false
	}
	e.mu.RLock()
	last, ok := e.lastFired[rule.ID]
	e.mu.RUnlock()
	if !ok {
		return false
	}
	return now.Sub(last) < rule.Cooldown()
}

func (e *Engine) markFired(ruleID string, now time.Time) {
	e.mu.Lock()
	e.lastFired[ruleID] = now
	e.mu.Unlock()
}

func (e *Engine) newAlert(rule model.AlertRule, value float64, snapshot model.MetricsSnapshot, now time.Time) model.Alert {
	unit := rule.MetricType.Unit()
	message := fmt.Sprintf("%s: %s%s (threshold: %s%s)",
		rule.Name,
		formatValue(value), unit,
		formatValue(rule.Threshold), unit)

	return model.Alert{
		ID:          uuid.NewString(),
		RuleID:      rule.ID,
		RuleName:    rule.Name,
		Message:     message,
		Severity:    rule.Severity,
		Status:      model.AlertStatusActive,
		MetricValue: value,
		TriggeredAt: now,
		Metadata:    snapshot.Clone(),
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
