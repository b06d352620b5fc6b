package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"vpswatch/internal/model"
)

// fakeStore is an in-memory Store that records calls and can be told to fail
// specific operations.
type fakeStore struct {
	mu            sync.Mutex
	rules         map[string]model.AlertRule
	alerts        []model.Alert
	last          map[string]time.Time
	failCreateFor map[string]bool
	saveRuleErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rules:         make(map[string]model.AlertRule),
		last:          make(map[string]time.Time),
		failCreateFor: make(map[string]bool),
	}
}

func (f *fakeStore) SaveRule(_ context.Context, rule model.AlertRule) error {
	if f.saveRuleErr != nil {
		return f.saveRuleErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[rule.ID] = rule
	return nil
}

func (f *fakeStore) ListRules(_ context.Context) ([]model.AlertRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rules := make([]model.AlertRule, 0, len(f.rules))
	for _, rule := range f.rules {
		rules = append(rules, rule)
	}
	return rules, nil
}

func (f *fakeStore) CreateAlert(_ context.Context, alert model.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateFor[alert.RuleID] {
		return errors.New("store unavailable")
	}
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeStore) ListActiveAlerts(_ context.Context) ([]model.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var active []model.Alert
	for _, alert := range f.alerts {
		if alert.Status == model.AlertStatusActive {
			active = append(active, alert)
		}
	}
	return active, nil
}

func (f *fakeStore) AcknowledgeAlert(_ context.Context, id string, now time.Time) (model.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.alerts {
		if f.alerts[i].ID == id {
			f.alerts[i].Acknowledge(now)
			return f.alerts[i], nil
		}
	}
	return model.Alert{}, errors.New("alert not found")
}

func (f *fakeStore) ResolveAlert(_ context.Context, id string, now time.Time) (model.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.alerts {
		if f.alerts[i].ID == id {
			f.alerts[i].Resolve(now)
			return f.alerts[i], nil
		}
	}
	return model.Alert{}, errors.New("alert not found")
}

func (f *fakeStore) LastTriggered(_ context.Context) (map[string]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	last := make(map[string]time.Time, len(f.last))
	for id, at := range f.last {
		last[id] = at
	}
	return last, nil
}

func (f *fakeStore) storedAlerts() []model.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Alert(nil), f.alerts...)
}

// fakeNotifier records pushed alerts and can be told to fail.
type fakeNotifier struct {
	mu     sync.Mutex
	pushed []model.Alert
	err    error
}

func (f *fakeNotifier) PushAlert(_ context.Context, alert model.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.pushed = append(f.pushed, alert)
	return nil
}

func (f *fakeNotifier) pushedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushed)
}

func createCPURule() model.AlertRule {
	return model.AlertRule{
		ID:              "cpu_high",
		Name:            "High CPU Usage",
		MetricType:      model.MetricCPU,
		Condition:       model.ConditionGreaterThan,
		Threshold:       80,
		Severity:        model.SeverityHigh,
		Enabled:         true,
		CooldownMinutes: 15,
	}
}

func snapshotWithCPU(usage float64) model.MetricsSnapshot {
	return model.MetricsSnapshot{
		Timestamp: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		CPU:       &model.CPUMetrics{UsagePercent: usage},
	}
}

func startTestEngine(t *testing.T, store *fakeStore, notifier Notifier, seed []model.AlertRule) *Engine {
	t.Helper()
	e := New(store, notifier, seed, zerolog.Nop())
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("failed to start engine: %v", err)
	}
	return e
}

// ============================================================
// CheckMetrics
// ============================================================

func TestCheckMetrics_CreatesAlert(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	e := startTestEngine(t, store, notifier, []model.AlertRule{createCPURule()})

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	created := e.CheckMetrics(context.Background(), snapshotWithCPU(85))
	if len(created) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(created))
	}

	alert := created[0]
	if alert.ID == "" {
		t.Error("expected alert to have an id")
	}
	if alert.RuleID != "cpu_high" {
		t.Errorf("expected rule id cpu_high, got %s", alert.RuleID)
	}
	if alert.Status != model.AlertStatusActive {
		t.Errorf("expected status active, got %s", alert.Status)
	}
	if alert.Severity != model.SeverityHigh {
		t.Errorf("expected severity high, got %s", alert.Severity)
	}
	if alert.MetricValue != 85 {
		t.Errorf("expected metric value 85, got %v", alert.MetricValue)
	}
	if !alert.TriggeredAt.Equal(now) {
		t.Errorf("expected triggered at %v, got %v", now, alert.TriggeredAt)
	}
	if alert.Message != "High CPU Usage: 85% (threshold: 80%)" {
		t.Errorf("unexpected message: %q", alert.Message)
	}
	if alert.Metadata == nil || alert.Metadata.CPU == nil || alert.Metadata.CPU.UsagePercent != 85 {
		t.Errorf("expected metadata snapshot with cpu 85, got %+v", alert.Metadata)
	}

	if got := len(store.storedAlerts()); got != 1 {
		t.Errorf("expected 1 persisted alert, got %d", got)
	}
	if notifier.pushedCount() != 1 {
		t.Errorf("expected 1 notification, got %d", notifier.pushedCount())
	}
}

func TestCheckMetrics_CooldownWindow(t *testing.T) {
	store := newFakeStore()
	e := startTestEngine(t, store, nil, []model.AlertRule{createCPURule()})

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	current := base
	e.now = func() time.Time { return current }
	ctx := context.Background()

	first := e.CheckMetrics(ctx, snapshotWithCPU(85))
	if len(first) != 1 {
		t.Fatalf("expected 1 alert at t=0, got %d", len(first))
	}

	// Five minutes later the rule still matches but is inside the 15 minute
	// cooldown, so no new alert appears.
	current = base.Add(5 * time.Minute)
	second := e.CheckMetrics(ctx, snapshotWithCPU(90))
	if len(second) != 0 {
		t.Fatalf("expected no alert at t=5m, got %d", len(second))
	}

	// After the cooldown expires a fresh alert is created.
	current = base.Add(16 * time.Minute)
	third := e.CheckMetrics(ctx, snapshotWithCPU(90))
	if len(third) != 1 {
		t.Fatalf("expected 1 alert at t=16m, got %d", len(third))
	}
	if third[0].ID == first[0].ID {
		t.Error("expected a new alert instance, not a reopened one")
	}

	if got := len(store.storedAlerts()); got != 2 {
		t.Errorf("expected 2 persisted alerts in total, got %d", got)
	}
}

func TestCheckMetrics_Deterministic(t *testing.T) {
	rules := []model.AlertRule{
		{
			ID: "memory_high", Name: "High Memory Usage", MetricType: model.MetricMemory,
			Condition: model.ConditionGreaterThan, Threshold: 70,
			Severity: model.SeverityHigh, Enabled: true,
		},
		{
			ID: "cpu_high", Name: "High CPU Usage", MetricType: model.MetricCPU,
			Condition: model.ConditionGreaterThan, Threshold: 70,
			Severity: model.SeverityHigh, Enabled: true,
		},
		{
			ID: "disk_high", Name: "High Disk Usage", MetricType: model.MetricDisk,
			Condition: model.ConditionGreaterThan, Threshold: 70,
			Severity: model.SeverityHigh, Enabled: true,
		},
	}
	store := newFakeStore()
	e := startTestEngine(t, store, nil, rules)

	snapshot := model.MetricsSnapshot{
		Timestamp: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		CPU:       &model.CPUMetrics{UsagePercent: 90},
		Memory:    &model.MemoryMetrics{UsagePercent: 90},
		Disk:      &model.DiskMetrics{UsagePercent: 90},
	}
	want := []string{"cpu_high", "disk_high", "memory_high"}

	// Zero-cooldown rules fire on every run, so repeated runs must yield the
	// same rule sequence in ascending id order.
	for run := 0; run < 3; run++ {
		created := e.CheckMetrics(context.Background(), snapshot)
		if len(created) != len(want) {
			t.Fatalf("run %d: expected %d alerts, got %d", run, len(want), len(created))
		}
		for i, alert := range created {
			if alert.RuleID != want[i] {
				t.Errorf("run %d: expected rule %s at position %d, got %s", run, want[i], i, alert.RuleID)
			}
		}
	}
}

func TestCheckMetrics_MissingMetricSkipsRule(t *testing.T) {
	containersRule := model.AlertRule{
		ID: "containers_down", Name: "Containers Down", MetricType: model.MetricContainersRunning,
		Condition: model.ConditionLessThan, Threshold: 1,
		Severity: model.SeverityHigh, Enabled: true,
	}
	store := newFakeStore()
	e := startTestEngine(t, store, nil, []model.AlertRule{createCPURule(), containersRule})

	// The snapshot has no docker section, so the containers rule is not
	// evaluable; the cpu rule must still fire.
	created := e.CheckMetrics(context.Background(), snapshotWithCPU(95))
	if len(created) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(created))
	}
	if created[0].RuleID != "cpu_high" {
		t.Errorf("expected cpu_high to fire, got %s", created[0].RuleID)
	}
}

func TestCheckMetrics_DisabledRuleSkipped(t *testing.T) {
	rule := createCPURule()
	rule.Enabled = false
	store := newFakeStore()
	e := startTestEngine(t, store, nil, []model.AlertRule{rule})

	created := e.CheckMetrics(context.Background(), snapshotWithCPU(99))
	if len(created) != 0 {
		t.Fatalf("expected no alerts from a disabled rule, got %d", len(created))
	}
}

func TestCheckMetrics_ContainersRunningLowerBound(t *testing.T) {
	rule := model.AlertRule{
		ID: "containers_down", Name: "Containers Down", MetricType: model.MetricContainersRunning,
		Condition: model.ConditionLessThan, Threshold: 1,
		Severity: model.SeverityHigh, Enabled: true,
	}
	store := newFakeStore()
	e := startTestEngine(t, store, nil, []model.AlertRule{rule})
	ctx := context.Background()

	down := model.MetricsSnapshot{
		Timestamp: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Docker:    &model.DockerMetrics{Running: 0, Stopped: 3, Total: 3},
	}
	if created := e.CheckMetrics(ctx, down); len(created) != 1 {
		t.Fatalf("expected alert with 0 running containers, got %d", len(created))
	}

	up := model.MetricsSnapshot{
		Timestamp: time.Date(2025, 6, 1, 10, 1, 0, 0, time.UTC),
		Docker:    &model.DockerMetrics{Running: 2, Stopped: 1, Total: 3},
	}
	if created := e.CheckMetrics(ctx, up); len(created) != 0 {
		t.Fatalf("expected no alert with 2 running containers, got %d", len(created))
	}
}

func TestCheckMetrics_PersistFailureIsolatesRule(t *testing.T) {
	memoryRule := model.AlertRule{
		ID: "memory_high", Name: "High Memory Usage", MetricType: model.MetricMemory,
		Condition: model.ConditionGreaterThan, Threshold: 85,
		Severity: model.SeverityHigh, Enabled: true, CooldownMinutes: 15,
	}
	store := newFakeStore()
	store.failCreateFor["cpu_high"] = true
	e := startTestEngine(t, store, nil, []model.AlertRule{createCPURule(), memoryRule})

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }
	ctx := context.Background()

	snapshot := model.MetricsSnapshot{
		Timestamp: now,
		CPU:       &model.CPUMetrics{UsagePercent: 95},
		Memory:    &model.MemoryMetrics{UsagePercent: 92},
	}

	created := e.CheckMetrics(ctx, snapshot)
	if len(created) != 1 {
		t.Fatalf("expected the surviving rule to fire, got %d alerts", len(created))
	}
	if created[0].RuleID != "memory_high" {
		t.Errorf("expected memory_high to fire, got %s", created[0].RuleID)
	}

	// The failed persist must not have marked the cooldown, so once the store
	// recovers the same cycle retries the cpu alert. The memory rule is now
	// inside its cooldown.
	store.failCreateFor["cpu_high"] = false
	retried := e.CheckMetrics(ctx, snapshot)
	if len(retried) != 1 {
		t.Fatalf("expected 1 alert on retry, got %d", len(retried))
	}
	if retried[0].RuleID != "cpu_high" {
		t.Errorf("expected cpu_high to fire on retry, got %s", retried[0].RuleID)
	}
}

func TestCheckMetrics_NotifierFailureKeepsAlert(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{err: errors.New("delivery failed")}
	e := startTestEngine(t, store, notifier, []model.AlertRule{createCPURule()})

	created := e.CheckMetrics(context.Background(), snapshotWithCPU(90))
	if len(created) != 1 {
		t.Fatalf("expected 1 alert despite notifier failure, got %d", len(created))
	}

	stored := store.storedAlerts()
	if len(stored) != 1 {
		t.Fatalf("expected alert to stay persisted, got %d", len(stored))
	}
	if stored[0].Status != model.AlertStatusActive {
		t.Errorf("expected alert to stay active, got %s", stored[0].Status)
	}
}

func TestCheckMetrics_NotStarted(t *testing.T) {
	e := New(newFakeStore(), nil, nil, zerolog.Nop())

	created := e.CheckMetrics(context.Background(), snapshotWithCPU(99))
	if created != nil {
		t.Errorf("expected no evaluation before start, got %d alerts", len(created))
	}
}

func TestCheckMetrics_AfterStop(t *testing.T) {
	store := newFakeStore()
	e := startTestEngine(t, store, nil, []model.AlertRule{createCPURule()})
	e.Stop()

	created := e.CheckMetrics(context.Background(), snapshotWithCPU(99))
	if created != nil {
		t.Errorf("expected no evaluation after stop, got %d alerts", len(created))
	}
}

// ============================================================
// Start
// ============================================================

func TestStart_SeedsRules(t *testing.T) {
	memoryRule := createCPURule()
	memoryRule.ID = "memory_high"
	memoryRule.Name = "High Memory Usage"
	memoryRule.MetricType = model.MetricMemory

	store := newFakeStore()
	e := startTestEngine(t, store, nil, []model.AlertRule{createCPURule(), memoryRule})

	rules := e.Rules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules in evaluation set, got %d", len(rules))
	}
	if rules[0].ID != "cpu_high" || rules[1].ID != "memory_high" {
		t.Errorf("expected rules ordered by id, got %s, %s", rules[0].ID, rules[1].ID)
	}
	if len(store.rules) != 2 {
		t.Errorf("expected seed rules persisted, got %d", len(store.rules))
	}
}

func TestStart_AlreadyStarted(t *testing.T) {
	store := newFakeStore()
	e := startTestEngine(t, store, nil, nil)

	if err := e.Start(context.Background()); err == nil {
		t.Error("expected error when starting twice, got nil")
	}
}

func TestStart_RehydratesCooldowns(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	store := newFakeStore()
	// A trigger five minutes before this process started.
	store.last["cpu_high"] = base.Add(-5 * time.Minute)

	e := startTestEngine(t, store, nil, []model.AlertRule{createCPURule()})
	current := base
	e.now = func() time.Time { return current }
	ctx := context.Background()

	// Still inside the cooldown inherited from the previous process.
	if created := e.CheckMetrics(ctx, snapshotWithCPU(95)); len(created) != 0 {
		t.Fatalf("expected restored cooldown to suppress the trigger, got %d alerts", len(created))
	}

	current = base.Add(11 * time.Minute)
	if created := e.CheckMetrics(ctx, snapshotWithCPU(95)); len(created) != 1 {
		t.Fatalf("expected trigger after restored cooldown expired, got %d alerts", len(created))
	}
}

// ============================================================
// Rule management
// ============================================================

func TestSaveRule_RejectsInvalid(t *testing.T) {
	store := newFakeStore()
	e := startTestEngine(t, store, nil, nil)

	invalid := createCPURule()
	invalid.Condition = "ne"

	if err := e.SaveRule(context.Background(), invalid); err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if len(e.Rules()) != 0 {
		t.Error("expected invalid rule to stay out of the evaluation set")
	}
	if len(store.rules) != 0 {
		t.Error("expected invalid rule to stay out of the store")
	}
}

func TestSaveRule_AdmitsIntoEvaluationSet(t *testing.T) {
	store := newFakeStore()
	e := startTestEngine(t, store, nil, nil)
	ctx := context.Background()

	if created := e.CheckMetrics(ctx, snapshotWithCPU(95)); len(created) != 0 {
		t.Fatalf("expected no alerts without rules, got %d", len(created))
	}

	if err := e.SaveRule(ctx, createCPURule()); err != nil {
		t.Fatalf("failed to save rule: %v", err)
	}
	if created := e.CheckMetrics(ctx, snapshotWithCPU(95)); len(created) != 1 {
		t.Fatalf("expected saved rule to fire, got %d alerts", len(created))
	}
}

func TestRules_ReturnsCopy(t *testing.T) {
	store := newFakeStore()
	e := startTestEngine(t, store, nil, []model.AlertRule{createCPURule()})

	rules := e.Rules()
	rules[0].Threshold = 5

	if e.Rules()[0].Threshold != 80 {
		t.Error("expected mutation of the returned slice to leave the engine untouched")
	}
}

// ============================================================
// Lifecycle operations
// ============================================================

func TestAcknowledgeAndResolve(t *testing.T) {
	store := newFakeStore()
	e := startTestEngine(t, store, nil, []model.AlertRule{createCPURule()})
	ctx := context.Background()

	created := e.CheckMetrics(ctx, snapshotWithCPU(90))
	if len(created) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(created))
	}
	id := created[0].ID

	acked, err := e.Acknowledge(ctx, id)
	if err != nil {
		t.Fatalf("failed to acknowledge: %v", err)
	}
	if acked.Status != model.AlertStatusAcknowledged {
		t.Errorf("expected status acknowledged, got %s", acked.Status)
	}

	resolved, err := e.Resolve(ctx, id)
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if resolved.Status != model.AlertStatusResolved {
		t.Errorf("expected status resolved, got %s", resolved.Status)
	}

	// Resolving again is a no-op, never an error.
	again, err := e.Resolve(ctx, id)
	if err != nil {
		t.Fatalf("expected repeated resolve to succeed, got %v", err)
	}
	if again.Status != model.AlertStatusResolved {
		t.Errorf("expected status to stay resolved, got %s", again.Status)
	}
}
