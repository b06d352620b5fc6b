package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"vpswatch/internal/model"
)

// ErrAlertNotFound is returned when an alert id does not exist.
var ErrAlertNotFound = errors.New("alert not found")

// CreateAlert persists a newly triggered alert.
func (s *Store) CreateAlert(ctx context.Context, alert model.Alert) error {
	rec, err := newAlertRecord(alert)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create alert %s: %w", alert.ID, err)
	}
	return nil
}

// GetAlert loads a single alert by id.
func (s *Store) GetAlert(ctx context.Context, id string) (model.Alert, error) {
	var rec alertRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Alert{}, fmt.Errorf("%w: %s", ErrAlertNotFound, id)
	}
	if err != nil {
		return model.Alert{}, fmt.Errorf("failed to load alert %s: %w", id, err)
	}
	return rec.toModel()
}

// ListActiveAlerts returns alerts still in the active state, newest first.
func (s *Store) ListActiveAlerts(ctx context.Context) ([]model.Alert, error) {
	return s.listAlerts(ctx, s.db.WithContext(ctx).
		Where("status = ?", string(model.AlertStatusActive)).
		Order("triggered_at DESC"))
}

// ListOpenAlerts returns alerts that are not yet resolved, newest first.
func (s *Store) ListOpenAlerts(ctx context.Context) ([]model.Alert, error) {
	return s.listAlerts(ctx, s.db.WithContext(ctx).
		Where("status <> ?", string(model.AlertStatusResolved)).
		Order("triggered_at DESC"))
}

// ListAlerts returns the most recent alerts regardless of state. A limit of
// zero or less returns the full history.
func (s *Store) ListAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	query := s.db.WithContext(ctx).Order("triggered_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return s.listAlerts(ctx, query)
}

func (s *Store) listAlerts(_ context.Context, query *gorm.DB) ([]model.Alert, error) {
	var records []alertRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	alerts := make([]model.Alert, 0, len(records))
	for _, rec := range records {
		alert, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

// AcknowledgeAlert marks an active alert as acknowledged. Acknowledging an
// alert that already left the active state is a no-op.
func (s *Store) AcknowledgeAlert(ctx context.Context, id string, now time.Time) (model.Alert, error) {
	return s.transition(ctx, id, func(alert *model.Alert) bool {
		return alert.Acknowledge(now)
	})
}

// ResolveAlert marks an alert as resolved. Resolving an already resolved
// alert is a no-op.
func (s *Store) ResolveAlert(ctx context.Context, id string, now time.Time) (model.Alert, error) {
	return s.transition(ctx, id, func(alert *model.Alert) bool {
		return alert.Resolve(now)
	})
}

func (s *Store) transition(ctx context.Context, id string, apply func(*model.Alert) bool) (model.Alert, error) {
	var result model.Alert
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec alertRecord
		err := tx.First(&rec, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrAlertNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to load alert %s: %w", id, err)
		}

		alert, err := rec.toModel()
		if err != nil {
			return err
		}

		if !apply(&alert) {
			result = alert
			return nil
		}

		updated, err := newAlertRecord(alert)
		if err != nil {
			return err
		}
		if err := tx.Save(&updated).Error; err != nil {
			return fmt.Errorf("failed to update alert %s: %w", id, err)
		}
		result = alert
		return nil
	})
	if err != nil {
		return model.Alert{}, err
	}
	return result, nil
}

// LastTriggered returns the most recent trigger time per rule across the
// whole alert history.
func (s *Store) LastTriggered(ctx context.Context) (map[string]time.Time, error) {
	var rows []struct {
		RuleID      string
		TriggeredAt time.Time
	}
	err := s.db.WithContext(ctx).
		Model(&alertRecord{}).
		Select("rule_id, MAX(triggered_at) AS triggered_at").
		Group("rule_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load last trigger times: %w", err)
	}

	last := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		last[row.RuleID] = row.TriggeredAt
	}
	return last, nil
}
