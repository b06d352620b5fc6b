package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"vpswatch/internal/model"
)

// SaveRule inserts the rule or updates the existing row with the same id.
func (s *Store) SaveRule(ctx context.Context, rule model.AlertRule) error {
	rec := newRuleRecord(rule)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save rule %s: %w", rule.ID, err)
	}
	return nil
}

// ListRules returns all persisted rules ordered by id.
func (s *Store) ListRules(ctx context.Context) ([]model.AlertRule, error) {
	var records []ruleRecord
	err := s.db.WithContext(ctx).Order("id ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	rules := make([]model.AlertRule, 0, len(records))
	for _, rec := range records {
		rules = append(rules, rec.toModel())
	}
	return rules, nil
}

// DeleteRule removes a rule by id. Deleting an unknown id is a no-op.
func (s *Store) DeleteRule(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Delete(&ruleRecord{}, "id = ?", id).Error
	if err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", id, err)
	}
	return nil
}
