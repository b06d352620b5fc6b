package store

import (
	"context"
	"fmt"

	"vpswatch/internal/model"
)

// SaveReport persists a generated health report.
func (s *Store) SaveReport(ctx context.Context, report model.HealthReport) error {
	rec, err := newReportRecord(report)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.ID, err)
	}
	return nil
}

// ListReports returns the most recent health reports, newest first. A limit
// of zero or less returns the full history.
func (s *Store) ListReports(ctx context.Context, limit int) ([]model.HealthReport, error) {
	query := s.db.WithContext(ctx).Order("generated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []reportRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]model.HealthReport, 0, len(records))
	for _, rec := range records {
		report, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
