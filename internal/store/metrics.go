package store

import (
	"context"
	"fmt"
	"time"

	"vpswatch/internal/model"
)

// SaveMetrics fans a snapshot out into one sample row per metric the
// snapshot carries a value for.
func (s *Store) SaveMetrics(ctx context.Context, snapshot model.MetricsSnapshot) error {
	samples := make([]metricSample, 0, len(model.MetricTypes))
	for _, metricType := range model.MetricTypes {
		value, ok := snapshot.Extract(metricType)
		if !ok {
			continue
		}
		samples = append(samples, metricSample{
			MetricType: string(metricType),
			Value:      value,
			RecordedAt: snapshot.Timestamp,
		})
	}
	if len(samples) == 0 {
		return nil
	}

	if err := s.db.WithContext(ctx).Create(&samples).Error; err != nil {
		return fmt.Errorf("failed to save metric samples: %w", err)
	}
	return nil
}

// MetricAverages computes per-metric averages over samples recorded at or
// after since. Metrics with no samples in the window are absent from the
// result.
func (s *Store) MetricAverages(ctx context.Context, since time.Time) (map[model.MetricType]float64, int, error) {
	var rows []struct {
		MetricType string
		Avg        float64
		Count      int
	}
	err := s.db.WithContext(ctx).
		Model(&metricSample{}).
		Select("metric_type, AVG(value) AS avg, COUNT(*) AS count").
		Where("recorded_at >= ?", since).
		Group("metric_type").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to compute metric averages: %w", err)
	}

	averages := make(map[model.MetricType]float64, len(rows))
	samples := 0
	for _, row := range rows {
		averages[model.MetricType(row.MetricType)] = row.Avg
		if row.Count > samples {
			samples = row.Count
		}
	}
	return averages, samples, nil
}
