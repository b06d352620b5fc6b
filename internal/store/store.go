// Package store persists vpswatch state in a local sqlite database:
// alert rules, alerts, metric samples and health reports.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"vpswatch/internal/model"
)

// Store wraps the sqlite database that holds all vpswatch state.
type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// Open opens the sqlite database at path, creating the file and its parent
// directory if needed, and migrates the schema.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Auto migrate the schema
	if err := db.AutoMigrate(
		&ruleRecord{},
		&alertRecord{},
		&metricSample{},
		&reportRecord{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
	}, nil
}

// Cleanup deletes metric samples recorded before metricsBefore and resolved
// alerts triggered before alertsBefore. It returns the deleted row counts.
func (s *Store) Cleanup(ctx context.Context, metricsBefore, alertsBefore time.Time) (int64, int64, error) {
	samples := s.db.WithContext(ctx).
		Where("recorded_at < ?", metricsBefore).
		Delete(&metricSample{})
	if samples.Error != nil {
		return 0, 0, fmt.Errorf("failed to delete old metric samples: %w", samples.Error)
	}

	alerts := s.db.WithContext(ctx).
		Where("status = ? AND triggered_at < ?", string(model.AlertStatusResolved), alertsBefore).
		Delete(&alertRecord{})
	if alerts.Error != nil {
		return samples.RowsAffected, 0, fmt.Errorf("failed to delete old alerts: %w", alerts.Error)
	}

	s.logger.Debug().
		Int64("metric_samples", samples.RowsAffected).
		Int64("alerts", alerts.RowsAffected).
		Msg("retention cleanup finished")
	return samples.RowsAffected, alerts.RowsAffected, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	return sqlDB.Close()
}
