// Package notify delivers alerts and health reports to the configured
// notification channels.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"vpswatch/internal/config"
	"vpswatch/internal/model"
)

// Notifier delivers alerts and health reports to a single channel.
type Notifier interface {
	// Name identifies the channel in logs and error messages.
	Name() string
	// PushAlert delivers a newly triggered alert.
	PushAlert(ctx context.Context, alert model.Alert) error
	// PushReport delivers a generated health report.
	PushReport(ctx context.Context, report model.HealthReport) error
}

// Multi fans out notifications to every configured channel. A failing
// channel never blocks delivery to the remaining ones; failures are
// collected and returned joined.
type Multi struct {
	channels []Notifier
	logger   zerolog.Logger
}

// NewMulti creates a fan-out notifier over the given channels.
func NewMulti(logger zerolog.Logger, channels ...Notifier) *Multi {
	return &Multi{
		channels: channels,
		logger:   logger.With().Str("component", "notify").Logger(),
	}
}

// FromConfig builds a Multi containing one notifier per enabled channel.
// With no channels enabled the returned Multi delivers to nobody, which
// keeps alerting functional for setups that only use the CLI.
func FromConfig(cfg config.NotifyConfig, retry config.RetryConfig, logger zerolog.Logger) *Multi {
	var channels []Notifier
	if cfg.Telegram.Enabled {
		channels = append(channels, NewTelegramNotifier(cfg.Telegram, retry, logger))
	}
	if cfg.Slack.Enabled {
		channels = append(channels, NewSlackNotifier(cfg.Slack, logger))
	}
	if cfg.Email.Enabled {
		channels = append(channels, NewEmailNotifier(cfg.Email, logger))
	}
	return NewMulti(logger, channels...)
}

// Channels returns the number of configured channels.
func (m *Multi) Channels() int {
	return len(m.channels)
}

// PushAlert delivers the alert to every channel.
func (m *Multi) PushAlert(ctx context.Context, alert model.Alert) error {
	var errs []error
	for _, ch := range m.channels {
		if err := ch.PushAlert(ctx, alert); err != nil {
			m.logger.Warn().
				Err(err).
				Str("channel", ch.Name()).
				Str("alert_id", alert.ID).
				Msg("alert delivery failed")
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		m.logger.Debug().
			Str("channel", ch.Name()).
			Str("alert_id", alert.ID).
			Msg("alert delivered")
	}
	return errors.Join(errs...)
}

// PushReport delivers the health report to every channel.
func (m *Multi) PushReport(ctx context.Context, report model.HealthReport) error {
	var errs []error
	for _, ch := range m.channels {
		if err := ch.PushReport(ctx, report); err != nil {
			m.logger.Warn().
				Err(err).
				Str("channel", ch.Name()).
				Str("report_id", report.ID).
				Msg("report delivery failed")
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		m.logger.Debug().
			Str("channel", ch.Name()).
			Str("report_id", report.ID).
			Msg("report delivered")
	}
	return errors.Join(errs...)
}
