package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"vpswatch/internal/config"
	"vpswatch/internal/model"
	"vpswatch/internal/report"
)

// SlackNotifier delivers notifications to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	channel    string
	logger     zerolog.Logger
}

// NewSlackNotifier creates a Slack webhook notifier.
func NewSlackNotifier(cfg config.SlackConfig, logger zerolog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		logger:     logger.With().Str("component", "slack-notifier").Logger(),
	}
}

// Name identifies the channel in logs and error messages.
func (n *SlackNotifier) Name() string {
	return "slack"
}

// severityColor maps alert severity to an attachment sidebar color.
func severityColor(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "#ff0000"
	case model.SeverityHigh:
		return "#ff6600"
	case model.SeverityMedium:
		return "#ffcc00"
	case model.SeverityLow:
		return "#36a64f"
	default:
		return "#000000"
	}
}

// PushAlert posts the alert as a colored attachment.
func (n *SlackNotifier) PushAlert(ctx context.Context, alert model.Alert) error {
	n.logger.Debug().Str("alert_id", alert.ID).Msg("posting alert to slack webhook")

	attachment := slack.Attachment{
		Color: severityColor(alert.Severity),
		Title: alert.RuleName,
		Text:  alert.Message,
		Fields: []slack.AttachmentField{
			{Title: "Severity", Value: string(alert.Severity), Short: true},
			{Title: "Rule", Value: alert.RuleID, Short: true},
		},
		Footer: "vpswatch",
		Ts:     json.Number(strconv.FormatInt(alert.TriggeredAt.Unix(), 10)),
	}

	msg := &slack.WebhookMessage{
		Channel:     n.channel,
		Attachments: []slack.Attachment{attachment},
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		n.logger.Error().Err(err).Str("alert_id", alert.ID).Msg("failed to post alert to slack")
		return fmt.Errorf("failed to post alert to slack: %w", err)
	}

	n.logger.Debug().Str("alert_id", alert.ID).Msg("slack alert posted")
	return nil
}

// PushReport posts the rendered health report as a plain message.
func (n *SlackNotifier) PushReport(ctx context.Context, rep model.HealthReport) error {
	n.logger.Debug().Str("report_id", rep.ID).Msg("posting report to slack webhook")

	msg := &slack.WebhookMessage{
		Channel: n.channel,
		Text:    report.RenderReport(rep),
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		n.logger.Error().Err(err).Str("report_id", rep.ID).Msg("failed to post report to slack")
		return fmt.Errorf("failed to post report to slack: %w", err)
	}

	n.logger.Debug().Str("report_id", rep.ID).Msg("slack report posted")
	return nil
}
