package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"vpswatch/internal/config"
	"vpswatch/internal/model"
	"vpswatch/internal/report"
)

// EmailNotifier delivers notifications over SMTP.
type EmailNotifier struct {
	from   string
	to     []string
	dialer *gomail.Dialer
	logger zerolog.Logger
}

// NewEmailNotifier creates an SMTP notifier.
func NewEmailNotifier(cfg config.EmailConfig, logger zerolog.Logger) *EmailNotifier {
	return &EmailNotifier{
		from:   cfg.From,
		to:     cfg.To,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger.With().Str("component", "email-notifier").Logger(),
	}
}

// Name identifies the channel in logs and error messages.
func (n *EmailNotifier) Name() string {
	return "email"
}

// PushAlert sends the alert to every configured recipient. The SMTP dial
// does not take a context; cancellation is bounded by the dialer timeout.
func (n *EmailNotifier) PushAlert(_ context.Context, alert model.Alert) error {
	subject := fmt.Sprintf("[vpswatch] %s alert: %s",
		strings.ToUpper(string(alert.Severity)), alert.RuleName)
	return n.send(subject, report.RenderAlert(alert))
}

// PushReport sends the health report to every configured recipient.
func (n *EmailNotifier) PushReport(_ context.Context, rep model.HealthReport) error {
	subject := fmt.Sprintf("[vpswatch] Health report: %d/100 (%s)",
		rep.HealthScore, rep.ScoreLabel())
	return n.send(subject, report.RenderReport(rep))
}

func (n *EmailNotifier) send(subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		n.logger.Error().Err(err).Str("subject", subject).Msg("failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Debug().Str("subject", subject).Int("recipients", len(n.to)).Msg("email sent")
	return nil
}
