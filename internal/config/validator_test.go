// Package config provides configuration management for the vpswatch daemon.
package config

import (
	"strings"
	"testing"
	"time"
)

// newValidConfig creates a valid configuration for testing.
func newValidConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "./data/vpswatch.db",
		},
		Monitor: MonitorConfig{
			EvaluateInterval: 60 * time.Second,
			ReportInterval:   24 * time.Hour,
			CleanupInterval:  24 * time.Hour,
			DiskPath:         "/",
			DockerEnabled:    true,
			Retention: RetentionConfig{
				MetricsDays: 30,
				AlertsDays:  90,
			},
		},
		Notify: NotifyConfig{
			Telegram: TelegramConfig{
				Enabled:     true,
				Token:       "test-token",
				ChatIDs:     []int64{123456789},
				APIEndpoint: "https://api.telegram.org",
				Timeout:     10 * time.Second,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		HTTP: HTTPConfig{
			Retry: RetryConfig{
				MaxRetries: 3,
				BaseDelay:  1 * time.Second,
			},
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := newValidConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Validate() error = %v, want nil for valid config", err)
	}
}

func TestValidate_MissingDatabasePath(t *testing.T) {
	cfg := newValidConfig()
	cfg.Database.Path = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for missing database path")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "database.path") {
		t.Errorf("error should mention field 'database.path', got: %s", errStr)
	}
	if !strings.Contains(errStr, "required") {
		t.Errorf("error should mention 'required', got: %s", errStr)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := newValidConfig()
	cfg.Logging.Level = "verbose"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for invalid log level")
	}
	if !strings.Contains(err.Error(), "logging.level") {
		t.Errorf("error should mention field 'logging.level', got: %s", err.Error())
	}
}

func TestValidate_EvaluateIntervalTooShort(t *testing.T) {
	cfg := newValidConfig()
	cfg.Monitor.EvaluateInterval = time.Second

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for a 1s evaluate interval")
	}
	if !strings.Contains(err.Error(), "monitor.evaluate_interval") {
		t.Errorf("error should mention field 'monitor.evaluate_interval', got: %s", err.Error())
	}
}

func TestValidate_TelegramMissingToken(t *testing.T) {
	cfg := newValidConfig()
	cfg.Notify.Telegram.Token = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for enabled telegram without token")
	}
	if !strings.Contains(err.Error(), "notify.telegram.token") {
		t.Errorf("error should mention field 'notify.telegram.token', got: %s", err.Error())
	}
}

func TestValidate_TelegramMissingChatIDs(t *testing.T) {
	cfg := newValidConfig()
	cfg.Notify.Telegram.ChatIDs = nil

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for enabled telegram without chat ids")
	}
	if !strings.Contains(err.Error(), "notify.telegram.chat_ids") {
		t.Errorf("error should mention field 'notify.telegram.chat_ids', got: %s", err.Error())
	}
}

func TestValidate_DisabledChannelSkipsChecks(t *testing.T) {
	cfg := newValidConfig()
	cfg.Notify.Telegram.Enabled = false
	cfg.Notify.Telegram.Token = ""
	cfg.Notify.Telegram.ChatIDs = nil

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v, disabled channel should not be validated", err)
	}
}

func TestValidate_SlackMissingWebhook(t *testing.T) {
	cfg := newValidConfig()
	cfg.Notify.Slack.Enabled = true

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for enabled slack without webhook_url")
	}
	if !strings.Contains(err.Error(), "notify.slack.webhook_url") {
		t.Errorf("error should mention field 'notify.slack.webhook_url', got: %s", err.Error())
	}
}

func TestValidate_EmailMissingRecipients(t *testing.T) {
	cfg := newValidConfig()
	cfg.Notify.Email.Enabled = true
	cfg.Notify.Email.Host = "smtp.example.com"
	cfg.Notify.Email.From = "vpswatch@example.com"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for enabled email without recipients")
	}
	if !strings.Contains(err.Error(), "notify.email.to") {
		t.Errorf("error should mention field 'notify.email.to', got: %s", err.Error())
	}
}

func TestValidate_InvalidRetention(t *testing.T) {
	cfg := newValidConfig()
	cfg.Monitor.Retention.MetricsDays = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for zero metrics retention")
	}
	if !strings.Contains(err.Error(), "monitor.retention.metricsdays") {
		t.Errorf("error should mention the retention field, got: %s", err.Error())
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a.b", Message: "first problem"},
		{Field: "c.d", Message: "second problem"},
	}

	errStr := errs.Error()
	if !strings.Contains(errStr, "a.b") || !strings.Contains(errStr, "second problem") {
		t.Errorf("combined error missing entries: %s", errStr)
	}

	var empty ValidationErrors
	if empty.Error() != "" {
		t.Error("empty ValidationErrors should produce empty message")
	}
}
