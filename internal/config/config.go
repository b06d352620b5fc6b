// Package config provides configuration management for the vpswatch daemon.
package config

import "time"

// Config is the root configuration structure for the vpswatch daemon.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

// DatabaseConfig contains configuration for the local sqlite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// MonitorConfig contains configuration for the periodic monitoring cycles.
type MonitorConfig struct {
	EvaluateInterval time.Duration   `mapstructure:"evaluate_interval"` // metrics collection + rule evaluation
	ReportInterval   time.Duration   `mapstructure:"report_interval"`   // health report generation
	CleanupInterval  time.Duration   `mapstructure:"cleanup_interval"`  // retention cleanup
	DiskPath         string          `mapstructure:"disk_path"`         // mount point sampled for disk usage
	DockerEnabled    bool            `mapstructure:"docker_enabled"`    // collect container counts
	Retention        RetentionConfig `mapstructure:"retention"`
}

// RetentionConfig defines how long historical rows are kept.
type RetentionConfig struct {
	MetricsDays int `mapstructure:"metrics_days" validate:"gte=1"`
	AlertsDays  int `mapstructure:"alerts_days" validate:"gte=1"`
}

// RulesConfig points at an optional alert-rule definitions file.
// When File is empty the built-in default rule set is used.
type RulesConfig struct {
	File string `mapstructure:"file"`
}

// NotifyConfig contains configuration for the notification channels.
type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Slack    SlackConfig    `mapstructure:"slack"`
	Email    EmailConfig    `mapstructure:"email"`
}

// TelegramConfig contains configuration for the Telegram Bot API channel.
type TelegramConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Token       string        `mapstructure:"token"`
	ChatIDs     []int64       `mapstructure:"chat_ids"`
	APIEndpoint string        `mapstructure:"api_endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SlackConfig contains configuration for the Slack webhook channel.
type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url" validate:"omitempty,url"`
	Channel    string `mapstructure:"channel"`
}

// EmailConfig contains configuration for the SMTP channel.
type EmailConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port" validate:"gte=0,lte=65535"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from" validate:"omitempty,email"`
	To       []string `mapstructure:"to" validate:"dive,email"`
}

// LoggingConfig contains configurations for logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// HTTPConfig contains HTTP client configurations including retry settings.
type HTTPConfig struct {
	Retry RetryConfig `mapstructure:"retry"`
}

// RetryConfig defines retry behavior for HTTP requests.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}
