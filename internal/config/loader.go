// Package config provides configuration management for the vpswatch daemon.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified YAML file and environment variables.
// Environment variables take precedence over file values.
// Environment variable format: VPSWATCH_<SECTION>_<KEY> (e.g., VPSWATCH_NOTIFY_TELEGRAM_TOKEN)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults first
	setDefaults(v)

	// Configure environment variable binding
	v.SetEnvPrefix("VPSWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Check if config file exists
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	// Set config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "./data/vpswatch.db")

	// Monitor defaults
	v.SetDefault("monitor.evaluate_interval", 60*time.Second)
	v.SetDefault("monitor.report_interval", 24*time.Hour)
	v.SetDefault("monitor.cleanup_interval", 24*time.Hour)
	v.SetDefault("monitor.disk_path", "/")
	v.SetDefault("monitor.docker_enabled", true)
	v.SetDefault("monitor.retention.metrics_days", 30)
	v.SetDefault("monitor.retention.alerts_days", 90)

	// Notification defaults - all channels opt-in
	v.SetDefault("notify.telegram.enabled", false)
	v.SetDefault("notify.telegram.api_endpoint", "https://api.telegram.org")
	v.SetDefault("notify.telegram.timeout", 10*time.Second)
	v.SetDefault("notify.slack.enabled", false)
	v.SetDefault("notify.email.enabled", false)
	v.SetDefault("notify.email.port", 587)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// HTTP retry defaults
	v.SetDefault("http.retry.max_retries", 3)
	v.SetDefault("http.retry.base_delay", 1*time.Second)
}
