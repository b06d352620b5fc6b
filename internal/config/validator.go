// Package config provides configuration management for the vpswatch daemon.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error with user-friendly message.
type ValidationError struct {
	Field   string      // Field path (e.g., "notify.telegram.token")
	Tag     string      // Validation tag that failed (e.g., "required", "url")
	Value   interface{} // Actual value that failed validation
	Message string      // User-friendly error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// validate is the package-level validator instance.
var validate = validator.New()

// Validate validates the configuration and returns user-friendly error messages.
func Validate(cfg *Config) error {
	var validationErrors ValidationErrors

	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				validationErrors = append(validationErrors, &ValidationError{
					Field:   formatFieldName(fe.Namespace()),
					Tag:     fe.Tag(),
					Value:   fe.Value(),
					Message: translateError(fe),
				})
			}
		}
	}

	// Run custom business logic validations
	if errs := validateIntervals(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if errs := validateChannels(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// validateIntervals validates that cycle intervals are long enough to be useful.
func validateIntervals(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	intervals := []struct {
		name    string
		value   time.Duration
		minimum time.Duration
	}{
		{"monitor.evaluate_interval", cfg.Monitor.EvaluateInterval, 10 * time.Second},
		{"monitor.report_interval", cfg.Monitor.ReportInterval, time.Minute},
		{"monitor.cleanup_interval", cfg.Monitor.CleanupInterval, time.Minute},
	}

	for _, iv := range intervals {
		if iv.value < iv.minimum {
			errors = append(errors, &ValidationError{
				Field:   iv.name,
				Tag:     "min_interval",
				Value:   iv.value.String(),
				Message: fmt.Sprintf("interval %s is shorter than the minimum %s", iv.value, iv.minimum),
			})
		}
	}

	return errors
}

// validateChannels validates that enabled notification channels are fully configured.
func validateChannels(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Notify.Telegram.Enabled {
		if cfg.Notify.Telegram.Token == "" {
			errors = append(errors, &ValidationError{
				Field:   "notify.telegram.token",
				Tag:     "required_when_enabled",
				Value:   "",
				Message: "token is required when the Telegram channel is enabled",
			})
		}
		if len(cfg.Notify.Telegram.ChatIDs) == 0 {
			errors = append(errors, &ValidationError{
				Field:   "notify.telegram.chat_ids",
				Tag:     "required_when_enabled",
				Value:   cfg.Notify.Telegram.ChatIDs,
				Message: "at least one chat id is required when the Telegram channel is enabled",
			})
		}
	}

	if cfg.Notify.Slack.Enabled && cfg.Notify.Slack.WebhookURL == "" {
		errors = append(errors, &ValidationError{
			Field:   "notify.slack.webhook_url",
			Tag:     "required_when_enabled",
			Value:   "",
			Message: "webhook_url is required when the Slack channel is enabled",
		})
	}

	if cfg.Notify.Email.Enabled {
		if cfg.Notify.Email.Host == "" {
			errors = append(errors, &ValidationError{
				Field:   "notify.email.host",
				Tag:     "required_when_enabled",
				Value:   "",
				Message: "host is required when the email channel is enabled",
			})
		}
		if cfg.Notify.Email.From == "" {
			errors = append(errors, &ValidationError{
				Field:   "notify.email.from",
				Tag:     "required_when_enabled",
				Value:   "",
				Message: "from address is required when the email channel is enabled",
			})
		}
		if len(cfg.Notify.Email.To) == 0 {
			errors = append(errors, &ValidationError{
				Field:   "notify.email.to",
				Tag:     "required_when_enabled",
				Value:   cfg.Notify.Email.To,
				Message: "at least one recipient is required when the email channel is enabled",
			})
		}
	}

	return errors
}

// formatFieldName converts the validator field namespace to a user-friendly format.
// Example: "Config.Notify.Telegram.Token" -> "notify.telegram.token"
func formatFieldName(namespace string) string {
	// Remove the root struct name (e.g., "Config.")
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:] // Remove "Config"
	}

	// Convert to lowercase and join
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}

// translateError converts a validator.FieldError to a user-friendly message.
func translateError(fe validator.FieldError) string {
	field := formatFieldName(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "url":
		return fmt.Sprintf("invalid URL format: %v", fe.Value())
	case "email":
		return fmt.Sprintf("invalid email address: %v", fe.Value())
	case "gte":
		return fmt.Sprintf("value must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("value must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("value must be one of: %s", fe.Param())
	case "dive":
		return fmt.Sprintf("invalid value in list: %v", fe.Value())
	default:
		return fmt.Sprintf("validation failed on '%s' tag for field '%s'", fe.Tag(), field)
	}
}
