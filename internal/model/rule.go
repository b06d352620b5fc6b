// Package model provides data models for the vpswatch monitoring core.
package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Condition is the comparison an alert rule applies to a metric value.
type Condition string

const (
	ConditionGreaterThan Condition = "gt"
	ConditionLessThan    Condition = "lt"
	ConditionEqual       Condition = "eq"
)

// equalityEpsilon bounds the tolerance for eq comparisons on float readings.
const equalityEpsilon = 0.01

// Matches reports whether value satisfies the condition against threshold.
// Unknown conditions never match; they are rejected at rule-save time.
func (c Condition) Matches(value, threshold float64) bool {
	switch c {
	case ConditionGreaterThan:
		return value > threshold
	case ConditionLessThan:
		return value < threshold
	case ConditionEqual:
		return math.Abs(value-threshold) < equalityEpsilon
	default:
		return false
	}
}

// Severity ranks how urgent an alert is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns a sortable weight for the severity, highest first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// AlertRule is a configured threshold condition over exactly one metric type.
type AlertRule struct {
	ID              string     `json:"id" yaml:"id" validate:"required"`
	Name            string     `json:"name" yaml:"name" validate:"required"`
	MetricType      MetricType `json:"metric_type" yaml:"metric_type" validate:"required"`
	Condition       Condition  `json:"condition" yaml:"condition" validate:"required,oneof=gt lt eq"`
	Threshold       float64    `json:"threshold" yaml:"threshold"`
	Severity        Severity   `json:"severity" yaml:"severity" validate:"required,oneof=low medium high critical"`
	Enabled         bool       `json:"enabled" yaml:"enabled"`
	CooldownMinutes int        `json:"cooldown_minutes" yaml:"cooldown_minutes" validate:"gte=0"`
	Description     string     `json:"description" yaml:"description"`
}

// Cooldown returns the rule's suppression window as a duration.
func (r *AlertRule) Cooldown() time.Duration {
	return time.Duration(r.CooldownMinutes) * time.Minute
}

// ruleValidate is the package-level validator for rule definitions.
var ruleValidate = validator.New()

// Validate checks a rule definition and returns a readable error for each
// violation. An invalid rule is never admitted into the evaluation set.
func (r *AlertRule) Validate() error {
	var problems []string

	if err := ruleValidate.Struct(r); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				problems = append(problems, translateRuleError(fe))
			}
		} else {
			return fmt.Errorf("rule %q: %w", r.ID, err)
		}
	}

	if r.MetricType != "" && !r.MetricType.Valid() {
		problems = append(problems, fmt.Sprintf("unknown metric type %q", r.MetricType))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid rule %q: %s", r.ID, strings.Join(problems, "; "))
	}
	return nil
}

// translateRuleError converts a validator.FieldError to a readable message.
func translateRuleError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation on '%s'", field, fe.Tag())
	}
}
