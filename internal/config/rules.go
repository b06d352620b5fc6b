// Package config provides configuration management for the vpswatch daemon.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vpswatch/internal/model"
)

// rulesFile represents the root structure of a rules.yaml file.
type rulesFile struct {
	Rules []model.AlertRule `yaml:"rules"`
}

// LoadRules reads alert rule definitions from the specified YAML file.
// An empty path returns the built-in default rule set. Every rule is
// validated; a file containing any invalid rule is rejected as a whole.
func LoadRules(rulesPath string) ([]model.AlertRule, error) {
	if rulesPath == "" {
		return DefaultRules(), nil
	}

	// Check if file exists
	if _, err := os.Stat(rulesPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("rules file not found: %s", rulesPath)
	}

	// Read file content
	data, err := os.ReadFile(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	// Parse YAML
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("no rules defined in file: %s", rulesPath)
	}

	// Validate each rule definition
	seen := make(map[string]bool, len(f.Rules))
	for i := range f.Rules {
		rule := &f.Rules[i]
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rules file %s: %w", rulesPath, err)
		}
		if seen[rule.ID] {
			return nil, fmt.Errorf("rules file %s: duplicate rule id %q", rulesPath, rule.ID)
		}
		seen[rule.ID] = true
	}

	return f.Rules, nil
}

// DefaultRules returns the built-in alert rule set used when no rules file
// is configured. The engine upserts these into the store on startup.
func DefaultRules() []model.AlertRule {
	return []model.AlertRule{
		{
			ID:              "cpu_high",
			Name:            "High CPU Usage",
			MetricType:      model.MetricCPU,
			Condition:       model.ConditionGreaterThan,
			Threshold:       80,
			Severity:        model.SeverityHigh,
			Enabled:         true,
			CooldownMinutes: 15,
			Description:     "CPU usage above 80%",
		},
		{
			ID:              "cpu_critical",
			Name:            "Critical CPU Usage",
			MetricType:      model.MetricCPU,
			Condition:       model.ConditionGreaterThan,
			Threshold:       95,
			Severity:        model.SeverityCritical,
			Enabled:         true,
			CooldownMinutes: 5,
			Description:     "CPU usage above 95%",
		},
		{
			ID:              "memory_high",
			Name:            "High Memory Usage",
			MetricType:      model.MetricMemory,
			Condition:       model.ConditionGreaterThan,
			Threshold:       85,
			Severity:        model.SeverityHigh,
			Enabled:         true,
			CooldownMinutes: 15,
			Description:     "Memory usage above 85%",
		},
		{
			ID:              "memory_critical",
			Name:            "Critical Memory Usage",
			MetricType:      model.MetricMemory,
			Condition:       model.ConditionGreaterThan,
			Threshold:       95,
			Severity:        model.SeverityCritical,
			Enabled:         true,
			CooldownMinutes: 5,
			Description:     "Memory usage above 95%",
		},
		{
			ID:              "disk_high",
			Name:            "High Disk Usage",
			MetricType:      model.MetricDisk,
			Condition:       model.ConditionGreaterThan,
			Threshold:       85,
			Severity:        model.SeverityHigh,
			Enabled:         true,
			CooldownMinutes: 30,
			Description:     "Disk usage above 85%",
		},
		{
			ID:              "disk_critical",
			Name:            "Critical Disk Usage",
			MetricType:      model.MetricDisk,
			Condition:       model.ConditionGreaterThan,
			Threshold:       95,
			Severity:        model.SeverityCritical,
			Enabled:         true,
			CooldownMinutes: 10,
			Description:     "Disk usage above 95%",
		},
		{
			ID:              "load_high",
			Name:            "High System Load",
			MetricType:      model.MetricLoad,
			Condition:       model.ConditionGreaterThan,
			Threshold:       4.0,
			Severity:        model.SeverityMedium,
			Enabled:         true,
			CooldownMinutes: 20,
			Description:     "1-minute load average above 4.0",
		},
		{
			ID:              "containers_down",
			Name:            "Containers Down",
			MetricType:      model.MetricContainersRunning,
			Condition:       model.ConditionLessThan,
			Threshold:       1,
			Severity:        model.SeverityHigh,
			Enabled:         true,
			CooldownMinutes: 5,
			Description:     "No containers running",
		},
	}
}
