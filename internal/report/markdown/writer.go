// Package markdown provides Markdown export for health data. It implements
// the report.ReportWriter interface to generate .md files with a health
// summary, report history, and alert table.
package markdown

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"vpswatch/internal/model"
)

//go:embed templates/*.md
var embeddedTemplates embed.FS

const timeFormat = "2006-01-02 15:04:05"

// Writer implements report.ReportWriter for Markdown format.
type Writer struct {
	timezone     *time.Location
	templatePath string // User-defined template path (optional)
}

// TemplateData holds all data passed to the Markdown template.
type TemplateData struct {
	Title       string
	GeneratedAt string
	Latest      *ReportData
	Reports     []*ReportData
	Alerts      []*AlertData
}

// ReportData represents one health report formatted for template rendering.
type ReportData struct {
	GeneratedAt     string
	Type            string
	Score           int
	Rating          string
	CPU             string
	Memory          string
	Disk            string
	Load            string
	Containers      string
	ActiveAlerts    int
	Recommendations []string
}

// AlertData represents one alert formatted for template rendering.
type AlertData struct {
	TriggeredAt string
	Severity    string
	Rule        string
	Status      string
	Message     string
}

// NewWriter creates a new Markdown report writer.
// If timezone is nil, it defaults to the local timezone.
// If templatePath is empty, the embedded default template will be used.
func NewWriter(timezone *time.Location, templatePath string) *Writer {
	if timezone == nil {
		timezone = time.Local
	}
	return &Writer{
		timezone:     timezone,
		templatePath: templatePath,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "markdown"
}

// Write generates a Markdown report from the given reports and alerts.
// Reports are expected newest-first, the order the store returns them in.
func (w *Writer) Write(reports []model.HealthReport, alerts []model.Alert, outputPath string) error {
	// Ensure output path has .md extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".md") {
		outputPath = outputPath + ".md"
	}

	// Load template
	tmpl, err := w.loadTemplate()
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	// Prepare template data
	data := w.prepareTemplateData(reports, alerts)

	// Create output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	// Execute template
	if err := tmpl.Execute(file, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

// loadTemplate loads the Markdown template.
// It first tries to load a user-defined template, then falls back to the embedded default.
func (w *Writer) loadTemplate() (*template.Template, error) {
	// Try user-defined template first
	if w.templatePath != "" {
		if _, err := os.Stat(w.templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(w.templatePath)).ParseFiles(w.templatePath)
			if err != nil {
				return nil, fmt.Errorf("failed to parse user template: %w", err)
			}
			return tmpl, nil
		}
		// User template not found, fall through to default
	}

	// Load embedded default template
	tmpl, err := template.New("report.md").ParseFS(embeddedTemplates, "templates/report.md")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// prepareTemplateData converts reports and alerts for template rendering.
func (w *Writer) prepareTemplateData(reports []model.HealthReport, alerts []model.Alert) *TemplateData {
	converted := make([]*ReportData, 0, len(reports))
	for _, rep := range reports {
		converted = append(converted, w.convertReport(rep))
	}

	var latest *ReportData
	if len(converted) > 0 {
		latest = converted[0]
	}

	return &TemplateData{
		Title:       "VPS Health Report",
		GeneratedAt: time.Now().In(w.timezone).Format(timeFormat),
		Latest:      latest,
		Reports:     converted,
		Alerts:      w.convertAlerts(alerts),
	}
}

// convertReport converts a HealthReport to ReportData for template rendering.
func (w *Writer) convertReport(rep model.HealthReport) *ReportData {
	data := &ReportData{
		GeneratedAt:     rep.GeneratedAt.In(w.timezone).Format(timeFormat),
		Type:            rep.ReportType,
		Score:           rep.HealthScore,
		Rating:          rep.ScoreLabel(),
		CPU:             "-",
		Memory:          "-",
		Disk:            "-",
		Load:            "-",
		Containers:      "-",
		ActiveAlerts:    rep.Alerts.Total,
		Recommendations: rep.Recommendations,
	}

	if rep.Metrics == nil {
		return data
	}

	if rep.Metrics.CPU != nil {
		data.CPU = fmt.Sprintf("%.1f%%", rep.Metrics.CPU.UsagePercent)
	}
	if rep.Metrics.Memory != nil {
		data.Memory = fmt.Sprintf("%.1f%%", rep.Metrics.Memory.UsagePercent)
	}
	if rep.Metrics.Disk != nil {
		data.Disk = fmt.Sprintf("%.1f%%", rep.Metrics.Disk.UsagePercent)
	}
	if rep.Metrics.Load != nil {
		data.Load = fmt.Sprintf("%.2f", rep.Metrics.Load.Load1)
	}
	if rep.Metrics.Docker != nil {
		data.Containers = fmt.Sprintf("%d running, %d stopped",
			rep.Metrics.Docker.Running, rep.Metrics.Docker.Stopped)
	}

	return data
}

// convertAlerts sorts alerts (critical first, then newest) and formats them
// for template rendering.
func (w *Writer) convertAlerts(alerts []model.Alert) []*AlertData {
	sorted := make([]model.Alert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Severity != sorted[j].Severity {
			return severityPriority(sorted[i].Severity) > severityPriority(sorted[j].Severity)
		}
		return sorted[i].TriggeredAt.After(sorted[j].TriggeredAt)
	})

	converted := make([]*AlertData, 0, len(sorted))
	for _, alert := range sorted {
		converted = append(converted, &AlertData{
			TriggeredAt: alert.TriggeredAt.In(w.timezone).Format(timeFormat),
			Severity:    string(alert.Severity),
			Rule:        alert.RuleName,
			Status:      string(alert.Status),
			Message:     alert.Message,
		})
	}
	return converted
}

// severityPriority returns a numeric priority for sorting (higher = more severe).
func severityPriority(severity model.Severity) int {
	switch severity {
	case model.SeverityCritical:
		return 4
	case model.SeverityHigh:
		return 3
	case model.SeverityMedium:
		return 2
	case model.SeverityLow:
		return 1
	default:
		return 0
	}
}
