// Package excel provides Excel export for health data. It implements the
// report.ReportWriter interface to generate .xlsx files with a health
// summary, report history, and alert worksheets.
package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"vpswatch/internal/model"
)

const (
	// Sheet names
	sheetSummary = "Summary"
	sheetHistory = "Health History"
	sheetAlerts  = "Alerts"

	// Default sheet to remove
	defaultSheet = "Sheet1"

	// Colors for conditional formatting (RGB without #)
	colorWarningBg  = "FFEB9C" // Yellow background for warning
	colorWarningFg  = "9C6500" // Dark yellow text for warning
	colorCriticalBg = "FFC7CE" // Red background for critical
	colorCriticalFg = "9C0006" // Dark red text for critical
	colorHeaderBg   = "4472C4" // Blue background for header
	colorHeaderFg   = "FFFFFF" // White text for header
	colorNormalBg   = "C6EFCE" // Green background for normal
	colorNormalFg   = "006100" // Dark green text for normal

	timeFormat = "2006-01-02 15:04:05"
)

// Writer implements report.ReportWriter for Excel format.
type Writer struct {
	timezone *time.Location
}

// NewWriter creates a new Excel report writer.
// If timezone is nil, it defaults to the local timezone.
func NewWriter(timezone *time.Location) *Writer {
	if timezone == nil {
		timezone = time.Local
	}
	return &Writer{
		timezone: timezone,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "excel"
}

// Write generates an Excel file from the given reports and alerts. Reports
// and alerts are expected newest-first, the order the store returns them in.
func (w *Writer) Write(reports []model.HealthReport, alerts []model.Alert, outputPath string) error {
	// Ensure output path has .xlsx extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}

	// Create new Excel file
	f := excelize.NewFile()
	defer f.Close()

	// Create worksheets
	if err := w.createSummarySheet(f, reports, alerts); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := w.createHistorySheet(f, reports); err != nil {
		return fmt.Errorf("failed to create history sheet: %w", err)
	}

	if err := w.createAlertsSheet(f, alerts); err != nil {
		return fmt.Errorf("failed to create alerts sheet: %w", err)
	}

	// Remove default Sheet1
	_ = f.DeleteSheet(defaultSheet)

	// Set active sheet to summary
	idx, _ := f.GetSheetIndex(sheetSummary)
	f.SetActiveSheet(idx)

	// Save the file
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	return nil
}

// createSummarySheet creates the health summary worksheet from the most
// recent report.
func (w *Writer) createSummarySheet(f *excelize.File, reports []model.HealthReport, alerts []model.Alert) error {
	// Create sheet
	idx, err := f.NewSheet(sheetSummary)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	// Create header style
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  14,
			Color: colorHeaderFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorHeaderBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	// Create title style
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 18,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	// Create value style
	valueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size: 12,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	// Set column widths
	f.SetColWidth(sheetSummary, "A", "A", 22)
	f.SetColWidth(sheetSummary, "B", "B", 30)

	// Title
	f.MergeCell(sheetSummary, "A1", "B1")
	f.SetCellValue(sheetSummary, "A1", "VPS Health Report")
	f.SetCellStyle(sheetSummary, "A1", "B1", titleStyle)
	f.SetRowHeight(sheetSummary, 1, 30)

	// Summary data
	summaryData := []struct {
		label string
		value interface{}
	}{
		{"Exported At", time.Now().In(w.timezone).Format(timeFormat)},
	}

	if len(reports) > 0 {
		latest := reports[0]
		summaryData = append(summaryData, []struct {
			label string
			value interface{}
		}{
			{"Latest Report", latest.GeneratedAt.In(w.timezone).Format(timeFormat)},
			{"Report Type", latest.ReportType},
			{"Health Score", fmt.Sprintf("%d/100 (%s)", latest.HealthScore, latest.ScoreLabel())},
			{"CPU Usage", metricCell(latest.Metrics, model.MetricCPU)},
			{"Memory Usage", metricCell(latest.Metrics, model.MetricMemory)},
			{"Disk Usage", metricCell(latest.Metrics, model.MetricDisk)},
			{"Load (1m)", metricCell(latest.Metrics, model.MetricLoad)},
			{"Active Alerts", latest.Alerts.Total},
			{"Critical Alerts", latest.Alerts.Critical},
		}...)
	}

	summaryData = append(summaryData, []struct {
		label string
		value interface{}
	}{
		{"Reports Included", len(reports)},
		{"Alerts Included", len(alerts)},
	}...)

	// Write summary data
	for i, item := range summaryData {
		row := i + 3 // Start from row 3
		f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", row), item.label)
		f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", row), item.value)
		f.SetCellStyle(sheetSummary, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), headerStyle)
		f.SetCellStyle(sheetSummary, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), valueStyle)
		f.SetRowHeight(sheetSummary, row, 22)
	}

	return nil
}

// createHistorySheet creates the report history worksheet.
func (w *Writer) createHistorySheet(f *excelize.File, reports []model.HealthReport) error {
	// Create sheet
	_, err := f.NewSheet(sheetHistory)
	if err != nil {
		return err
	}

	// Create styles
	headerStyle, err := w.createHeaderStyle(f)
	if err != nil {
		return err
	}

	warningStyle, err := w.createWarningStyle(f)
	if err != nil {
		return err
	}

	criticalStyle, err := w.createCriticalStyle(f)
	if err != nil {
		return err
	}

	normalStyle, err := w.createNormalStyle(f)
	if err != nil {
		return err
	}

	// Define headers
	headers := []string{"Generated", "Type", "Score", "Rating", "CPU %", "Memory %", "Disk %", "Load (1m)", "Active Alerts"}

	// Set column widths
	colWidths := []float64{20, 10, 8, 10, 10, 10, 10, 10, 13}
	for i, width := range colWidths {
		col := columnName(i + 1)
		f.SetColWidth(sheetHistory, col, col, width)
	}

	// Write headers
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", columnName(i+1))
		f.SetCellValue(sheetHistory, cell, header)
		f.SetCellStyle(sheetHistory, cell, cell, headerStyle)
	}
	f.SetRowHeight(sheetHistory, 1, 25)

	// Freeze header row
	f.SetPanes(sheetHistory, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	// Write report data
	for i, rep := range reports {
		row := i + 2
		rowStr := fmt.Sprintf("%d", row)

		f.SetCellValue(sheetHistory, "A"+rowStr, rep.GeneratedAt.In(w.timezone).Format(timeFormat))
		f.SetCellValue(sheetHistory, "B"+rowStr, rep.ReportType)
		f.SetCellValue(sheetHistory, "C"+rowStr, rep.HealthScore)
		f.SetCellValue(sheetHistory, "D"+rowStr, rep.ScoreLabel())
		f.SetCellValue(sheetHistory, "E"+rowStr, metricCell(rep.Metrics, model.MetricCPU))
		f.SetCellValue(sheetHistory, "F"+rowStr, metricCell(rep.Metrics, model.MetricMemory))
		f.SetCellValue(sheetHistory, "G"+rowStr, metricCell(rep.Metrics, model.MetricDisk))
		f.SetCellValue(sheetHistory, "H"+rowStr, metricCell(rep.Metrics, model.MetricLoad))
		f.SetCellValue(sheetHistory, "I"+rowStr, rep.Alerts.Total)

		// Color the score cell by rating
		style := w.scoreStyle(rep.HealthScore, normalStyle, warningStyle, criticalStyle)
		f.SetCellStyle(sheetHistory, "C"+rowStr, "C"+rowStr, style)
	}

	return nil
}

// createAlertsSheet creates the alert history worksheet.
func (w *Writer) createAlertsSheet(f *excelize.File, alerts []model.Alert) error {
	// Create sheet
	_, err := f.NewSheet(sheetAlerts)
	if err != nil {
		return err
	}

	// Create styles
	headerStyle, err := w.createHeaderStyle(f)
	if err != nil {
		return err
	}

	warningStyle, err := w.createWarningStyle(f)
	if err != nil {
		return err
	}

	criticalStyle, err := w.createCriticalStyle(f)
	if err != nil {
		return err
	}

	normalStyle, err := w.createNormalStyle(f)
	if err != nil {
		return err
	}

	// Define headers
	headers := []string{"Triggered", "Severity", "Rule", "Message", "Status", "Acknowledged", "Resolved"}

	// Set column widths
	colWidths := []float64{20, 10, 18, 45, 14, 20, 20}
	for i, width := range colWidths {
		col := columnName(i + 1)
		f.SetColWidth(sheetAlerts, col, col, width)
	}

	// Write headers
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", columnName(i+1))
		f.SetCellValue(sheetAlerts, cell, header)
		f.SetCellStyle(sheetAlerts, cell, cell, headerStyle)
	}
	f.SetRowHeight(sheetAlerts, 1, 25)

	// Freeze header row
	f.SetPanes(sheetAlerts, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	// Sort alerts by severity (critical first) then by trigger time (newest first)
	sorted := make([]model.Alert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Severity != sorted[j].Severity {
			return severityPriority(sorted[i].Severity) > severityPriority(sorted[j].Severity)
		}
		return sorted[i].TriggeredAt.After(sorted[j].TriggeredAt)
	})

	// Write alert data
	for i, alert := range sorted {
		row := i + 2
		rowStr := fmt.Sprintf("%d", row)

		f.SetCellValue(sheetAlerts, "A"+rowStr, alert.TriggeredAt.In(w.timezone).Format(timeFormat))
		f.SetCellValue(sheetAlerts, "B"+rowStr, string(alert.Severity))
		f.SetCellValue(sheetAlerts, "C"+rowStr, alert.RuleName)
		f.SetCellValue(sheetAlerts, "D"+rowStr, alert.Message)
		f.SetCellValue(sheetAlerts, "E"+rowStr, string(alert.Status))
		f.SetCellValue(sheetAlerts, "F"+rowStr, w.timeCell(alert.AcknowledgedAt))
		f.SetCellValue(sheetAlerts, "G"+rowStr, w.timeCell(alert.ResolvedAt))

		// Apply style based on severity
		var style int
		switch alert.Severity {
		case model.SeverityCritical, model.SeverityHigh:
			style = criticalStyle
		case model.SeverityMedium:
			style = warningStyle
		case model.SeverityLow:
			style = normalStyle
		}
		if style > 0 {
			f.SetCellStyle(sheetAlerts, "B"+rowStr, "B"+rowStr, style)
		}
	}

	return nil
}

// Helper functions

func (w *Writer) createHeaderStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: colorHeaderFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorHeaderBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func (w *Writer) createWarningStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: colorWarningFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorWarningBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func (w *Writer) createCriticalStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: colorCriticalFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorCriticalBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func (w *Writer) createNormalStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: colorNormalFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorNormalBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

// scoreStyle picks the style for a score cell by rating band.
func (w *Writer) scoreStyle(score int, normalStyle, warningStyle, criticalStyle int) int {
	switch {
	case score >= 75:
		return normalStyle
	case score >= 60:
		return warningStyle
	default:
		return criticalStyle
	}
}

// timeCell formats an optional timestamp, returning a dash when unset.
func (w *Writer) timeCell(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.In(w.timezone).Format(timeFormat)
}

// metricCell extracts a metric reading from a snapshot, returning a dash when
// the snapshot or section is missing.
func metricCell(snapshot *model.MetricsSnapshot, metricType model.MetricType) interface{} {
	if snapshot == nil {
		return "-"
	}
	value, ok := snapshot.Extract(metricType)
	if !ok {
		return "-"
	}
	if metricType == model.MetricLoad {
		return fmt.Sprintf("%.2f", value)
	}
	return fmt.Sprintf("%.1f", value)
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

// columnName converts a 1-based column index to its Excel column name.
func columnName(index int) string {
	result := ""
	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}
