package report

import (
	"vpswatch/internal/model"
)

// ReportWriter defines the interface for exporting health data to files.
// Implementations write health reports and alert history to a file in
// their specific format (Excel, Markdown).
type ReportWriter interface {
	// Write renders the reports and alerts and saves them to outputPath.
	// The extension appropriate for the format is appended when the path
	// does not already carry it.
	//
	// Returns an error if rendering or file writing fails.
	Write(reports []model.HealthReport, alerts []model.Alert, outputPath string) error

	// Format returns the format identifier for this writer.
	// Current values are "excel" and "markdown".
	Format() string
}
