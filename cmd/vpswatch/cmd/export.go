// Package cmd implements CLI commands for the vpswatch daemon.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"vpswatch/internal/report"
)

// Command flags
var (
	exportFormats  []string // Output formats (excel, markdown)
	exportOutput   string   // Output directory
	exportLimit    int      // Maximum reports and alerts to export
	exportTemplate string   // Path to a custom Markdown template (optional)
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export health reports and alerts to files",
	Long: `Export the persisted health report history and alerts to Excel or
Markdown files.

Examples:
  # Export everything to Excel in ./reports
  vpswatch export -c config.yaml -f excel -o ./reports

  # Export the 10 most recent reports and alerts to both formats
  vpswatch export -f excel,markdown --limit 10

  # Render the Markdown export with a custom template
  vpswatch export -f markdown --template my_report.md`,
	Run: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringSliceVarP(&exportFormats, "format", "f", []string{"excel"}, "output formats (excel,markdown), comma separated")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "./reports", "output directory")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "maximum reports and alerts to export (0 = all)")
	exportCmd.Flags().StringVar(&exportTemplate, "template", "", "custom Markdown template path")
}

// runExport executes the export command logic.
func runExport(cmd *cobra.Command, args []string) {
	cfg, logger := mustLoadConfig()
	st := mustOpenStore(cfg, logger)
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	reports, err := st.ListReports(ctx, exportLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load reports: %v\n", err)
		os.Exit(1)
	}
	alerts, err := st.ListAlerts(ctx, exportLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load alerts: %v\n", err)
		os.Exit(1)
	}

	if len(reports) == 0 && len(alerts) == 0 {
		fmt.Println("⚠️  Nothing to export")
		return
	}

	if err := os.MkdirAll(exportOutput, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	registry := report.NewRegistry(time.Local, exportTemplate)
	filenameBase := "vpswatch_" + time.Now().Format("20060102_150405")

	fmt.Printf("📄 Exporting %d report(s) and %d alert(s):\n", len(reports), len(alerts))
	failed := false
	for _, format := range exportFormats {
		writer, err := registry.Get(format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "   ❌ %v\n", err)
			failed = true
			continue
		}

		ext := ".md"
		if writer.Format() == "excel" {
			ext = ".xlsx"
		}
		outputPath := filepath.Join(exportOutput, filenameBase+ext)

		if err := writer.Write(reports, alerts, outputPath); err != nil {
			logger.Error().Err(err).Str("format", writer.Format()).Str("path", outputPath).Msg("export failed")
			fmt.Fprintf(os.Stderr, "   ❌ %s export failed: %v\n", writer.Format(), err)
			failed = true
			continue
		}

		logger.Info().Str("format", writer.Format()).Str("path", outputPath).Msg("export written")
		fmt.Printf("   ✅ %s\n", outputPath)
	}

	if failed {
		os.Exit(1)
	}
}
