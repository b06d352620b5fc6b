//go:build ignore
// +build ignore

// This script reads and displays the contents of an Excel export for verification.
package main

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

func main() {
	path := "sample_health_report.xlsx"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer f.Close()

	fmt.Println("📊 Sheets:", f.GetSheetList())
	fmt.Println()

	// Summary sheet
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Summary")
	fmt.Println("═══════════════════════════════════════")
	for row := 1; row <= 14; row++ {
		a, _ := f.GetCellValue("Summary", fmt.Sprintf("A%d", row))
		b, _ := f.GetCellValue("Summary", fmt.Sprintf("B%d", row))
		if a != "" || b != "" {
			fmt.Printf("  %-16s %s\n", a, b)
		}
	}
	fmt.Println()

	// History sheet - headers
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Health History (headers)")
	fmt.Println("═══════════════════════════════════════")
	headers := []string{}
	for col := 1; col <= 12; col++ {
		cell := columnName(col) + "1"
		v, _ := f.GetCellValue("Health History", cell)
		if v == "" {
			break
		}
		headers = append(headers, v)
	}
	for i, h := range headers {
		fmt.Printf("  [%d] %s\n", i+1, h)
	}
	fmt.Println()

	// History sheet - data rows
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Health History (reports)")
	fmt.Println("═══════════════════════════════════════")
	for row := 2; row <= 11; row++ {
		generated, _ := f.GetCellValue("Health History", fmt.Sprintf("A%d", row))
		reportType, _ := f.GetCellValue("Health History", fmt.Sprintf("B%d", row))
		score, _ := f.GetCellValue("Health History", fmt.Sprintf("C%d", row))
		rating, _ := f.GetCellValue("Health History", fmt.Sprintf("D%d", row))
		if generated != "" {
			fmt.Printf("  %-19s %-7s score:%-4s %s\n", generated, reportType, score, rating)
		}
	}
	fmt.Println()

	// Alerts sheet
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Alerts (sorted by severity)")
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Triggered           | Severity | Rule           | Status")
	fmt.Println("  --------------------+----------+----------------+--------")
	for row := 2; row <= 11; row++ {
		triggered, _ := f.GetCellValue("Alerts", fmt.Sprintf("A%d", row))
		severity, _ := f.GetCellValue("Alerts", fmt.Sprintf("B%d", row))
		rule, _ := f.GetCellValue("Alerts", fmt.Sprintf("C%d", row))
		status, _ := f.GetCellValue("Alerts", fmt.Sprintf("E%d", row))
		if triggered != "" {
			fmt.Printf("  %-19s | %-8s | %-14s | %s\n", triggered, severity, rule, status)
		}
	}
	fmt.Println()
	fmt.Println("✅ Excel export verified!")
	fmt.Printf("   Open %s in Excel/LibreOffice to check the full styling\n", path)
}

func columnName(index int) string {
	result := ""
	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}
