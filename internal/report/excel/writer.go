// Package excel provides Excel snapshot export for the dashboard. It
// implements the report.SnapshotWriter interface to generate .xlsx files
// with metric, performance, and alert data.
package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"dashmon/internal/format"
	"dashmon/internal/model"
)

const (
	// Sheet names
	sheetSummary     = "Summary"
	sheetMetrics     = "Metrics"
	sheetPerformance = "Performance"
	sheetAlerts      = "Alerts"
	sheetHistory     = "History"

	// Default sheet to remove
	defaultSheet = "Sheet1"

	// Colors for conditional formatting (RGB without #)
	colorHeaderBg   = "4472C4" // Blue background for header
	colorHeaderFg   = "FFFFFF" // White text for header
	colorCriticalBg = "FFC7CE" // Red background for critical
	colorCriticalFg = "9C0006" // Dark red text for critical
	colorErrorBg    = "FCD5B4" // Orange background for error
	colorErrorFg    = "974706" // Dark orange text for error
	colorWarningBg  = "FFEB9C" // Yellow background for warning
	colorWarningFg  = "9C6500" // Dark yellow text for warning
	colorInfoBg     = "C6EFCE" // Green background for info
	colorInfoFg     = "006100" // Dark green text for info

	// Column widths
	defaultColWidth = 15.0
	wideColWidth    = 32.0
)

// Writer implements report.SnapshotWriter for Excel format.
type Writer struct {
	timezone *time.Location
}

// NewWriter creates a new Excel snapshot writer.
// A nil timezone defaults to UTC.
func NewWriter(timezone *time.Location) *Writer {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Writer{
		timezone: timezone,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "excel"
}

// Write generates an Excel file from the dashboard snapshot.
func (w *Writer) Write(snapshot *model.DashboardSnapshot, outputPath string) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.createSummarySheet(f, snapshot); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := w.createMetricsSheet(f, snapshot); err != nil {
		return fmt.Errorf("failed to create metrics sheet: %w", err)
	}
	if err := w.createPerformanceSheet(f, snapshot); err != nil {
		return fmt.Errorf("failed to create performance sheet: %w", err)
	}
	if err := w.createAlertsSheet(f, snapshot); err != nil {
		return fmt.Errorf("failed to create alerts sheet: %w", err)
	}
	if err := w.createHistorySheet(f, snapshot); err != nil {
		return fmt.Errorf("failed to create history sheet: %w", err)
	}

	f.DeleteSheet(defaultSheet)

	idx, _ := f.GetSheetIndex(sheetSummary)
	f.SetActiveSheet(idx)

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	return nil
}

// headerStyle creates the shared column-header style.
func (w *Writer) headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
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

// severityStyle creates the fill style for one alert severity.
func (w *Writer) severityStyle(f *excelize.File, severity model.AlertSeverity) (int, error) {
	var bg, fg string
	switch severity {
	case model.SeverityCritical:
		bg, fg = colorCriticalBg, colorCriticalFg
	case model.SeverityError:
		bg, fg = colorErrorBg, colorErrorFg
	case model.SeverityWarning:
		bg, fg = colorWarningBg, colorWarningFg
	default:
		bg, fg = colorInfoBg, colorInfoFg
	}
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: fg},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{bg},
			Pattern: 1,
		},
	})
}

// writeHeaderRow writes the styled header row of a sheet.
func (w *Writer) writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	style, err := w.headerStyle(f)
	if err != nil {
		return err
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

// createSummarySheet writes the snapshot overview.
func (w *Writer) createSummarySheet(f *excelize.File, snapshot *model.DashboardSnapshot) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}

	monitoring := "stopped"
	if snapshot.Monitoring {
		monitoring = "active"
	}

	rows := [][]interface{}{
		{"Generated At", format.DateTime(snapshot.GeneratedAt.In(w.timezone))},
		{"Backend", snapshot.Endpoint},
		{"Monitoring", monitoring},
		{"Metrics", len(snapshot.Metrics)},
		{"Active Alerts", snapshot.Counts.Active},
		{"Acknowledged Alerts", snapshot.Counts.Acknowledged},
		{"Critical", snapshot.Counts.BySeverity[model.SeverityCritical]},
		{"Error", snapshot.Counts.BySeverity[model.SeverityError]},
		{"Warning", snapshot.Counts.BySeverity[model.SeverityWarning]},
		{"Info", snapshot.Counts.BySeverity[model.SeverityInfo]},
	}
	infoKeys := make([]string, 0, len(snapshot.SystemInfo))
	for key := range snapshot.SystemInfo {
		infoKeys = append(infoKeys, key)
	}
	sort.Strings(infoKeys)
	for _, key := range infoKeys {
		rows = append(rows, []interface{}{"System: " + key, fmt.Sprintf("%v", snapshot.SystemInfo[key])})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return err
		}
	}

	f.SetColWidth(sheetSummary, "A", "A", wideColWidth)
	f.SetColWidth(sheetSummary, "B", "B", wideColWidth)
	return nil
}

// createMetricsSheet writes the latest-value metric rows.
func (w *Writer) createMetricsSheet(f *excelize.File, snapshot *model.DashboardSnapshot) error {
	if _, err := f.NewSheet(sheetMetrics); err != nil {
		return err
	}
	if err := w.writeHeaderRow(f, sheetMetrics, []string{"Metric", "Value", "Formatted", "Timestamp"}); err != nil {
		return err
	}

	for i, row := range snapshot.Metrics {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.Name,
			row.Value,
			format.MetricValue(row.Name, row.Value),
			format.DateTime(row.Timestamp.In(w.timezone)),
		}
		if err := f.SetSheetRow(sheetMetrics, cell, &values); err != nil {
			return err
		}
	}

	f.SetColWidth(sheetMetrics, "A", "A", wideColWidth)
	f.SetColWidth(sheetMetrics, "B", "D", defaultColWidth)
	return nil
}

// createPerformanceSheet writes the flattened performance statistics.
// Durations are denominated in seconds and rendered with four decimals.
func (w *Writer) createPerformanceSheet(f *excelize.File, snapshot *model.DashboardSnapshot) error {
	if _, err := f.NewSheet(sheetPerformance); err != nil {
		return err
	}
	headers := []string{"Category", "Metric", "Latest", "Average", "Min", "Max", "Count"}
	if err := w.writeHeaderRow(f, sheetPerformance, headers); err != nil {
		return err
	}

	for i, row := range snapshot.Performance {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.Category,
			row.Metric,
			formatSeconds(row.Stat.Latest),
			formatSeconds(row.Stat.Average),
			formatSeconds(row.Stat.Min),
			formatSeconds(row.Stat.Max),
			row.Stat.Count,
		}
		if err := f.SetSheetRow(sheetPerformance, cell, &values); err != nil {
			return err
		}
	}

	f.SetColWidth(sheetPerformance, "A", "G", defaultColWidth)
	return nil
}

// createAlertsSheet writes the active alerts with severity coloring.
func (w *Writer) createAlertsSheet(f *excelize.File, snapshot *model.DashboardSnapshot) error {
	if _, err := f.NewSheet(sheetAlerts); err != nil {
		return err
	}
	headers := []string{"Name", "Severity", "Status", "Description", "Triggered At", "Duration", "Acknowledged By", "Silenced"}
	if err := w.writeHeaderRow(f, sheetAlerts, headers); err != nil {
		return err
	}

	now := time.Now()
	for i, alert := range snapshot.Alerts {
		rowIdx := i + 2
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}

		triggered := ""
		duration := ""
		if alert.TriggeredAt != nil {
			triggered = format.DateTime(alert.TriggeredAt.In(w.timezone))
			duration = format.Duration(alert.Duration(now))
		}

		values := []interface{}{
			alert.Name,
			string(alert.Severity),
			string(alert.Status),
			alert.Description,
			triggered,
			duration,
			alert.AcknowledgedBy,
			alert.Silenced,
		}
		if err := f.SetSheetRow(sheetAlerts, cell, &values); err != nil {
			return err
		}

		style, err := w.severityStyle(f, alert.Severity)
		if err != nil {
			return err
		}
		severityCell, _ := excelize.CoordinatesToCellName(2, rowIdx)
		if err := f.SetCellStyle(sheetAlerts, severityCell, severityCell, style); err != nil {
			return err
		}
	}

	f.SetColWidth(sheetAlerts, "A", "A", wideColWidth)
	f.SetColWidth(sheetAlerts, "D", "D", wideColWidth)
	return nil
}

// createHistorySheet writes the alert history, most recent first.
func (w *Writer) createHistorySheet(f *excelize.File, snapshot *model.DashboardSnapshot) error {
	if _, err := f.NewSheet(sheetHistory); err != nil {
		return err
	}
	if err := w.writeHeaderRow(f, sheetHistory, []string{"Timestamp", "Alert", "Action", "Details"}); err != nil {
		return err
	}

	for i, entry := range snapshot.History {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			format.DateTime(entry.Timestamp.In(w.timezone)),
			entry.Alert,
			entry.Action,
			detailsText(entry.Details),
		}
		if err := f.SetSheetRow(sheetHistory, cell, &values); err != nil {
			return err
		}
	}

	f.SetColWidth(sheetHistory, "A", "A", defaultColWidth)
	f.SetColWidth(sheetHistory, "D", "D", wideColWidth)
	return nil
}

// formatSeconds renders a duration stat in seconds with four decimals.
func formatSeconds(v float64) string {
	return fmt.Sprintf("%.4fs", v)
}

// detailsText renders the detail map as "k=v" pairs, keys sorted.
func detailsText(details map[string]interface{}) string {
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, ", ")
}
