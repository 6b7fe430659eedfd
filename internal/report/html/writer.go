// Package html provides HTML snapshot export for the dashboard. It
// implements the report.SnapshotWriter interface to generate self-contained
// .html files with metric, performance, and alert data.
package html

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"dashmon/internal/format"
	"dashmon/internal/model"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Writer implements report.SnapshotWriter for HTML format.
type Writer struct {
	timezone     *time.Location
	templatePath string // User-defined template path (optional)
}

// TemplateData holds all data passed to the HTML template.
type TemplateData struct {
	Title       string
	GeneratedAt string
	Endpoint    string
	Monitoring  string
	SystemInfo  []InfoRow
	Metrics     []MetricData
	Performance []PerformanceData
	Alerts      []AlertData
	History     []HistoryData
	Counts      CountData
}

// InfoRow is one system-info key/value pair.
type InfoRow struct {
	Key   string
	Value string
}

// MetricData is one metric row formatted for rendering.
type MetricData struct {
	Name      string
	Value     string
	Timestamp string
}

// PerformanceData is one performance row formatted for rendering.
type PerformanceData struct {
	Category string
	Metric   string
	Latest   string
	Average  string
	Min      string
	Max      string
	Count    int
}

// AlertData is one active alert formatted for rendering.
type AlertData struct {
	Name           string
	Description    string
	Severity       string
	SeverityClass  string
	Status         string
	TriggeredAt    string
	Duration       string
	AcknowledgedBy string
	Silenced       bool
}

// HistoryData is one alert history entry formatted for rendering.
type HistoryData struct {
	Timestamp string
	Alert     string
	Action    string
}

// CountData carries the alert counters.
type CountData struct {
	Total        int
	Active       int
	Acknowledged int
	Critical     int
	Error        int
	Warning      int
	Info         int
}

// NewWriter creates a new HTML snapshot writer.
// A nil timezone defaults to UTC. An empty templatePath selects the embedded
// default template.
func NewWriter(timezone *time.Location, templatePath string) *Writer {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Writer{
		timezone:     timezone,
		templatePath: templatePath,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "html"
}

// Write generates an HTML document from the dashboard snapshot.
func (w *Writer) Write(snapshot *model.DashboardSnapshot, outputPath string) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}

	if !strings.HasSuffix(strings.ToLower(outputPath), ".html") {
		outputPath = outputPath + ".html"
	}

	tmpl, err := w.loadTemplate()
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	data := w.prepareTemplateData(snapshot)

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := tmpl.Execute(file, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

// loadTemplate loads the user-defined template if configured, the embedded
// default otherwise.
func (w *Writer) loadTemplate() (*template.Template, error) {
	if w.templatePath != "" {
		tmpl, err := template.New(filepath.Base(w.templatePath)).ParseFiles(w.templatePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", w.templatePath, err)
		}
		return tmpl, nil
	}

	tmpl, err := template.New("default.html").ParseFS(embeddedTemplates, "templates/default.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// prepareTemplateData converts the snapshot into render-ready strings.
func (w *Writer) prepareTemplateData(snapshot *model.DashboardSnapshot) *TemplateData {
	monitoring := "stopped"
	if snapshot.Monitoring {
		monitoring = "active"
	}

	data := &TemplateData{
		Title:       "Monitoring Dashboard Snapshot",
		GeneratedAt: format.DateTime(snapshot.GeneratedAt.In(w.timezone)),
		Endpoint:    snapshot.Endpoint,
		Monitoring:  monitoring,
		Counts: CountData{
			Total:        snapshot.Counts.Total,
			Active:       snapshot.Counts.Active,
			Acknowledged: snapshot.Counts.Acknowledged,
			Critical:     snapshot.Counts.BySeverity[model.SeverityCritical],
			Error:        snapshot.Counts.BySeverity[model.SeverityError],
			Warning:      snapshot.Counts.BySeverity[model.SeverityWarning],
			Info:         snapshot.Counts.BySeverity[model.SeverityInfo],
		},
	}

	for _, key := range sortedKeys(snapshot.SystemInfo) {
		data.SystemInfo = append(data.SystemInfo, InfoRow{
			Key:   key,
			Value: fmt.Sprintf("%v", snapshot.SystemInfo[key]),
		})
	}

	for _, row := range snapshot.Metrics {
		data.Metrics = append(data.Metrics, MetricData{
			Name:      row.Name,
			Value:     format.MetricValue(row.Name, row.Value),
			Timestamp: format.DateTime(row.Timestamp.In(w.timezone)),
		})
	}

	for _, row := range snapshot.Performance {
		data.Performance = append(data.Performance, PerformanceData{
			Category: row.Category,
			Metric:   row.Metric,
			Latest:   fmt.Sprintf("%.4fs", row.Stat.Latest),
			Average:  fmt.Sprintf("%.4fs", row.Stat.Average),
			Min:      fmt.Sprintf("%.4fs", row.Stat.Min),
			Max:      fmt.Sprintf("%.4fs", row.Stat.Max),
			Count:    row.Stat.Count,
		})
	}

	now := time.Now()
	for _, alert := range snapshot.Alerts {
		entry := AlertData{
			Name:           alert.Name,
			Description:    alert.Description,
			Severity:       string(alert.Severity),
			SeverityClass:  "severity-" + string(alert.Severity),
			Status:         string(alert.Status),
			AcknowledgedBy: alert.AcknowledgedBy,
			Silenced:       alert.Silenced,
		}
		if alert.TriggeredAt != nil {
			entry.TriggeredAt = format.DateTime(alert.TriggeredAt.In(w.timezone))
			entry.Duration = format.Duration(alert.Duration(now))
		}
		data.Alerts = append(data.Alerts, entry)
	}

	for _, h := range snapshot.History {
		data.History = append(data.History, HistoryData{
			Timestamp: format.DateTime(h.Timestamp.In(w.timezone)),
			Alert:     h.Alert,
			Action:    h.Action,
		})
	}

	return data
}

// sortedKeys returns the map keys in sorted order.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
