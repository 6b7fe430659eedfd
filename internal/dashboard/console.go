package dashboard

import (
	"fmt"
	"io"
	"sync"
	"time"

	"dashmon/internal/format"
	"dashmon/internal/logs"
	"dashmon/internal/model"
	"dashmon/internal/notify"
	"dashmon/internal/service"
)

// ConsoleView renders the dashboard as text. It implements both the
// controller's View and the notification center's Sink.
type ConsoleView struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleView creates a console view writing to out.
func NewConsoleView(out io.Writer) *ConsoleView {
	return &ConsoleView{out: out}
}

func (v *ConsoleView) ShowSystem(snapshot *service.CategorySnapshot, systemInfo map[string]interface{}) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fmt.Fprintf(v.out, "\n=== System Metrics (%s) ===\n", format.Clock(snapshot.FetchedAt))
	for _, row := range snapshot.Rows {
		fmt.Fprintf(v.out, "  %-40s %s\n", row.Name, format.MetricValue(row.Name, row.Value))
	}
	if platform, ok := systemInfo["platform"]; ok {
		fmt.Fprintf(v.out, "  platform: %v\n", platform)
	}
}

func (v *ConsoleView) ShowPerformance(rows []model.PerformanceRow) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fmt.Fprintf(v.out, "\n=== Performance ===\n")
	fmt.Fprintf(v.out, "  %-12s %-24s %10s %10s %10s %10s %7s\n",
		"CATEGORY", "METRIC", "LATEST", "AVG", "MIN", "MAX", "COUNT")
	for _, row := range rows {
		fmt.Fprintf(v.out, "  %-12s %-24s %9.4fs %9.4fs %9.4fs %9.4fs %7d\n",
			row.Category, row.Metric,
			row.Stat.Latest, row.Stat.Average, row.Stat.Min, row.Stat.Max, row.Stat.Count)
	}
}

func (v *ConsoleView) ShowAlerts(active []model.Alert, history []model.AlertHistoryEntry, counts model.AlertCounts) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fmt.Fprintf(v.out, "\n=== Alerts (%d active, %d acknowledged) ===\n", counts.Active, counts.Acknowledged)
	now := time.Now()
	for _, alert := range active {
		silenced := ""
		if alert.Silenced {
			silenced = " [silenced]"
		}
		duration := ""
		if alert.TriggeredAt != nil {
			duration = " for " + format.Duration(alert.Duration(now))
		}
		fmt.Fprintf(v.out, "  [%s] %-24s %s%s%s\n",
			alert.Severity, alert.Name, alert.Status, duration, silenced)
	}
	if len(history) > 0 {
		fmt.Fprintf(v.out, "  --- history ---\n")
		for _, entry := range history {
			fmt.Fprintf(v.out, "  %s %-24s %s\n",
				format.Clock(entry.Timestamp), entry.Alert, entry.Action)
		}
	}
}

func (v *ConsoleView) ShowLogs(entries []model.LogEntry, components []string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fmt.Fprintf(v.out, "\n=== Logs (%d entries, components: %v) ===\n", len(entries), components)
	for _, entry := range entries {
		fmt.Fprintln(v.out, logs.Render(entry))
	}
}

func (v *ConsoleView) ShowMonitoring(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	state := "stopped"
	if active {
		state = "active"
	}
	fmt.Fprintf(v.out, "monitoring: %s\n", state)
}

func (v *ConsoleView) ShowLastRefresh(t time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "refreshed at %s\n", format.Clock(t))
}

// Show implements notify.Sink.
func (v *ConsoleView) Show(n notify.Notification) {
	v.mu.Lock()
	defer v.mu.Unlock()

	marker := "OK"
	if n.Kind == notify.KindError {
		marker = "ERR"
	}
	fmt.Fprintf(v.out, "[%s] %s\n", marker, n.Message)
}

// Dismiss implements notify.Sink. Console output cannot be retracted, so
// dismissals are silent.
func (v *ConsoleView) Dismiss(id int) {}
