// Package model provides data models for the dashboard engine.
package model

import "time"

// Tab identifies one of the mutually exclusive dashboard views.
type Tab string

const (
	TabSystem      Tab = "system"
	TabPerformance Tab = "performance"
	TabAlerts      Tab = "alerts"
	TabLogs        Tab = "logs"
)

// Tabs lists every valid tab.
var Tabs = []Tab{TabSystem, TabPerformance, TabAlerts, TabLogs}

// Valid reports whether the tab is one of the fixed set.
func (t Tab) Valid() bool {
	switch t {
	case TabSystem, TabPerformance, TabAlerts, TabLogs:
		return true
	}
	return false
}

// DashboardState is the top-level view state owned by the dashboard
// controller. Other components receive what they need as parameters and never
// read this through shared globals.
type DashboardState struct {
	CurrentTab             Tab        `json:"current_tab"`              // Active view
	MonitoringActive       bool       `json:"monitoring_active"`        // Backend run/stop flag
	RefreshIntervalSeconds int        `json:"refresh_interval_seconds"` // 0 = auto-refresh disabled
	LastRefresh            *time.Time `json:"last_refresh,omitempty"`   // Nil before the first load
}
