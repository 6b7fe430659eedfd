package model

import "time"

// DashboardSnapshot is the exportable state of one dashboard refresh: the
// latest metric values, the flattened performance table, and the alert view.
type DashboardSnapshot struct {
	GeneratedAt time.Time              `json:"generated_at"`          // Snapshot time
	Endpoint    string                 `json:"endpoint"`              // Backend the data came from
	SystemInfo  map[string]interface{} `json:"system_info,omitempty"` // Host platform details
	Monitoring  bool                   `json:"monitoring_active"`     // Backend run state
	Metrics     []MetricRow            `json:"metrics"`               // Latest-value metric rows
	Performance []PerformanceRow       `json:"performance"`           // Flattened performance table
	Alerts      []Alert                `json:"alerts"`                // Active alerts by severity rank
	History     []AlertHistoryEntry    `json:"history"`               // Alert history, most recent first
	Counts      AlertCounts            `json:"counts"`                // Counters over the active set
}
