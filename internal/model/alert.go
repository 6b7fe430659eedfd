// Package model provides data models for the dashboard engine.
package model

import "time"

// AlertSeverity represents the severity level of an alert.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"     // Informational
	SeverityWarning  AlertSeverity = "warning"  // Needs attention
	SeverityError    AlertSeverity = "error"    // Component failure
	SeverityCritical AlertSeverity = "critical" // Requires immediate action
)

// severityRank orders severities for display, most severe first.
var severityRank = map[AlertSeverity]int{
	SeverityCritical: 0,
	SeverityError:    1,
	SeverityWarning:  2,
	SeverityInfo:     3,
}

// Rank returns the display rank of the severity; unknown severities sort last.
func (s AlertSeverity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}

// Valid reports whether the severity is one of the known levels.
func (s AlertSeverity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// AlertStatus represents the lifecycle state of an alert.
type AlertStatus string

const (
	StatusActive       AlertStatus = "active"       // Triggered, not yet handled
	StatusAcknowledged AlertStatus = "acknowledged" // Seen by an operator
	StatusResolved     AlertStatus = "resolved"     // Terminal state
)

// Alert is a named condition with a severity and a lifecycle, owned by the
// monitoring backend. The engine only renders alerts and requests lifecycle
// transitions; it never mutates them locally.
type Alert struct {
	Name           string                 `json:"name"`                      // Unique identifier
	Description    string                 `json:"description"`               // Human-readable description
	Severity       AlertSeverity          `json:"severity"`                  // info|warning|error|critical
	Category       string                 `json:"category"`                  // Grouping key (e.g. "system", "custom")
	Status         AlertStatus            `json:"status"`                    // active|acknowledged|resolved
	TriggeredAt    *time.Time             `json:"triggered_at,omitempty"`    // When the alert fired
	AcknowledgedAt *time.Time             `json:"acknowledged_at,omitempty"` // When it was acknowledged
	AcknowledgedBy string                 `json:"acknowledged_by,omitempty"` // Who acknowledged it
	Silenced       bool                   `json:"silenced"`                  // Notifications suppressed
	Details        map[string]interface{} `json:"details,omitempty"`         // Backend-supplied context
}

// Duration returns the time since the alert was triggered, or zero if the
// trigger time is unknown.
func (a *Alert) Duration(now time.Time) time.Duration {
	if a.TriggeredAt == nil {
		return 0
	}
	return now.Sub(*a.TriggeredAt)
}

// AlertHistoryEntry is one append-only record of an alert transition.
// The backend owns the history; the engine is a read-only renderer.
type AlertHistoryEntry struct {
	Timestamp time.Time              `json:"timestamp"` // When the transition happened
	Alert     string                 `json:"alert"`     // Alert name
	Action    string                 `json:"action"`    // Transition label (e.g. "triggered", "acknowledged")
	Details   map[string]interface{} `json:"details,omitempty"`
}

// AlertCounts summarizes the active-alert set for the status header.
type AlertCounts struct {
	Total        int                   `json:"total"`        // All known alerts
	Active       int                   `json:"active"`       // Status == active
	Acknowledged int                   `json:"acknowledged"` // Status == acknowledged
	BySeverity   map[AlertSeverity]int `json:"by_severity"`  // Per-severity counters, 0 defaults included
}

// CountAlerts computes counters from the active-alert set. Every severity has
// an entry even when no alert carries it.
func CountAlerts(alerts []Alert) AlertCounts {
	counts := AlertCounts{
		Total: len(alerts),
		BySeverity: map[AlertSeverity]int{
			SeverityCritical: 0,
			SeverityError:    0,
			SeverityWarning:  0,
			SeverityInfo:     0,
		},
	}
	for _, a := range alerts {
		switch a.Status {
		case StatusActive:
			counts.Active++
		case StatusAcknowledged:
			counts.Acknowledged++
		}
		counts.BySeverity[a.Severity]++
	}
	return counts
}
