package monitor

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"dashmon/internal/model"
)

// ActionResponse represents the outcome of a mutating API call.
// The backend marks success with the literal status "success"; anything else
// is a business-rule failure carrying an optional message.
type ActionResponse struct {
	Status  string `json:"status"`  // "success" on success
	Message string `json:"message"` // Human-readable outcome or error detail
	Detail  string `json:"detail"`  // FastAPI-style error detail on HTTP errors
}

// IsSuccess returns true if the action succeeded.
func (r *ActionResponse) IsSuccess() bool {
	return r.Status == "success"
}

// FailureMessage returns the most specific message the backend provided.
func (r *ActionResponse) FailureMessage() string {
	if r.Detail != "" {
		return r.Detail
	}
	if r.Message != "" {
		return r.Message
	}
	return "request failed"
}

// StatusResponse represents the overall monitoring status from GET /api/monitoring.
type StatusResponse struct {
	Status     string                 `json:"status"`      // Run state: "active" when monitoring is running
	SystemInfo map[string]interface{} `json:"system_info"` // Host platform details
}

// IsActive returns true if the monitoring system reports itself running.
func (r *StatusResponse) IsActive() bool {
	return r.Status == "active"
}

// SamplePair is a single [timestamp, value] pair as returned by the metrics
// endpoints. The backend records ISO-8601 timestamp strings, but numeric Unix
// timestamps also appear; both are accepted.
type SamplePair [2]interface{}

// Time returns the sample timestamp.
// Returns the zero time if the timestamp cannot be interpreted.
func (p SamplePair) Time() time.Time {
	switch ts := p[0].(type) {
	case float64:
		sec := int64(ts)
		nsec := int64((ts - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC()
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, ts); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// Value returns the sample value as float64.
func (p SamplePair) Value() (float64, error) {
	switch v := p[1].(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse value %q: %w", v, err)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("sample has no value")
	default:
		return 0, fmt.Errorf("unexpected value type: %T", p[1])
	}
}

// MetricsResponse maps metric names to their sample pairs, as returned by
// GET /api/monitoring/metrics.
type MetricsResponse map[string][]SamplePair

// MetricHistoryResponse represents GET /api/monitoring/metrics/{name}.
type MetricHistoryResponse struct {
	Name   string       `json:"name"`
	Values []SamplePair `json:"values"`
}

// ToSeries converts raw sample pairs into a MetricSeries, skipping samples
// whose value cannot be parsed. Insertion order is preserved; the backend
// returns samples in chronological order.
func ToSeries(name string, pairs []SamplePair) *model.MetricSeries {
	series := &model.MetricSeries{
		Name:   name,
		Points: make([]model.MetricPoint, 0, len(pairs)),
	}
	for _, pair := range pairs {
		value, err := pair.Value()
		if err != nil {
			continue
		}
		series.Points = append(series.Points, model.MetricPoint{
			Timestamp: pair.Time(),
			Value:     value,
		})
	}
	return series
}

// ToCategoryMap converts a raw metrics response into the typed category map.
func (r MetricsResponse) ToCategoryMap() model.MetricCategoryMap {
	out := make(model.MetricCategoryMap, len(r))
	for name, pairs := range r {
		out[name] = ToSeries(name, pairs)
	}
	return out
}

// PerformanceResponse is the two-level category -> metric -> stat mapping from
// GET /api/monitoring/performance.
type PerformanceResponse map[string]map[string]model.PerformanceStat

// Flatten converts the two-level mapping into table rows sorted by category
// then metric name, both lexicographic ascending.
func (r PerformanceResponse) Flatten() []model.PerformanceRow {
	rows := make([]model.PerformanceRow, 0, len(r))
	for category, metrics := range r {
		for metric, stat := range metrics {
			rows = append(rows, model.PerformanceRow{
				Category: category,
				Metric:   metric,
				Stat:     stat,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Category != rows[j].Category {
			return rows[i].Category < rows[j].Category
		}
		return rows[i].Metric < rows[j].Metric
	})
	return rows
}

// alertData is the wire representation of one alert. Trigger and acknowledge
// times are Unix seconds, nullable.
type alertData struct {
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Severity       string                 `json:"severity"`
	Category       string                 `json:"category"`
	Status         string                 `json:"status"`
	TriggeredAt    *float64               `json:"triggered_at"`
	AcknowledgedAt *float64               `json:"acknowledged_at"`
	AcknowledgedBy string                 `json:"acknowledged_by"`
	Silenced       bool                   `json:"silenced"`
	Details        map[string]interface{} `json:"details"`
}

// toModel converts wire alert data to the internal Alert model.
func (a *alertData) toModel() model.Alert {
	return model.Alert{
		Name:           a.Name,
		Description:    a.Description,
		Severity:       model.AlertSeverity(a.Severity),
		Category:       a.Category,
		Status:         model.AlertStatus(a.Status),
		TriggeredAt:    unixTimePtr(a.TriggeredAt),
		AcknowledgedAt: unixTimePtr(a.AcknowledgedAt),
		AcknowledgedBy: a.AcknowledgedBy,
		Silenced:       a.Silenced,
		Details:        a.Details,
	}
}

// AlertsResponse represents GET /api/monitoring/alerts.
type AlertsResponse struct {
	Count  int         `json:"count"`
	Alerts []alertData `json:"alerts"`
}

// ToAlerts converts the wire alerts to model alerts, preserving server order.
func (r *AlertsResponse) ToAlerts() []model.Alert {
	alerts := make([]model.Alert, 0, len(r.Alerts))
	for i := range r.Alerts {
		alerts = append(alerts, r.Alerts[i].toModel())
	}
	return alerts
}

// historyData is the wire representation of one alert history entry.
type historyData struct {
	Timestamp float64                `json:"timestamp"`
	Alert     string                 `json:"alert"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details"`
}

// HistoryResponse represents GET /api/monitoring/alerts/history.
type HistoryResponse struct {
	Count   int           `json:"count"`
	History []historyData `json:"history"`
}

// ToEntries converts the wire history to model entries, preserving server
// order (most recent first).
func (r *HistoryResponse) ToEntries() []model.AlertHistoryEntry {
	entries := make([]model.AlertHistoryEntry, 0, len(r.History))
	for _, h := range r.History {
		entries = append(entries, model.AlertHistoryEntry{
			Timestamp: unixTime(h.Timestamp),
			Alert:     h.Alert,
			Action:    h.Action,
			Details:   h.Details,
		})
	}
	return entries
}

// CreateAlertRequest is the body of POST /api/monitoring/alerts.
type CreateAlertRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Severity    string                 `json:"severity"`
	Category    string                 `json:"category"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// unixTime converts Unix seconds (possibly fractional) to time.Time in UTC.
func unixTime(sec float64) time.Time {
	s := int64(sec)
	ns := int64((sec - float64(s)) * float64(time.Second))
	return time.Unix(s, ns).UTC()
}

// unixTimePtr converts a nullable Unix timestamp.
func unixTimePtr(sec *float64) *time.Time {
	if sec == nil {
		return nil
	}
	t := unixTime(*sec)
	return &t
}
