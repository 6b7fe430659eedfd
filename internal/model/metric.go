// Package model provides data models for the dashboard engine.
package model

import "time"

// MetricBucket represents one of the system chart buckets.
type MetricBucket string

const (
	BucketCPU     MetricBucket = "cpu"     // CPU charts
	BucketMemory  MetricBucket = "memory"  // Memory charts
	BucketDisk    MetricBucket = "disk"    // Disk I/O charts
	BucketNetwork MetricBucket = "network" // Network I/O charts
)

// BucketOrder is the fixed classification order for system metrics.
// A metric name is assigned to the first bucket whose keyword it contains.
var BucketOrder = []MetricBucket{BucketCPU, BucketMemory, BucketDisk, BucketNetwork}

// MetricPoint is a single timestamped sample of a metric.
type MetricPoint struct {
	Timestamp time.Time `json:"timestamp"` // Sample time
	Value     float64   `json:"value"`     // Sample value
}

// MetricSeries is a named, time-ordered sequence of numeric samples.
// A series is an immutable snapshot of one fetch; refreshes replace it
// wholesale rather than merging.
type MetricSeries struct {
	Name   string        `json:"name"`   // Dotted metric name (e.g. "system.cpu_percent")
	Points []MetricPoint `json:"points"` // Samples ordered by timestamp ascending
}

// Latest returns the most recent sample of the series.
// The second return value is false for an empty series.
func (s *MetricSeries) Latest() (MetricPoint, bool) {
	if len(s.Points) == 0 {
		return MetricPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Values returns the numeric values of the series in chronological order.
func (s *MetricSeries) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// Timestamps returns the sample times of the series in chronological order.
func (s *MetricSeries) Timestamps() []time.Time {
	ts := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		ts[i] = p.Timestamp
	}
	return ts
}

// MetricCategoryMap maps metric names to their series for one requested
// category (e.g. "system", "performance").
type MetricCategoryMap map[string]*MetricSeries

// MetricRow is one latest-value row of the metric table.
type MetricRow struct {
	Name      string    `json:"name"`      // Full metric name
	Value     float64   `json:"value"`     // Most recent sample value
	Timestamp time.Time `json:"timestamp"` // Time of the most recent sample
}

// PerformanceStat holds aggregate statistics for one performance metric.
// Duration metrics are denominated in seconds.
type PerformanceStat struct {
	Latest  float64 `json:"latest"`  // Most recent value
	Average float64 `json:"average"` // Mean over the retained window
	Min     float64 `json:"min"`     // Minimum over the retained window
	Max     float64 `json:"max"`     // Maximum over the retained window
	Count   int     `json:"count"`   // Number of samples
}

// PerformanceRow is one row of the flattened performance table.
type PerformanceRow struct {
	Category string          `json:"category"` // Stat category (e.g. "api", "llm")
	Metric   string          `json:"metric"`   // Metric name within the category
	Stat     PerformanceStat `json:"stat"`     // Aggregate statistics
}
