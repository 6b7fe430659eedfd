// Package service implements the data fetch and normalization pipeline
// between the monitoring API client and the dashboard.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"dashmon/internal/client/monitor"
	"dashmon/internal/config"
	"dashmon/internal/model"
)

// bucketKeywords maps each system bucket to the substring that claims a
// metric name. Checked in this fixed order; the first match wins.
var bucketKeywords = []struct {
	bucket  model.MetricBucket
	keyword string
}{
	{model.BucketCPU, "cpu"},
	{model.BucketMemory, "memory"},
	{model.BucketDisk, "disk"},
	{model.BucketNetwork, "network"},
}

// Classify assigns a metric name to a system bucket by substring match.
// Metrics matching no keyword carry no bucket and are shown only in the raw
// metric table.
func Classify(name string) (model.MetricBucket, bool) {
	for _, bk := range bucketKeywords {
		if strings.Contains(name, bk.keyword) {
			return bk.bucket, true
		}
	}
	return "", false
}

// CategorySnapshot is the normalized result of one metrics fetch. It is
// immutable after construction and replaced wholesale on each refresh.
type CategorySnapshot struct {
	Category  string                                       // Requested category
	Metrics   model.MetricCategoryMap                      // Raw name -> series mapping
	Buckets   map[model.MetricBucket][]*model.MetricSeries // Series grouped by system bucket
	Rows      []model.MetricRow                            // Latest-value rows, sorted by name
	FetchedAt time.Time                                    // Snapshot time
}

// BucketSeries returns the series assigned to a bucket, sorted by name.
func (s *CategorySnapshot) BucketSeries(bucket model.MetricBucket) []*model.MetricSeries {
	return s.Buckets[bucket]
}

// Fetcher loads and normalizes monitoring data for the dashboard.
type Fetcher struct {
	client       *monitor.Client
	historyLimit int
	logger       zerolog.Logger
}

// NewFetcher creates a new Fetcher instance.
func NewFetcher(client *monitor.Client, cfg *config.DashboardConfig, logger zerolog.Logger) *Fetcher {
	historyLimit := 60
	if cfg != nil && cfg.HistoryLimit > 0 {
		historyLimit = cfg.HistoryLimit
	}

	return &Fetcher{
		client:       client,
		historyLimit: historyLimit,
		logger:       logger.With().Str("component", "fetcher").Logger(),
	}
}

// LoadMetrics fetches all metrics for a category and classifies each series
// into a system bucket.
func (f *Fetcher) LoadMetrics(ctx context.Context, category string) (*CategorySnapshot, error) {
	metrics, err := f.client.Metrics(ctx, category, f.historyLimit)
	if err != nil {
		f.logger.Error().Err(err).Str("category", category).Msg("failed to load metrics")
		return nil, fmt.Errorf("failed to load metrics for %s: %w", category, err)
	}

	snapshot := &CategorySnapshot{
		Category:  category,
		Metrics:   metrics,
		Buckets:   make(map[model.MetricBucket][]*model.MetricSeries),
		Rows:      make([]model.MetricRow, 0, len(metrics)),
		FetchedAt: time.Now(),
	}

	for name, series := range metrics {
		if bucket, ok := Classify(name); ok {
			snapshot.Buckets[bucket] = append(snapshot.Buckets[bucket], series)
		}
		if latest, ok := series.Latest(); ok {
			snapshot.Rows = append(snapshot.Rows, model.MetricRow{
				Name:      name,
				Value:     latest.Value,
				Timestamp: latest.Timestamp,
			})
		}
	}

	// Map iteration order is random; sort for a stable table and stable
	// chart dataset order.
	sort.Slice(snapshot.Rows, func(i, j int) bool {
		return snapshot.Rows[i].Name < snapshot.Rows[j].Name
	})
	for bucket := range snapshot.Buckets {
		series := snapshot.Buckets[bucket]
		sort.Slice(series, func(i, j int) bool {
			return series[i].Name < series[j].Name
		})
	}

	f.logger.Debug().
		Str("category", category).
		Int("metrics", len(metrics)).
		Int("bucketed", len(snapshot.Buckets)).
		Msg("loaded metrics snapshot")

	return snapshot, nil
}

// LoadPerformance fetches performance statistics and flattens them into rows
// sorted by category then metric name. An empty category means all.
func (f *Fetcher) LoadPerformance(ctx context.Context, category string) ([]model.PerformanceRow, error) {
	stats, err := f.client.Performance(ctx, category)
	if err != nil {
		f.logger.Error().Err(err).Str("category", category).Msg("failed to load performance stats")
		return nil, fmt.Errorf("failed to load performance stats: %w", err)
	}

	rows := stats.Flatten()
	f.logger.Debug().Int("rows", len(rows)).Msg("loaded performance stats")
	return rows, nil
}

// LoadMetricHistory fetches a single metric's time series capped at limit
// most-recent points.
func (f *Fetcher) LoadMetricHistory(ctx context.Context, name string, limit int) (*model.MetricSeries, error) {
	if limit <= 0 {
		limit = f.historyLimit
	}

	series, err := f.client.MetricHistory(ctx, name, limit)
	if err != nil {
		f.logger.Error().Err(err).Str("metric", name).Msg("failed to load metric history")
		return nil, fmt.Errorf("failed to load history for %s: %w", name, err)
	}

	return series, nil
}

// StartMonitoring asks the backend to start the monitoring system.
func (f *Fetcher) StartMonitoring(ctx context.Context) error {
	return f.client.StartMonitoring(ctx)
}

// StopMonitoring asks the backend to stop the monitoring system.
func (f *Fetcher) StopMonitoring(ctx context.Context) error {
	return f.client.StopMonitoring(ctx)
}

// LoadStatus fetches the overall monitoring status and system info.
func (f *Fetcher) LoadStatus(ctx context.Context) (*monitor.StatusResponse, error) {
	status, err := f.client.Status(ctx)
	if err != nil {
		f.logger.Error().Err(err).Msg("failed to load monitoring status")
		return nil, fmt.Errorf("failed to load monitoring status: %w", err)
	}
	return status, nil
}
