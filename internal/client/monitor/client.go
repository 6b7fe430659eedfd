// Package monitor provides a client for the monitoring backend API.
package monitor

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"dashmon/internal/config"
	"dashmon/internal/model"
)

// Client is a client for the monitoring backend HTTP API.
type Client struct {
	endpoint   string             // API endpoint
	timeout    time.Duration      // Request timeout
	retry      config.RetryConfig // Retry configuration
	httpClient *resty.Client      // HTTP client
	logger     zerolog.Logger     // Logger
}

// NewClient creates a new monitoring API client.
func NewClient(cfg *config.APIConfig, retryCfg *config.RetryConfig, logger zerolog.Logger) *Client {
	// Set default timeout if not specified
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	// Set default retry config if not specified
	retry := config.RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
	}
	if retryCfg != nil {
		retry = *retryCfg
	}

	// Create resty client
	httpClient := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(retry.MaxRetries).
		SetRetryWaitTime(retry.BaseDelay).
		SetRetryMaxWaitTime(retry.BaseDelay * 8). // Max wait time for exponential backoff
		AddRetryCondition(retryCondition)

	return &Client{
		endpoint:   cfg.Endpoint,
		timeout:    timeout,
		retry:      retry,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "monitor-client").Logger(),
	}
}

// retryCondition determines whether a request should be retried.
// Only idempotent reads are retried, on timeout, 5xx errors, or connection
// failures; a retried POST or PUT could apply a transition twice, so
// mutating requests always get exactly one attempt.
// Do not retry on 4xx errors.
func retryCondition(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	return resp.StatusCode() >= 500
}

// Status retrieves the overall monitoring status and system info.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	c.logger.Debug().Msg("fetching monitoring status")

	var result StatusResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/api/monitoring")

	if err != nil {
		c.logger.Error().Err(err).Msg("failed to fetch monitoring status")
		return nil, fmt.Errorf("failed to fetch monitoring status: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Error().
			Int("status_code", resp.StatusCode()).
			Str("body", string(resp.Body())).
			Msg("monitoring API returned non-200 status")
		return nil, fmt.Errorf("monitoring API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return &result, nil
}

// Metrics retrieves all metrics for a category. The limit caps the number of
// samples returned per metric.
func (c *Client) Metrics(ctx context.Context, category string, limit int) (model.MetricCategoryMap, error) {
	c.logger.Debug().Str("category", category).Int("limit", limit).Msg("fetching metrics")

	var result MetricsResponse

	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		SetQueryParam("limit", strconv.Itoa(limit))
	if category != "" {
		req.SetQueryParam("category", category)
	}

	resp, err := req.Get("/api/monitoring/metrics")
	if err != nil {
		c.logger.Error().Err(err).Str("category", category).Msg("failed to fetch metrics")
		return nil, fmt.Errorf("failed to fetch metrics: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Error().
			Int("status_code", resp.StatusCode()).
			Str("category", category).
			Msg("monitoring API returned non-200 status")
		return nil, fmt.Errorf("monitoring API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	series := result.ToCategoryMap()
	c.logger.Debug().Int("count", len(series)).Str("category", category).Msg("fetched metrics successfully")
	return series, nil
}

// MetricHistory retrieves a single metric's time series capped at the limit
// most-recent points.
func (c *Client) MetricHistory(ctx context.Context, name string, limit int) (*model.MetricSeries, error) {
	c.logger.Debug().Str("metric", name).Int("limit", limit).Msg("fetching metric history")

	var result MetricHistoryResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/api/monitoring/metrics/" + name)

	if err != nil {
		c.logger.Error().Err(err).Str("metric", name).Msg("failed to fetch metric history")
		return nil, fmt.Errorf("failed to fetch history for %s: %w", name, err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Error().
			Int("status_code", resp.StatusCode()).
			Str("metric", name).
			Msg("monitoring API returned non-200 status")
		return nil, fmt.Errorf("monitoring API returned status %d for metric %s", resp.StatusCode(), name)
	}

	return ToSeries(result.Name, result.Values), nil
}

// Performance retrieves performance statistics, optionally scoped to one
// category. An empty category means all categories.
func (c *Client) Performance(ctx context.Context, category string) (PerformanceResponse, error) {
	c.logger.Debug().Str("category", category).Msg("fetching performance stats")

	var result PerformanceResponse

	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result)
	if category != "" {
		req.SetQueryParam("category", category)
	}

	resp, err := req.Get("/api/monitoring/performance")
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to fetch performance stats")
		return nil, fmt.Errorf("failed to fetch performance stats: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Error().
			Int("status_code", resp.StatusCode()).
			Msg("monitoring API returned non-200 status")
		return nil, fmt.Errorf("monitoring API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return result, nil
}

// ActiveAlerts retrieves the active alerts in server order.
func (c *Client) ActiveAlerts(ctx context.Context) ([]model.Alert, error) {
	c.logger.Debug().Msg("fetching active alerts")

	var result AlertsResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/api/monitoring/alerts")

	if err != nil {
		c.logger.Error().Err(err).Msg("failed to fetch alerts")
		return nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Error().
			Int("status_code", resp.StatusCode()).
			Msg("monitoring API returned non-200 status")
		return nil, fmt.Errorf("monitoring API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	c.logger.Debug().Int("count", len(result.Alerts)).Msg("fetched alerts successfully")
	return result.ToAlerts(), nil
}

// AlertHistory retrieves up to limit alert history entries, most recent first.
func (c *Client) AlertHistory(ctx context.Context, limit int) ([]model.AlertHistoryEntry, error) {
	c.logger.Debug().Int("limit", limit).Msg("fetching alert history")

	var result HistoryResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/api/monitoring/alerts/history")

	if err != nil {
		c.logger.Error().Err(err).Msg("failed to fetch alert history")
		return nil, fmt.Errorf("failed to fetch alert history: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Error().
			Int("status_code", resp.StatusCode()).
			Msg("monitoring API returned non-200 status")
		return nil, fmt.Errorf("monitoring API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return result.ToEntries(), nil
}

// CreateAlert creates and triggers a new alert.
func (c *Client) CreateAlert(ctx context.Context, req *CreateAlertRequest) error {
	c.logger.Debug().Str("name", req.Name).Str("severity", req.Severity).Msg("creating alert")
	return c.doAction(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).Post("/api/monitoring/alerts")
	})
}

// AcknowledgeAlert acknowledges an active alert, recording the acting user.
func (c *Client) AcknowledgeAlert(ctx context.Context, name, user string) error {
	c.logger.Debug().Str("name", name).Str("user", user).Msg("acknowledging alert")
	return c.doAction(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(map[string]string{"user": user}).
			Put("/api/monitoring/alerts/" + name + "/acknowledge")
	})
}

// ResolveAlert resolves an alert.
func (c *Client) ResolveAlert(ctx context.Context, name string) error {
	c.logger.Debug().Str("name", name).Msg("resolving alert")
	return c.doAction(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Put("/api/monitoring/alerts/" + name + "/resolve")
	})
}

// SilenceAlert silences or unsilences an alert.
func (c *Client) SilenceAlert(ctx context.Context, name string, silence bool) error {
	c.logger.Debug().Str("name", name).Bool("silence", silence).Msg("silencing alert")
	return c.doAction(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(map[string]bool{"silence": silence}).
			Put("/api/monitoring/alerts/" + name + "/silence")
	})
}

// StartMonitoring requests the backend to start the monitoring system.
func (c *Client) StartMonitoring(ctx context.Context) error {
	c.logger.Debug().Msg("starting monitoring system")
	return c.doAction(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Post("/api/monitoring/control/start")
	})
}

// StopMonitoring requests the backend to stop the monitoring system.
func (c *Client) StopMonitoring(ctx context.Context) error {
	c.logger.Debug().Msg("stopping monitoring system")
	return c.doAction(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Post("/api/monitoring/control/stop")
	})
}

// doAction executes a mutating request and maps the response to an error.
// Transport failures, non-2xx statuses, and status != "success" all fail; the
// server-provided message is preserved for the notification layer.
func (c *Client) doAction(ctx context.Context, call func(*resty.Request) (*resty.Response, error)) error {
	var result ActionResponse

	resp, err := call(c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&result))

	if err != nil {
		c.logger.Error().Err(err).Msg("action request failed")
		return fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() >= 400 {
		c.logger.Error().
			Int("status_code", resp.StatusCode()).
			Str("message", result.FailureMessage()).
			Msg("monitoring API rejected action")
		return fmt.Errorf("%s", result.FailureMessage())
	}

	if !result.IsSuccess() {
		c.logger.Error().
			Str("status", result.Status).
			Str("message", result.FailureMessage()).
			Msg("monitoring API returned failure status")
		return fmt.Errorf("%s", result.FailureMessage())
	}

	return nil
}
