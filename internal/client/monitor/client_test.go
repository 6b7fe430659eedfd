package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"dashmon/internal/config"
	"dashmon/internal/model"
)

// setupTestServer creates a test server and monitoring client for testing.
func setupTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.APIConfig{
		Endpoint: server.URL,
		Timeout:  5 * time.Second,
	}
	retryCfg := &config.RetryConfig{
		MaxRetries: 2,
		BaseDelay:  10 * time.Millisecond,
	}
	client := NewClient(cfg, retryCfg, zerolog.Nop())
	return server, client
}

func TestNewClient_Defaults(t *testing.T) {
	cfg := &config.APIConfig{Endpoint: "http://localhost:8000"}
	client := NewClient(cfg, nil, zerolog.Nop())

	if client == nil {
		t.Fatal("NewClient returned nil")
	}
	if client.timeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", client.timeout)
	}
	if client.retry.MaxRetries != 3 {
		t.Errorf("Expected default max retries 3, got %d", client.retry.MaxRetries)
	}
}

func TestStatus_Success(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/monitoring" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "active",
			"system_info": map[string]interface{}{"platform": "linux"},
		})
	}

	_, client := setupTestServer(t, handler)

	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !status.IsActive() {
		t.Error("Expected status to report active")
	}
	if status.SystemInfo["platform"] != "linux" {
		t.Errorf("SystemInfo platform = %v, want linux", status.SystemInfo["platform"])
	}
}

func TestMetrics_Success(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/monitoring/metrics" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("category"); got != "system" {
			t.Errorf("category = %q, want system", got)
		}
		if got := r.URL.Query().Get("limit"); got != "60" {
			t.Errorf("limit = %q, want 60", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"system.cpu_percent": [[1000, 10], [2000, 55]],
			"system.memory_percent": [["2026-03-14T09:05:03", 42.5]]
		}`))
	}

	_, client := setupTestServer(t, handler)

	series, err := client.Metrics(context.Background(), "system", 60)
	if err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("Expected 2 series, got %d", len(series))
	}

	cpu := series["system.cpu_percent"]
	if cpu == nil {
		t.Fatal("Missing system.cpu_percent series")
	}
	if len(cpu.Points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(cpu.Points))
	}
	if cpu.Points[0].Value != 10 || cpu.Points[1].Value != 55 {
		t.Errorf("Values = [%v, %v], want [10, 55]", cpu.Points[0].Value, cpu.Points[1].Value)
	}
	if cpu.Points[0].Timestamp.Unix() != 1000 {
		t.Errorf("Timestamp = %v, want unix 1000", cpu.Points[0].Timestamp)
	}

	mem := series["system.memory_percent"]
	if mem == nil || len(mem.Points) != 1 {
		t.Fatal("Missing or wrong-sized system.memory_percent series")
	}
	if mem.Points[0].Timestamp.IsZero() {
		t.Error("ISO timestamp should parse to a non-zero time")
	}
}

func TestMetricHistory_Success(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/monitoring/metrics/system.cpu_percent" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name": "system.cpu_percent", "values": [[1000, 10], [2000, 55]]}`))
	}

	_, client := setupTestServer(t, handler)

	series, err := client.MetricHistory(context.Background(), "system.cpu_percent", 60)
	if err != nil {
		t.Fatalf("MetricHistory() error = %v", err)
	}
	if series.Name != "system.cpu_percent" {
		t.Errorf("Name = %q", series.Name)
	}
	if len(series.Points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(series.Points))
	}
}

func TestMetricHistory_NotFound(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Metric not found: nope"}`))
	}

	_, client := setupTestServer(t, handler)

	_, err := client.MetricHistory(context.Background(), "nope", 10)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}
}

func TestPerformance_Success(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/monitoring/performance" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"api": {
				"request": {"latest": 0.5, "average": 0.4, "min": 0.1, "max": 0.9, "count": 12}
			}
		}`))
	}

	_, client := setupTestServer(t, handler)

	stats, err := client.Performance(context.Background(), "")
	if err != nil {
		t.Fatalf("Performance() error = %v", err)
	}
	stat := stats["api"]["request"]
	if stat.Latest != 0.5 || stat.Count != 12 {
		t.Errorf("Unexpected stat: %+v", stat)
	}
}

func TestActiveAlerts_Success(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"count": 1,
			"alerts": [{
				"name": "high_cpu",
				"description": "CPU usage above 90%",
				"severity": "critical",
				"category": "system",
				"status": "active",
				"triggered_at": 1700000000.5,
				"silenced": false,
				"details": {"value": 95.2}
			}]
		}`))
	}

	_, client := setupTestServer(t, handler)

	alerts, err := client.ActiveAlerts(context.Background())
	if err != nil {
		t.Fatalf("ActiveAlerts() error = %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(alerts))
	}

	alert := alerts[0]
	if alert.Name != "high_cpu" {
		t.Errorf("Name = %q", alert.Name)
	}
	if alert.Severity != model.SeverityCritical {
		t.Errorf("Severity = %q", alert.Severity)
	}
	if alert.Status != model.StatusActive {
		t.Errorf("Status = %q", alert.Status)
	}
	if alert.TriggeredAt == nil || alert.TriggeredAt.Unix() != 1700000000 {
		t.Errorf("TriggeredAt = %v", alert.TriggeredAt)
	}
	if alert.AcknowledgedAt != nil {
		t.Errorf("AcknowledgedAt should be nil, got %v", alert.AcknowledgedAt)
	}
}

func TestAlertHistory_Success(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/monitoring/alerts/history" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"count": 2,
			"history": [
				{"timestamp": 1700000100, "alert": "high_cpu", "action": "acknowledged", "details": {"user": "ops"}},
				{"timestamp": 1700000000, "alert": "high_cpu", "action": "triggered", "details": {"severity": "critical"}}
			]
		}`))
	}

	_, client := setupTestServer(t, handler)

	entries, err := client.AlertHistory(context.Background(), 20)
	if err != nil {
		t.Fatalf("AlertHistory() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Action != "acknowledged" {
		t.Errorf("First entry action = %q, want acknowledged (server order preserved)", entries[0].Action)
	}
}

func TestCreateAlert_Success(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/monitoring/alerts" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req CreateAlertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Name != "disk_full" || req.Severity != "warning" {
			t.Errorf("Unexpected request body: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "success"}`))
	}

	_, client := setupTestServer(t, handler)

	err := client.CreateAlert(context.Background(), &CreateAlertRequest{
		Name:        "disk_full",
		Description: "Disk usage above 95%",
		Severity:    "warning",
		Category:    "custom",
	})
	if err != nil {
		t.Fatalf("CreateAlert() error = %v", err)
	}
}

func TestAcknowledgeAlert_ServerFailure(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Alert not found or not active: ghost"}`))
	}

	_, client := setupTestServer(t, handler)

	err := client.AcknowledgeAlert(context.Background(), "ghost", "ops")
	if err == nil {
		t.Fatal("Expected error for failed acknowledge")
	}
	if err.Error() != "Alert not found or not active: ghost" {
		t.Errorf("Error = %q, want server detail message", err.Error())
	}
}

func TestResolveAlert_NonSuccessStatus(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "error", "message": "already resolved"}`))
	}

	_, client := setupTestServer(t, handler)

	err := client.ResolveAlert(context.Background(), "high_cpu")
	if err == nil {
		t.Fatal("Expected error for status != success")
	}
	if err.Error() != "already resolved" {
		t.Errorf("Error = %q, want server message", err.Error())
	}
}

func TestSilenceAlert_Body(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/monitoring/alerts/high_cpu/silence" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]bool
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if !body["silence"] {
			t.Error("Expected silence=true in request body")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "success"}`))
	}

	_, client := setupTestServer(t, handler)

	if err := client.SilenceAlert(context.Background(), "high_cpu", true); err != nil {
		t.Fatalf("SilenceAlert() error = %v", err)
	}
}

func TestStartStopMonitoring(t *testing.T) {
	var lastPath string
	handler := func(w http.ResponseWriter, r *http.Request) {
		lastPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "success", "message": "ok"}`))
	}

	_, client := setupTestServer(t, handler)

	if err := client.StartMonitoring(context.Background()); err != nil {
		t.Fatalf("StartMonitoring() error = %v", err)
	}
	if lastPath != "/api/monitoring/control/start" {
		t.Errorf("Path = %q", lastPath)
	}

	if err := client.StopMonitoring(context.Background()); err != nil {
		t.Fatalf("StopMonitoring() error = %v", err)
	}
	if lastPath != "/api/monitoring/control/stop" {
		t.Errorf("Path = %q", lastPath)
	}
}

func TestRetry_On5xx(t *testing.T) {
	var calls int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "active"}`))
	}

	_, client := setupTestServer(t, handler)

	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !status.IsActive() {
		t.Error("Expected active status after retries")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestNoRetry_On4xx(t *testing.T) {
	var calls int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Invalid severity: loud"}`))
	}

	_, client := setupTestServer(t, handler)

	err := client.CreateAlert(context.Background(), &CreateAlertRequest{Name: "x", Description: "y", Severity: "loud"})
	if err == nil {
		t.Fatal("Expected error for 400 response")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 attempt (no retry on 4xx), got %d", got)
	}
}

func TestNoRetry_OnMutatingCalls(t *testing.T) {
	// A retried POST could create the same alert twice; mutating calls get
	// exactly one attempt even when the server answers 5xx.
	var calls int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "backend overloaded"}`))
	}

	_, client := setupTestServer(t, handler)
	ctx := context.Background()

	ops := []struct {
		name string
		call func() error
	}{
		{"create", func() error {
			return client.CreateAlert(ctx, &CreateAlertRequest{Name: "disk_full", Description: "disk", Severity: "warning"})
		}},
		{"acknowledge", func() error { return client.AcknowledgeAlert(ctx, "disk_full", "ops") }},
		{"resolve", func() error { return client.ResolveAlert(ctx, "disk_full") }},
		{"silence", func() error { return client.SilenceAlert(ctx, "disk_full", true) }},
		{"start", func() error { return client.StartMonitoring(ctx) }},
		{"stop", func() error { return client.StopMonitoring(ctx) }},
	}

	for _, op := range ops {
		atomic.StoreInt32(&calls, 0)
		if err := op.call(); err == nil {
			t.Errorf("%s: expected error for 500 response", op.name)
		}
		if got := atomic.LoadInt32(&calls); got != 1 {
			t.Errorf("%s: expected 1 attempt (no retry on mutating call), got %d", op.name, got)
		}
	}
}
