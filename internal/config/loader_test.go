// Package config provides configuration management for the dashboard engine.
package config

import (
	"os"
	"testing"
	"time"
)

// writeTempConfig writes the given YAML content to a temp file and returns its path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoad_Success(t *testing.T) {
	path := writeTempConfig(t, `
api:
  endpoint: "http://localhost:8000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Endpoint != "http://localhost:8000" {
		t.Errorf("API endpoint = %v, want http://localhost:8000", cfg.API.Endpoint)
	}

	// Verify defaults
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("API timeout = %v, want 30s", cfg.API.Timeout)
	}
	if cfg.Dashboard.DefaultTab != "system" {
		t.Errorf("DefaultTab = %v, want system", cfg.Dashboard.DefaultTab)
	}
	if cfg.Dashboard.RefreshIntervalSeconds != 10 {
		t.Errorf("RefreshIntervalSeconds = %v, want 10", cfg.Dashboard.RefreshIntervalSeconds)
	}
	if cfg.Dashboard.HistoryLimit != 60 {
		t.Errorf("HistoryLimit = %v, want 60", cfg.Dashboard.HistoryLimit)
	}
	if cfg.HTTP.Retry.MaxRetries != 3 {
		t.Errorf("MaxRetries = %v, want 3", cfg.HTTP.Retry.MaxRetries)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging level = %v, want info", cfg.Logging.Level)
	}
	if cfg.Export.Timezone != "UTC" {
		t.Errorf("Export timezone = %v, want UTC", cfg.Export.Timezone)
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := writeTempConfig(t, `
api:
  endpoint: "http://monitor.internal:9000"
  timeout: 5s
dashboard:
  default_tab: alerts
  refresh_interval_seconds: 0
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("API timeout = %v, want 5s", cfg.API.Timeout)
	}
	if cfg.Dashboard.DefaultTab != "alerts" {
		t.Errorf("DefaultTab = %v, want alerts", cfg.Dashboard.DefaultTab)
	}
	if cfg.Dashboard.RefreshIntervalSeconds != 0 {
		t.Errorf("RefreshIntervalSeconds = %v, want 0", cfg.Dashboard.RefreshIntervalSeconds)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging format = %v, want json", cfg.Logging.Format)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("")
	if err == nil {
		t.Fatal("Load() expected error for empty path")
	}
}

func TestLoad_MissingEndpoint(t *testing.T) {
	path := writeTempConfig(t, `
dashboard:
  default_tab: system
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error for missing api.endpoint")
	}
}

func TestLoad_InvalidTab(t *testing.T) {
	path := writeTempConfig(t, `
api:
  endpoint: "http://localhost:8000"
dashboard:
  default_tab: nonsense
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error for invalid default_tab")
	}
}

func TestValidate_InvalidTimezone(t *testing.T) {
	cfg := &Config{
		API:       APIConfig{Endpoint: "http://localhost:8000"},
		Dashboard: DashboardConfig{DefaultTab: "system", HistoryLimit: 60},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
		Export:    ExportConfig{Timezone: "Not/AZone"},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() expected error for invalid timezone")
	}
}
