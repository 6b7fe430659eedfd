// Package config provides configuration management for the dashboard engine.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified YAML file and environment variables.
// Environment variables take precedence over file values.
// Environment variable format: DASHMON_<SECTION>_<KEY> (e.g. DASHMON_API_ENDPOINT)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults first
	setDefaults(v)

	// Configure environment variable binding
	v.SetEnvPrefix("DASHMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.timeout", 30*time.Second)

	// Dashboard defaults match the page's initial state: the system tab is
	// shown first and auto-refresh starts at 10 seconds.
	v.SetDefault("dashboard.default_tab", "system")
	v.SetDefault("dashboard.refresh_interval_seconds", 10)
	v.SetDefault("dashboard.history_limit", 60)
	v.SetDefault("dashboard.notification_ttl", 5*time.Second)

	// HTTP retry defaults
	v.SetDefault("http.retry.max_retries", 3)
	v.SetDefault("http.retry.base_delay", 1*time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Export defaults
	v.SetDefault("export.output_dir", "./exports")
	v.SetDefault("export.formats", []string{"excel", "html"})
	v.SetDefault("export.filename_template", "dashboard_snapshot_{{.Date}}")
	v.SetDefault("export.timezone", "UTC")
}
