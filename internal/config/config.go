// Package config provides configuration management for the dashboard engine.
package config

import "time"

// Config is the root configuration structure for the dashboard engine.
type Config struct {
	API       APIConfig       `mapstructure:"api" validate:"required"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Export    ExportConfig    `mapstructure:"export"`
}

// APIConfig contains the monitoring backend connection settings.
type APIConfig struct {
	Endpoint string        `mapstructure:"endpoint" validate:"required,url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DashboardConfig contains view-state defaults applied at startup.
type DashboardConfig struct {
	DefaultTab             string `mapstructure:"default_tab" validate:"oneof=system performance alerts logs"`
	RefreshIntervalSeconds int    `mapstructure:"refresh_interval_seconds" validate:"gte=0,lte=3600"`
	HistoryLimit           int    `mapstructure:"history_limit" validate:"gte=1,lte=1000"`
	NotificationTTL        time.Duration `mapstructure:"notification_ttl"`
	LayoutFile             string `mapstructure:"layout_file"` // Optional chart layout override
}

// HTTPConfig contains HTTP client configurations including retry settings.
type HTTPConfig struct {
	Retry RetryConfig `mapstructure:"retry"`
}

// RetryConfig defines retry behavior for HTTP requests.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

// LoggingConfig contains configurations for logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// ExportConfig contains snapshot export settings.
type ExportConfig struct {
	OutputDir        string   `mapstructure:"output_dir"`
	Formats          []string `mapstructure:"formats" validate:"dive,oneof=excel html"`
	FilenameTemplate string   `mapstructure:"filename_template"`
	Timezone         string   `mapstructure:"timezone"`
	HTMLTemplate     string   `mapstructure:"html_template"` // Custom HTML report template path
}
