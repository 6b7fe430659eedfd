// Package cmd provides CLI commands for the dashboard engine.
package cmd

import (
	"io"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version information, injected at build time via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Global flags
var (
	cfgFile  string // Config file path
	logLevel string // Log level
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dashmon",
	Short: "Operational monitoring dashboard client",
	Long: `dashmon is the client-side engine of the operational monitoring
dashboard. It fetches metrics, performance statistics, and alerts from the
monitoring backend API and presents them as an auto-refreshing console
dashboard or as exported snapshot documents.

Main features:
  - System metric charts (CPU, memory, disk I/O, network I/O)
  - Performance statistics tables
  - Alert lifecycle management (acknowledge, resolve, silence)
  - Log filtering by level, component, and free text
  - Excel and HTML snapshot export`,
	Version: Version,
	// Run displays help when called without any subcommands
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// init initializes the root command and its flags.
func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	// Customize version template
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// GetConfigFile returns the config file path from command line flag.
func GetConfigFile() string {
	return cfgFile
}

// GetLogLevel returns the log level from command line flag.
func GetLogLevel() string {
	return logLevel
}

// GetVersionInfo returns formatted version information.
func GetVersionInfo() string {
	return Version + "\n" +
		"Build Time: " + BuildTime + "\n" +
		"Git Commit: " + GitCommit + "\n" +
		"Go Version: " + runtime.Version() + "\n" +
		"OS/Arch: " + runtime.GOOS + "/" + runtime.GOARCH
}

// setupLogger creates a zerolog logger with the specified level and format.
func setupLogger(level string, format string) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Select output format based on configuration
	var output io.Writer
	if format == "json" {
		// JSON format - structured logging for log aggregation systems
		output = os.Stderr
	} else {
		// Console format - human-readable output for development
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// exportTimezone resolves the configured export timezone, UTC on failure.
func exportTimezone(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	tz, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return tz
}
