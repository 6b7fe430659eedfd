// Package model provides data models for the dashboard engine.
package model

import "time"

// LogLevel represents the severity of a log entry.
type LogLevel string

const (
	LevelDebug    LogLevel = "DEBUG"
	LevelInfo     LogLevel = "INFO"
	LevelWarning  LogLevel = "WARNING"
	LevelError    LogLevel = "ERROR"
	LevelCritical LogLevel = "CRITICAL"
)

// LogLevels lists the known levels in ascending severity order.
var LogLevels = []LogLevel{LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical}

// LogEntry is one record of the in-memory log buffer.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"` // When the entry was emitted
	Level     LogLevel  `json:"level"`     // DEBUG..CRITICAL
	Component string    `json:"component"` // Emitting component (e.g. "api", "scheduler")
	Message   string    `json:"message"`   // Log text
}
