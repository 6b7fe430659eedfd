// Package report provides dashboard snapshot export. It defines the
// SnapshotWriter interface and a registry of format implementations
// (Excel, HTML).
package report

import (
	"dashmon/internal/model"
)

// SnapshotWriter writes a dashboard snapshot to a file in one output format.
type SnapshotWriter interface {
	// Write renders the snapshot and saves it to the specified output
	// path, appending the format's file extension if missing.
	//
	// Returns an error if rendering or file writing fails.
	Write(snapshot *model.DashboardSnapshot, outputPath string) error

	// Format returns the format identifier for this writer.
	// Common values are "excel" and "html".
	Format() string
}
