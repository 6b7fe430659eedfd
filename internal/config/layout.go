// Package config provides configuration management for the dashboard engine.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ChartDomain selects the value-axis treatment of a chart slot.
type ChartDomain string

const (
	DomainPercent  ChartDomain = "percent"  // Value axis clamped to [0,100]
	DomainRate     ChartDomain = "rate"     // Byte rates, converted to KB/s
	DomainDuration ChartDomain = "duration" // Seconds, charted as-is
	DomainNumber   ChartDomain = "number"   // Plain values, axis starts at zero
)

// DatasetDef binds one chart dataset to a metric by substring match within
// the slot's bucket. Dataset order is the declaration order and stays stable
// across refreshes so series identity (color, legend) never changes.
type DatasetDef struct {
	Label string `yaml:"label"` // Legend label
	Match string `yaml:"match"` // Substring matched against metric names
}

// SlotDef defines one chart slot of the dashboard layout.
type SlotDef struct {
	ID       string       `yaml:"id"`       // Stable slot identifier
	Title    string       `yaml:"title"`    // Chart title
	Domain   ChartDomain  `yaml:"domain"`   // Value-axis treatment
	Bucket   string       `yaml:"bucket"`   // Source system bucket; empty = fed directly by the caller
	Datasets []DatasetDef `yaml:"datasets"` // Dataset definitions; empty = dynamic datasets
}

// Layout is the chart layout of the dashboard: which slots exist and which
// metrics feed them.
type Layout struct {
	Slots []SlotDef `yaml:"slots"`
}

// Slot returns the slot definition with the given id, or nil.
func (l *Layout) Slot(id string) *SlotDef {
	for i := range l.Slots {
		if l.Slots[i].ID == id {
			return &l.Slots[i]
		}
	}
	return nil
}

// DefaultLayout returns the built-in chart layout: the four system slots plus
// the per-category performance slot.
func DefaultLayout() *Layout {
	return &Layout{
		Slots: []SlotDef{
			{
				ID:     "cpu",
				Title:  "CPU Usage",
				Domain: DomainPercent,
				Bucket: "cpu",
				Datasets: []DatasetDef{
					{Label: "CPU Usage", Match: "percent"},
				},
			},
			{
				ID:     "memory",
				Title:  "Memory Usage",
				Domain: DomainPercent,
				Bucket: "memory",
				Datasets: []DatasetDef{
					{Label: "Memory Usage", Match: "percent"},
				},
			},
			{
				ID:     "disk",
				Title:  "Disk I/O",
				Domain: DomainNumber,
				Bucket: "disk",
				Datasets: []DatasetDef{
					{Label: "Read", Match: "read"},
					{Label: "Write", Match: "write"},
				},
			},
			{
				ID:     "network",
				Title:  "Network I/O",
				Domain: DomainRate,
				Bucket: "network",
				Datasets: []DatasetDef{
					{Label: "Received", Match: "recv"},
					{Label: "Sent", Match: "sent"},
				},
			},
			{
				ID:     "performance",
				Title:  "Performance",
				Domain: DomainDuration,
				// Datasets are built per refresh from the selected category.
			},
		},
	}
}

// LoadLayout reads a chart layout from the specified YAML file.
// An empty path returns the built-in default layout.
func LoadLayout(layoutPath string) (*Layout, error) {
	if layoutPath == "" {
		return DefaultLayout(), nil
	}

	if _, err := os.Stat(layoutPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("layout file not found: %s", layoutPath)
	}

	data, err := os.ReadFile(layoutPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout file: %w", err)
	}

	if err := validateLayout(&layout); err != nil {
		return nil, err
	}

	return &layout, nil
}

// validateLayout checks slot ids and domains.
func validateLayout(layout *Layout) error {
	if len(layout.Slots) == 0 {
		return fmt.Errorf("layout defines no chart slots")
	}

	seen := make(map[string]bool, len(layout.Slots))
	for i, slot := range layout.Slots {
		if slot.ID == "" {
			return fmt.Errorf("slot at index %d has no id", i)
		}
		if seen[slot.ID] {
			return fmt.Errorf("duplicate slot id %q", slot.ID)
		}
		seen[slot.ID] = true

		switch slot.Domain {
		case DomainPercent, DomainRate, DomainDuration, DomainNumber:
		default:
			return fmt.Errorf("slot %q has unknown domain %q", slot.ID, slot.Domain)
		}

		for j, ds := range slot.Datasets {
			if ds.Match == "" {
				return fmt.Errorf("slot %q dataset at index %d has no match expression", slot.ID, j)
			}
		}
	}

	return nil
}
