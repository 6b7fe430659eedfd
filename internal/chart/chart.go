// Package chart implements the chart reconciliation engine. Chart slots are
// created once per session and updated in place on every refresh, so the host
// renderer keeps zoom and hover state and series colors never reshuffle.
package chart

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"dashmon/internal/config"
	"dashmon/internal/format"
	"dashmon/internal/model"
)

// MaxTicks caps the number of visible x-axis ticks regardless of sample
// count; the renderer auto-skips intermediate labels.
const MaxTicks = 10

// bytesPerKB converts byte rates to KB/s for rate-domain charts.
const bytesPerKB = 1024

// Dataset is one named value sequence of a chart.
type Dataset struct {
	Label  string    // Legend label
	Values []float64 // Sample values, same length as the label sequence
}

// Options describes a chart at construction time.
type Options struct {
	Title    string  // Chart title
	YMin     float64 // Value-axis lower bound
	YMax     float64 // Value-axis upper bound; 0 means auto-scale
	MaxTicks int     // Visible x-axis tick cap
}

// Handle is a live chart instance owned by the host renderer.
type Handle interface {
	// Update replaces the label sequence and every dataset's values in
	// place and requests a redraw.
	Update(labels []string, datasets []Dataset)
}

// Renderer constructs chart handles. The runnable CLI provides a console
// renderer; a browser host would wrap its chart library.
type Renderer interface {
	New(slotID string, opts Options) Handle
}

// Engine reconciles metric series into chart slots defined by the layout.
type Engine struct {
	renderer Renderer
	layout   *config.Layout
	handles  map[string]Handle // One handle per slot for the whole session
	logger   zerolog.Logger
}

// NewEngine creates a new chart engine.
func NewEngine(renderer Renderer, layout *config.Layout, logger zerolog.Logger) *Engine {
	if layout == nil {
		layout = config.DefaultLayout()
	}
	return &Engine{
		renderer: renderer,
		layout:   layout,
		handles:  make(map[string]Handle),
		logger:   logger.With().Str("component", "chart").Logger(),
	}
}

// Layout returns the active layout definition.
func (e *Engine) Layout() *config.Layout {
	return e.layout
}

// Handle returns the live handle for a slot, or nil if it has not been
// rendered yet.
func (e *Engine) Handle(slotID string) Handle {
	return e.handles[slotID]
}

// RenderBucket reconciles a slot with the series of its system bucket. The
// slot's dataset definitions pick series by substring match, in declaration
// order; a definition with no matching series yields an empty dataset so the
// dataset count and order never change between refreshes.
func (e *Engine) RenderBucket(slotID string, series []*model.MetricSeries) error {
	slot := e.layout.Slot(slotID)
	if slot == nil {
		return fmt.Errorf("unknown chart slot: %s", slotID)
	}

	labels := timeLabels(longestTimestamps(series))

	datasets := make([]Dataset, 0, len(slot.Datasets))
	for _, def := range slot.Datasets {
		datasets = append(datasets, Dataset{
			Label:  def.Label,
			Values: transform(slot.Domain, matchValues(series, def.Match)),
		})
	}

	e.render(slot, labels, datasets)
	return nil
}

// RenderSeries reconciles a slot with caller-provided series, one dataset per
// series in the given order. Used by slots without fixed dataset
// definitions, such as the performance chart.
func (e *Engine) RenderSeries(slotID string, series []*model.MetricSeries) error {
	slot := e.layout.Slot(slotID)
	if slot == nil {
		return fmt.Errorf("unknown chart slot: %s", slotID)
	}

	labels := timeLabels(longestTimestamps(series))

	datasets := make([]Dataset, 0, len(series))
	for _, s := range series {
		datasets = append(datasets, Dataset{
			Label:  s.Name,
			Values: transform(slot.Domain, s.Values()),
		})
	}

	e.render(slot, labels, datasets)
	return nil
}

// render updates the slot's existing handle, creating it on first use.
// Handles are never destroyed and recreated.
func (e *Engine) render(slot *config.SlotDef, labels []string, datasets []Dataset) {
	handle, ok := e.handles[slot.ID]
	if !ok {
		handle = e.renderer.New(slot.ID, buildOptions(slot))
		e.handles[slot.ID] = handle
		e.logger.Debug().Str("slot", slot.ID).Msg("created chart handle")
	}
	handle.Update(labels, datasets)
}

// buildOptions derives construction options from the slot's domain.
func buildOptions(slot *config.SlotDef) Options {
	opts := Options{
		Title:    slot.Title,
		MaxTicks: MaxTicks,
	}
	if slot.Domain == config.DomainPercent {
		opts.YMax = 100
	}
	return opts
}

// transform applies the domain's unit conversion to sample values.
func transform(domain config.ChartDomain, values []float64) []float64 {
	if domain != config.DomainRate {
		return values
	}
	converted := make([]float64, len(values))
	for i, v := range values {
		converted[i] = v / bytesPerKB
	}
	return converted
}

// matchValues returns the values of the first series whose name contains the
// match substring, or nil if none does.
func matchValues(series []*model.MetricSeries, match string) []float64 {
	for _, s := range series {
		if strings.Contains(s.Name, match) {
			return s.Values()
		}
	}
	return nil
}

// longestTimestamps returns the timestamp sequence of the longest series, so
// the label axis covers every dataset.
func longestTimestamps(series []*model.MetricSeries) []time.Time {
	var longest []time.Time
	for _, s := range series {
		if len(s.Points) > len(longest) {
			longest = s.Timestamps()
		}
	}
	return longest
}

// timeLabels renders sample timestamps as clock-time axis labels.
func timeLabels(timestamps []time.Time) []string {
	labels := make([]string, len(timestamps))
	for i, ts := range timestamps {
		labels[i] = format.Clock(ts)
	}
	return labels
}
