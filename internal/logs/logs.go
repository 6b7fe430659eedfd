// Package logs implements the dashboard log buffer and filter engine.
// Filtering operates over an already loaded in-memory buffer; the buffer is
// fed by a Source so a real log-retrieval endpoint can replace the simulated
// one without touching the filter contract.
package logs

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"dashmon/internal/format"
	"dashmon/internal/model"
)

// Source supplies the log entries of one buffer load.
type Source interface {
	Entries() ([]model.LogEntry, error)
}

// Engine holds the loaded buffer and the three filter predicates.
type Engine struct {
	source Source
	logger zerolog.Logger

	entries    []model.LogEntry
	components []string

	level     model.LogLevel
	component string
	search    string
}

// NewEngine creates a log engine backed by the given source.
func NewEngine(source Source, logger zerolog.Logger) *Engine {
	return &Engine{
		source: source,
		logger: logger.With().Str("component", "logs").Logger(),
	}
}

// Load (re)fills the buffer from the source and recomputes the component
// option list. Active filter predicates are kept.
func (e *Engine) Load() error {
	entries, err := e.source.Entries()
	if err != nil {
		e.logger.Error().Err(err).Msg("failed to load log buffer")
		return err
	}

	e.entries = entries
	e.components = distinctComponents(entries)

	e.logger.Debug().Int("entries", len(entries)).Msg("loaded log buffer")
	return nil
}

// Filter sets the three predicates. Empty values disable the corresponding
// predicate.
func (e *Engine) Filter(level model.LogLevel, component, search string) {
	e.level = level
	e.component = component
	e.search = search
}

// Clear resets all predicates, revealing every entry.
func (e *Engine) Clear() {
	e.level = ""
	e.component = ""
	e.search = ""
}

// Visible returns the entries passing all active predicates, in buffer order.
func (e *Engine) Visible() []model.LogEntry {
	visible := make([]model.LogEntry, 0, len(e.entries))
	for _, entry := range e.entries {
		if e.matches(entry) {
			visible = append(visible, entry)
		}
	}
	return visible
}

// Components returns the sorted distinct component names of the buffer,
// recomputed on each load.
func (e *Engine) Components() []string {
	return e.components
}

// matches applies the three predicates to one entry.
func (e *Engine) matches(entry model.LogEntry) bool {
	if e.level != "" && entry.Level != e.level {
		return false
	}
	if e.component != "" && !strings.Contains(entry.Component, e.component) {
		return false
	}
	if e.search != "" {
		rendered := strings.ToLower(Render(entry))
		if !strings.Contains(rendered, strings.ToLower(e.search)) {
			return false
		}
	}
	return true
}

// Render produces the full display text of an entry, which is also the text
// searched by the free-text predicate.
func Render(entry model.LogEntry) string {
	return format.DateTime(entry.Timestamp) + " [" + string(entry.Level) + "] " +
		entry.Component + ": " + entry.Message
}

// distinctComponents returns the sorted set of component names present.
func distinctComponents(entries []model.LogEntry) []string {
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		seen[entry.Component] = true
	}
	components := make([]string, 0, len(seen))
	for component := range seen {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}
