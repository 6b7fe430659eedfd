package logs

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"dashmon/internal/model"
)

// The backend has no log-retrieval endpoint yet, so the default source
// generates a plausible buffer client-side. A real paginated source replaces
// this without changing the Engine contract.

// simComponents are the component names used by the simulated buffer.
var simComponents = []string{"monitor", "collector", "alerts", "api", "scheduler"}

// simMessages maps each level to its message templates.
var simMessages = map[model.LogLevel][]string{
	model.LevelDebug: {
		"polling metrics for category system",
		"cache hit for metric %s",
		"request completed in %dms",
	},
	model.LevelInfo: {
		"metrics collection cycle completed",
		"alert state synchronized",
		"monitoring status: active",
	},
	model.LevelWarning: {
		"metric %s missing from last collection",
		"slow response from backend: %dms",
	},
	model.LevelError: {
		"failed to collect metric %s",
		"backend request failed with status 500",
	},
	model.LevelCritical: {
		"monitoring system unresponsive",
	},
}

// levelWeights skews the simulated buffer towards routine entries.
var levelWeights = []struct {
	level  model.LogLevel
	weight int
}{
	{model.LevelDebug, 30},
	{model.LevelInfo, 45},
	{model.LevelWarning, 15},
	{model.LevelError, 8},
	{model.LevelCritical, 2},
}

// SimulatedSource generates a deterministic in-memory log buffer.
type SimulatedSource struct {
	count int
	now   func() time.Time
	rng   *rand.Rand
}

// NewSimulatedSource creates a source producing count entries. A fixed seed
// keeps the buffer deterministic within a session.
func NewSimulatedSource(count int, seed int64) *SimulatedSource {
	if count <= 0 {
		count = 100
	}
	return &SimulatedSource{
		count: count,
		now:   time.Now,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Entries implements Source. Entries are ordered oldest first, one per
// simulated second ending now.
func (s *SimulatedSource) Entries() ([]model.LogEntry, error) {
	end := s.now()
	entries := make([]model.LogEntry, 0, s.count)
	for i := 0; i < s.count; i++ {
		level := s.pickLevel()
		entries = append(entries, model.LogEntry{
			Timestamp: end.Add(-time.Duration(s.count-1-i) * time.Second),
			Level:     level,
			Component: simComponents[s.rng.Intn(len(simComponents))],
			Message:   s.message(level),
		})
	}
	return entries, nil
}

// pickLevel draws a level according to the weights.
func (s *SimulatedSource) pickLevel() model.LogLevel {
	total := 0
	for _, lw := range levelWeights {
		total += lw.weight
	}
	n := s.rng.Intn(total)
	for _, lw := range levelWeights {
		if n < lw.weight {
			return lw.level
		}
		n -= lw.weight
	}
	return model.LevelInfo
}

// message renders a template for the level, filling placeholders.
func (s *SimulatedSource) message(level model.LogLevel) string {
	templates := simMessages[level]
	tmpl := templates[s.rng.Intn(len(templates))]
	switch {
	case strings.Contains(tmpl, "%s"):
		metric := []string{"system.cpu_percent", "system.memory_percent", "system.disk_usage"}[s.rng.Intn(3)]
		return fmt.Sprintf(tmpl, metric)
	case strings.Contains(tmpl, "%d"):
		return fmt.Sprintf(tmpl, 50+s.rng.Intn(2000))
	default:
		return tmpl
	}
}
