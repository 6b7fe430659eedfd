// Package alerts implements the alert lifecycle manager: loading active
// alerts and history, and driving the active -> acknowledged -> resolved
// transitions through the backend.
package alerts

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"dashmon/internal/client/monitor"
	"dashmon/internal/model"
)

// Notifier receives the outcome of alert operations for display.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// CreateRequest carries the fields of a user-created alert.
type CreateRequest struct {
	Name        string
	Description string
	Severity    model.AlertSeverity
	Category    string
	Details     map[string]interface{}
}

// Manager owns the alert view state. It is safe for concurrent use; tab
// loads and transition operations may reload it from separate goroutines.
type Manager struct {
	client       *monitor.Client
	notifier     Notifier
	historyLimit int
	logger       zerolog.Logger

	mu      sync.RWMutex
	active  []model.Alert
	history []model.AlertHistoryEntry
	counts  model.AlertCounts
}

// NewManager creates a new alert manager.
func NewManager(client *monitor.Client, notifier Notifier, historyLimit int, logger zerolog.Logger) *Manager {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &Manager{
		client:       client,
		notifier:     notifier,
		historyLimit: historyLimit,
		logger:       logger.With().Str("component", "alerts").Logger(),
		counts:       model.CountAlerts(nil),
	}
}

// Active returns the active alerts ordered by severity rank, server order
// within a rank.
func (m *Manager) Active() []model.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// History returns the loaded alert history, most recent first.
func (m *Manager) History() []model.AlertHistoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history
}

// Counts returns the counters computed from the current active set.
func (m *Manager) Counts() model.AlertCounts {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts
}

// Reload fetches active alerts and history concurrently and replaces the
// local view. On failure the previous view is kept.
func (m *Manager) Reload(ctx context.Context) error {
	var (
		active  []model.Alert
		history []model.AlertHistoryEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		active, err = m.client.ActiveAlerts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = m.client.AlertHistory(gctx, m.historyLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		m.logger.Error().Err(err).Msg("failed to reload alerts")
		return fmt.Errorf("failed to reload alerts: %w", err)
	}

	// Stable sort: ties keep the server's order.
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Severity.Rank() < active[j].Severity.Rank()
	})

	m.mu.Lock()
	m.active = active
	m.history = history
	m.counts = model.CountAlerts(active)
	m.mu.Unlock()

	m.logger.Debug().
		Int("active", len(active)).
		Int("history", len(history)).
		Msg("reloaded alerts")
	return nil
}

// Create validates and creates a new alert. Validation failures are surfaced
// as notifications without any network call.
func (m *Manager) Create(ctx context.Context, req CreateRequest) error {
	if req.Name == "" || req.Description == "" {
		m.notifier.Error("Alert name and description are required")
		return fmt.Errorf("alert name and description are required")
	}

	severity := req.Severity
	if severity == "" {
		severity = model.SeverityInfo
	}
	if !severity.Valid() {
		m.notifier.Error(fmt.Sprintf("Invalid severity: %s", severity))
		return fmt.Errorf("invalid severity: %s", severity)
	}

	err := m.client.CreateAlert(ctx, &monitor.CreateAlertRequest{
		Name:        req.Name,
		Description: req.Description,
		Severity:    string(severity),
		Category:    req.Category,
		Details:     req.Details,
	})
	if err != nil {
		m.notifier.Error(fmt.Sprintf("Failed to create alert: %v", err))
		return err
	}

	m.notifier.Success(fmt.Sprintf("Alert created: %s", req.Name))
	return m.reloadAfterTransition(ctx)
}

// Acknowledge acknowledges an active alert, recording the acting user.
func (m *Manager) Acknowledge(ctx context.Context, name, user string) error {
	if err := m.client.AcknowledgeAlert(ctx, name, user); err != nil {
		m.notifier.Error(fmt.Sprintf("Failed to acknowledge alert: %v", err))
		return err
	}
	m.notifier.Success(fmt.Sprintf("Alert acknowledged: %s", name))
	return m.reloadAfterTransition(ctx)
}

// Resolve resolves an alert; it drops from the active view on reload.
func (m *Manager) Resolve(ctx context.Context, name string) error {
	if err := m.client.ResolveAlert(ctx, name); err != nil {
		m.notifier.Error(fmt.Sprintf("Failed to resolve alert: %v", err))
		return err
	}
	m.notifier.Success(fmt.Sprintf("Alert resolved: %s", name))
	return m.reloadAfterTransition(ctx)
}

// Silence toggles the silenced flag of an alert.
func (m *Manager) Silence(ctx context.Context, name string, silence bool) error {
	if err := m.client.SilenceAlert(ctx, name, silence); err != nil {
		m.notifier.Error(fmt.Sprintf("Failed to update silence state: %v", err))
		return err
	}
	if silence {
		m.notifier.Success(fmt.Sprintf("Alert silenced: %s", name))
	} else {
		m.notifier.Success(fmt.Sprintf("Alert unsilenced: %s", name))
	}
	return m.reloadAfterTransition(ctx)
}

// reloadAfterTransition reloads server truth after a successful transition.
// There is no optimistic local patching; one extra round trip buys a view
// that always matches the backend.
func (m *Manager) reloadAfterTransition(ctx context.Context) error {
	if err := m.Reload(ctx); err != nil {
		m.notifier.Error(fmt.Sprintf("Failed to refresh alerts: %v", err))
		return err
	}
	return nil
}
