// Package dashboard implements the state controller that ties the fetch
// pipeline, chart engine, alert manager, log engine, and scheduler into one
// view. The controller owns all view state; collaborators receive data as
// parameters, never through shared globals.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"dashmon/internal/alerts"
	"dashmon/internal/chart"
	"dashmon/internal/config"
	"dashmon/internal/logs"
	"dashmon/internal/model"
	"dashmon/internal/sched"
	"dashmon/internal/service"
)

// maxPerformanceCharts caps how many metric histories the performance chart
// carries.
const maxPerformanceCharts = 4

// View receives data pushed by the controller. The host UI implements this;
// the runnable CLI provides a console view.
type View interface {
	ShowSystem(snapshot *service.CategorySnapshot, systemInfo map[string]interface{})
	ShowPerformance(rows []model.PerformanceRow)
	ShowAlerts(active []model.Alert, history []model.AlertHistoryEntry, counts model.AlertCounts)
	ShowLogs(entries []model.LogEntry, components []string)
	ShowMonitoring(active bool)
	ShowLastRefresh(t time.Time)
}

// Notifier surfaces operation outcomes to the user.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// resource identifies one independently loaded piece of view data. Each
// resource carries its own sequence counter for the staleness guard.
type resource int

const (
	resourceSystem resource = iota
	resourcePerformance
	resourceAlerts
	resourceStatus
)

// Controller owns the dashboard state and serializes all view mutations.
type Controller struct {
	cfg       *config.DashboardConfig
	fetcher   *service.Fetcher
	charts    *chart.Engine
	alerts    *alerts.Manager
	logs      *logs.Engine
	scheduler *sched.Scheduler
	view      View
	notifier  Notifier
	logger    zerolog.Logger

	ctx context.Context

	mu         sync.Mutex
	state      model.DashboardState
	systemInfo map[string]interface{} // Latest system_info from the status endpoint
	seq        map[resource]uint64
}

// NewController creates a dashboard controller. The scheduler is created
// internally so its tick callback and the manual refresh operation share one
// entry point.
func NewController(
	cfg *config.DashboardConfig,
	fetcher *service.Fetcher,
	charts *chart.Engine,
	alertManager *alerts.Manager,
	logEngine *logs.Engine,
	view View,
	notifier Notifier,
	logger zerolog.Logger,
) *Controller {
	c := &Controller{
		cfg:      cfg,
		fetcher:  fetcher,
		charts:   charts,
		alerts:   alertManager,
		logs:     logEngine,
		view:     view,
		notifier: notifier,
		logger:   logger.With().Str("component", "dashboard").Logger(),
		ctx:      context.Background(),
		seq:      make(map[resource]uint64),
	}

	c.state = model.DashboardState{
		CurrentTab:             model.Tab(cfg.DefaultTab),
		RefreshIntervalSeconds: cfg.RefreshIntervalSeconds,
	}
	if !c.state.CurrentTab.Valid() {
		c.state.CurrentTab = model.TabSystem
	}

	c.scheduler = sched.NewScheduler(c.Refresh, logger)
	return c
}

// State returns a copy of the current dashboard state.
func (c *Controller) State() model.DashboardState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Scheduler exposes the owned scheduler, mainly for shutdown.
func (c *Controller) Scheduler() *sched.Scheduler {
	return c.scheduler
}

// Start loads the initial view: log buffer, configured auto-refresh interval,
// and a first refresh of the default tab.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	interval := c.state.RefreshIntervalSeconds
	c.mu.Unlock()

	if err := c.logs.Load(); err != nil {
		c.logger.Error().Err(err).Msg("failed to load log buffer")
	}

	c.scheduler.Set(interval)
	c.Refresh()
}

// Stop tears down the scheduler.
func (c *Controller) Stop() {
	c.scheduler.Stop()
}

// SwitchTab activates a tab and loads its data. An invalid tab is ignored.
func (c *Controller) SwitchTab(tab model.Tab) {
	if !tab.Valid() {
		c.logger.Warn().Str("tab", string(tab)).Msg("ignoring switch to unknown tab")
		return
	}

	c.mu.Lock()
	c.state.CurrentTab = tab
	c.mu.Unlock()

	c.loadTab(tab)
}

// Refresh reloads the active tab and rechecks the monitoring status. The
// scheduler tick and the manual refresh operation both land here, so both
// paths share identical semantics.
func (c *Controller) Refresh() {
	now := time.Now()

	c.mu.Lock()
	c.state.LastRefresh = &now
	tab := c.state.CurrentTab
	c.mu.Unlock()

	c.view.ShowLastRefresh(now)
	c.loadTab(tab)
	c.loadStatus()
}

// ToggleMonitoring starts or stops the backend monitoring system, then
// reloads the reported status rather than patching the flag optimistically.
func (c *Controller) ToggleMonitoring() {
	c.mu.Lock()
	active := c.state.MonitoringActive
	ctx := c.ctx
	c.mu.Unlock()

	go func() {
		var err error
		if active {
			err = c.fetcher.StopMonitoring(ctx)
		} else {
			err = c.fetcher.StartMonitoring(ctx)
		}
		if err != nil {
			c.notifier.Error(err.Error())
			return
		}

		if active {
			c.notifier.Success("Monitoring stopped")
		} else {
			c.notifier.Success("Monitoring started")
		}
		c.loadStatus()
	}()
}

// SetAutoRefresh replaces the refresh interval. Zero disables periodic
// refresh; manual refresh stays available.
func (c *Controller) SetAutoRefresh(seconds int) {
	if seconds < 0 {
		seconds = 0
	}

	c.mu.Lock()
	c.state.RefreshIntervalSeconds = seconds
	c.mu.Unlock()

	c.scheduler.Set(seconds)
	c.logger.Info().Int("seconds", seconds).Msg("auto-refresh interval changed")
}

// CreateAlert, AcknowledgeAlert, ResolveAlert, and SilenceAlert drive the
// alert manager and push the reloaded view.

func (c *Controller) CreateAlert(req alerts.CreateRequest) {
	c.runAlertOp(func(ctx context.Context) error {
		return c.alerts.Create(ctx, req)
	})
}

func (c *Controller) AcknowledgeAlert(name, user string) {
	c.runAlertOp(func(ctx context.Context) error {
		return c.alerts.Acknowledge(ctx, name, user)
	})
}

func (c *Controller) ResolveAlert(name string) {
	c.runAlertOp(func(ctx context.Context) error {
		return c.alerts.Resolve(ctx, name)
	})
}

func (c *Controller) SilenceAlert(name string, silence bool) {
	c.runAlertOp(func(ctx context.Context) error {
		return c.alerts.Silence(ctx, name, silence)
	})
}

// FilterLogs applies the three log predicates and pushes the filtered view.
func (c *Controller) FilterLogs(level model.LogLevel, component, search string) {
	c.mu.Lock()
	c.logs.Filter(level, component, search)
	entries := c.logs.Visible()
	components := c.logs.Components()
	c.mu.Unlock()

	c.view.ShowLogs(entries, components)
}

// ClearLogFilters resets all log predicates.
func (c *Controller) ClearLogFilters() {
	c.mu.Lock()
	c.logs.Clear()
	entries := c.logs.Visible()
	components := c.logs.Components()
	c.mu.Unlock()

	c.view.ShowLogs(entries, components)
}

// runAlertOp executes an alert transition and pushes the view on success.
// The manager already reloads and notifies, so the controller only renders.
func (c *Controller) runAlertOp(op func(context.Context) error) {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()

	go func() {
		if err := op(ctx); err != nil {
			return
		}
		c.mu.Lock()
		c.view.ShowAlerts(c.alerts.Active(), c.alerts.History(), c.alerts.Counts())
		c.mu.Unlock()
	}()
}

// loadTab kicks off the asynchronous load of one tab's data.
func (c *Controller) loadTab(tab model.Tab) {
	switch tab {
	case model.TabSystem:
		c.loadSystem()
	case model.TabPerformance:
		c.loadPerformance()
	case model.TabAlerts:
		c.loadAlerts()
	case model.TabLogs:
		c.loadLogs()
	}
}

// loadSystem fetches the system metrics snapshot and reconciles the four
// system chart slots.
func (c *Controller) loadSystem() {
	seq := c.nextSeq(resourceSystem)
	ctx := c.currentCtx()

	go func() {
		snapshot, err := c.fetcher.LoadMetrics(ctx, "system")
		if err != nil {
			// Degrade gracefully: the stale view stays up.
			return
		}

		c.applyIfLatest(resourceSystem, seq, func() {
			for _, bucket := range model.BucketOrder {
				slotID := string(bucket)
				if c.charts.Layout().Slot(slotID) == nil {
					continue
				}
				if err := c.charts.RenderBucket(slotID, snapshot.BucketSeries(bucket)); err != nil {
					c.logger.Error().Err(err).Str("slot", slotID).Msg("chart render failed")
				}
			}
			c.view.ShowSystem(snapshot, c.systemInfo)
		})
	}()
}

// loadPerformance fetches performance rows and charts the histories of the
// first few metrics.
func (c *Controller) loadPerformance() {
	seq := c.nextSeq(resourcePerformance)
	ctx := c.currentCtx()

	go func() {
		rows, err := c.fetcher.LoadPerformance(ctx, "")
		if err != nil {
			return
		}

		series := c.loadPerformanceSeries(ctx, rows)

		c.applyIfLatest(resourcePerformance, seq, func() {
			if len(series) > 0 && c.charts.Layout().Slot("performance") != nil {
				if err := c.charts.RenderSeries("performance", series); err != nil {
					c.logger.Error().Err(err).Msg("performance chart render failed")
				}
			}
			c.view.ShowPerformance(rows)
		})
	}()
}

// loadPerformanceSeries fetches the histories behind the first rows
// concurrently, preserving row order.
func (c *Controller) loadPerformanceSeries(ctx context.Context, rows []model.PerformanceRow) []*model.MetricSeries {
	count := len(rows)
	if count > maxPerformanceCharts {
		count = maxPerformanceCharts
	}
	if count == 0 {
		return nil
	}

	series := make([]*model.MetricSeries, count)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		i := i
		name := rows[i].Category + "." + rows[i].Metric
		g.Go(func() error {
			s, err := c.fetcher.LoadMetricHistory(gctx, name, 0)
			if err != nil {
				// A missing history drops that dataset, nothing more.
				return nil
			}
			series[i] = s
			return nil
		})
	}
	g.Wait()

	out := make([]*model.MetricSeries, 0, count)
	for _, s := range series {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// loadAlerts reloads the alert view.
func (c *Controller) loadAlerts() {
	seq := c.nextSeq(resourceAlerts)
	ctx := c.currentCtx()

	go func() {
		if err := c.alerts.Reload(ctx); err != nil {
			return
		}
		c.applyIfLatest(resourceAlerts, seq, func() {
			c.view.ShowAlerts(c.alerts.Active(), c.alerts.History(), c.alerts.Counts())
		})
	}()
}

// loadLogs pushes the already loaded buffer through the active filters. The
// buffer itself is session-local, so no fetch happens here.
func (c *Controller) loadLogs() {
	c.mu.Lock()
	entries := c.logs.Visible()
	components := c.logs.Components()
	c.mu.Unlock()

	c.view.ShowLogs(entries, components)
}

// loadStatus rechecks the backend run state.
func (c *Controller) loadStatus() {
	seq := c.nextSeq(resourceStatus)
	ctx := c.currentCtx()

	go func() {
		status, err := c.fetcher.LoadStatus(ctx)
		if err != nil {
			return
		}
		c.applyIfLatest(resourceStatus, seq, func() {
			c.state.MonitoringActive = status.IsActive()
			if status.SystemInfo != nil {
				c.systemInfo = status.SystemInfo
			}
			c.view.ShowMonitoring(status.IsActive())
		})
	}()
}

// nextSeq issues the next sequence number for a resource. A load may only
// apply its result while its number is still the latest issued, so the most
// recently requested load always wins regardless of completion order.
func (c *Controller) nextSeq(r resource) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq[r]++
	return c.seq[r]
}

// applyIfLatest runs apply under the state lock iff seq is still current for
// the resource. Stale completions are discarded.
func (c *Controller) applyIfLatest(r resource, seq uint64, apply func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq[r] != seq {
		c.logger.Debug().
			Int("resource", int(r)).
			Uint64("seq", seq).
			Uint64("latest", c.seq[r]).
			Msg("discarding stale load")
		return
	}
	apply()
}

func (c *Controller) currentCtx() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}
