package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashmon/internal/alerts"
	"dashmon/internal/chart"
	"dashmon/internal/client/monitor"
	"dashmon/internal/config"
	"dashmon/internal/logs"
	"dashmon/internal/model"
	"dashmon/internal/service"
)

// fakeView records everything the controller pushes.
type fakeView struct {
	mu           sync.Mutex
	systemCalls  int
	lastSnapshot *service.CategorySnapshot
	perfRows     []model.PerformanceRow
	alertCalls   int
	lastActive   []model.Alert
	logEntries   []model.LogEntry
	components   []string
	monitoring   []bool
	refreshes    []time.Time
}

func (v *fakeView) ShowSystem(snapshot *service.CategorySnapshot, _ map[string]interface{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.systemCalls++
	v.lastSnapshot = snapshot
}

func (v *fakeView) ShowPerformance(rows []model.PerformanceRow) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.perfRows = rows
}

func (v *fakeView) ShowAlerts(active []model.Alert, _ []model.AlertHistoryEntry, _ model.AlertCounts) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alertCalls++
	v.lastActive = active
}

func (v *fakeView) ShowLogs(entries []model.LogEntry, components []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.logEntries = entries
	v.components = components
}

func (v *fakeView) ShowMonitoring(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.monitoring = append(v.monitoring, active)
}

func (v *fakeView) ShowLastRefresh(t time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refreshes = append(v.refreshes, t)
}

func (v *fakeView) systemCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.systemCalls
}

func (v *fakeView) monitoringStates() []bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]bool(nil), v.monitoring...)
}

// fakeNotifier collects notification messages.
type fakeNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *fakeNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *fakeNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

// fakeRenderer satisfies chart.Renderer with inert handles.
type fakeRenderer struct{}

type fakeHandle struct{}

func (fakeHandle) Update(labels []string, datasets []chart.Dataset) {}

func (fakeRenderer) New(slotID string, opts chart.Options) chart.Handle { return fakeHandle{} }

// testBackend is a minimal in-memory monitoring backend.
type testBackend struct {
	mu          sync.Mutex
	monitoring  bool
	alertsBody  []map[string]interface{}
	historyBody []map[string]interface{}
}

func (b *testBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/monitoring":
			status := "stopped"
			if b.monitoring {
				status = "active"
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":      status,
				"system_info": map[string]interface{}{"platform": "linux"},
			})
		case "/api/monitoring/metrics":
			w.Write([]byte(`{
				"system.cpu_percent": [[1000, 10], [2000, 55]],
				"system.memory_percent": [[1000, 40], [2000, 42]]
			}`))
		case "/api/monitoring/performance":
			w.Write([]byte(`{"api": {"request": {"latest": 0.5, "average": 0.4, "min": 0.1, "max": 0.9, "count": 12}}}`))
		case "/api/monitoring/metrics/api.request":
			w.Write([]byte(`{"name": "api.request", "values": [[1000, 0.4], [2000, 0.5]]}`))
		case "/api/monitoring/alerts":
			json.NewEncoder(w).Encode(map[string]interface{}{"count": len(b.alertsBody), "alerts": b.alertsBody})
		case "/api/monitoring/alerts/history":
			json.NewEncoder(w).Encode(map[string]interface{}{"count": len(b.historyBody), "history": b.historyBody})
		case "/api/monitoring/alerts/cpu_high/resolve":
			kept := b.alertsBody[:0]
			for _, a := range b.alertsBody {
				if a["name"] != "cpu_high" {
					kept = append(kept, a)
				}
			}
			b.alertsBody = kept
			json.NewEncoder(w).Encode(map[string]string{"status": "success"})
		case "/api/monitoring/control/start":
			b.monitoring = true
			json.NewEncoder(w).Encode(map[string]string{"status": "success"})
		case "/api/monitoring/control/stop":
			b.monitoring = false
			json.NewEncoder(w).Encode(map[string]string{"status": "success"})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "not found"})
		}
	}
}

type fixture struct {
	controller *Controller
	view       *fakeView
	notifier   *fakeNotifier
	backend    *testBackend
}

func setupController(t *testing.T) *fixture {
	t.Helper()

	backend := &testBackend{monitoring: true}
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	client := monitor.NewClient(
		&config.APIConfig{Endpoint: server.URL, Timeout: 5 * time.Second},
		&config.RetryConfig{MaxRetries: 0, BaseDelay: 10 * time.Millisecond},
		zerolog.Nop(),
	)

	dashCfg := &config.DashboardConfig{
		DefaultTab:   "system",
		HistoryLimit: 60,
	}

	view := &fakeView{}
	notifier := &fakeNotifier{}
	fetcher := service.NewFetcher(client, dashCfg, zerolog.Nop())
	charts := chart.NewEngine(fakeRenderer{}, config.DefaultLayout(), zerolog.Nop())
	manager := alerts.NewManager(client, notifier, 20, zerolog.Nop())
	logEngine := logs.NewEngine(logs.NewSimulatedSource(30, 1), zerolog.Nop())

	controller := NewController(dashCfg, fetcher, charts, manager, logEngine, view, notifier, zerolog.Nop())
	t.Cleanup(controller.Stop)
	return &fixture{controller: controller, view: view, notifier: notifier, backend: backend}
}

func TestStart_LoadsDefaultTab(t *testing.T) {
	f := setupController(t)
	f.controller.Start(context.Background())

	assert.Eventually(t, func() bool {
		return f.view.systemCount() > 0
	}, 2*time.Second, 10*time.Millisecond)

	f.view.mu.Lock()
	defer f.view.mu.Unlock()
	require.NotNil(t, f.view.lastSnapshot)
	assert.Len(t, f.view.lastSnapshot.Metrics, 2)
	assert.Len(t, f.view.refreshes, 1)
}

func TestSwitchTab_LoadsPerformance(t *testing.T) {
	f := setupController(t)
	f.controller.Start(context.Background())

	f.controller.SwitchTab(model.TabPerformance)
	assert.Equal(t, model.TabPerformance, f.controller.State().CurrentTab)

	assert.Eventually(t, func() bool {
		f.view.mu.Lock()
		defer f.view.mu.Unlock()
		return len(f.view.perfRows) == 1
	}, 2*time.Second, 10*time.Millisecond)

	f.view.mu.Lock()
	defer f.view.mu.Unlock()
	assert.Equal(t, "api", f.view.perfRows[0].Category)
}

func TestSwitchTab_InvalidIgnored(t *testing.T) {
	f := setupController(t)
	before := f.controller.State().CurrentTab

	f.controller.SwitchTab(model.Tab("bogus"))
	assert.Equal(t, before, f.controller.State().CurrentTab)
}

func TestSwitchTab_LogsAreLocal(t *testing.T) {
	f := setupController(t)
	f.controller.Start(context.Background())

	f.controller.SwitchTab(model.TabLogs)

	assert.Eventually(t, func() bool {
		f.view.mu.Lock()
		defer f.view.mu.Unlock()
		return len(f.view.logEntries) == 30
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFilterLogs_AndClear(t *testing.T) {
	f := setupController(t)
	f.controller.Start(context.Background())

	f.controller.FilterLogs(model.LevelDebug, "", "")
	f.view.mu.Lock()
	filtered := len(f.view.logEntries)
	f.view.mu.Unlock()
	assert.Less(t, filtered, 30, "level filter should hide some entries")

	f.controller.ClearLogFilters()
	f.view.mu.Lock()
	defer f.view.mu.Unlock()
	assert.Len(t, f.view.logEntries, 30)
	assert.NotEmpty(t, f.view.components)
}

func TestRefresh_RechecksStatus(t *testing.T) {
	f := setupController(t)
	f.controller.Start(context.Background())

	assert.Eventually(t, func() bool {
		states := f.view.monitoringStates()
		return len(states) > 0 && states[len(states)-1]
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, f.controller.State().MonitoringActive)
}

func TestToggleMonitoring_ReflectsServerTruth(t *testing.T) {
	f := setupController(t)
	f.controller.Start(context.Background())

	assert.Eventually(t, func() bool {
		return f.controller.State().MonitoringActive
	}, 2*time.Second, 10*time.Millisecond)

	f.controller.ToggleMonitoring()

	assert.Eventually(t, func() bool {
		return !f.controller.State().MonitoringActive
	}, 2*time.Second, 10*time.Millisecond, "flag follows the status endpoint, not an optimistic patch")

	f.notifier.mu.Lock()
	defer f.notifier.mu.Unlock()
	require.NotEmpty(t, f.notifier.successes)
	assert.Contains(t, f.notifier.successes[0], "stopped")
}

func TestSetAutoRefresh_SingleTimer(t *testing.T) {
	f := setupController(t)

	f.controller.SetAutoRefresh(10)
	assert.True(t, f.controller.Scheduler().Active())
	assert.Equal(t, 10, f.controller.State().RefreshIntervalSeconds)

	f.controller.SetAutoRefresh(0)
	assert.False(t, f.controller.Scheduler().Active())

	// Manual refresh still works with the schedule disabled.
	f.controller.Start(context.Background())
	before := f.view.systemCount()
	f.controller.Refresh()
	assert.Eventually(t, func() bool {
		return f.view.systemCount() > before
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStalenessGuard_MostRecentIntentWins(t *testing.T) {
	f := setupController(t)
	c := f.controller

	first := c.nextSeq(resourceSystem)
	second := c.nextSeq(resourceSystem)

	applied := []string{}
	// The older load completes last; it must be discarded.
	c.applyIfLatest(resourceSystem, second, func() { applied = append(applied, "second") })
	c.applyIfLatest(resourceSystem, first, func() { applied = append(applied, "first") })

	assert.Equal(t, []string{"second"}, applied)
}

func TestStalenessGuard_PerResource(t *testing.T) {
	f := setupController(t)
	c := f.controller

	sysSeq := c.nextSeq(resourceSystem)
	c.nextSeq(resourceAlerts)

	applied := false
	c.applyIfLatest(resourceSystem, sysSeq, func() { applied = true })
	assert.True(t, applied, "sequence numbers are tracked per resource")
}

// Alert tab loads and lifecycle operations reload the manager from separate
// goroutines. Run with -race.
func TestTabLoads_ConcurrentWithAlertOps(t *testing.T) {
	f := setupController(t)
	f.backend.alertsBody = []map[string]interface{}{{
		"name": "cpu_high", "description": "x", "severity": "critical",
		"status": "active", "triggered_at": float64(1700000000),
	}}
	f.controller.Start(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 15; i++ {
			f.controller.SwitchTab(model.TabAlerts)
			f.controller.Refresh()
		}
	}()
	f.controller.ResolveAlert("cpu_high")
	wg.Wait()

	assert.Eventually(t, func() bool {
		f.notifier.mu.Lock()
		defer f.notifier.mu.Unlock()
		for _, msg := range f.notifier.successes {
			if strings.Contains(msg, "cpu_high") {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	f.controller.SwitchTab(model.TabAlerts)
	assert.Eventually(t, func() bool {
		f.view.mu.Lock()
		defer f.view.mu.Unlock()
		return f.view.alertCalls > 0 && len(f.view.lastActive) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAlertOps_PushView(t *testing.T) {
	f := setupController(t)
	f.backend.alertsBody = []map[string]interface{}{{
		"name": "cpu_high", "description": "x", "severity": "critical",
		"status": "active", "triggered_at": float64(1700000000),
	}}
	f.controller.Start(context.Background())
	f.controller.SwitchTab(model.TabAlerts)

	assert.Eventually(t, func() bool {
		f.view.mu.Lock()
		defer f.view.mu.Unlock()
		return len(f.view.lastActive) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
