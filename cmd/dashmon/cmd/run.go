package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dashmon/internal/alerts"
	"dashmon/internal/chart"
	"dashmon/internal/client/monitor"
	"dashmon/internal/config"
	"dashmon/internal/dashboard"
	"dashmon/internal/logs"
	"dashmon/internal/model"
	"dashmon/internal/notify"
	"dashmon/internal/service"
)

// Command flags
var (
	refreshSeconds int    // Auto-refresh interval override
	startTab       string // Tab to open first
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive console dashboard",
	Long: `Run the dashboard as an interactive console session. The dashboard
auto-refreshes the active tab at the configured interval and accepts commands
on stdin:

  tab <system|performance|alerts|logs>   switch tab
  refresh                                reload the active tab now
  interval <seconds>                     set auto-refresh interval (0 disables)
  toggle                                 start/stop the backend monitoring system
  ack <alert> <user>                     acknowledge an alert
  resolve <alert>                        resolve an alert
  silence <alert> | unsilence <alert>    toggle alert silencing
  create <name> <description...>         create a new alert
  filter [level] [component] [text]      filter the log view
  clear                                  clear log filters
  quit                                   exit`,
	Run: runDashboard,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&refreshSeconds, "interval", -1, "auto-refresh interval in seconds (overrides config, 0 disables)")
	runCmd.Flags().StringVar(&startTab, "tab", "", "tab to open first (overrides config)")
}

// runDashboard executes the run command logic.
func runDashboard(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		tmpLogger := setupLogger("error", "console")
		tmpLogger.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	logger := setupLogger(GetLogLevel(), cfg.Logging.Format)

	// Flags override the configured startup state
	if refreshSeconds >= 0 {
		cfg.Dashboard.RefreshIntervalSeconds = refreshSeconds
	}
	if startTab != "" {
		cfg.Dashboard.DefaultTab = startTab
	}

	layout, err := config.LoadLayout(cfg.Dashboard.LayoutFile)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load chart layout")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	view := dashboard.NewConsoleView(os.Stdout)
	center := notify.NewCenter(view, cfg.Dashboard.NotificationTTL, logger)
	defer center.Close()

	client := monitor.NewClient(&cfg.API, &cfg.HTTP.Retry, logger)
	fetcher := service.NewFetcher(client, &cfg.Dashboard, logger)
	charts := chart.NewEngine(chart.NewConsoleRenderer(os.Stdout), layout, logger)
	manager := alerts.NewManager(client, center, cfg.Dashboard.HistoryLimit, logger)
	logEngine := logs.NewEngine(logs.NewSimulatedSource(0, time.Now().UnixNano()), logger)

	controller := dashboard.NewController(&cfg.Dashboard, fetcher, charts, manager, logEngine, view, center, logger)
	controller.Start(ctx)
	defer controller.Stop()

	logger.Info().
		Str("endpoint", cfg.API.Endpoint).
		Str("tab", string(controller.State().CurrentTab)).
		Int("interval", controller.State().RefreshIntervalSeconds).
		Msg("dashboard started")

	readCommands(ctx, controller, view)
}

// readCommands drives the controller from stdin until EOF, quit, or signal.
func readCommands(ctx context.Context, controller *dashboard.Controller, view *dashboard.ConsoleView) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := dispatch(controller, line); quit {
				return
			}
		}
	}
}

// dispatch executes one console command. Returns true on quit.
func dispatch(controller *dashboard.Controller, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "quit", "exit":
		return true
	case "tab":
		if len(fields) > 1 {
			controller.SwitchTab(model.Tab(fields[1]))
		}
	case "refresh":
		controller.Refresh()
	case "interval":
		if len(fields) > 1 {
			if seconds, err := strconv.Atoi(fields[1]); err == nil {
				controller.SetAutoRefresh(seconds)
			}
		}
	case "toggle":
		controller.ToggleMonitoring()
	case "ack":
		if len(fields) > 2 {
			controller.AcknowledgeAlert(fields[1], fields[2])
		}
	case "resolve":
		if len(fields) > 1 {
			controller.ResolveAlert(fields[1])
		}
	case "silence":
		if len(fields) > 1 {
			controller.SilenceAlert(fields[1], true)
		}
	case "unsilence":
		if len(fields) > 1 {
			controller.SilenceAlert(fields[1], false)
		}
	case "create":
		if len(fields) > 2 {
			controller.CreateAlert(alerts.CreateRequest{
				Name:        fields[1],
				Description: strings.Join(fields[2:], " "),
				Category:    "custom",
			})
		}
	case "filter":
		var level model.LogLevel
		var component, search string
		if len(fields) > 1 {
			level = model.LogLevel(strings.ToUpper(fields[1]))
		}
		if len(fields) > 2 {
			component = fields[2]
		}
		if len(fields) > 3 {
			search = strings.Join(fields[3:], " ")
		}
		controller.FilterLogs(level, component, search)
	case "clear":
		controller.ClearLogFilters()
	default:
		fmt.Printf("unknown command: %s\n", fields[0])
	}
	return false
}
