package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"text/template"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"dashmon/internal/client/monitor"
	"dashmon/internal/config"
	"dashmon/internal/model"
	"dashmon/internal/report"
	"dashmon/internal/service"
)

// Command flags
var (
	exportFormats []string // Report formats to write
	exportOutput  string   // Output directory override
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a dashboard snapshot to report files",
	Long: `Export fetches the current state of the monitoring backend (metrics,
performance statistics, active alerts, and alert history) and writes it to
report files in the configured formats.`,
	Run: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringSliceVarP(&exportFormats, "format", "f", nil, "report formats to write (excel, html); defaults to config")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output directory; defaults to config")
}

// runExport executes the export command logic.
func runExport(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		tmpLogger := setupLogger("error", "console")
		tmpLogger.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	logger := setupLogger(GetLogLevel(), cfg.Logging.Format)

	formats := cfg.Export.Formats
	if len(exportFormats) > 0 {
		formats = exportFormats
	}
	outputDir := cfg.Export.OutputDir
	if exportOutput != "" {
		outputDir = exportOutput
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := monitor.NewClient(&cfg.API, &cfg.HTTP.Retry, logger)
	fetcher := service.NewFetcher(client, &cfg.Dashboard, logger)

	logger.Info().Str("endpoint", cfg.API.Endpoint).Msg("collecting dashboard snapshot")

	snapshot, err := collectSnapshot(ctx, client, fetcher, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to collect snapshot")
		os.Exit(1)
	}

	if err := writeReports(snapshot, cfg, formats, outputDir, logger); err != nil {
		os.Exit(1)
	}
}

// collectSnapshot fetches all exported state concurrently.
func collectSnapshot(ctx context.Context, client *monitor.Client, fetcher *service.Fetcher, cfg *config.Config) (*model.DashboardSnapshot, error) {
	snapshot := &model.DashboardSnapshot{
		GeneratedAt: time.Now(),
		Endpoint:    cfg.API.Endpoint,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		status, err := client.Status(gctx)
		if err != nil {
			return err
		}
		snapshot.Monitoring = status.IsActive()
		snapshot.SystemInfo = status.SystemInfo
		return nil
	})

	g.Go(func() error {
		metrics, err := fetcher.LoadMetrics(gctx, "")
		if err != nil {
			return err
		}
		snapshot.Metrics = metrics.Rows
		return nil
	})

	g.Go(func() error {
		rows, err := fetcher.LoadPerformance(gctx, "")
		if err != nil {
			return err
		}
		snapshot.Performance = rows
		return nil
	})

	g.Go(func() error {
		active, err := client.ActiveAlerts(gctx)
		if err != nil {
			return err
		}
		sort.SliceStable(active, func(i, j int) bool {
			return active[i].Severity.Rank() < active[j].Severity.Rank()
		})
		snapshot.Alerts = active
		snapshot.Counts = model.CountAlerts(active)
		return nil
	})

	g.Go(func() error {
		history, err := client.AlertHistory(gctx, cfg.Dashboard.HistoryLimit)
		if err != nil {
			return err
		}
		snapshot.History = history
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// writeReports renders the snapshot in every requested format.
func writeReports(snapshot *model.DashboardSnapshot, cfg *config.Config, formats []string, outputDir string, logger zerolog.Logger) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		logger.Error().Err(err).Str("dir", outputDir).Msg("failed to create output directory")
		return err
	}

	timezone := exportTimezone(cfg.Export.Timezone)
	registry := report.NewRegistry(timezone, cfg.Export.HTMLTemplate)

	baseName, err := renderFilename(cfg.Export.FilenameTemplate, snapshot.GeneratedAt.In(timezone))
	if err != nil {
		logger.Error().Err(err).Msg("invalid filename template")
		return err
	}

	var failed bool
	for _, format := range formats {
		writer, err := registry.Get(format)
		if err != nil {
			logger.Error().Err(err).Str("format", format).Msg("unsupported report format")
			failed = true
			continue
		}

		outputPath := filepath.Join(outputDir, baseName)
		if err := writer.Write(snapshot, outputPath); err != nil {
			logger.Error().Err(err).Str("format", format).Msg("failed to write report")
			failed = true
			continue
		}
		logger.Info().Str("format", format).Str("path", outputPath).Msg("report written")
	}

	if failed {
		return errExportFailed
	}
	return nil
}

var errExportFailed = errors.New("one or more reports failed")

// renderFilename expands the configured filename template. {{.Date}} is the
// snapshot time formatted for filenames.
func renderFilename(tmpl string, generatedAt time.Time) (string, error) {
	t, err := template.New("filename").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = t.Execute(&buf, struct{ Date string }{Date: generatedAt.Format("20060102_150405")})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
