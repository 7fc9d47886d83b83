// Command exportlogs writes the signed-in user's copy-trading logs to CSV or
// JSON without starting the terminal UI. It reuses the session stored by the
// TUI, so log in there first.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/api"
	"github.com/rovshanmuradov/prometheus-client/internal/config"
	"github.com/rovshanmuradov/prometheus-client/internal/export"
	"github.com/rovshanmuradov/prometheus-client/internal/logger"
	"github.com/rovshanmuradov/prometheus-client/internal/session"
	"github.com/rovshanmuradov/prometheus-client/internal/storage"
	"github.com/rovshanmuradov/prometheus-client/internal/tracker"
)

const dateLayout = "2006-01-02"

type options struct {
	configPath string
	coin       string
	format     string
	start      string
	end        string
	event      string
	status     string
	token      string
	out        string
	daily      string
	pages      int
	debug      bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Path to config file")
	flag.StringVar(&o.coin, "coin", "", "Coin to export: sol or bnb (defaults to the configured coin)")
	flag.StringVar(&o.format, "format", "csv", "Output format: csv or json")
	flag.StringVar(&o.start, "start", "", "Only logs on or after this UTC date (YYYY-MM-DD)")
	flag.StringVar(&o.end, "end", "", "Only logs before this UTC date (YYYY-MM-DD)")
	flag.StringVar(&o.event, "event", "", "Event type filter, e.g. user_sell")
	flag.StringVar(&o.status, "status", "", "Status filter: success, failed or pending")
	flag.StringVar(&o.token, "token", "", "Token address filter")
	flag.StringVar(&o.out, "out", "", "Output directory (defaults to export_dir from config)")
	flag.StringVar(&o.daily, "daily", "", "Write the daily report for this UTC date (YYYY-MM-DD) instead")
	flag.IntVar(&o.pages, "pages", 0, "Maximum pages to fetch (0 for all)")
	flag.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return o
}

func parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -%s %q: want YYYY-MM-DD", name, value)
	}
	return t.UTC(), nil
}

func main() {
	o := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger, err := logger.CreatePrettyLogger(o.debug)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(appLogger)
	}()

	if err := run(ctx, o, appLogger); err != nil {
		appLogger.Error("Export failed", zap.Error(err))
		_ = logger.Sync(appLogger)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, appLogger *zap.Logger) error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}

	coin := cfg.Coin()
	if o.coin != "" {
		if coin, err = amount.ParseCoin(o.coin); err != nil {
			return err
		}
	}
	format, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}
	start, err := parseDate("start", o.start)
	if err != nil {
		return err
	}
	end, err := parseDate("end", o.end)
	if err != nil {
		return err
	}
	outDir := o.out
	if outDir == "" {
		outDir = cfg.ExportDir
	}

	store, err := storage.NewSQLiteStore(cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer store.Close()

	sess := session.New(store, appLogger)
	if !sess.Authenticated(ctx) {
		return fmt.Errorf("no stored session: log in with the prometheus client first")
	}

	client := api.NewClient(&api.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.RequestTimeout(),
		Retries: cfg.Retries,
	}, sess, appLogger)
	svc := tracker.NewService(client, tracker.Options{PageSize: cfg.PageSize, MinTradeAmount: cfg.MinTrade()}, appLogger)

	opLogger := logger.WithOperation(appLogger, "export_logs")
	logs, err := svc.AllLogs(ctx, coin, o.pages)
	if err != nil {
		return err
	}
	opLogger.Info("Fetched logs", zap.String("coin", string(coin)), zap.Int("count", len(logs)))

	exporter := export.NewLogExporter(opLogger)

	if o.daily != "" {
		day, err := parseDate("daily", o.daily)
		if err != nil {
			return err
		}
		path, err := exporter.ExportDailyReport(logs, coin, day, outDir)
		if err != nil {
			return err
		}
		if path == "" {
			opLogger.Info("No logs for that day", zap.String("date", o.daily))
			return nil
		}
		opLogger.Info("Daily report written", zap.String("file", path))
		return nil
	}

	path, err := exporter.Export(logs, export.Options{
		Format:    format,
		Coin:      coin,
		StartTime: start,
		EndTime:   end,
		EventType: o.event,
		Status:    o.status,
		Token:     o.token,
		OutputDir: outDir,
	})
	if err != nil {
		return err
	}
	opLogger.Info("Export complete", zap.String("file", path))
	return nil
}
