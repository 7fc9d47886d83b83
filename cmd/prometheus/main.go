package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/api"
	"github.com/rovshanmuradov/prometheus-client/internal/config"
	"github.com/rovshanmuradov/prometheus-client/internal/export"
	"github.com/rovshanmuradov/prometheus-client/internal/logger"
	"github.com/rovshanmuradov/prometheus-client/internal/metrics"
	"github.com/rovshanmuradov/prometheus-client/internal/session"
	"github.com/rovshanmuradov/prometheus-client/internal/settings"
	"github.com/rovshanmuradov/prometheus-client/internal/storage"
	"github.com/rovshanmuradov/prometheus-client/internal/tracker"
	"github.com/rovshanmuradov/prometheus-client/internal/ui"
)

const recentLogSize = 200

func main() {
	configPath := flag.String("config", "", "Path to config file (defaults plus PROMETHEUS_* env when empty)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	recent := logger.NewRecentBuffer(recentLogSize)
	logCfg := logger.DefaultConfig(cfg.LogFile)
	logCfg.Debug = cfg.DebugLogging || *debug
	logCfg.Recent = recent

	appLogger, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(appLogger)
	}()

	store, err := storage.NewSQLiteStore(cfg.StoragePath)
	if err != nil {
		appLogger.Fatal("Failed to open session store", zap.String("path", cfg.StoragePath), zap.Error(err))
	}
	defer store.Close()

	sess := session.New(store, appLogger)
	recorder := metrics.New()
	client := api.NewClient(&api.Config{
		BaseURL:          cfg.APIBaseURL,
		Timeout:          cfg.RequestTimeout(),
		Retries:          cfg.Retries,
		OnSessionExpired: ui.PublishSessionExpired,
		Observer:         recorder,
	}, sess, appLogger)

	ui.InitBus(ui.Bus, appLogger)
	defer ui.GlobalBus.Close()

	svc := ui.NewServices(
		rootCtx,
		client,
		sess,
		settings.NewController(client, appLogger),
		tracker.NewService(client, tracker.Options{
			PageSize:       cfg.PageSize,
			MinTradeAmount: cfg.MinTrade(),
		}, appLogger),
		export.NewLogExporter(appLogger),
		recent,
		cfg.ExportDir,
		cfg.Coin(),
		appLogger,
	)
	svc.Metrics = recorder

	appLogger.Info("Starting Prometheus client",
		zap.String("api", cfg.APIBaseURL),
		zap.String("coin", string(cfg.Coin())))

	handler := ui.NewRecoveryHandler(appLogger, func() (tea.Model, []tea.ProgramOption) {
		return ui.NewSafeUIWrapper(NewAppModel(svc), appLogger), []tea.ProgramOption{
			tea.WithAltScreen(),
			tea.WithContext(rootCtx),
		}
	})

	go func() {
		<-rootCtx.Done()
		handler.Stop()
	}()

	if err := handler.RunWithRecovery(); err != nil && rootCtx.Err() == nil {
		appLogger.Error("TUI application failed", zap.Error(err))
		return
	}
	appLogger.Info("Shutting down Prometheus client")
}
