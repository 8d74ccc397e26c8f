package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"WaveSentinel/internal/api"
	"WaveSentinel/internal/collector"
	"WaveSentinel/internal/config"
	"WaveSentinel/internal/logging"
	"WaveSentinel/internal/notifier"
	"WaveSentinel/internal/scheduler"
	"WaveSentinel/internal/store"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot := logging.New(logging.Config{})
		boot.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(cfg.Log)
	log := logging.WithComponent(logger, "main")
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("config", cfgPath).Msg("WaveSentinel starting...")

	// Init fetcher
	fetcher := collector.NewBinanceFetcher(cfg.Binance.BaseURL, cfg.Binance.APIKey, cfg.Binance.SecretKey, cfg.Proxy, cfg.Binance.Timeout)
	log.Info().Str("source", fetcher.Name()).Str("base_url", cfg.Binance.BaseURL).Msg("data source ready")

	// Init bar cache
	klines := openStore(cfg.Database.SQLitePath, logger, log)
	defer klines.Close()

	col := collector.NewCollector(fetcher, klines, cfg.Database.CacheTTL, logger)

	// Init notifier
	var (
		notify notifier.Notifier = notifier.NoopNotifier{}
		tn     *notifier.TelegramNotifier
	)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
		notify = tn
	} else {
		log.Warn().Msg("telegram not configured, alerts are disabled")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, notify, scheduler.Options{
		Watchlist:       cfg.Analysis.Watchlist,
		Intervals:       cfg.Analysis.Intervals,
		DefaultInterval: cfg.Analysis.DefaultInterval,
		Limit:           cfg.Analysis.DefaultLimit,
		Concurrency:     cfg.Analysis.Concurrency,
		MinConfidence:   cfg.Alert.MinConfidence,
	}, logger)
	if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing watchlist scan now")
		go sched.RunScanNow()
	}

	// Start HTTP API
	if logger.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := api.NewServer(col, api.Options{
		Addr:            cfg.Server.Addr,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		DefaultInterval: cfg.Analysis.DefaultInterval,
		DefaultLimit:    cfg.Analysis.DefaultLimit,
	}, logger)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	log.Info().Msg("WaveSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	log.Info().Msg("WaveSentinel stopped")
}

// openStore opens the SQLite bar cache, falling back to memory when it cannot.
func openStore(path string, logger, log zerolog.Logger) store.KlineStore {
	if path == "" {
		return store.NewMemoryKlineStore()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn().Err(err).Msg("create data dir failed, using memory cache")
		return store.NewMemoryKlineStore()
	}
	st, err := store.NewSQLiteKlineStore(path, logger)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite store failed, using memory cache")
		return store.NewMemoryKlineStore()
	}
	return st
}
