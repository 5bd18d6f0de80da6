package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"SVMonit/internal/collector"
	"SVMonit/internal/config"
	"SVMonit/internal/forecast"
	"SVMonit/internal/indicator"
	"SVMonit/internal/logging"
	"SVMonit/internal/metrics"
	"SVMonit/internal/notifier"
	"SVMonit/internal/pipeline"
	"SVMonit/internal/recorder"
	"SVMonit/internal/scheduler"
)

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	logger.Info("SVMonit starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.WithError(err).Warn("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Ingest the price history
	fetcher := newFetcher(cfg)
	logger.WithField("source", fetcher.Name()).Info("data source selected")
	col := collector.NewCollector(fetcher, rec, cfg.DataSource.Days, logger)
	store, err := col.Collect(ctx)
	if err != nil {
		logger.WithError(err).Fatal("collect price history")
	}

	src, err := newIndicatorSource(cfg)
	if err != nil {
		logger.WithError(err).Fatal("init indicator source")
	}
	store, err = indicator.Derive(store, src)
	if err != nil {
		logger.WithError(err).Fatal("derive indicators")
	}
	logger.WithFields(logrus.Fields{
		"source": src.Name(),
		"series": store.Names(),
	}).Info("indicators derived")

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	coord, err := pipeline.NewCoordinator(store, forecast.New(), cfg.Forecast.Steps, logger, m)
	if err != nil {
		logger.WithError(err).Fatal("init coordinator")
	}

	if cfg.Metrics.Addr != "" {
		ms := metrics.NewServer(cfg.Metrics.Addr, reg)
		go func() {
			logger.WithField("addr", cfg.Metrics.Addr).Info("metrics server listening")
			if err := ms.ListenAndServe(); err != nil {
				logger.WithError(err).Error("metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = ms.Shutdown(shutdownCtx)
		}()
	}

	// Init Telegram notifier and scheduler
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
	sched := scheduler.NewScheduler(ctx, coord, tn, cfg.Selection.DefaultInterval, fetcher.Name(), logger, m)
	if err := sched.RegisterAll(cfg.Schedule.ReportCron); err != nil {
		logger.WithError(err).Fatal("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	logger.Info("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, sending report now")
		go sched.RunReportNow()
	}

	logger.Info("SVMonit is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping")
	cancel()
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	ds := cfg.DataSource
	switch ds.Provider {
	case config.ProviderVsTrader:
		return collector.NewVsTraderFetcher(ds.BaseURL, ds.APIKey, ds.Symbol, cfg.Proxy)
	case config.ProviderMock:
		return &collector.MockFetcher{Price: 60000}
	default:
		return collector.NewCoinGeckoFetcher(ds.BaseURL, ds.APIKey, ds.CoinID, ds.VsCurrency, cfg.Proxy)
	}
}

func newIndicatorSource(cfg *config.Config) (indicator.IndicatorSource, error) {
	formula, err := indicator.FormulaByName(cfg.Indicators.Formula)
	if err != nil {
		return nil, err
	}
	var src indicator.IndicatorSource = indicator.NewSyntheticSource(formula, cfg.Indicators.Seed)
	if cfg.Indicators.RSISource == config.RSIPrice {
		src = &indicator.PriceRSISource{Base: src, Period: cfg.Indicators.RSIPeriod}
	}
	return src, nil
}
