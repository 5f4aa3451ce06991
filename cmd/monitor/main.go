package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	httpadapter "github.com/cosmicwatch/neo-monitor-service/internal/adapter/http"
	kafkaadapter "github.com/cosmicwatch/neo-monitor-service/internal/adapter/kafka"
	"github.com/cosmicwatch/neo-monitor-service/internal/adapter/nasa"
	"github.com/cosmicwatch/neo-monitor-service/internal/adapter/postgres"
	"github.com/cosmicwatch/neo-monitor-service/internal/alert"
	"github.com/cosmicwatch/neo-monitor-service/internal/cache"
	"github.com/cosmicwatch/neo-monitor-service/internal/config"
	"github.com/cosmicwatch/neo-monitor-service/internal/domain"
	"github.com/cosmicwatch/neo-monitor-service/internal/feed"
	"github.com/cosmicwatch/neo-monitor-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := nasa.NewClient(cfg.NASAAPIKey, cfg.NASABaseURL, cfg.NASATimeout, metrics, logger)
	store := cache.New[[]domain.NearEarthObject](nil)

	// Kafka publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var publisher feed.Publisher
	var notifier alert.Notifier
	var closers []func() error
	if cfg.KafkaEnabled {
		snapshotWriter := kafkaadapter.NewSnapshotWriter(cfg, logger)
		alertNotifier := kafkaadapter.NewNotifier(cfg, logger)
		publisher = snapshotWriter
		notifier = alertNotifier
		closers = append(closers, snapshotWriter.Close, alertNotifier.Close)
		logger.Info("kafka publishing enabled",
			"snapshot_topic", cfg.KafkaSnapshotTopic,
			"alert_topic", cfg.KafkaAlertTopic,
		)
	} else {
		notifier = alert.NewLogNotifier(logger)
		logger.Info("kafka publishing disabled, alerts go to the log")
	}

	feedService := feed.NewService(fetcher, store, publisher, cfg.FeedCacheTTL, logger, metrics)

	// Alert rules come from PostgreSQL when configured; otherwise an empty
	// in-memory set keeps the evaluator running without persistence.
	var rules alert.RuleRepository
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		rules = postgres.NewAlertRuleRepository(pool)
		logger.Info("alert rules backed by postgres")
	} else {
		rules = alert.NewMemoryRuleRepository()
		logger.Warn("no DATABASE_URL set, alert rules are in-memory only")
	}

	evaluator := alert.NewEvaluator(feedService, rules, notifier, nil,
		cfg.AlertCooldown, cfg.AlertLookahead, logger, metrics)
	scheduler := alert.NewScheduler(evaluator, cfg.AlertInterval, nil, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, feedService, feedService, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Start(ctx)
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	wg.Wait()
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
