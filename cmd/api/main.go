// cmd/api/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"trendpulse/internal/adapter/events"
	"trendpulse/internal/adapter/storage"
	"trendpulse/internal/app"
	"trendpulse/internal/config"
	"trendpulse/internal/domain/report"
	"trendpulse/internal/logging"
	"trendpulse/internal/metrics"
	"trendpulse/internal/server"
	"trendpulse/internal/server/handlers"
	"trendpulse/internal/service/pipeline"
	"trendpulse/internal/service/publishing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Service failed", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	rdb, err := app.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	orchestrator, err := app.NewOrchestrator(ctx, cfg, rdb, logger, m)
	if err != nil {
		return err
	}

	scheduler := pipeline.NewScheduler(orchestrator, pipeline.SchedulerConfig{
		Keywords:   app.Keywords(cfg),
		Fetch:      app.FetchOptions(cfg.Trends),
		Interval:   cfg.Schedule.Interval,
		RunOnStart: cfg.Schedule.RunOnStart,
	}, logger)

	var history handlers.History
	if cfg.Database.Enabled() {
		db, err := initDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		store := storage.NewResultStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}

		latest, err := store.LatestResult(ctx)
		switch {
		case err == nil:
			scheduler.Seed(latest)
		case !errors.Is(err, report.ErrEmptyResult):
			logger.Warn("Failed to load stored result", zap.Error(err))
		}

		scheduler.RegisterHandler(app.PersistHandler(store))
		history = store
	}

	if cfg.Storage.TablePath != "" {
		scheduler.RegisterHandler(app.SnapshotHandler(cfg.Storage.TablePath))
	}

	var bus *events.Bus
	var feed handlers.Subscriber
	if cfg.NATS.URL != "" {
		natsConn, err := events.Connect(events.ConnectConfig{
			URL:            cfg.NATS.URL,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectTimeout: cfg.NATS.ConnectTimeout,
		}, logger)
		if err != nil {
			return err
		}
		defer natsConn.Close()

		bus = events.NewBus(natsConn, cfg.NATS.SubjectPrefix, logger)
		feed = bus
		scheduler.RegisterHandler(app.EventHandler(bus, cfg.Publisher.Hashtag))
	}

	if cfg.Publisher.Enabled {
		publishers, err := app.NewPublishers(cfg.Publisher, logger)
		if err != nil {
			return err
		}
		announcer := publishing.NewAnnouncer(publishers, logger, m)

		var postEvents app.EventPublisher
		if bus != nil {
			postEvents = bus
		}
		scheduler.RegisterHandler(app.PostHandler(announcer, cfg.Publisher.Hashtag, postEvents, logger))
		logger.Info("Publishing enabled", zap.Strings("platforms", announcer.Platforms()))
	}

	// Start the scheduler
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, server.Dependencies{
		Runner:   scheduler,
		History:  history,
		Events:   feed,
		Gatherer: registry,
		Hashtag:  cfg.Publisher.Hashtag,
	}, logger)

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", zap.String("host", cfg.Server.Host), zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
			shutdown <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	logger.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("Scheduler shutdown error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}
