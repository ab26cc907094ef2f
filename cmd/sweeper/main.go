package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/crosslink-crm/crosslink/internal/adapter"
	"github.com/crosslink-crm/crosslink/internal/config"
	"github.com/crosslink-crm/crosslink/internal/conflict"
	"github.com/crosslink-crm/crosslink/internal/dedupe"
	"github.com/crosslink-crm/crosslink/internal/idempotency"
	"github.com/crosslink-crm/crosslink/internal/logger"
	"github.com/crosslink-crm/crosslink/internal/mapping"
	"github.com/crosslink-crm/crosslink/internal/messaging"
	"github.com/crosslink-crm/crosslink/internal/orchestrator"
	"github.com/crosslink-crm/crosslink/internal/provider/jetstream"
	"github.com/crosslink-crm/crosslink/internal/provider/rest"
	"github.com/crosslink-crm/crosslink/internal/retry"
	"github.com/crosslink-crm/crosslink/internal/store"
	"github.com/crosslink-crm/crosslink/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "sweeper",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Sweeper")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	dataStore := store.NewPGStore(db)

	clock := adapter.NewClock()

	providerA := rest.NewClient(rest.Config{
		BaseURL:       cfg.SideA.BaseURL,
		APIKey:        cfg.SideA.APIKey,
		IDPath:        cfg.SideA.IDPath,
		UpdatedAtPath: cfg.SideA.UpdatedAtPath,
	}, adapter.NewHTTPClient(time.Duration(cfg.SideA.Timeout)*time.Second))
	providerB := rest.NewClient(rest.Config{
		BaseURL:       cfg.SideB.BaseURL,
		APIKey:        cfg.SideB.APIKey,
		IDPath:        cfg.SideB.IDPath,
		UpdatedAtPath: cfg.SideB.UpdatedAtPath,
	}, adapter.NewHTTPClient(time.Duration(cfg.SideB.Timeout)*time.Second))

	// Key files enable reload-on-401 for rotated credentials
	var refresher retry.CredentialRefresher
	if cfg.SideA.APIKeyFile != "" || cfg.SideB.APIKeyFile != "" {
		keyRefresher := rest.NewFileKeyRefresher()
		if cfg.SideA.APIKeyFile != "" {
			keyRefresher.Register(providerA, cfg.SideA.APIKeyFile)
		}
		if cfg.SideB.APIKeyFile != "" {
			keyRefresher.Register(providerB, cfg.SideB.APIKeyFile)
		}
		refresher = keyRefresher
	}

	var publisher messaging.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = jetstream.NewPublisher(jetstream.Config{
			URL:            cfg.NATS.URL,
			SubjectPrefix:  cfg.NATS.SubjectPrefix,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: "crosslink-sweeper",
		}, adapter.NewNatsJetStream())
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err))
		}
		defer publisher.Close()
	}

	engine := mapping.NewEngine(dataStore, cfg.Sync.RuleCache, cfg.Sync.RuleCacheTTL)
	guard := dedupe.NewGuard(dataStore, clock, cfg.Sync.DedupeTTL, cfg.Sync.DedupeCache)
	checker := idempotency.NewChecker(dataStore)
	executor := retry.NewExecutor(retry.Config{
		MaxAttempts:       cfg.Retry.MaxAttempts,
		InitialInterval:   cfg.Retry.InitialInterval,
		MaxInterval:       cfg.Retry.MaxInterval,
		DefaultRetryAfter: cfg.Retry.DefaultRetryAfter,
	}, clock, refresher)

	syncer := orchestrator.NewOrchestrator(orchestrator.Config{
		TieBreak:      conflict.TieBreak(cfg.Sync.TieBreak),
		BatchWorkers:  cfg.Sync.BatchWorkers,
		BatchShutdown: cfg.Sync.BatchShutdown,
		FullSyncPage:  cfg.Sync.FullSyncPage,
	}, dataStore, providerA, providerB, engine, guard, checker, executor, publisher, clock)
	defer syncer.Close()

	sweepers := []sweeper.Sweeper{
		sweeper.NewReconciliationSweeper(&sweeper.ReconciliationSweeperConfig{
			Tenants:  cfg.Tenants,
			Interval: cfg.SweepInterval,
		}, syncer, clock),
		sweeper.NewRetentionSweeper(&sweeper.RetentionSweeperConfig{
			Interval:       cfg.PurgeInterval,
			EventRetention: cfg.EventRetention,
		}, dataStore, guard, clock),
	}

	errChan := make(chan error, len(sweepers))
	for _, sw := range sweepers {
		go func() {
			logger.InfoCtx(ctx, "Starting sweeper", zap.String("name", sw.Name()))
			if err := sw.Start(ctx); err != nil {
				errChan <- fmt.Errorf("%s: %w", sw.Name(), err)
			}
		}()
	}

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	for _, sw := range sweepers {
		if err := sw.Stop(shutdownCtx); err != nil {
			logger.ErrorCtx(shutdownCtx, err)
		}
	}

	logger.InfoCtx(shutdownCtx, "Sweeper stopped")
}
