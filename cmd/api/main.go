package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"coglab/adapters/clock"
	"coglab/adapters/memory"
	"coglab/adapters/rng"
	"coglab/adapters/sqldb"
	"coglab/domain/metrics"
	"coglab/internal"
	"coglab/internal/config"
	"coglab/internal/ops"
	"coglab/internal/session"
	"coglab/ports"
	"coglab/ui"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	logger := internal.NewDefaultLogger()

	store, reader, err := buildOutcomeStore(cfg.Database, logger)
	if err != nil {
		log.Fatalf("storage error: %v", err)
	}

	analyzer := metrics.NewAnalyzer(analyzerConfig(cfg.Analyzer))
	runs := session.NewRunManager(clock.New(), rng.New(), store, analyzer, logger, cfg.Runner)
	server := ui.NewServer(runs, reader, logger, cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Ops.Enabled {
		opsServer := ops.NewServer(nil)
		go func() {
			logger.Info("ops server listening on :%s", cfg.Ops.Port)
			srv := &http.Server{
				Addr:              ":" + cfg.Ops.Port,
				Handler:           opsServer.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("ops server failed: %v", err)
			}
		}()
	}

	if err := server.Start(ctx, cfg.Server.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
	logger.Info("shutdown complete")
}

// analyzerConfig applies the deployment overrides to the analyzer
// defaults.
func analyzerConfig(overrides config.AnalyzerConfig) metrics.AnalyzerConfig {
	acfg := metrics.DefaultAnalyzerConfig()
	if overrides.PlausibleRTMin > 0 {
		acfg.PlausibleRTMin = overrides.PlausibleRTMin
	}
	if overrides.PlausibleRTMax > 0 {
		acfg.PlausibleRTMax = overrides.PlausibleRTMax
	}
	if overrides.MinSampleSize > 0 {
		acfg.MinSampleSize = overrides.MinSampleSize
	}
	return acfg
}

// buildOutcomeStore selects the persistence collaborator: a sqlx-backed
// repository when a database is configured, the in-memory store
// otherwise.
func buildOutcomeStore(cfg config.DatabaseConfig, logger *internal.Logger) (ports.OutcomeSink, ports.OutcomeReader, error) {
	if cfg.Driver == "" {
		logger.Info("no DATABASE_DRIVER set, using in-memory outcome store")
		store := memory.NewOutcomeStore()
		return store, store, nil
	}

	db, err := sqlx.Connect(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	repo, err := sqldb.NewOutcomeRepository(db)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("outcome store: %s", cfg.Driver)
	return repo, repo, nil
}
