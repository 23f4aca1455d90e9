package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tejusbharadwaj/agrotelemetry/internal/accounts"
	"github.com/tejusbharadwaj/agrotelemetry/internal/api"
	"github.com/tejusbharadwaj/agrotelemetry/internal/config"
	"github.com/tejusbharadwaj/agrotelemetry/internal/database"
	server "github.com/tejusbharadwaj/agrotelemetry/internal/grpc"
	"github.com/tejusbharadwaj/agrotelemetry/internal/influx"
	"github.com/tejusbharadwaj/agrotelemetry/internal/ingest"
	"github.com/tejusbharadwaj/agrotelemetry/internal/logging"
	"github.com/tejusbharadwaj/agrotelemetry/internal/metrics"
	"github.com/tejusbharadwaj/agrotelemetry/internal/mqtt"
	"github.com/tejusbharadwaj/agrotelemetry/internal/query"
	_ "github.com/tejusbharadwaj/agrotelemetry/migrations"
)

const (
	shutdownTimeout     = 15 * time.Second
	healthProbeInterval = 10 * time.Second
)

// Command agrotelemetry ingests uplinks from a LoRaWAN network server and
// serves the stored observations over HTTP.
//
// The service supports:
//   - The network server webhook (POST /ttn/webhook) and, optionally, its
//     MQTT integration
//   - Users, productive units and device registration
//   - Token-authenticated observation queries and per-device series
//   - Optional InfluxDB mirror and gRPC health service
//   - Prometheus metrics on /metrics
//
// Usage:
//
//	agrotelemetry [flags]
//
// The flags are:
//
//	-config string
//	      path to config file (default "config.yaml")
//	-migrate
//	      apply pending migrations on startup (default true)
//	-migrate-down
//	      roll back the latest migration and exit
//	-migrate-status
//	      print applied and pending migrations and exit
func main() {
	flags := parseFlags()

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := database.NewPostgresRepo(ctx, cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to create repository: %v", err)
	}
	defer repo.Close()

	if done, err := runMigrations(ctx, repo, flags, logger); err != nil {
		logger.Fatalf("Migrations failed: %v", err)
	} else if done {
		return
	}

	if err := run(ctx, cfg, repo, logger); err != nil {
		logger.Fatalf("Service error: %v", err)
	}
	logger.Info("Shutdown complete")
}

type Flags struct {
	ConfigPath    string
	Migrate       bool
	MigrateDown   bool
	MigrateStatus bool
}

func parseFlags() *Flags {
	f := &Flags{}

	flag.StringVar(&f.ConfigPath, "config", "config.yaml", "Path to config file")
	flag.BoolVar(&f.Migrate, "migrate", true, "Apply pending migrations on startup")
	flag.BoolVar(&f.MigrateDown, "migrate-down", false, "Roll back the latest migration and exit")
	flag.BoolVar(&f.MigrateStatus, "migrate-status", false, "Print migration status and exit")

	flag.Parse()

	return f
}

// runMigrations reports done when a one-shot migration command was run.
func runMigrations(ctx context.Context, repo *database.PostgresRepo, f *Flags, logger *logrus.Logger) (bool, error) {
	switch {
	case f.MigrateStatus:
		applied, pending, err := repo.MigrationStatus(ctx)
		if err != nil {
			return true, err
		}
		for _, m := range applied {
			fmt.Printf("applied  %s  %s\n", m.Version, m.AppliedAt.Format(time.RFC3339))
		}
		for _, m := range pending {
			fmt.Printf("pending  %s  %s\n", m.Version, m.Name)
		}
		return true, nil
	case f.MigrateDown:
		return true, repo.MigrateDown(ctx)
	case f.Migrate:
		if err := repo.Migrate(ctx); err != nil {
			return false, err
		}
		logger.Info("Database schema is up to date")
	}
	return false, nil
}

// run starts every enabled transport and blocks until ctx is cancelled or
// one of them fails.
func run(ctx context.Context, cfg *config.Config, repo *database.PostgresRepo, logger *logrus.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ingestOpts := []ingest.Option{ingest.WithMetrics(m)}
	if cfg.Influx.Enabled {
		exporter, err := influx.Connect(cfg.Influx)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer exporter.Close()
		ingestOpts = append(ingestOpts, ingest.WithSink(exporter))
		logger.WithField("url", cfg.Influx.URL).Info("InfluxDB mirror enabled")
	}
	if cfg.Webhook.Secret == "" {
		logger.Warn("Webhook secret is empty; deliveries are not authenticated")
	}

	ingestSvc := ingest.NewService(repo, cfg.Webhook.Secret, logger, ingestOpts...)
	querySvc := query.NewService(repo, logger)
	accountSvc := accounts.NewService(repo, logger, accounts.WithProduction(cfg.App.IsProd()))

	httpServer, err := api.New(api.Deps{
		Config:    cfg.Server,
		Limits:    cfg.Query,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
		Metrics:   m,
		Gatherer:  reg,
		Ingest:    ingestSvc,
		Query:     querySvc,
		Accounts:  accountSvc,
		DB:        repo,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP server: %w", err)
	}
	if err := httpServer.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.MQTT.Enabled {
		sub := mqtt.NewSubscriber(cfg.MQTT, ingestSvc, logger)
		if err := sub.Connect(); err != nil {
			return err
		}
		defer sub.Close()
	}

	if cfg.GRPC.Enabled {
		health := server.NewHealthChecker(repo, logger)
		grpcServer := server.SetupServer(health, logger, m, server.ServerConfig{
			RateLimit:      cfg.RateLimit.RPS,
			RateLimitBurst: cfg.RateLimit.Burst,
		})
		g.Go(func() error {
			health.Run(gctx, healthProbeInterval)
			return nil
		})
		g.Go(func() error {
			return server.Serve(gctx, grpcServer, fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.GRPC.Port), logger)
		})
	}

	<-gctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Close(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown incomplete")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
