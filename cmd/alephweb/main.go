package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	zlog "github.com/rs/zerolog/log"

	"github.com/akave-ai/alephweb/internal/config"
	"github.com/akave-ai/alephweb/internal/database"
	"github.com/akave-ai/alephweb/internal/logger"
	"github.com/akave-ai/alephweb/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.Observability)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var nrApp *newrelic.Application
	if nr := cfg.Observability.NewRelic; nr.Enabled() {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.Observability.ServiceName),
			newrelic.ConfigLicense(nr.LicenseKey),
			newrelic.ConfigAppLogForwardingEnabled(nr.AppLogForwardingEnabled),
			newrelic.ConfigDistributedTracerEnabled(nr.DistributedTracingEnabled),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start new relic")
		}
		defer nrApp.Shutdown(shutdownTimeout)
	}

	var pool *pgxpool.Pool
	if cfg.Database != nil {
		if cfg.Database.RunMigrations {
			if err := database.RunMigrations(ctx, cfg.Database.DSN(), log); err != nil {
				log.Fatal().Err(err).Msg("migrations failed")
			}
		}
		pool, err = database.NewPool(ctx, cfg, log, nrApp != nil)
		if err != nil {
			log.Fatal().Err(err).Msg("database pool")
		}
		defer pool.Close()
	}

	srv, err := server.New(ctx, cfg, server.Deps{
		Logger:   log,
		Pool:     pool,
		NewRelic: nrApp,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build server")
	}
	if err := srv.Start(ctx, shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
