// Package database opens the Postgres pool and applies migrations.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/multitracer"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"

	"github.com/akave-ai/alephweb/internal/config"
	"github.com/akave-ai/alephweb/internal/logger"
)

const pingTimeout = 10 * time.Second

// NewPool connects to Postgres. Queries are logged through log and, when
// newRelic is set, recorded as datastore segments of the request transaction.
func NewPool(ctx context.Context, cfg *config.Config, log zerolog.Logger, newRelic bool) (*pgxpool.Pool, error) {
	pcfg, err := poolConfig(cfg, log, newRelic)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.Name).Msg("connected to database")
	return pool, nil
}

func poolConfig(cfg *config.Config, log zerolog.Logger, newRelic bool) (*pgxpool.Config, error) {
	db := cfg.Database
	if db == nil {
		return nil, fmt.Errorf("database config missing")
	}
	pcfg, err := pgxpool.ParseConfig(db.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if db.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(db.MaxOpenConns)
	}
	if db.MaxIdleConns > 0 {
		pcfg.MinConns = int32(min(db.MaxIdleConns, db.MaxOpenConns))
	}
	if db.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = time.Duration(db.ConnMaxLifetime) * time.Second
	}
	if db.ConnMaxIdleTime > 0 {
		pcfg.MaxConnIdleTime = time.Duration(db.ConnMaxIdleTime) * time.Second
	}

	tracers := []pgx.QueryTracer{logger.PgxTracer(log, cfg.Observability)}
	if newRelic {
		tracers = append(tracers, nrpgx5.NewTracer())
	}
	pcfg.ConnConfig.Tracer = multitracer.New(tracers...)
	return pcfg, nil
}
