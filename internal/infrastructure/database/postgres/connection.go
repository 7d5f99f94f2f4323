package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"credit-control/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewConnectionPool builds a pgx pool from configuration and verifies
// connectivity before handing it back.
func NewConnectionPool(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Failed to parse database connection string", slog.Any("error", err))
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	configurePool(poolCfg, cfg)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("Failed to create database connection pool", slog.Any("error", err))
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := verifyConnection(ctx, pool); err != nil {
		pool.Close()
		logger.Error("Failed to verify database connection", slog.Any("error", err))
		return nil, err
	}

	logger.Info("Database connection pool established",
		slog.Int("maxConns", int(poolCfg.MaxConns)))
	return pool, nil
}

func configurePool(poolCfg *pgxpool.Config, cfg config.DatabaseConfig) {
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute
	poolCfg.HealthCheckPeriod = time.Minute
}

func verifyConnection(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("unable to ping database: %w", err)
	}
	return nil
}
