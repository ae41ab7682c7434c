package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"product-catalog/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// OpenPostgres connects to the configured database and returns a KV backed by
// the kv_store table.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (KV, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int("max_connections", cfg.MaxConnections).
		Msg("connecting to postgres storage")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	kv, err := NewPostgresKV(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return kv, nil
}

// postgresKV stores values in a PostgreSQL table. Values must be valid JSON.
type postgresKV struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresKV wraps pool and ensures the kv_store table exists. The store
// takes ownership of the pool and closes it on Close.
func NewPostgresKV(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) (KV, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}

	return &postgresKV{
		pool:   pool,
		logger: logger.With().Str("component", "postgres-kv").Logger(),
	}, nil
}

func (p *postgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.pool.QueryRow(ctx, `SELECT value::text FROM kv_store WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.logger.Debug().Str("key", key).Msg("key not found")
			return nil, ErrNotFound
		}
		p.logger.Error().Err(err).Str("key", key).Msg("failed to query value")
		return nil, fmt.Errorf("failed to query key %s: %w", key, err)
	}
	return value, nil
}

func (p *postgresKV) Put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := p.pool.Exec(ctx, query, key, string(value)); err != nil {
		p.logger.Error().Err(err).Str("key", key).Msg("failed to upsert value")
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

func (p *postgresKV) Close() error {
	p.pool.Close()
	return nil
}
