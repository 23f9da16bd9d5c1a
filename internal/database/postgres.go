package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stwalsh4118/randwise/api/internal/config"
)

// ErrNotConnected is returned by Ping on a Database without a pool.
var ErrNotConnected = errors.New("database not connected")

// Pool tuning. State reads and writes are single-row statements, so
// connections are short-lived and recycled aggressively.
const (
	connectTimeout    = 5 * time.Second
	maxConnIdleTime   = 30 * time.Second
	maxConnLifetime   = time.Hour
	healthCheckPeriod = time.Minute
)

// Database wraps the pgx connection pool backing calculator state storage.
type Database struct {
	Pool *pgxpool.Pool
}

// Open connects to Postgres and brings the calculator_states schema up to
// date.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Database, error) {
	db, err := NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(cfg); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// NewPostgresPool creates a pgx pool sized from cfg and pings it once.
func NewPostgresPool(ctx context.Context, cfg config.DatabaseConfig) (*Database, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MinConns = int32(cfg.PoolMin)
	poolConfig.MaxConns = int32(cfg.PoolMax)
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.HealthCheckPeriod = healthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{Pool: pool}, nil
}

// Name identifies the dependency in readiness checks.
func (db *Database) Name() string { return "postgres" }

// Ping checks that the pool can reach the server.
func (db *Database) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return ErrNotConnected
	}
	return db.Pool.Ping(ctx)
}

// Close waits for checked-out connections and closes the pool.
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Stats returns pool statistics, or nil without a pool.
func (db *Database) Stats() *pgxpool.Stat {
	if db.Pool == nil {
		return nil
	}
	return db.Pool.Stat()
}
