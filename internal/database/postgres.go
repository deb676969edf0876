package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig holds connection pool settings
type PoolConfig struct {
	DSN          string
	MaxConns     int32
	MinConns     int32
	ConnLifetime time.Duration
}

// Postgres wraps a pgx pool with an error-returning Shutdown
type Postgres struct {
	*pgxpool.Pool
}

// NewPostgresPool creates a new PostgreSQL connection pool and pings it
func NewPostgresPool(ctx context.Context, cfg PoolConfig) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}

	if cfg.MaxConns > 0 {
		config.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		config.MinConns = cfg.MinConns
	}
	if cfg.ConnLifetime > 0 {
		config.MaxConnLifetime = cfg.ConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Postgres{Pool: pool}, nil
}

// Shutdown closes every connection in the pool
func (p *Postgres) Shutdown() error {
	p.Pool.Close()
	return nil
}

// HealthCheck pings the database
func (p *Postgres) HealthCheck(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}
