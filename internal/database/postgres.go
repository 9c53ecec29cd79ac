// Package database provides connectivity to the game stores.
package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gameshelf/gameshelf/internal/config"
)

const (
	defaultMaxConns = 10
	maxPoolConns    = 1000
)

// gamesSchema is applied in order by EnsureSchema. Every statement is idempotent.
// seq orders listings by insertion; created_at alone can tie.
var gamesSchema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id           TEXT PRIMARY KEY,
		seq          BIGSERIAL NOT NULL,
		title        TEXT NOT NULL CHECK (title <> ''),
		genre        TEXT NOT NULL CHECK (genre <> ''),
		release_date TEXT NOT NULL CHECK (release_date <> ''),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE games ADD COLUMN IF NOT EXISTS seq BIGSERIAL NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_games_seq ON games (seq)`,
	`CREATE INDEX IF NOT EXISTS idx_games_title ON games (title)`,
}

// Pool is the Postgres connection pool backing the games table.
type Pool struct {
	*pgxpool.Pool
}

// NewPool opens a pool for cfg and pings it before returning.
func NewPool(ctx context.Context, cfg *config.PostgresConfig) (*Pool, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// poolConfig translates cfg into pgxpool settings. Out-of-range
// connection counts fall back to defaults.
func poolConfig(cfg *config.PostgresConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(BuildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pc.MaxConns = defaultMaxConns
	if cfg.MaxConns > 0 && cfg.MaxConns <= maxPoolConns {
		pc.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 && cfg.MinConns <= int(pc.MaxConns) {
		pc.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}

	return pc, nil
}

// BuildDSN returns a postgres:// URL for cfg with credentials escaped.
func BuildDSN(cfg *config.PostgresConfig) string {
	q := url.Values{}
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// EnsureSchema creates or upgrades the games table in one round trip.
func (p *Pool) EnsureSchema(ctx context.Context) error {
	batch := &pgx.Batch{}
	for _, stmt := range gamesSchema {
		batch.Queue(stmt)
	}

	if err := p.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to ensure games schema: %w", err)
	}
	return nil
}

// HealthCheck pings the database.
func (p *Pool) HealthCheck(ctx context.Context) error {
	return p.Ping(ctx)
}
