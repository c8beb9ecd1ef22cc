// Package postgres implements the store ports over PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/aidengindin/ownhealth/internal/config"
)

// DB wraps a *sql.DB and implements the domain store ports.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations. The pool is
// sized from database.max_connections.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName,
	)
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(cfg.MaxConnections)
	s.SetMaxIdleConns(cfg.MaxConnections)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS heart_rate (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			value INTEGER NOT NULL CHECK (value BETWEEN 0 AND 65535),
			timestamp TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS weight (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS hydration (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS vo2_max (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sleep_duration (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			value INTEGER NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		);`,
		`DO $$ BEGIN
			CREATE TYPE sleep_stage_value AS ENUM ('awake', 'light', 'deep', 'rem');
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$;`,
		`CREATE TABLE IF NOT EXISTS sleep_stage (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			value sleep_stage_value NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS provider_credentials (
			provider_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			secret BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (provider_id, user_id)
		);`,
		"CREATE INDEX IF NOT EXISTS idx_heart_rate_user_ts ON heart_rate(user_id, timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_weight_user_ts ON weight(user_id, timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_hydration_user_ts ON hydration(user_id, timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_vo2_max_user_ts ON vo2_max(user_id, timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_sleep_duration_user_ts ON sleep_duration(user_id, timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_sleep_stage_user_ts ON sleep_stage(user_id, timestamp);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
