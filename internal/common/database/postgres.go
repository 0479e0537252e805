package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"emergency-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS emergency_contacts (
		id                       UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id                  TEXT NOT NULL,
		name                     TEXT NOT NULL,
		phone                    TEXT NOT NULL,
		email                    TEXT,
		relationship             TEXT,
		priority                 INTEGER NOT NULL DEFAULT 1,
		location_sharing_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		verification_status      TEXT NOT NULL DEFAULT 'pending',
		verification_type        TEXT,
		verified_at              TIMESTAMPTZ,
		created_at               TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_emergency_contacts_user ON emergency_contacts (user_id, priority)`,
	`CREATE TABLE IF NOT EXISTS chat_history (
		id                 UUID PRIMARY KEY,
		user_id            TEXT,
		prompt             TEXT NOT NULL,
		response           TEXT NOT NULL,
		disaster_type      TEXT,
		emergency_detected BOOLEAN NOT NULL DEFAULT FALSE,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_history_created ON chat_history (created_at DESC)`,
}

// Migrate creates the contact and chat history tables inside one transaction.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// GetDB returns the underlying *sql.DB
func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}
