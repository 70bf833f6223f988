// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"devtogether/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient owns the connection pool behind store.Store. Aggregator reads go
// through DB as independent round trips; nothing here opens a transaction.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres sizes the pool from database.postgres. Refresh fans its reads out
// concurrently, so max_connections also caps how many refreshes make progress at once.
// The connection is verified by Ping, not here.
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

// Ping backs the "postgres" readiness check and the startup retry loop.
func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

// Close drains the pool on shutdown.
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
