package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/daveio/golinks/internal/config"
)

// Schema is valid for both PostgreSQL and SQLite.
const Schema = `
CREATE TABLE IF NOT EXISTS redirects (
	slug        TEXT PRIMARY KEY UNIQUE NOT NULL,
	destination TEXT NOT NULL
)`

// Open connects to the configured driver and verifies the connection.
func Open(cfg config.Config) (*sql.DB, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return openPostgres(cfg)
	case config.DriverSQLite:
		return openSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
	}
}

// Migrate creates the redirects table if it is missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate redirects: %w", err)
	}
	return nil
}
