package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/daveio/golinks/internal/config"
)

func openPostgres(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open(config.DriverPostgres, cfg.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
