package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/daveio/golinks/internal/config"
)

func openSQLite(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open(config.DriverSQLite, cfg.DSN())
	if err != nil {
		return nil, err
	}

	// A single connection keeps ":memory:" databases coherent and serialises writers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA foreign_keys = ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite %q: %w", pragma, err)
		}
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}
