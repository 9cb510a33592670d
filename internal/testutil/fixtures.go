package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"testing"

	"github.com/sbowman/dotenv"

	"github.com/daveio/golinks/internal/config"
	"github.com/daveio/golinks/internal/db"
	"github.com/daveio/golinks/internal/model"
)

// RedirectBuilder creates test redirect records with optional overrides
type RedirectBuilder struct {
	slug        string
	destination string
}

// NewRedirectBuilder creates a new builder with default values
func NewRedirectBuilder() *RedirectBuilder {
	return &RedirectBuilder{
		slug:        RandomSlug(),
		destination: "https://example.com/test",
	}
}

// WithSlug sets the slug
func (b *RedirectBuilder) WithSlug(slug string) *RedirectBuilder {
	b.slug = slug
	return b
}

// WithDestination sets the destination
func (b *RedirectBuilder) WithDestination(destination string) *RedirectBuilder {
	b.destination = destination
	return b
}

// Build creates the Redirect
func (b *RedirectBuilder) Build() model.Redirect {
	return model.Redirect{Slug: b.slug, Destination: b.destination}
}

// RandomSlug generates a random 6-character slug for testing
func RandomSlug() string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890"
	b := make([]byte, 6)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))]
	}
	return string(b)
}

// RandomURL generates a random URL for testing
func RandomURL() string {
	domains := []string{"example.com", "test.org", "sample.net", "demo.io"}
	paths := []string{"path", "resource", "page", "item", "content"}

	domain := domains[rand.Intn(len(domains))]
	path := paths[rand.Intn(len(paths))]

	return fmt.Sprintf("https://%s/%s/%d", domain, path, rand.Intn(10000))
}

// CreateTestRedirects creates a slice of distinct redirects
func CreateTestRedirects(count int) []model.Redirect {
	records := make([]model.Redirect, count)
	for i := 0; i < count; i++ {
		records[i] = model.Redirect{
			Slug:        fmt.Sprintf("test%02d", i+1),
			Destination: fmt.Sprintf("https://example.com/test/%d", i+1),
		}
	}
	return records
}

// OpenSQLite returns a migrated in-memory database closed at test cleanup.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	conn, err := db.Open(config.Config{DBDriver: config.DriverSQLite, DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(context.Background(), conn); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conn
}

// OpenPostgres connects to the TEST_DB_* database, skipping the test when it is unreachable.
func OpenPostgres(t testing.TB) *sql.DB {
	t.Helper()
	dotenv.Load()

	cfg := PostgresTestConfig()
	if cfg.DBName == "" {
		t.Skip("TEST_DB_NAME not set")
	}

	conn, err := db.Open(cfg)
	if err != nil {
		t.Skipf("Test database not available: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(context.Background(), conn); err != nil {
		t.Fatalf("migrate postgres: %v", err)
	}
	return conn
}

// PostgresTestConfig reads the TEST_DB_* variables
func PostgresTestConfig() config.Config {
	return config.Config{
		DBDriver:      config.DriverPostgres,
		DBUser:        dotenv.GetString("TEST_DB_USER"),
		DBPass:        dotenv.GetString("TEST_DB_PASSWORD"),
		DBName:        dotenv.GetString("TEST_DB_NAME"),
		DBHost:        dotenv.GetString("TEST_DB_HOST"),
		DBPort:        dotenv.GetString("TEST_DB_PORT"),
		SSLMode:       dotenv.GetString("TEST_DB_SSLMODE"),
		LookupTimeout: config.DefaultLookupTimeout,
		CacheTTL:      config.DefaultCacheTTL,
	}
}

// DatabaseCleaner helps clean up test data
type DatabaseCleaner struct {
	db *sql.DB
}

// NewDatabaseCleaner creates a new database cleaner
func NewDatabaseCleaner(db *sql.DB) *DatabaseCleaner {
	return &DatabaseCleaner{db: db}
}

// Clean removes all redirects
func (c *DatabaseCleaner) Clean() error {
	_, err := c.db.Exec("DELETE FROM redirects")
	return err
}

// CleanAndSeed removes all data and inserts the given records
func (c *DatabaseCleaner) CleanAndSeed(records []model.Redirect) error {
	ctx := context.Background()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, "DELETE FROM redirects"); err != nil {
		return err
	}

	for _, record := range records {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO redirects (slug, destination) VALUES ($1, $2)",
			record.Slug, record.Destination)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
