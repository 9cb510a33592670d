package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sbowman/dotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	DefaultLookupTimeout = 2 * time.Second
	DefaultCacheTTL      = 15 * time.Minute
	DefaultShutdownGrace = 10 * time.Second
)

type Config struct {
	DBDriver string
	DBUser   string
	DBPass   string
	DBName   string
	DBHost   string
	DBPort   string
	SSLMode  string
	DBPath   string

	Domain      string
	Port        string
	Environment string
	Version     string

	LookupTimeout time.Duration
	ShutdownGrace time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	LogLevel string
	LogFile  string

	MetricsEnabled bool
	TracingEnabled bool
}

func Load() (Config, error) {
	dotenv.Load()

	cfg := Config{
		DBDriver:      strings.ToLower(getString("DB_DRIVER", DriverPostgres)),
		DBUser:        dotenv.GetString("DB_USER"),
		DBPass:        dotenv.GetString("DB_USER_PASSWORD"),
		DBName:        dotenv.GetString("DB_NAME"),
		DBHost:        dotenv.GetString("DB_HOST"),
		DBPort:        dotenv.GetString("DB_PORT"),
		SSLMode:       dotenv.GetString("DB_SSLMODE"),
		DBPath:        getString("DB_PATH", "golinks.db"),
		Domain:        dotenv.GetString("DOMAIN"),
		Port:          getString("PORT", "8080"),
		Environment:   getString("ENVIRONMENT", "development"),
		Version:       getString("VERSION", "1.0.0"),
		RedisAddr:     dotenv.GetString("REDIS_ADDR"),
		RedisPassword: dotenv.GetString("REDIS_PASSWORD"),
		LogLevel:      getString("LOG_LEVEL", "info"),
		LogFile:       dotenv.GetString("LOG_FILE"),
	}

	var err error
	if cfg.LookupTimeout, err = getDuration("LOOKUP_TIMEOUT", DefaultLookupTimeout); err != nil {
		return cfg, err
	}
	if cfg.ShutdownGrace, err = getDuration("SHUTDOWN_GRACE", DefaultShutdownGrace); err != nil {
		return cfg, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", DefaultCacheTTL); err != nil {
		return cfg, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return cfg, err
	}
	if cfg.MetricsEnabled, err = getBool("METRICS_ENABLED", true); err != nil {
		return cfg, err
	}
	if cfg.TracingEnabled, err = getBool("TRACING_ENABLED", false); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used to start the service.
func (cfg Config) Validate() error {
	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.DBDriver == DriverSQLite && cfg.DBPath == "" {
		return errors.New("DB_PATH is required for the sqlite driver")
	}
	if cfg.LookupTimeout <= 0 {
		return errors.New("LOOKUP_TIMEOUT must be positive")
	}
	if cfg.CacheTTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	return nil
}

func (cfg Config) BindAddr() string {
	return fmt.Sprintf("%s:%s", cfg.Domain, cfg.Port)
}

func (cfg Config) DSN() string {
	if cfg.DBDriver == DriverSQLite {
		return cfg.DBPath
	}
	return fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=%s",
		cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBHost, cfg.DBPort, cfg.SSLMode)
}

// CacheEnabled is true when a redis address is configured.
func (cfg Config) CacheEnabled() bool {
	return cfg.RedisAddr != ""
}

func getString(key, def string) string {
	if v := strings.TrimSpace(dotenv.GetString(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(dotenv.GetString(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(dotenv.GetString(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(dotenv.GetString(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
