package main

import (
	"database/sql"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daveio/golinks/internal/cache"
	"github.com/daveio/golinks/internal/config"
	"github.com/daveio/golinks/internal/db"
	"github.com/daveio/golinks/internal/logging"
	"github.com/daveio/golinks/internal/repo"
	"github.com/daveio/golinks/internal/service"
)

// app is the state shared by subcommands once the root command has loaded
// configuration and opened the store.
type app struct {
	cfg     config.Config
	log     *zap.Logger
	conn    *sql.DB
	cache   *cache.Redis
	service service.Redirects
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "golinksctl",
		Short:         "Manage golinks redirects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.AddCommand(
		newMigrateCmd(a),
		newAddCmd(a),
		newDeleteCmd(a),
		newListCmd(a),
		newImportCmd(a),
	)
	return root
}

func (a *app) open() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log, err = logging.New(logging.Options{
		Service: "golinksctl",
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
	})
	if err != nil {
		return err
	}

	a.conn, err = db.Open(cfg)
	if err != nil {
		return err
	}

	opts := service.Options{
		CacheTTL:      cfg.CacheTTL,
		LookupTimeout: cfg.LookupTimeout,
		Logger:        a.log,
	}
	// Admin writes only need redis for invalidation; failures are logged by the service.
	if cfg.CacheEnabled() {
		a.cache = cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		opts.Cache = a.cache
	}
	a.service = service.NewRedirects(repo.NewSQL(a.conn), opts)
	return nil
}

func (a *app) close() error {
	if a.cache != nil {
		a.cache.Close()
	}
	if a.log != nil {
		a.log.Sync()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
