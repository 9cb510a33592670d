package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/daveio/golinks/internal/cache"
	"github.com/daveio/golinks/internal/config"
	"github.com/daveio/golinks/internal/db"
	"github.com/daveio/golinks/internal/http"
	"github.com/daveio/golinks/internal/logging"
	"github.com/daveio/golinks/internal/metrics"
	"github.com/daveio/golinks/internal/tracing"
)

const serviceName = "golinks"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(logging.Options{
		Service: serviceName,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, shutdownTracing, err := tracing.Setup(tracing.Options{
		Enabled:     cfg.TracingEnabled,
		Service:     serviceName,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	conn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		return err
	}

	deps := http.Deps{
		DB:     conn,
		Cache:  openCache(ctx, cfg, logger),
		Logger: logger,
		Tracer: tracer,
	}
	if cfg.MetricsEnabled {
		deps.Metrics = metrics.New(prometheus.NewRegistry())
	}
	if c, ok := deps.Cache.(*cache.Redis); ok {
		defer c.Close()
	}

	ln, err := net.Listen("tcp", cfg.BindAddr())
	if err != nil {
		return err
	}

	logger.Info("listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("driver", cfg.DBDriver),
		zap.String("environment", cfg.Environment),
		zap.Bool("cache", cfg.CacheEnabled()),
	)

	return http.Serve(ctx, ln, http.NewServer(cfg, deps), cfg.ShutdownGrace, logger)
}

// openCache connects to redis when configured. An unreachable redis at
// startup degrades to no caching rather than refusing to serve.
func openCache(ctx context.Context, cfg config.Config, logger *zap.Logger) cache.Cache {
	if !cfg.CacheEnabled() {
		return cache.Noop{}
	}

	rc := cache.NewRedis(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, caching disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		rc.Close()
		return cache.Noop{}
	}
	return rc
}
