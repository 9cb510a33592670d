package http

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/daveio/golinks/internal/cache"
	"github.com/daveio/golinks/internal/config"
	"github.com/daveio/golinks/internal/handler"
	"github.com/daveio/golinks/internal/metrics"
	"github.com/daveio/golinks/internal/repo"
	"github.com/daveio/golinks/internal/service"
)

// Deps are the process-wide collaborators handed to the server. Only DB is required.
type Deps struct {
	DB      *sql.DB
	Cache   cache.Cache
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Tracer  trace.Tracer
}

func NewServer(cfg config.Config, deps Deps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(
		Recovery(log),
		RequestID(),
		SecurityHeaders(),
		AccessLog(log),
		StatusMetrics(deps.Metrics),
	)

	rp := repo.NewSQL(deps.DB)
	sv := service.NewRedirects(rp, service.Options{
		Cache:         deps.Cache,
		CacheTTL:      cfg.CacheTTL,
		LookupTimeout: cfg.LookupTimeout,
		Logger:        log,
		Metrics:       deps.Metrics,
		Tracer:        deps.Tracer,
	})
	h := handler.New(cfg, sv)

	r.GET("/go/:slug", h.Redirect)

	api := r.Group("/api")
	api.GET("/redirects", h.ListRedirects)
	api.GET("/ping", h.Ping)

	if cfg.MetricsEnabled && deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	r.NoRoute(func(c *gin.Context) {
		handler.Fail(c, http.StatusNotFound, "Not found")
	})

	return r
}
