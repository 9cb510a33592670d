package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/daveio/golinks/internal/config"
	"github.com/daveio/golinks/internal/model"
	"github.com/daveio/golinks/internal/service"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

type Handler struct {
	cfg config.Config
	srv service.Redirects
}

func New(cfg config.Config, srv service.Redirects) *Handler { return &Handler{cfg: cfg, srv: srv} }

// GET /go/:slug -> redirect
func (h *Handler) Redirect(c *gin.Context) {
	slug := c.Param("slug")

	dest, err := h.srv.Resolve(c.Request.Context(), slug)
	if err != nil {
		status, msg := StatusFor(err)
		Fail(c, status, msg)
		return
	}

	c.Redirect(http.StatusFound, dest)
}

// GET /api/redirects
func (h *Handler) ListRedirects(c *gin.Context) {
	slugs, err := h.srv.Slugs(c.Request.Context())
	if err != nil {
		status, msg := StatusFor(err)
		Fail(c, status, msg)
		return
	}
	OK(c, http.StatusOK, slugs)
}

// GET /api/ping
func (h *Handler) Ping(c *gin.Context) {
	OK(c, http.StatusOK, model.Ping{
		Status:      "ok",
		Version:     h.cfg.Version,
		Environment: h.cfg.Environment,
		Cache:       h.cfg.CacheEnabled(),
	})
}

// StatusFor maps service errors onto HTTP status codes and client-safe messages.
func StatusFor(err error) (int, string) {
	var se *service.StoreError
	switch {
	case errors.Is(err, service.ErrInvalidSlug):
		return http.StatusBadRequest, "Slug is required"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Redirect not found"
	case errors.As(err, &se) && se.Timeout():
		return http.StatusServiceUnavailable, "Redirect store unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func OK(c *gin.Context, status int, result any) {
	c.JSON(status, model.Response{
		OK:        true,
		Result:    result,
		RequestID: c.GetString(RequestIDKey),
		Timestamp: time.Now().UTC(),
	})
}

func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, model.Response{
		OK:        false,
		Error:     msg,
		RequestID: c.GetString(RequestIDKey),
		Timestamp: time.Now().UTC(),
	})
}
