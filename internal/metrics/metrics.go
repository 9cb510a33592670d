package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resolution outcomes.
const (
	OutcomeHit        = "hit"
	OutcomeMiss       = "miss"
	OutcomeNotFound   = "not_found"
	OutcomeStoreError = "store_error"
	OutcomeInvalid    = "invalid"
)

// Metrics is safe to use as a nil pointer, which records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	resolutions  *prometheus.CounterVec
	storeLatency prometheus.Histogram
	cacheErrors  prometheus.Counter
	responses    *prometheus.CounterVec
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "golinks_resolutions_total",
			Help: "Slug resolutions by outcome.",
		}, []string{"outcome"}),
		storeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "golinks_store_lookup_seconds",
			Help:    "Latency of redirect store lookups.",
			Buckets: prometheus.DefBuckets,
		}),
		cacheErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "golinks_cache_errors_total",
			Help: "Cache operations that failed and fell back to the store.",
		}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "golinks_http_responses_total",
			Help: "HTTP responses by method, route and status class.",
		}, []string{"method", "route", "class"}),
	}

	reg.MustRegister(m.resolutions, m.storeLatency, m.cacheErrors, m.responses)
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

func (m *Metrics) Resolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StoreLookup(d time.Duration) {
	if m == nil {
		return
	}
	m.storeLatency.Observe(d.Seconds())
}

func (m *Metrics) CacheError() {
	if m == nil {
		return
	}
	m.cacheErrors.Inc()
}

func (m *Metrics) Response(method, route string, status int) {
	if m == nil {
		return
	}
	m.responses.WithLabelValues(method, route, StatusClass(status)).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StatusClass maps 404 to "4xx" and so on.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
