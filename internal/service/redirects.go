package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/daveio/golinks/internal/cache"
	"github.com/daveio/golinks/internal/config"
	"github.com/daveio/golinks/internal/metrics"
	"github.com/daveio/golinks/internal/model"
	"github.com/daveio/golinks/internal/repo"
	"github.com/daveio/golinks/internal/util"
)

const maxSlugAttempts = 5

type Resolver interface {
	Resolve(ctx context.Context, slug string) (string, error)
}

type Admin interface {
	Create(ctx context.Context, slug, destination string) (model.Redirect, error)
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context) ([]model.Redirect, error)
	Slugs(ctx context.Context) ([]string, error)
	Import(ctx context.Context, records []model.Redirect) (ImportResult, error)
}

type Redirects interface {
	Resolver
	Admin
}

type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Options carries the collaborators of the redirect service. Zero values
// select no cache, no-op logging and tracing, and the default timeouts.
type Options struct {
	Cache         cache.Cache
	CacheTTL      time.Duration
	LookupTimeout time.Duration
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
	Tracer        trace.Tracer
}

type redirects struct {
	r       repo.RedirectRepo
	cache   cache.Cache
	ttl     time.Duration
	timeout time.Duration
	log     *zap.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func NewRedirects(r repo.RedirectRepo, opts Options) Redirects {
	s := &redirects{
		r:       r,
		cache:   opts.Cache,
		ttl:     opts.CacheTTL,
		timeout: opts.LookupTimeout,
		log:     opts.Logger,
		metrics: opts.Metrics,
		tracer:  opts.Tracer,
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	if s.ttl <= 0 {
		s.ttl = config.DefaultCacheTTL
	}
	if s.timeout <= 0 {
		s.timeout = config.DefaultLookupTimeout
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.tracer == nil {
		s.tracer = trace.NewNoopTracerProvider().Tracer("")
	}
	return s
}

func (s *redirects) Resolve(ctx context.Context, slug string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "Resolve", trace.WithAttributes(attribute.String("slug", slug)))
	defer span.End()

	outcome := func(o string) {
		s.metrics.Resolution(o)
		span.SetAttributes(attribute.String("outcome", o))
	}

	if !util.LookupSlugOK(slug) {
		outcome(metrics.OutcomeInvalid)
		return "", ErrInvalidSlug
	}

	if dest, ok, err := s.cache.Get(ctx, slug); err != nil {
		s.cacheFailed("get", slug, err)
	} else if ok {
		outcome(metrics.OutcomeHit)
		return dest, nil
	}

	dest, err := s.lookup(ctx, slug)
	if errors.Is(err, repo.ErrNoRecord) {
		outcome(metrics.OutcomeNotFound)
		s.log.Debug("redirect not found", zap.String("slug", slug))
		return "", ErrNotFound
	}
	if err == nil && dest == "" {
		err = errEmptyDestination
	}
	if err != nil {
		outcome(metrics.OutcomeStoreError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "store lookup failed")
		s.log.Error("redirect lookup failed", zap.String("slug", slug), zap.Error(err))
		return "", &StoreError{Op: "lookup", Slug: slug, Err: err}
	}

	outcome(metrics.OutcomeMiss)
	if err := s.cache.Set(ctx, slug, dest, s.ttl); err != nil {
		s.cacheFailed("set", slug, err)
	}
	return dest, nil
}

func (s *redirects) lookup(ctx context.Context, slug string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "store.GetBySlug", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	rec, err := s.r.GetBySlug(ctx, slug)
	s.metrics.StoreLookup(time.Since(start))
	if err != nil {
		return "", err
	}
	return rec.Destination, nil
}

func (s *redirects) Create(ctx context.Context, slug, destination string) (model.Redirect, error) {
	if !util.ValidDestination(destination) {
		return model.Redirect{}, ErrInvalidDestination
	}

	generated := slug == ""
	if generated {
		slug = util.GenerateSlug()
	} else if !util.ValidSlug(slug) {
		return model.Redirect{}, ErrInvalidSlug
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		rec, err := s.r.Insert(ctx, slug, destination)
		if err == nil {
			s.invalidate(ctx, slug)
			s.log.Info("redirect created", zap.String("slug", rec.Slug), zap.String("destination", rec.Destination))
			return rec, nil
		}
		if errors.Is(err, repo.ErrDuplicateSlug) {
			if !generated {
				return model.Redirect{}, ErrDuplicateSlug
			}
			slug = util.GenerateSlug()
			continue
		}
		return model.Redirect{}, &StoreError{Op: "insert", Slug: slug, Err: err}
	}
	return model.Redirect{}, &StoreError{Op: "insert", Err: errors.New("could not allocate unique slug")}
}

func (s *redirects) Delete(ctx context.Context, slug string) error {
	deleted, err := s.r.Delete(ctx, slug)
	if err != nil {
		return &StoreError{Op: "delete", Slug: slug, Err: err}
	}
	s.invalidate(ctx, slug)
	if !deleted {
		return ErrNotFound
	}
	s.log.Info("redirect deleted", zap.String("slug", slug))
	return nil
}

func (s *redirects) List(ctx context.Context) ([]model.Redirect, error) {
	recs, err := s.r.List(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return recs, nil
}

func (s *redirects) Slugs(ctx context.Context) ([]string, error) {
	slugs, err := s.r.ListSlugs(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return slugs, nil
}

// Import creates each record in order. Slugs that already exist are
// skipped, never overwritten; any other failure stops the import.
func (s *redirects) Import(ctx context.Context, records []model.Redirect) (ImportResult, error) {
	var res ImportResult
	for i, rec := range records {
		if rec.Slug == "" {
			return res, fmt.Errorf("record %d: %w", i, ErrInvalidSlug)
		}
		_, err := s.Create(ctx, rec.Slug, rec.Destination)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, ErrDuplicateSlug):
			res.Skipped++
		default:
			return res, fmt.Errorf("record %d (%s): %w", i, rec.Slug, err)
		}
	}
	return res, nil
}

func (s *redirects) invalidate(ctx context.Context, slug string) {
	if err := s.cache.Delete(ctx, slug); err != nil {
		s.cacheFailed("delete", slug, err)
	}
}

func (s *redirects) cacheFailed(op, slug string, err error) {
	s.metrics.CacheError()
	s.log.Warn("cache "+op+" failed", zap.String("slug", slug), zap.Error(err))
}
