package cache

import (
	"context"
	"time"
)

// KeyPrefix namespaces redirect entries in a shared keyspace.
const KeyPrefix = "redirect:"

// Cache holds slug -> destination entries in front of the store.
// Get reports a miss as ok=false with a nil error; err is reserved for
// failures of the cache itself.
type Cache interface {
	Get(ctx context.Context, slug string) (destination string, ok bool, err error)
	Set(ctx context.Context, slug, destination string, ttl time.Duration) error
	Delete(ctx context.Context, slug string) error
}

func Key(slug string) string {
	return KeyPrefix + slug
}

// Noop never hits and never fails.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool, error)        { return "", false, nil }
func (Noop) Set(context.Context, string, string, time.Duration) error { return nil }
func (Noop) Delete(context.Context, string) error                     { return nil }
