package service

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no redirect exists for the slug. It is an expected
	// outcome, not a failure.
	ErrNotFound = errors.New("redirect not found")
	// ErrInvalidSlug is returned before the store is consulted.
	ErrInvalidSlug        = errors.New("invalid slug")
	ErrInvalidDestination = errors.New("invalid destination")
	ErrDuplicateSlug      = errors.New("slug already exists")
	errEmptyDestination   = errors.New("stored destination is empty")
)

// StoreError wraps any failure of the redirect store. It never matches ErrNotFound.
type StoreError struct {
	Op   string
	Slug string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Slug == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Slug, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Timeout reports whether the store call ran out of time.
func (e *StoreError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
