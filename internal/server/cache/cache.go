// Package cache stores short-lived values: pending phone verifications and
// email verification tokens. Memory is backed by go-cache, Redis by go-redis.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cache: not found")

type Cache interface {
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Take returns and removes key in one step. Of several concurrent
	// callers at most one gets the value; the rest see ErrNotFound.
	Take(ctx context.Context, key string) ([]byte, error)
	// Incr atomically adds one to the counter at key and returns the new
	// value. A missing counter starts at zero and expires after ttl.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
