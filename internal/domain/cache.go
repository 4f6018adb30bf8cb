package domain

import (
	"context"
	"time"
)

// CacheError represents an error originating from the cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the key/value store used for quiz definitions.
type Cache interface {
	// Get returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) (string, error)

	// Set overwrites key. An expiration of 0 keeps the item until it is deleted.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}
