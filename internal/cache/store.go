package cache

import (
	"context"
	"time"
)

// Store is the cache used by the settings service for decoded documents.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
	// Flush drops every entry and reports how many were removed.
	Flush(ctx context.Context) (int, error)
}
