package cache

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/mock_cache.go -package=mocks micasa/internal/cache Cache,RefreshTokenStore

// Cache is a JSON read-through cache for listing and profile documents.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Get decodes the cached value into dest and reports whether the key was present.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Delete(ctx context.Context, key string) error
}

var _ Cache = (*Redis)(nil)
