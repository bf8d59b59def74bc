package services

import (
	"context"
	"time"
)

// CacheService is the slice of the redis cache the repositories and the
// login limiter depend on. pkg/cache.RedisCache implements it; tests use
// nil (repositories treat a nil cache as a pass-through).
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Increment(ctx context.Context, key string, delta int64, expiration time.Duration) (int64, error)
}
