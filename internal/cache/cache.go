// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides a byte cache with per-entry TTL, kept in process
// memory or in Redis, and a typed JSON wrapper on top of it.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cacher is implemented by every cache backend. Implementations are safe
// for concurrent use.
type Cacher interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value for ttl; a zero ttl means the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// Error represents an error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found in cache or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)

// Stats holds cache statistics.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	Items  int   `json:"items"`
}

// Options selects and configures a backend.
type Options struct {
	// Client selects the Redis backend on a connection owned by the
	// caller. It takes precedence over RedisURL.
	Client *redis.Client
	// RedisURL selects the Redis backend when set.
	RedisURL string
	// Prefix is prepended to Redis keys.
	Prefix     string
	DefaultTTL time.Duration
	// MaxSize bounds the memory backend (0 = unlimited).
	MaxSize int
}

// New returns a Redis cache when Client or RedisURL is set, otherwise a
// memory cache.
func New(opts Options) (Cacher, error) {
	if opts.Client != nil {
		return NewRedisCacheWithClient(opts.Client, opts.Prefix, opts.DefaultTTL), nil
	}
	if opts.RedisURL != "" {
		return NewRedisCache(RedisCacheOptions{
			URL:        opts.RedisURL,
			Prefix:     opts.Prefix,
			DefaultTTL: opts.DefaultTTL,
		})
	}
	return NewMemoryCache(opts.DefaultTTL, opts.MaxSize), nil
}
