// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package redisstore keeps collections in Redis and pushes changes to
// subscribers over pub/sub.
//
// Each collection uses a hash for document bodies and a sorted set for the
// ordering token. The token comes from a shared counter and is added with
// NX, so an overwrite keeps the original position.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/olegiv/newsdesk-go/internal/persist"
)

// Options configures the store.
type Options struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Prefix is prepended to all keys (e.g., "newsdesk:")
	Prefix string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Prefix:         "newsdesk:",
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    3 * time.Second,
		WriteTimeout:   3 * time.Second,
	}
}

// Store is a Redis-backed document store.
type Store struct {
	client *redis.Client
	prefix string
	closed atomic.Bool
}

// Open connects to Redis and verifies the connection.
func Open(opts Options) (*Store, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	if opts.ConnectTimeout > 0 {
		redisOpts.DialTimeout = opts.ConnectTimeout
	}
	if opts.ReadTimeout > 0 {
		redisOpts.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		redisOpts.WriteTimeout = opts.WriteTimeout
	}

	client := redis.NewClient(redisOpts)

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if isPermission(err) {
			return nil, persist.Denied(err)
		}
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return New(client, opts.Prefix), nil
}

// New wraps an existing client.
func New(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) bodiesKey(c persist.Collection) string { return s.prefix + "docs:" + string(c) }
func (s *Store) orderKey(c persist.Collection) string  { return s.prefix + "order:" + string(c) }
func (s *Store) seqKey() string                        { return s.prefix + "seq" }

// Channel returns the pub/sub channel announcing changes to c.
func (s *Store) Channel(c persist.Collection) string { return s.prefix + "changes:" + string(c) }

// LoadAll returns the collection ordered by its sorted-set score.
func (s *Store) LoadAll(ctx context.Context, c persist.Collection) ([]persist.Record, error) {
	if err := s.check("load all", c, ""); err != nil {
		return nil, err
	}

	var keys []string
	var err error
	if c.NewestFirst() {
		keys, err = s.client.ZRevRange(ctx, s.orderKey(c), 0, -1).Result()
	} else {
		keys, err = s.client.ZRange(ctx, s.orderKey(c), 0, -1).Result()
	}
	if err != nil {
		return nil, wrap("load all", c, "", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	bodies, err := s.client.HMGet(ctx, s.bodiesKey(c), keys...).Result()
	if err != nil {
		return nil, wrap("load all", c, "", err)
	}

	records := make([]persist.Record, 0, len(keys))
	for i, key := range keys {
		body, ok := bodies[i].(string)
		if !ok {
			// Deleted between the two reads.
			continue
		}
		records = append(records, persist.Record{Key: key, Data: []byte(body)})
	}
	return records, nil
}

// LoadOne returns a single record.
func (s *Store) LoadOne(ctx context.Context, c persist.Collection, key string) (persist.Record, bool, error) {
	if err := s.check("load one", c, key); err != nil {
		return persist.Record{}, false, err
	}

	body, err := s.client.HGet(ctx, s.bodiesKey(c), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return persist.Record{}, false, nil
	}
	if err != nil {
		return persist.Record{}, false, wrap("load one", c, key, err)
	}
	return persist.Record{Key: key, Data: body}, true, nil
}

// Save writes the body and, for a new key, its ordering token, then
// announces the change.
func (s *Store) Save(ctx context.Context, c persist.Collection, key string, data []byte) error {
	if err := s.check("save", c, key); err != nil {
		return err
	}

	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return wrap("save", c, key, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.bodiesKey(c), key, data)
		pipe.ZAddNX(ctx, s.orderKey(c), redis.Z{Score: float64(seq), Member: key})
		pipe.Publish(ctx, s.Channel(c), key)
		return nil
	})
	return wrap("save", c, key, err)
}

// Delete removes a record; a missing key is not an error.
func (s *Store) Delete(ctx context.Context, c persist.Collection, key string) error {
	if err := s.check("delete", c, key); err != nil {
		return err
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.bodiesKey(c), key)
		pipe.ZRem(ctx, s.orderKey(c), key)
		pipe.Publish(ctx, s.Channel(c), key)
		return nil
	})
	return wrap("delete", c, key, err)
}

// Client returns the underlying connection for reuse, e.g. by a cache.
// It stays owned by the store.
func (s *Store) Client() *redis.Client { return s.client }

// Close closes the client.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.client.Close()
}

func (s *Store) check(op string, c persist.Collection, key string) error {
	if err := persist.CheckCollection(op, c); err != nil {
		return err
	}
	if s.closed.Load() {
		return persist.Wrap(op, c, key, persist.ErrClosed)
	}
	return nil
}

func wrap(op string, c persist.Collection, key string, err error) error {
	if err == nil {
		return nil
	}
	if isPermission(err) {
		err = persist.Denied(err)
	}
	return persist.Wrap(op, c, key, err)
}

// isPermission recognizes ACL and authentication refusals.
func isPermission(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{"NOPERM", "NOAUTH", "WRONGPASS"} {
		if strings.HasPrefix(msg, prefix) || strings.Contains(msg, " "+prefix) {
			return true
		}
	}
	return false
}
