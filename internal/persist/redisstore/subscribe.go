// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package redisstore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/olegiv/newsdesk-go/internal/persist"
)

// Subscribe calls fn with the collection contents once immediately and
// again after every change announced on the collection's channel.
// Changes made by other processes sharing the Redis instance are delivered
// the same way.
func (s *Store) Subscribe(ctx context.Context, c persist.Collection, fn func([]persist.Record)) (persist.Unsubscribe, error) {
	if err := s.check("subscribe", c, ""); err != nil {
		return nil, err
	}

	pubsub := s.client.Subscribe(ctx, s.Channel(c))
	// Wait for the subscription to be confirmed so no change is missed
	// between here and the first reload.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, wrap("subscribe", c, "", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	messages := pubsub.Channel()

	reload := func() {
		records, err := s.LoadAll(subCtx, c)
		if err != nil {
			if subCtx.Err() == nil {
				slog.Warn("reloading collection after change failed", "collection", c, "error", err)
			}
			return
		}
		if subCtx.Err() != nil {
			return
		}
		fn(records)
	}

	go func() {
		reload()
		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-messages:
				if !ok {
					return
				}
			}
			// Collapse a burst of announcements into one reload.
		drain:
			for {
				select {
				case _, ok := <-messages:
					if !ok {
						break drain
					}
				default:
					break drain
				}
			}
			reload()
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = pubsub.Close()
		})
	}, nil
}
