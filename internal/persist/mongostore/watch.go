// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mongostore

import (
	"context"
	"log/slog"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/olegiv/newsdesk-go/internal/persist"
)

// Subscribe opens a change stream on the collection and calls fn with the
// full contents once immediately and after every change. Change streams
// need a replica set; on a standalone server Subscribe returns an error and
// callers fall back to polling.
func (s *Store) Subscribe(ctx context.Context, c persist.Collection, fn func([]persist.Record)) (persist.Unsubscribe, error) {
	if err := s.check("subscribe", c, ""); err != nil {
		return nil, err
	}

	stream, err := s.db.Collection(string(c)).Watch(ctx, mongo.Pipeline{},
		options.ChangeStream().SetFullDocument(options.Default))
	if err != nil {
		return nil, wrap("subscribe", c, "", err)
	}

	subCtx, cancel := context.WithCancel(ctx)

	reload := func() {
		records, err := s.LoadAll(subCtx, c)
		if err != nil {
			if subCtx.Err() == nil {
				slog.Warn("reloading collection after change failed", "collection", c, "error", err)
			}
			return
		}
		if subCtx.Err() == nil {
			fn(records)
		}
	}

	go func() {
		defer func() { _ = stream.Close(context.Background()) }()
		reload()
		for stream.Next(subCtx) {
			// Skip events already queued so a burst triggers one reload.
			for stream.RemainingBatchLength() > 0 {
				if !stream.Next(subCtx) {
					break
				}
			}
			reload()
		}
		if err := stream.Err(); err != nil && subCtx.Err() == nil {
			slog.Error("change stream ended", "collection", c, "error", err)
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}
