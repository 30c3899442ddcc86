// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package persisttest provides a conformance suite that every
// persist.Adapter implementation runs in its own tests.
package persisttest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/newsdesk-go/internal/persist"
)

// Factory returns a fresh, empty adapter. Cleanup is the caller's job
// (typically via t.Cleanup inside the factory).
type Factory func(t *testing.T) persist.Adapter

func doc(id, title string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"title":%q}`, id, title))
}

// Run executes the adapter contract tests.
func Run(t *testing.T, newAdapter Factory) {
	t.Run("SaveAndLoadOne", func(t *testing.T) {
		a := newAdapter(t)
		ctx := context.Background()

		require.NoError(t, a.Save(ctx, persist.News, "n1", doc("n1", "Test")))

		rec, ok, err := a.LoadOne(ctx, persist.News, "n1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "n1", rec.Key)
		assert.JSONEq(t, string(doc("n1", "Test")), string(rec.Data))

		_, ok, err = a.LoadOne(ctx, persist.News, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("NewestFirstOrdering", func(t *testing.T) {
		a := newAdapter(t)
		ctx := context.Background()

		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, a.Save(ctx, persist.News, id, doc(id, id)))
		}
		// Overwriting keeps the original position.
		require.NoError(t, a.Save(ctx, persist.News, "a", doc("a", "edited")))

		records, err := a.LoadAll(ctx, persist.News)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b", "a"}, keys(records))
		assert.JSONEq(t, string(doc("a", "edited")), string(records[2].Data))
	})

	t.Run("InsertionOrderForUsers", func(t *testing.T) {
		a := newAdapter(t)
		ctx := context.Background()

		for _, id := range []string{"u1", "u2", "u3"} {
			require.NoError(t, a.Save(ctx, persist.Users, id, doc(id, id)))
		}

		records, err := a.LoadAll(ctx, persist.Users)
		require.NoError(t, err)
		assert.Equal(t, []string{"u1", "u2", "u3"}, keys(records))
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		a := newAdapter(t)
		ctx := context.Background()

		require.NoError(t, a.Save(ctx, persist.Requests, "r1", doc("r1", "x")))
		require.NoError(t, a.Delete(ctx, persist.Requests, "r1"))
		require.NoError(t, a.Delete(ctx, persist.Requests, "r1"))
		require.NoError(t, a.Delete(ctx, persist.Requests, "never-existed"))

		records, err := a.LoadAll(ctx, persist.Requests)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("CollectionsAreIsolated", func(t *testing.T) {
		a := newAdapter(t)
		ctx := context.Background()

		require.NoError(t, a.Save(ctx, persist.Ticker, "main", []byte(`{"text":"hello"}`)))

		records, err := a.LoadAll(ctx, persist.Ads)
		require.NoError(t, err)
		assert.Empty(t, records)

		records, err = a.LoadAll(ctx, persist.Ticker)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "main", records[0].Key)
	})

	t.Run("UnknownCollection", func(t *testing.T) {
		a := newAdapter(t)
		err := a.Save(context.Background(), persist.Collection("secrets"), "k", []byte(`{}`))
		assert.ErrorIs(t, err, persist.ErrUnknownCollection)
	})
}

// RunSubscriber checks push notifications for adapters that implement
// persist.Subscriber.
func RunSubscriber(t *testing.T, newAdapter Factory) {
	t.Run("SubscribeDeliversChanges", func(t *testing.T) {
		a := newAdapter(t)
		sub, ok := a.(persist.Subscriber)
		require.True(t, ok, "adapter does not implement persist.Subscriber")

		ctx := context.Background()
		updates := make(chan []persist.Record, 16)
		stop, err := sub.Subscribe(ctx, persist.News, func(records []persist.Record) {
			updates <- records
		})
		require.NoError(t, err)
		defer stop()

		require.NoError(t, a.Save(ctx, persist.News, "n1", doc("n1", "first")))
		require.NoError(t, a.Save(ctx, persist.News, "n2", doc("n2", "second")))

		require.Eventually(t, func() bool {
			for {
				select {
				case records := <-updates:
					if len(records) == 2 && records[0].Key == "n2" {
						return true
					}
				default:
					return false
				}
			}
		}, 5*time.Second, 20*time.Millisecond)
	})

	t.Run("UnsubscribeStopsDelivery", func(t *testing.T) {
		a := newAdapter(t)
		sub := a.(persist.Subscriber)

		ctx := context.Background()
		updates := make(chan []persist.Record, 16)
		stop, err := sub.Subscribe(ctx, persist.Users, func(records []persist.Record) {
			updates <- records
		})
		require.NoError(t, err)
		stop()
		stop()

		// Drain anything delivered before the stop took effect.
		time.Sleep(50 * time.Millisecond)
		for len(updates) > 0 {
			<-updates
		}

		require.NoError(t, a.Save(ctx, persist.Users, "u1", doc("u1", "x")))
		time.Sleep(100 * time.Millisecond)
		assert.Empty(t, updates)
	})
}

func keys(records []persist.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Key)
	}
	return out
}
