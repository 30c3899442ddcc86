// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package refresh provides the ways a domain store learns about writes
// made by other instances. Every strategy implements persist.Subscriber,
// so the store cannot tell them apart:
//
//   - Poller reloads collections on a cron schedule;
//   - Push forwards the backend's own change notifications;
//   - NATS reloads when another instance announces a write.
package refresh

import (
	"bytes"
	"context"

	"github.com/olegiv/newsdesk-go/internal/metrics"
	"github.com/olegiv/newsdesk-go/internal/persist"
)

// Source labels for metrics.RefreshEventsTotal.
const (
	SourcePoll = "poll"
	SourcePush = "push"
	SourceNATS = "nats"
)

// Push forwards the change notifications of a backend that has them.
type Push struct {
	sub persist.Subscriber
}

// NewPush wraps a backend subscriber.
func NewPush(sub persist.Subscriber) *Push {
	return &Push{sub: sub}
}

// Subscribe implements persist.Subscriber.
func (p *Push) Subscribe(ctx context.Context, c persist.Collection, fn func([]persist.Record)) (persist.Unsubscribe, error) {
	return p.sub.Subscribe(ctx, c, func(records []persist.Record) {
		metrics.RefreshEventsTotal.WithLabelValues(SourcePush, string(c)).Inc()
		fn(records)
	})
}

// sameRecords reports whether two loads returned identical contents.
func sameRecords(a, b []persist.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || !bytes.Equal(a[i].Data, b[i].Data) {
			return false
		}
	}
	return true
}

var (
	_ persist.Subscriber = (*Push)(nil)
	_ persist.Subscriber = (*Poller)(nil)
	_ persist.Subscriber = (*NATS)(nil)
)
