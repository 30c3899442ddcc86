// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/newsdesk-go/internal/metrics"
	"github.com/olegiv/newsdesk-go/internal/persist"
)

// Poller reloads subscribed collections at a fixed interval and calls
// back only when the contents changed.
type Poller struct {
	adapter  persist.Adapter
	cron     *cron.Cron
	interval time.Duration
	logger   *slog.Logger
}

// NewPoller creates and starts a poller. Stop it with Stop.
func NewPoller(a persist.Adapter, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Start()
	return &Poller{adapter: a, cron: c, interval: interval, logger: logger}
}

// Subscribe implements persist.Subscriber.
func (p *Poller) Subscribe(ctx context.Context, c persist.Collection, fn func([]persist.Record)) (persist.Unsubscribe, error) {
	if err := persist.CheckCollection("subscribe", c); err != nil {
		return nil, err
	}

	// Changes are measured against the contents at subscription time.
	var mu sync.Mutex
	last, err := p.adapter.LoadAll(ctx, c)
	if err != nil {
		p.logger.Warn("initial poll failed", "collection", c, "error", err)
	}

	id := p.cron.Schedule(cron.Every(p.interval), cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		records, err := p.adapter.LoadAll(ctx, c)
		if err != nil {
			p.logger.Warn("poll failed", "collection", c, "error", err)
			return
		}
		mu.Lock()
		changed := !sameRecords(last, records)
		last = records
		mu.Unlock()
		if changed {
			metrics.RefreshEventsTotal.WithLabelValues(SourcePoll, string(c)).Inc()
			fn(records)
		}
	}))

	var once sync.Once
	return func() {
		once.Do(func() { p.cron.Remove(id) })
	}, nil
}

// Stop ends polling and waits for a running poll to finish.
func (p *Poller) Stop() {
	<-p.cron.Stop().Done()
}
