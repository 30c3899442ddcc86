// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/olegiv/newsdesk-go/internal/metrics"
	"github.com/olegiv/newsdesk-go/internal/persist"
)

// Announcement is published on the NATS subject after every confirmed write.
type Announcement struct {
	Collection persist.Collection `json:"collection"`
	Origin     string             `json:"origin"`
	Timestamp  time.Time          `json:"timestamp"`
}

// NATS lets instances sharing a backend tell each other about writes. It
// is both the store's Notifier (Announce) and a persist.Subscriber that
// reloads a collection when another instance announces a change to it.
type NATS struct {
	conn    *nats.Conn
	owned   bool
	subject string
	origin  string
	adapter persist.Adapter
	logger  *slog.Logger
}

// ConnectNATS dials url and returns a broadcaster for subject.
func ConnectNATS(url, subject string, a persist.Adapter, logger *slog.Logger) (*NATS, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("newsdesk"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("reconnected to NATS", "url", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS connection lost", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	n := NewNATS(nc, subject, a, logger)
	n.owned = true
	return n, nil
}

// NewNATS uses an existing connection, which the caller keeps owning.
func NewNATS(nc *nats.Conn, subject string, a persist.Adapter, logger *slog.Logger) *NATS {
	if logger == nil {
		logger = slog.Default()
	}
	return &NATS{
		conn:    nc,
		subject: subject,
		origin:  uuid.NewString(),
		adapter: a,
		logger:  logger,
	}
}

// Origin identifies this instance in announcements.
func (n *NATS) Origin() string { return n.origin }

// Announce publishes a change of collection c. Failures are logged; the
// write itself already succeeded.
func (n *NATS) Announce(_ context.Context, c persist.Collection) {
	data, err := json.Marshal(Announcement{Collection: c, Origin: n.origin, Timestamp: time.Now().UTC()})
	if err != nil {
		n.logger.Error("encoding announcement", "error", err)
		return
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		metrics.NATSMessagesPublished.WithLabelValues("error").Inc()
		n.logger.Warn("publishing announcement failed", "collection", c, "error", err)
		return
	}
	metrics.NATSMessagesPublished.WithLabelValues("ok").Inc()
}

// Subscribe implements persist.Subscriber. fn receives the reloaded
// collection after each announcement from another instance.
func (n *NATS) Subscribe(ctx context.Context, c persist.Collection, fn func([]persist.Record)) (persist.Unsubscribe, error) {
	if err := persist.CheckCollection("subscribe", c); err != nil {
		return nil, err
	}

	sub, err := n.conn.Subscribe(n.subject, func(msg *nats.Msg) {
		if !n.wants(msg.Data, c) || ctx.Err() != nil {
			return
		}
		metrics.NATSMessagesReceived.WithLabelValues(string(c)).Inc()
		records, err := n.adapter.LoadAll(ctx, c)
		if err != nil {
			n.logger.Warn("reload after announcement failed", "collection", c, "error", err)
			return
		}
		metrics.RefreshEventsTotal.WithLabelValues(SourceNATS, string(c)).Inc()
		fn(records)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", n.subject, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() { _ = sub.Unsubscribe() })
	}, nil
}

// wants reports whether an announcement concerns collection c and came
// from another instance.
func (n *NATS) wants(data []byte, c persist.Collection) bool {
	var a Announcement
	if err := json.Unmarshal(data, &a); err != nil {
		n.logger.Debug("ignoring malformed announcement", "error", err)
		return false
	}
	return a.Collection == c && a.Origin != n.origin
}

// Close drains the connection when NATS owns it.
func (n *NATS) Close() error {
	if !n.owned {
		return nil
	}
	return n.conn.Drain()
}
