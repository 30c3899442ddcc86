// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging builds the service logger. Records at WARN and above are
// also counted in Prometheus by category so operators can alert on them.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/olegiv/newsdesk-go/internal/metrics"
)

// Log categories, taken from a "category" attribute or inferred from the
// message.
const (
	CategoryAuth        = "auth"
	CategoryPersistence = "persistence"
	CategoryContent     = "content"
	CategoryUser        = "user"
	CategoryRequest     = "request"
	CategorySummary     = "summary"
	CategoryRefresh     = "refresh"
	CategoryConfig      = "config"
	CategorySystem      = "system"
)

// MetricsHandler is a slog.Handler that wraps another handler and counts
// records at or above its threshold.
type MetricsHandler struct {
	inner   slog.Handler
	counter *prometheus.CounterVec
	level   slog.Level
}

// NewMetricsHandler wraps inner, counting WARN and above in
// metrics.LogRecordsTotal.
func NewMetricsHandler(inner slog.Handler) *MetricsHandler {
	return &MetricsHandler{inner: inner, counter: metrics.LogRecordsTotal, level: slog.LevelWarn}
}

// Enabled implements slog.Handler.
func (h *MetricsHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *MetricsHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.counter.WithLabelValues(levelLabel(r.Level), extractCategory(r)).Inc()
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *MetricsHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MetricsHandler{inner: h.inner.WithAttrs(attrs), counter: h.counter, level: h.level}
}

// WithGroup implements slog.Handler.
func (h *MetricsHandler) WithGroup(name string) slog.Handler {
	return &MetricsHandler{inner: h.inner.WithGroup(name), counter: h.counter, level: h.level}
}

func levelLabel(level slog.Level) string {
	if level >= slog.LevelError {
		return "error"
	}
	return "warn"
}

// extractCategory prefers an explicit "category" attribute and otherwise
// guesses from the message.
func extractCategory(r slog.Record) string {
	var category string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})
	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") || strings.Contains(msg, "password"):
		return CategoryAuth
	case strings.Contains(msg, "persist") || strings.Contains(msg, "store") || strings.Contains(msg, "collection"):
		return CategoryPersistence
	case strings.Contains(msg, "news") || strings.Contains(msg, "ticker") || strings.Contains(msg, "ad "):
		return CategoryContent
	case strings.Contains(msg, "user"):
		return CategoryUser
	case strings.Contains(msg, "request"):
		return CategoryRequest
	case strings.Contains(msg, "summar"):
		return CategorySummary
	case strings.Contains(msg, "refresh") || strings.Contains(msg, "subscri") || strings.Contains(msg, "nats"):
		return CategoryRefresh
	case strings.Contains(msg, "config") || strings.Contains(msg, "setting"):
		return CategoryConfig
	default:
		return CategorySystem
	}
}

// ParseLevel maps a config string to a slog level. Unknown values mean INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger writing to w at level, wrapped in a
// MetricsHandler.
func New(w io.Writer, level slog.Level) *slog.Logger {
	text := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewMetricsHandler(text))
}
