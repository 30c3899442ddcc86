// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler serves the portal's JSON API: the public reader
// surface under /api and the admin console under /admin.
package handler

import (
	"log/slog"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/newsdesk-go/internal/domain"
	"github.com/olegiv/newsdesk-go/internal/query"
	"github.com/olegiv/newsdesk-go/internal/render"
	"github.com/olegiv/newsdesk-go/internal/summary"
	"github.com/olegiv/newsdesk-go/internal/version"
)

// DetailNotice follows the excerpt on the article page.
const DetailNotice = "Lajmi i plotë vjen së shpejti me të gjitha detajet nga terreni. Qëndroni me Skenderaj Live."

// Deps are the collaborators of the handlers.
type Deps struct {
	Store    *domain.Store
	Sessions *scs.SessionManager
	Summary  *summary.Service
	Renderer *render.Renderer
	Version  version.Info

	PageSize   int
	RecentSize int
	Logger     *slog.Logger
	Now        func() time.Time
}

// Handler holds the state shared by all routes.
type Handler struct {
	store    *domain.Store
	sm       *scs.SessionManager
	summary  *summary.Service
	render   *render.Renderer
	version  version.Info
	pageSize int
	recent   int
	logger   *slog.Logger
	now      func() time.Time
	started  time.Time
}

// New creates a Handler, filling defaults for optional dependencies.
func New(d Deps) *Handler {
	h := &Handler{
		store:    d.Store,
		sm:       d.Sessions,
		summary:  d.Summary,
		render:   d.Renderer,
		version:  d.Version,
		pageSize: d.PageSize,
		recent:   d.RecentSize,
		logger:   d.Logger,
		now:      d.Now,
	}
	if h.summary == nil {
		h.summary = summary.New(nil, nil, summary.Options{})
	}
	if h.render == nil {
		h.render = render.New()
	}
	if h.pageSize < 1 {
		h.pageSize = query.DefaultPageSize
	}
	if h.recent < 1 {
		h.recent = query.DefaultRecent
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.now == nil {
		h.now = time.Now
	}
	h.started = h.now()
	return h
}
