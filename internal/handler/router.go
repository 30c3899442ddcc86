// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olegiv/newsdesk-go/internal/guard"
	mw "github.com/olegiv/newsdesk-go/internal/middleware"
)

// RequestTimeout bounds every request, including the summary call.
const RequestTimeout = 30 * time.Second

// RouterConfig holds the middleware settings of the router.
type RouterConfig struct {
	Security mw.SecurityHeadersConfig
	CSRF     mw.CSRFConfig
	Metrics  bool
}

// Router builds the HTTP routes.
func (h *Handler) Router(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.Metrics)
	r.Use(mw.SecurityHeaders(cfg.Security))
	r.Use(chimw.Timeout(RequestTimeout))

	r.Get("/healthz", h.Health)
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/news", h.ListNews)
		r.Get("/news/recent", h.RecentNews)
		r.Get("/news/{id}", h.GetNews)
		r.Get("/news/{id}/summary", h.SummarizeNews)
		r.Get("/categories", h.ListCategories)
		r.Get("/category/{slug}", h.CategoryNews)
		r.Get("/ticker", h.GetTicker)
		r.Get("/ad", h.GetAd)
		r.Get("/today", h.Today)
		r.Post("/requests", h.SubmitRequest)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.sm.LoadAndSave)
		r.Use(mw.LoadSession(h.sm, h.store))
		r.Use(mw.CSRF(cfg.CSRF))

		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/session", h.Session)

		r.With(mw.RequireView(guard.ViewNews)).Get("/news", h.NewsView)
		r.With(mw.RequireView(guard.ViewAds)).Get("/ads", h.AdsView)
		r.With(mw.RequireView(guard.ViewRequests)).Get("/requests", h.RequestsView)
		r.With(mw.RequireView(guard.ViewUsers)).Get("/users", h.UsersView)

		// Mutations check capabilities in the domain store.
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth)

			r.Post("/news", h.SaveNews)
			r.Put("/news/{id}", h.UpdateNews)
			r.Post("/news/{id}", h.UpdateNews)
			r.Delete("/news/{id}", h.DeleteNews)

			r.Put("/ticker", h.SetTicker)
			r.Put("/ad", h.SetAd)

			r.Put("/requests/{id}/status", h.SetRequestStatus)
			r.Post("/requests/{id}/approve", h.ApproveRequest)
			r.Post("/requests/{id}/ignore", h.IgnoreRequest)
			r.Delete("/requests/{id}", h.DeleteRequest)

			r.Post("/users", h.AddUser)
			r.Delete("/users/{id}", h.DeleteUser)
		})
	})

	return r
}
