// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/newsdesk-go/internal/inquiry"
	"github.com/olegiv/newsdesk-go/internal/model"
	"github.com/olegiv/newsdesk-go/internal/query"
)

// newsPage is the reader's news list response.
type newsPage struct {
	query.Result
	Category model.Category `json:"category,omitempty"`
	Search   string         `json:"q,omitempty"`
}

// ListNews handles GET /api/news?category=&q=&page=.
func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	b := query.BrowseFromValues(r.URL.Query())
	res := query.Run(h.store.Snapshot().News, b.Params(h.pageSize))
	writeJSON(w, http.StatusOK, newsPage{Result: res, Category: b.Category(), Search: b.Search()})
}

// RecentNews handles GET /api/news/recent.
func (h *Handler) RecentNews(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"items": query.Recent(h.store.Snapshot().News, h.recent),
	})
}

// GetNews handles GET /api/news/{id}.
func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	item, ok := h.store.NewsByID(chi.URLParam(r, "id"))
	if !ok {
		notFound(w, "news item")
		return
	}
	excerptHTML, err := h.render.ExcerptHTML(item.Excerpt)
	if err != nil {
		h.logger.Warn("excerpt rendering failed", "id", item.ID, "error", err)
		excerptHTML = ""
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"item":        item,
		"excerptHtml": excerptHTML,
		"notice":      DetailNotice,
		"slug":        item.Category.Slug(),
	})
}

// SummarizeNews handles GET /api/news/{id}/summary. It always answers 200
// for a known article; a failed summary carries the excerpt instead.
func (h *Handler) SummarizeNews(w http.ResponseWriter, r *http.Request) {
	item, ok := h.store.NewsByID(chi.URLParam(r, "id"))
	if !ok {
		notFound(w, "news item")
		return
	}
	writeJSON(w, http.StatusOK, h.summary.Summarize(r.Context(), item.Title, item.Excerpt))
}

type categoryInfo struct {
	Name model.Category `json:"name"`
	Slug string         `json:"slug"`
}

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	cats := model.Categories()
	out := make([]categoryInfo, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryInfo{Name: c, Slug: c.Slug()})
	}
	writeJSON(w, http.StatusOK, out)
}

// CategoryNews handles GET /api/category/{slug}?q=&page=.
func (h *Handler) CategoryNews(w http.ResponseWriter, r *http.Request) {
	c, ok := model.CategoryFromSlug(chi.URLParam(r, "slug"))
	if !ok {
		notFound(w, "category")
		return
	}
	b := query.BrowseFromValues(r.URL.Query())
	page := b.Page()
	b.SetCategory(c)
	b.SetPage(page)
	res := query.Run(h.store.Snapshot().News, b.Params(h.pageSize))
	writeJSON(w, http.StatusOK, newsPage{Result: res, Category: c, Search: b.Search()})
}

// GetTicker handles GET /api/ticker.
func (h *Handler) GetTicker(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Ticker())
}

// GetAd handles GET /api/ad.
func (h *Handler) GetAd(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Ad())
}

// Today handles GET /api/today: the header date line.
func (h *Handler) Today(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"date": h.store.Formatter().Today(h.now()),
	})
}

// SubmitRequest handles POST /api/requests.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var sub inquiry.Submission
	if !decodeJSON(w, r, &sub) {
		return
	}
	req, err := h.store.SubmitRequest(r.Context(), sub)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSONSuccess(w, http.StatusCreated, map[string]any{
		"request": req,
		"message": inquiry.Confirmation,
	})
}
