// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/newsdesk-go/internal/guard"
	"github.com/olegiv/newsdesk-go/internal/middleware"
	"github.com/olegiv/newsdesk-go/internal/model"
	"github.com/olegiv/newsdesk-go/internal/query"
	"github.com/olegiv/newsdesk-go/internal/session"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sessionInfo describes the signed-in state for the console.
func sessionInfo(s guard.Session) map[string]any {
	info := map[string]any{"authenticated": s.Authenticated()}
	if u, ok := s.User(); ok {
		info["user"] = u.Public()
		info["views"] = s.VisibleViews()
		info["home"] = middleware.ViewPath(guard.DefaultView)
	}
	return info
}

// Login handles POST /admin/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	s := middleware.SessionFrom(r.Context())
	if err := s.Login(r.Context(), h.store, in.Username, in.Password); err != nil {
		h.sm.Remove(r.Context(), session.KeyUserID)
		h.writeDomainError(w, r, err)
		return
	}

	// New token on privilege change prevents session fixation.
	if err := h.sm.RenewToken(r.Context()); err != nil {
		h.logger.Error("renewing session token", "error", err)
		writeJSONError(w, http.StatusInternalServerError, KindPersistence, "could not start session")
		return
	}
	u, _ := s.User()
	h.sm.Put(r.Context(), session.KeyUserID, u.ID)
	writeJSONSuccess(w, http.StatusOK, sessionInfo(s))
}

// Logout handles POST /admin/logout. Closing the console uses it too.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sm.Destroy(r.Context()); err != nil {
		h.logger.Error("destroying session", "error", err)
	}
	writeJSONSuccess(w, http.StatusOK, sessionInfo(guard.Anonymous()))
}

// Session handles GET /admin/session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionInfo(middleware.SessionFrom(r.Context())))
}

// NewsView handles GET /admin/news?q=&page=: the admin article list.
func (h *Handler) NewsView(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	search := strings.TrimSpace(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]any{
		"view":       guard.ViewNews,
		"news":       query.AdminList(h.store.Snapshot().News, search, page),
		"categories": model.Categories(),
	})
}

// AdsView handles GET /admin/ads.
func (h *Handler) AdsView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"view":   guard.ViewAds,
		"ticker": h.store.Ticker(),
		"ad":     h.store.Ad(),
	})
}

// RequestsView handles GET /admin/requests.
func (h *Handler) RequestsView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"view":     guard.ViewRequests,
		"requests": h.store.Snapshot().Requests,
	})
}

// UsersView handles GET /admin/users. Passwords are never sent.
func (h *Handler) UsersView(w http.ResponseWriter, _ *http.Request) {
	users := h.store.Snapshot().Users
	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"view":  guard.ViewUsers,
		"users": out,
	})
}

// newsInput is the article form. IsFeatured defaults to true for new
// articles; Category accepts a name or a slug.
type newsInput struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Excerpt    string `json:"excerpt"`
	Category   string `json:"category"`
	Image      string `json:"image"`
	Date       string `json:"date"`
	Author     string `json:"author"`
	IsFeatured *bool  `json:"isFeatured"`
}

func (in newsInput) item(existing *model.NewsItem) model.NewsItem {
	c, ok := model.ParseCategory(in.Category)
	if !ok {
		if bySlug, found := model.CategoryFromSlug(in.Category); found {
			c = bySlug
		}
	}
	item := model.NewsItem{
		ID:         in.ID,
		Title:      in.Title,
		Excerpt:    in.Excerpt,
		Category:   c,
		Image:      in.Image,
		Date:       in.Date,
		Author:     in.Author,
		IsFeatured: true,
	}
	if existing != nil {
		item.IsFeatured = existing.IsFeatured
	}
	if in.IsFeatured != nil {
		item.IsFeatured = *in.IsFeatured
	}
	return item
}

// SaveNews handles POST /admin/news: publish, or update when the id exists.
func (h *Handler) SaveNews(w http.ResponseWriter, r *http.Request) {
	var in newsInput
	if !decodeJSON(w, r, &in) {
		return
	}
	var existing *model.NewsItem
	if n, ok := h.store.NewsByID(in.ID); ok && in.ID != "" {
		existing = &n
	}
	h.saveNews(w, r, in.item(existing), existing == nil)
}

// UpdateNews handles PUT|POST /admin/news/{id}.
func (h *Handler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	current, ok := h.store.NewsByID(id)
	if !ok {
		notFound(w, "news item")
		return
	}
	var in newsInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = id
	h.saveNews(w, r, in.item(&current), false)
}

func (h *Handler) saveNews(w http.ResponseWriter, r *http.Request, item model.NewsItem, created bool) {
	saved, err := h.store.SaveNews(r.Context(), middleware.SessionFrom(r.Context()), item)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSONSuccess(w, status, map[string]any{"item": saved})
}

// DeleteNews handles DELETE /admin/news/{id}.
func (h *Handler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteNews(r.Context(), middleware.SessionFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSONSuccess(w, http.StatusOK, nil)
}

// SetTicker handles PUT /admin/ticker.
func (h *Handler) SetTicker(w http.ResponseWriter, r *http.Request) {
	var in model.Ticker
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err := h.store.SetTicker(r.Context(), middleware.SessionFrom(r.Context()), in.Text)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSONSuccess(w, http.StatusOK, map[string]any{"ticker": t})
}

// SetAd handles PUT /admin/ad.
func (h *Handler) SetAd(w http.ResponseWriter, r *http.Request) {
	var in model.AdConfig
	if !decodeJSON(w, r, &in) {
		return
	}
	ad, err := h.store.SetAd(r.Context(), middleware.SessionFrom(r.Context()), in)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSONSuccess(w, http.StatusOK, map[string]any{"ad": ad})
}

// SetRequestStatus handles PUT /admin/requests/{id}/status.
func (h *Handler) SetRequestStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status model.RequestStatus `json:"status"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	h.setRequestStatus(w, r, in.Status)
}

// ApproveRequest handles POST /admin/requests/{id}/approve.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.setRequestStatus(w, r, model.StatusApproved)
}

// IgnoreRequest handles POST /admin/requests/{id}/ignore.
func (h *Handler) IgnoreRequest(w http.ResponseWriter, r *http.Request) {
	h.setRequestStatus(w, r, model.StatusIgnored)
}

func (h *Handler) setRequestStatus(w http.ResponseWriter, r *http.Request, status model.RequestStatus) {
	req, err := h.store.SetRequestStatus(r.Context(), middleware.SessionFrom(r.Context()), chi.URLParam(r, "id"), status)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSONSuccess(w, http.StatusOK, map[string]any{"request": req})
}

// DeleteRequest handles DELETE /admin/requests/{id}.
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteRequest(r.Context(), middleware.SessionFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSONSuccess(w, http.StatusOK, nil)
}

// AddUser handles POST /admin/users.
func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	var in model.User
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := h.store.AddUser(r.Context(), middleware.SessionFrom(r.Context()), in)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSONSuccess(w, http.StatusCreated, map[string]any{"user": u.Public()})
}

// DeleteUser handles DELETE /admin/users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteUser(r.Context(), middleware.SessionFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSONSuccess(w, http.StatusOK, nil)
}
