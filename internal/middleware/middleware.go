// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides the HTTP middleware of the portal: admin
// session loading, view and sign-in guards, CSRF protection, security
// headers and request metrics.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/newsdesk-go/internal/guard"
	"github.com/olegiv/newsdesk-go/internal/metrics"
	"github.com/olegiv/newsdesk-go/internal/model"
	"github.com/olegiv/newsdesk-go/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeySession holds the request's guard.Session.
const ContextKeySession ContextKey = "session"

// UserLookup finds a user by id in the current snapshot.
type UserLookup interface {
	UserByID(id string) (model.User, bool)
}

// SessionFrom returns the request's guard session, Anonymous when none
// was loaded.
func SessionFrom(ctx context.Context) guard.Session {
	if s, ok := ctx.Value(ContextKeySession).(guard.Session); ok {
		return s
	}
	return guard.Anonymous()
}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s guard.Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, s)
}

// LoadSession rebuilds the guard session from the HTTP session on every
// request. The user is looked up by id, so a deleted account or a changed
// role takes effect immediately; a deleted account becomes Anonymous.
// It must run inside sm.LoadAndSave.
func LoadSession(sm *scs.SessionManager, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			s := guard.Anonymous()
			if id := sm.GetString(ctx, session.KeyUserID); id != "" {
				if u, ok := users.UserByID(id); ok {
					s = guard.AuthenticatedAs(u)
				} else {
					slog.Info("session user no longer exists", "user_id", id)
					sm.Remove(ctx, session.KeyUserID)
				}
			}
			next.ServeHTTP(w, r.WithContext(WithSession(ctx, s)))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFrom(r.Context()).Authenticated() {
			writeError(w, http.StatusUnauthorized, "auth", guard.ErrUnauthenticated.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireView lets a request through only when the session may open v.
// Anonymous requests get 401; a signed-in role without access is
// redirected to the view it is allowed to see.
func RequireView(v guard.View) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFrom(r.Context())
			if !s.Authenticated() {
				writeError(w, http.StatusUnauthorized, "auth", guard.ErrUnauthenticated.Error())
				return
			}
			if target := s.Resolve(v); target != v {
				slog.Info("view redirected", "role", s.Role(), "requested", v, "target", target)
				http.Redirect(w, r, ViewPath(target), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ViewPath returns the URL of an admin view.
func ViewPath(v guard.View) string {
	return "/admin/" + string(v)
}

// Metrics records request counts and durations by route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// writeError writes the JSON error envelope shared with the handlers.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
		"kind":    kind,
	})
}
