// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/olegiv/newsdesk-go/internal/auth"
	"github.com/olegiv/newsdesk-go/internal/domain"
	"github.com/olegiv/newsdesk-go/internal/guard"
	"github.com/olegiv/newsdesk-go/internal/inquiry"
	"github.com/olegiv/newsdesk-go/internal/model"
	"github.com/olegiv/newsdesk-go/internal/persist"
)

// Error kinds in JSON error responses.
const (
	KindValidation    = "validation"
	KindAuth          = "auth"
	KindForbidden     = "forbidden"
	KindNotFound      = "not_found"
	KindPersistence   = "persistence"
	KindConfiguration = "configuration"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

const (
	msgPersistence   = "The change could not be saved. Please try again."
	msgConfiguration = "The backing store refused access. Check its credentials and access rules."
)

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes the error envelope.
func writeJSONError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
		"kind":    kind,
	})
}

// writeJSONSuccess writes data with "success": true added.
func writeJSONSuccess(w http.ResponseWriter, status int, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	data["success"] = true
	writeJSON(w, status, data)
}

// writeDomainError maps an error from the domain layer to a response.
// Persistence failures distinguish operator-fixable permission problems
// from transient ones.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"error":   verr.Error(),
			"kind":    KindValidation,
			"fields":  verr.Fields,
		})
	case errors.Is(err, domain.ErrDuplicateUsername), errors.Is(err, inquiry.ErrInvalidTransition):
		writeJSONError(w, http.StatusUnprocessableEntity, KindValidation, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, guard.ErrUnauthenticated):
		writeJSONError(w, http.StatusUnauthorized, KindAuth, err.Error())
	case errors.Is(err, guard.ErrForbidden), errors.Is(err, domain.ErrSelfDelete), errors.Is(err, domain.ErrLastAdmin):
		writeJSONError(w, http.StatusForbidden, KindForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, KindNotFound, err.Error())
	case persist.IsPermissionDenied(err):
		writeJSONError(w, http.StatusServiceUnavailable, KindConfiguration, msgConfiguration)
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusBadGateway, KindPersistence, msgPersistence)
	}
}

// decodeJSON reads a JSON body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		slog.Debug("invalid JSON body", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusBadRequest, KindValidation, "invalid JSON body")
		return false
	}
	return true
}

func notFound(w http.ResponseWriter, what string) {
	writeJSONError(w, http.StatusNotFound, KindNotFound, what+" not found")
}
