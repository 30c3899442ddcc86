// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"
)

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	snap := h.store.Snapshot()
	f := h.store.Formatter()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    h.now().Sub(h.started).Round(time.Second).String(),
		"version":   h.version,
		"news":      len(snap.News),
		"locale":    f.Tag().String(),
		"timezone":  f.Location().String(),
		"summaries": h.summary.Enabled(),
	})
}
