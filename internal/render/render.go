// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render cleans text entered in the admin console and turns
// article excerpts into safe HTML for the reader view.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	ugc    *bluemonday.Policy
	strict *bluemonday.Policy
}

// New creates a Renderer. Single newlines in excerpts become line breaks.
func New() *Renderer {
	ugc := bluemonday.UGCPolicy()
	ugc.RequireNoFollowOnLinks(true)
	ugc.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{
		md:     goldmark.New(goldmark.WithRendererOptions(goldhtml.WithHardWraps())),
		ugc:    ugc,
		strict: bluemonday.StrictPolicy(),
	}
}

// Text strips every tag from s and trims surrounding space. Entities are
// decoded again so "Sport & Kulturë" is stored as typed.
func (r *Renderer) Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(r.strict.Sanitize(s)))
}

// URL returns s when it is an http(s) URL or empty, and "" otherwise.
func (r *Renderer) URL(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	if s == "" || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
		return s
	}
	return ""
}

// ExcerptHTML renders Markdown-ish excerpt text to sanitized HTML.
func (r *Renderer) ExcerptHTML(excerpt string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(excerpt), &buf); err != nil {
		return "", fmt.Errorf("rendering excerpt: %w", err)
	}
	return r.ugc.Sanitize(buf.String()), nil
}
