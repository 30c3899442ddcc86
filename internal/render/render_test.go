// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	r := New()
	tests := []struct {
		in, want string
	}{
		{"  Skenderaj fiton  ", "Skenderaj fiton"},
		{"<b>Lajm</b> i fundit", "Lajm i fundit"},
		{`<script>alert(1)</script>Titulli`, "Titulli"},
		{"Sport & Kulturë", "Sport & Kulturë"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := r.Text(tt.in); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestURL(t *testing.T) {
	r := New()
	tests := []struct {
		in, want string
	}{
		{"https://example.com/a.jpg", "https://example.com/a.jpg"},
		{" http://example.com ", "http://example.com"},
		{"javascript:alert(1)", ""},
		{"data:image/png;base64,AAA", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := r.URL(tt.in); got != tt.want {
			t.Errorf("URL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExcerptHTML(t *testing.T) {
	r := New()

	got, err := r.ExcerptHTML("Rreshti i parë\nrreshti i dytë\n\n**Paragraf** i ri")
	if err != nil {
		t.Fatalf("ExcerptHTML: %v", err)
	}
	for _, want := range []string{"<p>Rreshti i parë<br>", "<strong>Paragraf</strong>"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}

	got, err = r.ExcerptHTML(`Klikoni <a href="javascript:alert(1)" onclick="x()">këtu</a><script>bad()</script>`)
	if err != nil {
		t.Fatalf("ExcerptHTML: %v", err)
	}
	for _, banned := range []string{"<script", "javascript:", "onclick"} {
		if strings.Contains(got, banned) {
			t.Errorf("output %q contains %q", got, banned)
		}
	}
}
