// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// NewsItem is a published article.
// Date is a display label ("Sapo u publikua", "15 tetor, 14:30"), not a
// sortable timestamp; ordering comes from the collection itself.
type NewsItem struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Excerpt    string   `json:"excerpt"`
	Category   Category `json:"category"`
	Image      string   `json:"image"`
	Date       string   `json:"date"`
	Author     string   `json:"author"`
	IsFeatured bool     `json:"isFeatured,omitempty"`
}

// Validate checks the fields the admin form requires.
func (n NewsItem) Validate() error {
	v := newValidator("news item")
	v.required("id", n.ID)
	v.required("title", n.Title)
	v.required("excerpt", n.Excerpt)
	if !n.Category.Valid() {
		v.add("category", "must be one of the known categories")
	}
	return v.err()
}

// Key returns the record's persistence key.
func (n NewsItem) Key() string { return n.ID }
