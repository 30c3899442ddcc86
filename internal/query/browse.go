// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/olegiv/newsdesk-go/internal/model"
)

// Browse is a reader's browsing position: category, search term and page.
// Changing the category or the search term returns to page 1.
type Browse struct {
	category model.Category
	search   string
	page     int
}

// NewBrowse starts at page 1 with no filter.
func NewBrowse() Browse {
	return Browse{page: 1}
}

// BrowseFromValues restores a position from URL query values
// (category, q, page). The category may be given by name or slug; an
// unknown one is ignored.
func BrowseFromValues(v url.Values) Browse {
	b := NewBrowse()
	name := v.Get("category")
	if c, ok := model.ParseCategory(name); ok {
		b.category = c
	} else if c, ok := model.CategoryFromSlug(name); ok {
		b.category = c
	}
	b.search = strings.TrimSpace(v.Get("q"))
	if p, err := strconv.Atoi(v.Get("page")); err == nil && p > 1 {
		b.page = p
	}
	return b
}

// Category returns the active category filter.
func (b Browse) Category() model.Category { return b.category }

// Search returns the active search term.
func (b Browse) Search() string { return b.search }

// Page returns the one-indexed page.
func (b Browse) Page() int {
	if b.page < 1 {
		return 1
	}
	return b.page
}

// SetCategory selects c (or clears the filter for "") and returns to page 1.
func (b *Browse) SetCategory(c model.Category) {
	if c != b.category {
		b.category = c
		b.page = 1
	}
}

// SetSearch changes the search term and returns to page 1.
func (b *Browse) SetSearch(s string) {
	if s != b.search {
		b.search = s
		b.page = 1
	}
}

// SetPage moves to page p; values below 1 become 1.
func (b *Browse) SetPage(p int) {
	b.page = max(p, 1)
}

// Params returns query parameters for the position.
func (b Browse) Params(pageSize int) Params {
	return Params{Category: b.category, Search: b.search, Page: b.Page(), PageSize: pageSize}
}

// Values encodes the position for a URL, omitting defaults.
func (b Browse) Values() url.Values {
	v := url.Values{}
	if b.category != "" {
		v.Set("category", string(b.category))
	}
	if b.search != "" {
		v.Set("q", b.search)
	}
	if b.Page() > 1 {
		v.Set("page", strconv.Itoa(b.Page()))
	}
	return v
}
