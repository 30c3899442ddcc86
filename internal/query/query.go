// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package query derives filtered, searched and paginated views over a
// news snapshot. Every function here is pure: it never modifies its input
// and holds no state beyond what the caller passes in.
package query

import (
	"github.com/olegiv/newsdesk-go/internal/locale"
	"github.com/olegiv/newsdesk-go/internal/model"
)

// Defaults used by the reader and admin surfaces.
const (
	DefaultPageSize = 6
	DefaultRecent   = 5
	AdminListLimit  = 15
)

// Params selects a page of news. A zero Category means no category
// filter; an empty Search matches every title. Page is one-indexed;
// values below 1 are treated as 1.
type Params struct {
	Category model.Category
	Search   string
	Page     int
	PageSize int
}

// Result is one page of matches.
type Result struct {
	Items      []model.NewsItem `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
	TotalItems int              `json:"totalItems"`
	HasPrev    bool             `json:"hasPrev"`
	HasNext    bool             `json:"hasNext"`
}

// Matches reports whether item passes the category and search predicates.
func (p Params) Matches(item model.NewsItem) bool {
	if p.Category != "" && item.Category != p.Category {
		return false
	}
	return locale.ContainsFold(item.Title, p.Search)
}

// Filter returns the items matching p in their original relative order.
func Filter(items []model.NewsItem, p Params) []model.NewsItem {
	out := make([]model.NewsItem, 0, len(items))
	for _, item := range items {
		if p.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}

// Run filters items and cuts out the requested page. A page past the last
// one yields no items and no error.
func Run(items []model.NewsItem, p Params) Result {
	size := p.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	page := p.Page
	if page < 1 {
		page = 1
	}

	matches := Filter(items, p)
	total := len(matches)
	totalPages := (total + size - 1) / size

	start := (page - 1) * size
	var pageItems []model.NewsItem
	if start < total {
		end := min(start+size, total)
		pageItems = matches[start:end]
	} else {
		pageItems = []model.NewsItem{}
	}

	return Result{
		Items:      pageItems,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		TotalItems: total,
		HasPrev:    page > 1 && totalPages > 0,
		HasNext:    page < totalPages,
	}
}

// Recent returns the first n items in stored order, independent of any
// filter. It feeds the sidebar.
func Recent(items []model.NewsItem, n int) []model.NewsItem {
	if n < 0 {
		n = 0
	}
	n = min(n, len(items))
	out := make([]model.NewsItem, n)
	copy(out, items[:n])
	return out
}

// AdminList returns a page of the admin news list: AdminListLimit items
// per page, optionally narrowed to titles containing search.
func AdminList(items []model.NewsItem, search string, page int) Result {
	return Run(items, Params{Search: search, Page: page, PageSize: AdminListLimit})
}
