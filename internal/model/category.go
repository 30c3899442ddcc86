// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Category is a news section. The set is fixed: both the reader filter and
// the admin form only accept these values.
type Category string

// News categories.
const (
	CategoryKomuna    Category = "Komuna"
	CategoryPolitics  Category = "Politikë"
	CategorySport     Category = "Sport"
	CategoryShowbiz   Category = "Showbiz"
	CategoryEconomy   Category = "Ekonomi"
	CategoryWorld     Category = "Botë"
	CategoryChronicle Category = "Kronikë"
	CategoryTech      Category = "Tech"
	CategoryDrenica   Category = "Drenica"
)

var categories = []Category{
	CategoryKomuna,
	CategoryPolitics,
	CategorySport,
	CategoryShowbiz,
	CategoryEconomy,
	CategoryWorld,
	CategoryChronicle,
	CategoryTech,
	CategoryDrenica,
}

// Categories returns the fixed category list in navigation order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// Slug returns an ASCII, lowercase form suitable for URLs ("Politikë" -> "politike").
func (c Category) Slug() string {
	return strings.ToLower(unidecode.Unidecode(string(c)))
}

// ParseCategory validates a category name exactly as stored.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, c.Valid()
}

// CategoryFromSlug resolves a URL slug back to its category.
func CategoryFromSlug(slug string) (Category, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, c := range categories {
		if c.Slug() == slug {
			return c, true
		}
	}
	return "", false
}
