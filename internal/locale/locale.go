// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package locale produces the human-readable date labels shown on the
// portal and folds text for case-insensitive matching.
package locale

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTag is the portal's locale.
const DefaultTag = "sq-AL"

type dictionary struct {
	months        [12]string
	weekdays      [7]string // Sunday first
	justPublished string
	updated       string
}

var albanian = dictionary{
	months: [12]string{
		"janar", "shkurt", "mars", "prill", "maj", "qershor",
		"korrik", "gusht", "shtator", "tetor", "nëntor", "dhjetor",
	},
	weekdays: [7]string{
		"e diel", "e hënë", "e martë", "e mërkurë", "e enjte", "e premte", "e shtunë",
	},
	justPublished: "Sapo u publikua",
	updated:       "Përditësuar",
}

var english = dictionary{
	months: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	weekdays: [7]string{
		"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
	},
	justPublished: "Just published",
	updated:       "Updated",
}

// Formatter renders instants in one locale and time zone.
type Formatter struct {
	tag  language.Tag
	loc  *time.Location
	dict dictionary
}

// New returns a formatter for the BCP 47 tag and IANA zone name. Tags
// other than Albanian fall back to English wording.
func New(tag, zone string) (*Formatter, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", tag, err)
	}
	loc := time.UTC
	if zone != "" {
		if loc, err = time.LoadLocation(zone); err != nil {
			return nil, fmt.Errorf("loading time zone %q: %w", zone, err)
		}
	}

	dict := english
	if base, _ := t.Base(); base.String() == "sq" {
		dict = albanian
	}
	return &Formatter{tag: t, loc: loc, dict: dict}, nil
}

// MustNew is New for known-good arguments.
func MustNew(tag, zone string) *Formatter {
	f, err := New(tag, zone)
	if err != nil {
		panic(err)
	}
	return f
}

// Tag returns the formatter's language tag.
func (f *Formatter) Tag() language.Tag { return f.tag }

// Location returns the formatter's time zone.
func (f *Formatter) Location() *time.Location { return f.loc }

// Stamp formats an instant as day, long month and time: "15 tetor, 14:30".
func (f *Formatter) Stamp(t time.Time) string {
	t = t.In(f.loc)
	return fmt.Sprintf("%d %s, %02d:%02d", t.Day(), f.dict.months[t.Month()-1], t.Hour(), t.Minute())
}

// Today formats the header date: "e mërkurë, 15 tetor".
func (f *Formatter) Today(t time.Time) string {
	t = t.In(f.loc)
	return fmt.Sprintf("%s, %d %s", f.dict.weekdays[t.Weekday()], t.Day(), f.dict.months[t.Month()-1])
}

// JustPublished is the date label given to a newly published article.
func (f *Formatter) JustPublished() string {
	return f.dict.justPublished
}

// Updated relabels an edited article: "Përditësuar: 15 tetor, 14:30".
func (f *Formatter) Updated(t time.Time) string {
	return f.dict.updated + ": " + f.Stamp(t)
}

// Fold returns s with Unicode case folding applied.
func Fold(s string) string {
	// A Caser holds state and must not be shared.
	return cases.Fold().String(s)
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
// An empty needle matches everything.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(Fold(haystack), Fold(needle))
}
