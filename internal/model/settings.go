// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// SingletonKey is the persistence key of the ticker and ad documents.
const SingletonKey = "main"

// Default singleton values, used until an admin replaces them.
const (
	DefaultTickerText = "Mirësevini në Skenderaj Live - Zëri juaj i besueshëm në Drenicë!"
	DefaultAdTitle    = "Hapësirë për Reklamë"
)

// Ticker is the scrolling banner text.
type Ticker struct {
	Text string `json:"text"`
}

// DefaultTicker returns the ticker shown before an admin sets one.
func DefaultTicker() Ticker {
	return Ticker{Text: DefaultTickerText}
}

// Validate rejects an empty banner.
func (t Ticker) Validate() error {
	v := newValidator("ticker")
	v.required("text", t.Text)
	return v.err()
}

// Key returns the record's persistence key.
func (Ticker) Key() string { return SingletonKey }

// AdConfig is the single advertising slot on the front page.
// An empty ImageURL renders the placeholder title instead of a banner.
type AdConfig struct {
	ImageURL string `json:"imageUrl"`
	LinkURL  string `json:"linkUrl"`
	Title    string `json:"title"`
}

// DefaultAd returns the placeholder ad.
func DefaultAd() AdConfig {
	return AdConfig{Title: DefaultAdTitle}
}

// Validate requires a title, which doubles as the placeholder text.
func (a AdConfig) Validate() error {
	v := newValidator("ad config")
	v.required("title", a.Title)
	return v.err()
}

// Key returns the record's persistence key.
func (AdConfig) Key() string { return SingletonKey }
