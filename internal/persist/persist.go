// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package persist defines the storage contract shared by every backend:
// named collections of JSON documents addressed by string keys.
package persist

import (
	"context"
	"encoding/json"
)

// Collection names a set of documents of one entity type.
type Collection string

// Portal collections. The names are used verbatim by every backend.
const (
	News     Collection = "news"
	Ticker   Collection = "ticker"
	Ads      Collection = "ads"
	Requests Collection = "requests"
	Users    Collection = "users"
)

// Collections lists every collection in load order.
func Collections() []Collection {
	return []Collection{News, Ticker, Ads, Requests, Users}
}

// Valid reports whether c is a portal collection.
func (c Collection) Valid() bool {
	switch c {
	case News, Ticker, Ads, Requests, Users:
		return true
	}
	return false
}

// NewestFirst reports whether LoadAll returns the collection in reverse
// insertion order. News and requests are shown newest first; users keep
// insertion order.
func (c Collection) NewestFirst() bool {
	return c == News || c == Requests
}

// Record is a stored document.
type Record struct {
	Key  string          `json:"key"`
	Data json.RawMessage `json:"data"`
}

// Adapter is the storage contract.
//
// LoadAll returns records ordered by the backend's ordering token, which is
// assigned on first insert and preserved on overwrite. Delete of a missing
// key succeeds.
type Adapter interface {
	LoadAll(ctx context.Context, c Collection) ([]Record, error)
	LoadOne(ctx context.Context, c Collection, key string) (Record, bool, error)
	Save(ctx context.Context, c Collection, key string, data []byte) error
	Delete(ctx context.Context, c Collection, key string) error
	Close() error
}

// Unsubscribe stops a subscription. It is safe to call more than once.
type Unsubscribe func()

// Subscriber is implemented by backends that push changes. The callback
// receives the full, ordered contents of the collection after each change.
type Subscriber interface {
	Subscribe(ctx context.Context, c Collection, fn func([]Record)) (Unsubscribe, error)
}
