// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Document is an entity that can live in a collection.
type Document interface {
	Key() string
	Validate() error
}

// Encode serializes a document after validating it.
func Encode[T Document](doc T) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// Decode turns a stored record into a typed document. Documents that do
// not parse, fail validation, or disagree with their key are rejected with
// ErrMalformed.
func Decode[T Document](rec Record) (T, error) {
	var doc T
	if err := json.Unmarshal(rec.Data, &doc); err != nil {
		return doc, fmt.Errorf("%w: key %q: %v", ErrMalformed, rec.Key, err)
	}
	if err := doc.Validate(); err != nil {
		return doc, fmt.Errorf("%w: key %q: %v", ErrMalformed, rec.Key, err)
	}
	if doc.Key() != rec.Key {
		return doc, fmt.Errorf("%w: key %q holds document %q", ErrMalformed, rec.Key, doc.Key())
	}
	return doc, nil
}

// DecodeAll decodes records in order, skipping malformed ones with a warning
// so one bad document does not hide the rest of the collection.
func DecodeAll[T Document](c Collection, records []Record) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		doc, err := Decode[T](rec)
		if err != nil {
			slog.Warn("skipping malformed document", "collection", c, "key", rec.Key, "error", err)
			continue
		}
		out = append(out, doc)
	}
	return out
}

// Typed binds a collection to a document type.
type Typed[T Document] struct {
	adapter    Adapter
	collection Collection
}

// NewTyped returns a typed view of collection c.
func NewTyped[T Document](a Adapter, c Collection) *Typed[T] {
	return &Typed[T]{adapter: a, collection: c}
}

// Collection returns the bound collection name.
func (t *Typed[T]) Collection() Collection { return t.collection }

// All loads and decodes the whole collection.
func (t *Typed[T]) All(ctx context.Context) ([]T, error) {
	records, err := t.adapter.LoadAll(ctx, t.collection)
	if err != nil {
		return nil, err
	}
	return DecodeAll[T](t.collection, records), nil
}

// One loads a single document. A malformed document is reported as an error.
func (t *Typed[T]) One(ctx context.Context, key string) (T, bool, error) {
	var zero T
	rec, ok, err := t.adapter.LoadOne(ctx, t.collection, key)
	if err != nil || !ok {
		return zero, ok, err
	}
	doc, err := Decode[T](rec)
	if err != nil {
		return zero, false, Wrap("decode", t.collection, key, err)
	}
	return doc, true, nil
}

// Put validates, encodes and writes doc under its own key.
func (t *Typed[T]) Put(ctx context.Context, doc T) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	return t.adapter.Save(ctx, t.collection, doc.Key(), data)
}

// Remove deletes a document by key.
func (t *Typed[T]) Remove(ctx context.Context, key string) error {
	return t.adapter.Delete(ctx, t.collection, key)
}
