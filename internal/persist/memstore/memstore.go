// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package memstore is an in-process persist.Adapter with change
// subscriptions. It backs the "memory" backend and the test suites.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/olegiv/newsdesk-go/internal/persist"
)

type entry struct {
	data []byte
	seq  int64
}

// Store is a thread-safe in-memory document store.
type Store struct {
	mu      sync.RWMutex
	seq     int64
	data    map[persist.Collection]map[string]entry
	subs    map[persist.Collection]map[int]*subscription
	nextSub int
	closed  bool
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		data: make(map[persist.Collection]map[string]entry),
		subs: make(map[persist.Collection]map[int]*subscription),
	}
}

// LoadAll returns the collection ordered by insertion sequence.
func (s *Store) LoadAll(_ context.Context, c persist.Collection) ([]persist.Record, error) {
	if err := persist.CheckCollection("load all", c); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, persist.Wrap("load all", c, "", persist.ErrClosed)
	}
	return s.records(c), nil
}

// records must be called with s.mu held.
func (s *Store) records(c persist.Collection) []persist.Record {
	docs := s.data[c]
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c.NewestFirst() {
			return cmp.Compare(docs[b].seq, docs[a].seq)
		}
		return cmp.Compare(docs[a].seq, docs[b].seq)
	})

	out := make([]persist.Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, persist.Record{Key: k, Data: slices.Clone(docs[k].data)})
	}
	return out
}

// LoadOne returns a single record.
func (s *Store) LoadOne(_ context.Context, c persist.Collection, key string) (persist.Record, bool, error) {
	if err := persist.CheckCollection("load one", c); err != nil {
		return persist.Record{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return persist.Record{}, false, persist.Wrap("load one", c, key, persist.ErrClosed)
	}
	e, ok := s.data[c][key]
	if !ok {
		return persist.Record{}, false, nil
	}
	return persist.Record{Key: key, Data: slices.Clone(e.data)}, true, nil
}

// Save writes a record, keeping the original sequence on overwrite.
func (s *Store) Save(_ context.Context, c persist.Collection, key string, data []byte) error {
	if err := persist.CheckCollection("save", c); err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return persist.Wrap("save", c, key, persist.ErrClosed)
	}
	docs, ok := s.data[c]
	if !ok {
		docs = make(map[string]entry)
		s.data[c] = docs
	}
	e, exists := docs[key]
	if !exists {
		s.seq++
		e.seq = s.seq
	}
	e.data = slices.Clone(data)
	docs[key] = e
	s.notifyLocked(c)
	s.mu.Unlock()
	return nil
}

// Delete removes a record; a missing key is not an error.
func (s *Store) Delete(_ context.Context, c persist.Collection, key string) error {
	if err := persist.CheckCollection("delete", c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return persist.Wrap("delete", c, key, persist.ErrClosed)
	}
	if _, ok := s.data[c][key]; !ok {
		return nil
	}
	delete(s.data[c], key)
	s.notifyLocked(c)
	return nil
}

// Close stops every subscription and rejects further calls.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, subs := range s.subs {
		for _, sub := range subs {
			sub.stop()
		}
	}
	s.subs = make(map[persist.Collection]map[int]*subscription)
	return nil
}
