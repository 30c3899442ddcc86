// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package memstore

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/olegiv/newsdesk-go/internal/persist"
	"github.com/olegiv/newsdesk-go/internal/persist/persisttest"
)

func newTestStore(t *testing.T) persist.Adapter {
	s := New()
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAdapterContract(t *testing.T) {
	persisttest.Run(t, newTestStore)
	persisttest.RunSubscriber(t, newTestStore)
}

func TestClosedStore(t *testing.T) {
	s := New()
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	err := s.Save(context.Background(), persist.News, "n1", []byte(`{}`))
	if !errors.Is(err, persist.ErrClosed) {
		t.Errorf("Save after Close = %v, want ErrClosed", err)
	}
	if _, err := s.LoadAll(context.Background(), persist.News); !errors.Is(err, persist.ErrClosed) {
		t.Errorf("LoadAll after Close = %v, want ErrClosed", err)
	}
}

func TestLoadAllReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.Save(ctx, persist.Ticker, "main", []byte(`{"text":"a"}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	records, _ := s.LoadAll(ctx, persist.Ticker)
	records[0].Data[2] = 'X'

	again, _ := s.LoadAll(ctx, persist.Ticker)
	if string(again[0].Data) != `{"text":"a"}` {
		t.Errorf("stored data mutated through LoadAll result: %s", again[0].Data)
	}
}

func TestLoadAllOrderDirection(t *testing.T) {
	tests := []struct {
		collection persist.Collection
		want       []string
	}{
		{persist.News, []string{"c", "b", "a"}},
		{persist.Requests, []string{"c", "b", "a"}},
		{persist.Users, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.collection), func(t *testing.T) {
			s := New()
			ctx := context.Background()
			for _, k := range []string{"a", "b", "c"} {
				if err := s.Save(ctx, tt.collection, k, []byte(`{}`)); err != nil {
					t.Fatalf("Save: %v", err)
				}
			}
			// Rewriting a key keeps its place.
			if err := s.Save(ctx, tt.collection, "a", []byte(`{}`)); err != nil {
				t.Fatalf("Save: %v", err)
			}

			records, err := s.LoadAll(ctx, tt.collection)
			if err != nil {
				t.Fatalf("LoadAll: %v", err)
			}
			got := make([]string, 0, len(records))
			for _, r := range records {
				got = append(got, r.Key)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}
