// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/olegiv/newsdesk-go/internal/persist"
	"github.com/olegiv/newsdesk-go/internal/persist/persisttest"
)

func newTestStore(t *testing.T) persist.Adapter {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "newsdesk.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAdapterContract(t *testing.T) {
	persisttest.Run(t, newTestStore)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newsdesk.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Save(ctx, persist.Users, "1", []byte(`{"id":"1"}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s.Close() }()

	rec, ok, err := s.LoadOne(ctx, persist.Users, "1")
	if err != nil || !ok {
		t.Fatalf("LoadOne after reopen = %v, %v", ok, err)
	}
	if string(rec.Data) != `{"id":"1"}` {
		t.Errorf("data = %s", rec.Data)
	}
}

func TestSaveMapsReadonlyToPermissionDenied(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec("INSERT INTO documents").
		WithArgs("news", "n1", `{}`, sqlmock.AnyArg()).
		WillReturnError(errors.New("attempt to write a readonly database (8)"))

	s := NewWithDB(db)
	err = s.Save(context.Background(), persist.News, "n1", []byte(`{}`))

	if !persist.IsPermissionDenied(err) {
		t.Errorf("Save error = %v, want permission denied", err)
	}
	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestOtherErrorsStayTransient(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT key, body FROM documents").
		WithArgs("requests").
		WillReturnError(errors.New("database is locked"))

	s := NewWithDB(db)
	_, err = s.LoadAll(context.Background(), persist.Requests)

	if err == nil {
		t.Fatal("expected error")
	}
	if persist.IsPermissionDenied(err) {
		t.Errorf("locked database reported as permission denied: %v", err)
	}
	var perr *persist.Error
	if !errors.As(err, &perr) || perr.Op != "load all" {
		t.Errorf("error not wrapped with op: %v", err)
	}
}

func TestLoadAllOrderDirection(t *testing.T) {
	tests := []struct {
		collection persist.Collection
		order      string
	}{
		{persist.News, "DESC"},
		{persist.Requests, "DESC"},
		{persist.Users, "ASC"},
		{persist.Ticker, "ASC"},
	}

	for _, tt := range tests {
		t.Run(string(tt.collection), func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create sqlmock: %v", err)
			}
			defer func() { _ = db.Close() }()

			mock.ExpectQuery("ORDER BY seq " + tt.order).
				WithArgs(string(tt.collection)).
				WillReturnRows(sqlmock.NewRows([]string{"key", "body"}).AddRow("k", `{}`))

			records, err := NewWithDB(db).LoadAll(context.Background(), tt.collection)
			if err != nil {
				t.Fatalf("LoadAll: %v", err)
			}
			if len(records) != 1 || records[0].Key != "k" {
				t.Errorf("records = %+v", records)
			}
		})
	}
}

func TestIsPermission(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"attempt to write a readonly database", true},
		{"open /data/x.db: permission denied", true},
		{"not authorized", true},
		{"database is locked", false},
		{"no such table: documents", false},
	}
	for _, tt := range tests {
		if got := isPermission(errors.New(tt.msg)); got != tt.want {
			t.Errorf("isPermission(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}
