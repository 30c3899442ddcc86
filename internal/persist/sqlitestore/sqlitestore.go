// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sqlitestore is the local persist.Adapter: one SQLite file holding
// every collection as JSON text keyed by (collection, key).
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"

	"github.com/olegiv/newsdesk-go/internal/persist"
)

// Primary SQLite result codes that mean the process may not touch the file.
const (
	sqlitePerm     = 3
	sqliteReadonly = 8
	sqliteAuth     = 23
)

// Store is a SQLite-backed document store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := OpenDB(path, DefaultDBConfig())
	if err != nil {
		if isPermission(err) {
			return nil, persist.Denied(err)
		}
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		if isPermission(err) {
			return nil, persist.Denied(err)
		}
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an already-migrated database.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the connection so the session store can share the file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// LoadAll returns the collection ordered by insertion sequence.
func (s *Store) LoadAll(ctx context.Context, c persist.Collection) ([]persist.Record, error) {
	if err := persist.CheckCollection("load all", c); err != nil {
		return nil, err
	}

	order := "ASC"
	if c.NewestFirst() {
		order = "DESC"
	}
	query := fmt.Sprintf(`SELECT key, body FROM documents WHERE collection = ? ORDER BY seq %s`, order)

	rows, err := s.db.QueryContext(ctx, query, string(c))
	if err != nil {
		return nil, wrap("load all", c, "", err)
	}
	defer func() { _ = rows.Close() }()

	var records []persist.Record
	for rows.Next() {
		var key, body string
		if err := rows.Scan(&key, &body); err != nil {
			return nil, wrap("load all", c, "", err)
		}
		records = append(records, persist.Record{Key: key, Data: []byte(body)})
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("load all", c, "", err)
	}
	return records, nil
}

// LoadOne returns a single record.
func (s *Store) LoadOne(ctx context.Context, c persist.Collection, key string) (persist.Record, bool, error) {
	if err := persist.CheckCollection("load one", c); err != nil {
		return persist.Record{}, false, err
	}

	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND key = ?`, string(c), key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return persist.Record{}, false, nil
	}
	if err != nil {
		return persist.Record{}, false, wrap("load one", c, key, err)
	}
	return persist.Record{Key: key, Data: []byte(body)}, true, nil
}

// Save upserts a record. The sequence column is only assigned on insert,
// so an overwrite keeps the record's position.
func (s *Store) Save(ctx context.Context, c persist.Collection, key string, data []byte) error {
	if err := persist.CheckCollection("save", c); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, key, body, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, key) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at`,
		string(c), key, string(data), time.Now().UTC())
	return wrap("save", c, key, err)
}

// Delete removes a record; a missing key is not an error.
func (s *Store) Delete(ctx context.Context, c persist.Collection, key string) error {
	if err := persist.CheckCollection("delete", c); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND key = ?`, string(c), key)
	return wrap("delete", c, key, err)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func wrap(op string, c persist.Collection, key string, err error) error {
	if err == nil {
		return nil
	}
	if isPermission(err) {
		err = persist.Denied(err)
	}
	return persist.Wrap(op, c, key, err)
}

// isPermission recognizes read-only files and authorization failures.
func isPermission(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() & 0xff {
		case sqlitePerm, sqliteReadonly, sqliteAuth:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "readonly database") ||
		strings.Contains(msg, "read-only") ||
		strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "not authorized")
}
