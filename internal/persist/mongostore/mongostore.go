// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mongostore keeps each portal collection in a MongoDB collection
// of the same name and pushes changes through change streams.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/olegiv/newsdesk-go/internal/persist"
)

// Server error codes for refused access.
const (
	codeUnauthorized         = 13
	codeAuthenticationFailed = 18
	codeAtlasUnauthorized    = 8000
)

const countersCollection = "counters"

// document is the stored shape. Body holds the JSON text unchanged so
// documents round-trip byte for byte.
type document struct {
	Key       string    `bson:"_id"`
	Seq       int64     `bson:"seq"`
	Body      string    `bson:"body"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Store is a MongoDB-backed document store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	owned  bool
	closed atomic.Bool
}

// Open connects to uri and selects database.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongo URI is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		if isPermission(err) {
			return nil, persist.Denied(err)
		}
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	s := New(client.Database(database))
	s.owned = true
	return s, nil
}

// New wraps an existing database handle. Close leaves the client connected.
func New(db *mongo.Database) *Store {
	return &Store{client: db.Client(), db: db}
}

// LoadAll returns the collection sorted by sequence.
func (s *Store) LoadAll(ctx context.Context, c persist.Collection) ([]persist.Record, error) {
	if err := s.check("load all", c, ""); err != nil {
		return nil, err
	}

	direction := 1
	if c.NewestFirst() {
		direction = -1
	}
	cur, err := s.db.Collection(string(c)).Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "seq", Value: direction}}))
	if err != nil {
		return nil, wrap("load all", c, "", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var records []persist.Record
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, wrap("load all", c, "", err)
		}
		records = append(records, persist.Record{Key: doc.Key, Data: []byte(doc.Body)})
	}
	if err := cur.Err(); err != nil {
		return nil, wrap("load all", c, "", err)
	}
	return records, nil
}

// LoadOne returns a single record.
func (s *Store) LoadOne(ctx context.Context, c persist.Collection, key string) (persist.Record, bool, error) {
	if err := s.check("load one", c, key); err != nil {
		return persist.Record{}, false, err
	}

	var doc document
	err := s.db.Collection(string(c)).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return persist.Record{}, false, nil
	}
	if err != nil {
		return persist.Record{}, false, wrap("load one", c, key, err)
	}
	return persist.Record{Key: key, Data: []byte(doc.Body)}, true, nil
}

// Save upserts a record. The sequence is only set on insert.
func (s *Store) Save(ctx context.Context, c persist.Collection, key string, data []byte) error {
	if err := s.check("save", c, key); err != nil {
		return err
	}

	seq, err := s.nextSeq(ctx)
	if err != nil {
		return wrap("save", c, key, err)
	}

	_, err = s.db.Collection(string(c)).UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{
			"$set":         bson.M{"body": string(data), "updatedAt": time.Now().UTC()},
			"$setOnInsert": bson.M{"seq": seq},
		},
		options.Update().SetUpsert(true))
	return wrap("save", c, key, err)
}

func (s *Store) nextSeq(ctx context.Context) (int64, error) {
	var counter struct {
		Value int64 `bson:"value"`
	}
	err := s.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": "documents"},
		bson.M{"$inc": bson.M{"value": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	return counter.Value, err
}

// Delete removes a record; a missing key is not an error.
func (s *Store) Delete(ctx context.Context, c persist.Collection, key string) error {
	if err := s.check("delete", c, key); err != nil {
		return err
	}
	_, err := s.db.Collection(string(c)).DeleteOne(ctx, bson.M{"_id": key})
	return wrap("delete", c, key, err)
}

// Close disconnects a client created by Open.
func (s *Store) Close() error {
	if s.closed.Swap(true) || !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) check(op string, c persist.Collection, key string) error {
	if err := persist.CheckCollection(op, c); err != nil {
		return err
	}
	if s.closed.Load() {
		return persist.Wrap(op, c, key, persist.ErrClosed)
	}
	return nil
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

// isPermission recognizes authorization and authentication failures.
func isPermission(err error) bool {
	var serr mongo.ServerError
	if errors.As(err, &serr) {
		return serr.HasErrorCode(codeUnauthorized) ||
			serr.HasErrorCode(codeAuthenticationFailed) ||
			serr.HasErrorCode(codeAtlasUnauthorized)
	}
	return false
}
