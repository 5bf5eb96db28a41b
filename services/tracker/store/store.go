// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store is the tracker's document store over BadgerDB.
//
// Documents are JSON-encoded under "<collection>/<24-hex-id>" keys. Badger
// gives us the only storage guarantee the services rely on: a write to a
// single key is atomic and isolated from other single-key writes. There is no
// cross-document transaction and no version check before save; the services
// layer orders its reads and writes accordingly.
//
// Use Config.InMemory for tests (no files on disk, same semantics).
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	Projects        = "project"
	Datasets        = "dataset"
	MonitoredModels = "monitored_model"
)

// ErrNoSuchDocument is returned when a get/find matches nothing. Services
// translate it to the entity-specific not-found error.
var ErrNoSuchDocument = errors.New("no such document")

// Config holds settings for opening a store.
type Config struct {
	// Dir is the directory for Badger files. Ignored when InMemory is true.
	Dir string

	// InMemory disables disk persistence. Used by tests.
	InMemory bool

	// Logger for store lifecycle events. Badger's own logging is disabled.
	Logger *slog.Logger
}

// Store is a handle to the document database.
type Store struct {
	db  *badger.DB
	log *slog.Logger
}

// Open opens (or creates) the store.
func Open(cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(cfg.Dir).
		WithInMemory(cfg.InMemory).
		WithLogger(nil)
	if cfg.InMemory {
		opts.Dir = ""
		opts.ValueDir = ""
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}

	logger.Info("document store opened", "dir", cfg.Dir, "in_memory", cfg.InMemory)
	return &Store{db: db, log: logger}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(collection string, id primitive.ObjectID) []byte {
	return []byte(collection + "/" + id.Hex())
}

// Get loads one document by id.
func Get[T any](s *Store, collection string, id primitive.ObjectID) (*T, error) {
	var doc T
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(collection, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSuchDocument
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// All returns every document of a collection, in key order.
func All[T any](s *Store, collection string) ([]T, error) {
	return Find[T](s, collection, func(*T) bool { return true })
}

// Find returns the documents matching pred. The scan is linear; collections
// here are small and unindexed by design.
func Find[T any](s *Store, collection string, pred func(*T) bool) ([]T, error) {
	var docs []T
	prefix := []byte(collection + "/")
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var doc T
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				return err
			}
			if pred(&doc) {
				docs = append(docs, doc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// FindOne returns the first document matching pred, or ErrNoSuchDocument.
func FindOne[T any](s *Store, collection string, pred func(*T) bool) (*T, error) {
	docs, err := Find[T](s, collection, pred)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoSuchDocument
	}
	return &docs[0], nil
}

// Save writes the full document under its id, creating or overwriting it in
// one atomic single-key write.
func Save[T any](s *Store, collection string, id primitive.ObjectID, doc *T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", collection, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(collection, id), raw)
	})
}

// Delete removes a document. Deleting an absent key is not an error.
func Delete(s *Store, collection string, id primitive.ObjectID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(collection, id))
	})
}

// ParseID validates a 24-hex-character document id.
func ParseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("parse document id %q: %w", raw, err)
	}
	return id, nil
}
