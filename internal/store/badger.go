// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

// Package store provides the BadgerDB-backed cache document store.
//
// Each cache instance is one JSON document keyed by its cache key. Writes are
// whole-document replacements scoped to a single key; there are no cross-key
// transactions and none are needed (each key is owned exclusively by one
// class refresher).
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/proscenium/internal/models"
)

// cacheKeyPrefix namespaces cache documents inside the badger keyspace.
const cacheKeyPrefix = "cache:"

// ErrNotFound indicates the requested cache key has never been populated.
var ErrNotFound = errors.New("cache entry not found")

// BadgerStore implements the cache document store on BadgerDB.
// Suitable for production use with persistence across restarts.
type BadgerStore struct {
	db *badger.DB
}

// Options configures the store.
type Options struct {
	// Path is the on-disk directory for the badger database.
	Path string

	// InMemory runs badger without persistence. Used in tests and
	// ephemeral deployments.
	InMemory bool
}

// Open opens (creating if necessary) the badger database at the configured
// path. Badger's own logger is silenced; the store logs through zerolog at
// the call sites instead.
func Open(opts Options) (*BadgerStore, error) {
	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badger.DefaultOptions(opts.Path)
	}
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", opts.Path, err)
	}

	return &BadgerStore{db: db}, nil
}

// NewWithDB wraps an existing badger database. Used in tests.
func NewWithDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Put stores a cache entry, replacing any previous document under the same
// key. The entry is marshaled as-is: fields tagged omitempty disappear from
// the stored document rather than being written as nulls.
func (s *BadgerStore) Put(ctx context.Context, entry *models.CacheEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry %s: %w", entry.Key, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(cacheKeyPrefix+entry.Key), data)
	})
	if err != nil {
		return fmt.Errorf("put cache entry %s: %w", entry.Key, err)
	}

	return nil
}

// Get retrieves the full cache document for a key.
// Returns ErrNotFound when the key has never been populated.
func (s *BadgerStore) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry models.CacheEntry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get cache entry %s: %w", key, err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// Meta retrieves the metadata view of a cache document. The staleness
// evaluator reads only this; the payload decode is cheap at the fixed item
// caps (10-20 items).
func (s *BadgerStore) Meta(ctx context.Context, key string) (*models.CacheMeta, error) {
	entry, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	return &models.CacheMeta{
		Key:         entry.Key,
		LastUpdated: entry.LastUpdated,
		ExpiresAt:   entry.ExpiresAt,
		CacheType:   entry.CacheType,
		ItemCount:   len(entry.Items),
	}, nil
}

// List returns all stored cache documents, ordered by key.
func (s *BadgerStore) List(ctx context.Context) ([]models.CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []models.CacheEntry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(cacheKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry models.CacheEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return fmt.Errorf("decode cache entry %s: %w", it.Item().Key(), err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
