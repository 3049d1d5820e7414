// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/proscenium/internal/models"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()

	s, err := Open(Options{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := &models.CacheEntry{
		Key: "top10-netflix",
		Items: []models.Item{
			{ExternalID: 603, MediaKind: models.MediaKindMovie, Title: "The Matrix", Rank: 1},
			{ExternalID: 1396, MediaKind: models.MediaKindSeries, Title: "Breaking Bad", Rank: 2},
		},
		LastUpdated: 1700000000000,
		ExpiresAt:   1700001800000,
		CacheType:   "top10-provider",
	}

	if err := s.Put(ctx, entry); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "top10-netflix")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Key != entry.Key || got.LastUpdated != entry.LastUpdated || got.CacheType != entry.CacheType {
		t.Errorf("got %+v, want %+v", got, entry)
	}
	if len(got.Items) != 2 || got.Items[0].Title != "The Matrix" || got.Items[1].Rank != 2 {
		t.Errorf("item payload mismatch: %+v", got.Items)
	}
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "calendar-tv")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("get missing key: got %v, want ErrNotFound", err)
	}

	_, err = s.Meta(context.Background(), "calendar-tv")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("meta missing key: got %v, want ErrNotFound", err)
	}
}

func TestPutReplacesWholeDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &models.CacheEntry{
		Key:         "trending",
		Items:       []models.Item{{ExternalID: 1, MediaKind: models.MediaKindMovie, Title: "Old"}},
		LastUpdated: 1000,
		CacheType:   "carousel",
	}
	if err := s.Put(ctx, first); err != nil {
		t.Fatalf("put first: %v", err)
	}

	second := &models.CacheEntry{
		Key:         "trending",
		Items:       []models.Item{{ExternalID: 2, MediaKind: models.MediaKindSeries, Title: "New"}},
		LastUpdated: 2000,
		CacheType:   "carousel",
	}
	if err := s.Put(ctx, second); err != nil {
		t.Fatalf("put second: %v", err)
	}

	got, err := s.Get(ctx, "trending")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Title != "New" || got.LastUpdated != 2000 {
		t.Errorf("old document leaked into replacement: %+v", got)
	}
}

func TestAbsentFieldsOmittedFromDocument(t *testing.T) {
	// An item without images or rating must produce a document with no key
	// for those fields, not nulls or zero placeholders.
	item := models.Item{ExternalID: 42, MediaKind: models.MediaKindMovie, Title: "Bare"}

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	doc := string(data)

	for _, forbidden := range []string{"posterUrl", "backdropUrl", "rating", "genres", "runtime", "seasonInfo", "null"} {
		if strings.Contains(doc, forbidden) {
			t.Errorf("document contains %q for absent field: %s", forbidden, doc)
		}
	}
}

func TestMetaOmitsPayload(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := &models.CacheEntry{
		Key:         "calendar-movies",
		Items:       make([]models.Item, 7),
		LastUpdated: 5000,
		ExpiresAt:   6000,
		CacheType:   "calendar",
	}
	if err := s.Put(ctx, entry); err != nil {
		t.Fatalf("put: %v", err)
	}

	meta, err := s.Meta(ctx, "calendar-movies")
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if meta.ItemCount != 7 || meta.LastUpdated != 5000 || meta.CacheType != "calendar" {
		t.Errorf("meta mismatch: %+v", meta)
	}
}

func TestListReturnsAllEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"global-movies", "global-series", "now-playing"} {
		if err := s.Put(ctx, &models.CacheEntry{Key: key, CacheType: "test"}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
}
