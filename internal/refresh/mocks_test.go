// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/proscenium/internal/catalog"
	"github.com/tomtom215/proscenium/internal/config"
	"github.com/tomtom215/proscenium/internal/models"
	"github.com/tomtom215/proscenium/internal/rankings"
	"github.com/tomtom215/proscenium/internal/store"
)

// fakeStore implements MetaReader and Writer over an in-memory map.
type fakeStore struct {
	entries map[string]*models.CacheEntry
	puts    []string
	metaErr error
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]*models.CacheEntry)}
}

func (f *fakeStore) Meta(_ context.Context, key string) (*models.CacheMeta, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	entry, ok := f.entries[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &models.CacheMeta{
		Key:         entry.Key,
		LastUpdated: entry.LastUpdated,
		ExpiresAt:   entry.ExpiresAt,
		CacheType:   entry.CacheType,
		ItemCount:   len(entry.Items),
	}, nil
}

func (f *fakeStore) Put(_ context.Context, entry *models.CacheEntry) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.entries[entry.Key] = entry
	f.puts = append(f.puts, entry.Key)
	return nil
}

// seed records an entry whose lastUpdated is age before now.
func (f *fakeStore) seed(key string, now time.Time, age time.Duration) {
	f.entries[key] = &models.CacheEntry{
		Key:         key,
		LastUpdated: now.Add(-age).UnixMilli(),
	}
}

// fakeRankings implements rankings.Source with canned payloads.
type fakeRankings struct {
	overall     *rankings.QuickOverall
	overallErr  error
	calendar    []rankings.CalendarEntry
	calendarErr error
	calls       int
}

func (f *fakeRankings) QuickOverall(context.Context) (*rankings.QuickOverall, error) {
	f.calls++
	if f.overallErr != nil {
		return nil, f.overallErr
	}
	return f.overall, nil
}

func (f *fakeRankings) CalendarOverall(context.Context) ([]rankings.CalendarEntry, error) {
	f.calls++
	if f.calendarErr != nil {
		return nil, f.calendarErr
	}
	return f.calendar, nil
}

// fakeContent implements ContentAPI and ListingAPI with canned records.
type fakeContent struct {
	movies   map[int64]*catalog.MovieDetails
	series   map[int64]*catalog.SeriesDetails
	seasons  map[string]*catalog.SeasonDetails // key "seriesID/seasonNumber"
	listings map[string]*catalog.ListingPage   // key by endpoint name
}

func newFakeContent() *fakeContent {
	return &fakeContent{
		movies:   make(map[int64]*catalog.MovieDetails),
		series:   make(map[int64]*catalog.SeriesDetails),
		seasons:  make(map[string]*catalog.SeasonDetails),
		listings: make(map[string]*catalog.ListingPage),
	}
}

func (f *fakeContent) MovieDetails(_ context.Context, id int64) (*catalog.MovieDetails, error) {
	if d, ok := f.movies[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("movie %d: not found", id)
}

func (f *fakeContent) SeriesDetails(_ context.Context, id int64) (*catalog.SeriesDetails, error) {
	if d, ok := f.series[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("series %d: not found", id)
}

func (f *fakeContent) SeasonDetails(_ context.Context, seriesID int64, seasonNumber int) (*catalog.SeasonDetails, error) {
	key := fmt.Sprintf("%d/%d", seriesID, seasonNumber)
	if d, ok := f.seasons[key]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("season %s: not found", key)
}

func (f *fakeContent) listing(name string) (*catalog.ListingPage, error) {
	if p, ok := f.listings[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("listing %s: not found", name)
}

func (f *fakeContent) NowPlayingMovies(context.Context) (*catalog.ListingPage, error) {
	return f.listing("now_playing")
}

func (f *fakeContent) PopularMovies(context.Context) (*catalog.ListingPage, error) {
	return f.listing("popular_movies")
}

func (f *fakeContent) PopularSeries(context.Context) (*catalog.ListingPage, error) {
	return f.listing("popular_tv")
}

func (f *fakeContent) OnTheAirSeries(context.Context) (*catalog.ListingPage, error) {
	return f.listing("on_the_air")
}

func (f *fakeContent) TrendingAll(context.Context) (*catalog.ListingPage, error) {
	return f.listing("trending")
}

func (f *fakeContent) PosterURL(path string) string {
	if path == "" {
		return ""
	}
	return "https://img.test/w500" + path
}

func (f *fakeContent) BackdropURL(path string) string {
	if path == "" {
		return ""
	}
	return "https://img.test/w780" + path
}

// addMovie registers a minimal movie detail record.
func (f *fakeContent) addMovie(id int64, title string) {
	f.movies[id] = &catalog.MovieDetails{ID: id, Title: title, ReleaseDate: "2026-01-01", VoteAverage: 7.5}
}

func testRefreshConfig() *config.RefreshConfig {
	return &config.RefreshConfig{
		Top10TTL:        30 * time.Minute,
		CarouselTTL:     time.Hour,
		CalendarTTL:     6 * time.Hour,
		Top10ItemCap:    10,
		CarouselItemCap: 20,
		Providers:       []string{"netflix", "prime", "disney", "hbo", "apple"},
	}
}

// testHarness bundles a fully wired scheduler over fakes.
type testHarness struct {
	store    *fakeStore
	rankings *fakeRankings
	content  *fakeContent
	registry *Registry
	sched    *Scheduler
	now      time.Time
}

func newTestHarness() *testHarness {
	cfg := testRefreshConfig()
	st := newFakeStore()
	rk := &fakeRankings{overall: &rankings.QuickOverall{Providers: map[string][]rankings.RankedEntry{}}}
	ct := newFakeContent()
	registry := NewRegistry(cfg)

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	evaluator := NewEvaluator(st, registry)
	evaluator.now = func() time.Time { return now }

	refreshers := NewRefreshers(Deps{
		Store:          st,
		Rankings:       rk,
		Listings:       ct,
		Enricher:       NewEnricher(ct),
		Registry:       registry,
		Cfg:            cfg,
		CatalogKeySet:  true,
		RankingsKeySet: true,
	})

	return &testHarness{
		store:    st,
		rankings: rk,
		content:  ct,
		registry: registry,
		sched:    NewScheduler(evaluator, refreshers, registry),
		now:      now,
	}
}

// seedAllFresh writes every key with a just-now timestamp.
func (h *testHarness) seedAllFresh() {
	for _, key := range h.registry.Keys() {
		h.store.seed(key, h.now, time.Minute)
	}
}
