// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/proscenium/internal/catalog"
	"github.com/tomtom215/proscenium/internal/config"
	"github.com/tomtom215/proscenium/internal/logging"
	"github.com/tomtom215/proscenium/internal/metrics"
	"github.com/tomtom215/proscenium/internal/models"
	"github.com/tomtom215/proscenium/internal/rankings"
)

// ErrNotConfigured marks a refresher whose upstream credential is missing.
// It surfaces in the invocation's error list; the invocation itself still
// succeeds.
var ErrNotConfigured = errors.New("upstream credential not configured")

// Writer is the store surface refreshers need.
type Writer interface {
	Put(ctx context.Context, entry *models.CacheEntry) error
}

// ListingAPI is the carousel-listing surface of the content API.
// *catalog.Client satisfies it.
type ListingAPI interface {
	NowPlayingMovies(ctx context.Context) (*catalog.ListingPage, error)
	PopularMovies(ctx context.Context) (*catalog.ListingPage, error)
	PopularSeries(ctx context.Context) (*catalog.ListingPage, error)
	OnTheAirSeries(ctx context.Context) (*catalog.ListingPage, error)
	TrendingAll(ctx context.Context) (*catalog.ListingPage, error)
	PosterURL(path string) string
	BackdropURL(path string) string
}

// emitFunc writes one cache key's collected items. Collectors call it once
// per key as soon as that key's batch is complete, so a failure partway
// through a multi-key refresh leaves the earlier keys' writes in place.
type emitFunc func(key string, items []models.Item) error

// Refresher runs one cache class's refresh: collect items from upstream,
// write each key's batch as a whole-document replacement stamped with a
// fresh lastUpdated/expiresAt. All four classes share this shape and differ
// only in their collect function.
type Refresher struct {
	class   *Class
	collect func(ctx context.Context, key string, emit emitFunc) error
	store   Writer
	now     func() time.Time
}

// Refresh refreshes the class instance owning key (plus its co-scheduled
// siblings, where the class derives several keys from one upstream fetch).
// The returned updates describe every key written, even when err is non-nil.
func (r *Refresher) Refresh(ctx context.Context, key string) ([]string, error) {
	start := r.now()
	var updates []string

	emit := func(key string, items []models.Item) error {
		nowMs := r.now().UnixMilli()
		entry := &models.CacheEntry{
			Key:         key,
			Items:       items,
			LastUpdated: nowMs,
			ExpiresAt:   nowMs + r.class.TTL.Milliseconds(),
			CacheType:   r.class.Name,
		}
		if err := r.store.Put(ctx, entry); err != nil {
			return fmt.Errorf("write cache entry %s: %w", key, err)
		}

		metrics.CacheItemsWritten.WithLabelValues(key).Add(float64(len(items)))
		logging.Info().Str("cache_key", key).Int("items", len(items)).Msg("Cache entry refreshed")
		updates = append(updates, fmt.Sprintf("%s: %d items", key, len(items)))
		return nil
	}

	if err := r.collect(ctx, key, emit); err != nil {
		metrics.RecordRefresh(r.class.Name, "error", r.now().Sub(start))
		return updates, err
	}

	metrics.RecordRefresh(r.class.Name, "refreshed", r.now().Sub(start))
	return updates, nil
}

// Deps carries everything needed to build the four class refreshers.
type Deps struct {
	Store    Writer
	Rankings rankings.Source
	Listings ListingAPI
	Enricher *Enricher
	Registry *Registry
	Cfg      *config.RefreshConfig

	// Credential presence, checked per invocation rather than at startup so
	// the service still comes up and reports the problem through the
	// trigger response.
	CatalogKeySet  bool
	RankingsKeySet bool
}

// NewRefreshers instantiates the four class refreshers, keyed by class name.
func NewRefreshers(d Deps) map[string]*Refresher {
	build := func(name string, collect func(ctx context.Context, key string, emit emitFunc) error) *Refresher {
		class := classByName(d.Registry, name)
		return &Refresher{class: class, collect: collect, store: d.Store, now: time.Now}
	}

	return map[string]*Refresher{
		ClassTop10Provider: build(ClassTop10Provider, d.collectProviderTop10),
		ClassTop10Global:   build(ClassTop10Global, d.collectGlobalTop10),
		ClassCarousel:      build(ClassCarousel, d.collectCarousels),
		ClassCalendar:      build(ClassCalendar, d.collectCalendars),
	}
}

func classByName(r *Registry, name string) *Class {
	for i := range r.classes {
		if r.classes[i].Name == name {
			return &r.classes[i]
		}
	}
	return nil
}

// collectProviderTop10 refreshes one provider's Top-10. The quick-overall
// fetch returns every provider's list; re-fetching it per provider is an
// accepted simplification since that call is cheap relative to enrichment.
func (d Deps) collectProviderTop10(ctx context.Context, key string, emit emitFunc) error {
	if err := d.checkCredentials(true); err != nil {
		return err
	}

	provider := ProviderForKey(key)
	payload, err := d.Rankings.QuickOverall(ctx)
	if err != nil {
		return fmt.Errorf("fetch quick-overall: %w", err)
	}

	entries := capEntries(payload.Providers[provider], d.Cfg.Top10ItemCap)
	items := d.enrichRanked(ctx, entries, provider)
	return emit(key, items)
}

// collectGlobalTop10 refreshes both global keys from one quick-overall fetch.
func (d Deps) collectGlobalTop10(ctx context.Context, _ string, emit emitFunc) error {
	if err := d.checkCredentials(true); err != nil {
		return err
	}

	payload, err := d.Rankings.QuickOverall(ctx)
	if err != nil {
		return fmt.Errorf("fetch quick-overall: %w", err)
	}

	movies := d.enrichRanked(ctx, capEntries(payload.Global.Movies, d.Cfg.Top10ItemCap), "")
	if err := emit(KeyGlobalMovies, movies); err != nil {
		return err
	}

	series := d.enrichRanked(ctx, capEntries(payload.Global.Series, d.Cfg.Top10ItemCap), "")
	return emit(KeyGlobalSeries, series)
}

// collectCarousels refreshes all five carousel keys. Each derives from an
// independent listing call, but they are co-scheduled; a failed call aborts
// the remaining keys while earlier writes stay in place.
func (d Deps) collectCarousels(ctx context.Context, _ string, emit emitFunc) error {
	if err := d.checkCredentials(false); err != nil {
		return err
	}

	sources := []struct {
		key   string
		kind  models.MediaKind // zero for mixed-kind listings
		fetch func(context.Context) (*catalog.ListingPage, error)
	}{
		{KeyNowPlaying, models.MediaKindMovie, d.Listings.NowPlayingMovies},
		{KeyPopularMovies, models.MediaKindMovie, d.Listings.PopularMovies},
		{KeyOnTheAir, models.MediaKindSeries, d.Listings.OnTheAirSeries},
		{KeyPopularTV, models.MediaKindSeries, d.Listings.PopularSeries},
		{KeyTrending, "", d.Listings.TrendingAll},
	}

	for _, src := range sources {
		page, err := src.fetch(ctx)
		if err != nil {
			return fmt.Errorf("fetch %s listing: %w", src.key, err)
		}

		results := page.Results
		if limit := d.Cfg.CarouselItemCap; limit > 0 && len(results) > limit {
			results = results[:limit]
		}

		items := make([]models.Item, 0, len(results))
		for _, entry := range results {
			items = append(items, d.mapListingEntry(entry, src.kind))
		}
		if err := emit(src.key, items); err != nil {
			return err
		}
	}
	return nil
}

// collectCalendars refreshes all three calendar keys from one upstream
// fetch. Entries without a resolvable external id are counted and skipped,
// never erred.
func (d Deps) collectCalendars(ctx context.Context, _ string, emit emitFunc) error {
	if err := d.checkCredentials(true); err != nil {
		return err
	}

	entries, err := d.Rankings.CalendarOverall(ctx)
	if err != nil {
		return fmt.Errorf("fetch calendar-overall: %w", err)
	}

	var movies, series, overall []models.Item
	skipped := 0
	for _, entry := range entries {
		if !entry.Resolvable() {
			skipped++
			continue
		}

		item := d.Enricher.Enrich(ctx, entry.IDs.Catalog, kindFromRankings(entry.MediaType), "")
		if item == nil {
			continue
		}
		if item.MediaKind == models.MediaKindSeries {
			item.SeasonInfo = &models.SeasonInfo{
				SeasonNumber:  entry.SeasonNumber,
				EpisodeNumber: entry.EpisodeNumber,
				AirDate:       entry.AirDate,
			}
		} else if entry.AirDate != "" {
			item.SeasonInfo = &models.SeasonInfo{AirDate: entry.AirDate}
		}

		overall = append(overall, *item)
		if item.MediaKind == models.MediaKindMovie {
			movies = append(movies, *item)
		} else {
			series = append(series, *item)
		}
	}

	if skipped > 0 {
		logging.Debug().Int("skipped", skipped).Msg("Calendar entries without resolvable id skipped")
	}

	if err := emit(KeyCalendarMovies, movies); err != nil {
		return err
	}
	if err := emit(KeyCalendarTV, series); err != nil {
		return err
	}
	return emit(KeyCalendarOverall, overall)
}

// enrichRanked enriches a ranked slice one item at a time, silently dropping
// entries the enricher could not resolve.
func (d Deps) enrichRanked(ctx context.Context, entries []rankings.RankedEntry, providerID string) []models.Item {
	items := make([]models.Item, 0, len(entries))
	for i, entry := range entries {
		item := d.Enricher.Enrich(ctx, entry.ID, kindFromRankings(entry.MediaType), providerID)
		if item == nil {
			continue
		}
		item.Rank = entry.Rank
		if item.Rank == 0 {
			item.Rank = i + 1
		}
		items = append(items, *item)
	}
	return items
}

// mapListingEntry maps a carousel listing row directly; the listing payload
// already carries enough fields that no per-item enrichment call is needed.
func (d Deps) mapListingEntry(entry catalog.ListingEntry, kind models.MediaKind) models.Item {
	title := entry.Title
	releaseDate := entry.ReleaseDate
	if kind == "" {
		kind = models.MediaKindMovie
		if entry.MediaType == "tv" {
			kind = models.MediaKindSeries
		}
	}
	if kind == models.MediaKindSeries {
		title = entry.Name
		releaseDate = entry.FirstAirDate
	}

	return models.Item{
		ExternalID:  entry.ID,
		MediaKind:   kind,
		Title:       title,
		ReleaseDate: releaseDate,
		PosterURL:   d.Listings.PosterURL(entry.PosterPath),
		BackdropURL: d.Listings.BackdropURL(entry.BackdropPath),
		Rating:      entry.VoteAverage,
		Overview:    entry.Overview,
	}
}

func (d Deps) checkCredentials(needsRankings bool) error {
	if !d.CatalogKeySet {
		return fmt.Errorf("%w: catalog API key", ErrNotConfigured)
	}
	if needsRankings && !d.RankingsKeySet {
		return fmt.Errorf("%w: rankings API key", ErrNotConfigured)
	}
	return nil
}

func capEntries(entries []rankings.RankedEntry, limit int) []rankings.RankedEntry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

func kindFromRankings(mediaType string) models.MediaKind {
	if mediaType == "show" || mediaType == "tv" || mediaType == "series" {
		return models.MediaKindSeries
	}
	return models.MediaKindMovie
}
