// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package refresh

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/proscenium/internal/catalog"
	"github.com/tomtom215/proscenium/internal/models"
)

func newTestEnricher(content *fakeContent) *Enricher {
	e := NewEnricher(content)
	e.now = func() time.Time { return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestEnrichMovieMapsFields(t *testing.T) {
	content := newFakeContent()
	content.movies[550] = &catalog.MovieDetails{
		ID:           550,
		Title:        "Fight Club",
		Overview:     "An insomniac...",
		ReleaseDate:  "1999-10-15",
		PosterPath:   "/poster.jpg",
		BackdropPath: "/backdrop.jpg",
		VoteAverage:  8.4,
		Runtime:      139,
		Genres:       []catalog.Genre{{ID: 18, Name: "Drama"}},
	}

	item := newTestEnricher(content).Enrich(context.Background(), 550, models.MediaKindMovie, "netflix")
	if item == nil {
		t.Fatal("expected item, got nil")
	}

	if item.ExternalID != 550 || item.MediaKind != models.MediaKindMovie {
		t.Errorf("identity = (%d, %s)", item.ExternalID, item.MediaKind)
	}
	if item.Title != "Fight Club" || item.Runtime != 139 || item.Rating != 8.4 {
		t.Errorf("fields = %+v", item)
	}
	if item.PosterURL != "https://img.test/w500/poster.jpg" {
		t.Errorf("posterUrl = %q", item.PosterURL)
	}
	if len(item.Genres) != 1 || item.Genres[0] != "Drama" {
		t.Errorf("genres = %v", item.Genres)
	}
	if item.ProviderID != "netflix" {
		t.Errorf("providerId = %q", item.ProviderID)
	}
}

func TestEnrichMovieOmitsAbsentImages(t *testing.T) {
	content := newFakeContent()
	content.movies[1] = &catalog.MovieDetails{ID: 1, Title: "No Art"}

	item := newTestEnricher(content).Enrich(context.Background(), 1, models.MediaKindMovie, "")
	if item == nil {
		t.Fatal("expected item, got nil")
	}
	// Empty string marshals away under omitempty; never a null placeholder.
	if item.PosterURL != "" || item.BackdropURL != "" {
		t.Errorf("image urls = %q / %q, want empty", item.PosterURL, item.BackdropURL)
	}
}

func TestEnrichSeriesExcludesUnstartedSeasons(t *testing.T) {
	content := newFakeContent()
	content.series[1399] = &catalog.SeriesDetails{
		ID:           1399,
		Name:         "Some Show",
		FirstAirDate: "2024-04-01",
		VoteAverage:  8.1,
		Seasons: []catalog.SeasonSummary{
			{SeasonNumber: 0, EpisodeCount: 3},  // specials, never counted
			{SeasonNumber: 1, EpisodeCount: 10},
			{SeasonNumber: 2, EpisodeCount: 10},
			{SeasonNumber: 3, EpisodeCount: 8},
		},
	}
	content.seasons["1399/1"] = &catalog.SeasonDetails{SeasonNumber: 1, Episodes: []catalog.Episode{
		{EpisodeNumber: 1, AirDate: "2024-04-01"},
		{EpisodeNumber: 2, AirDate: "2024-04-08"},
	}}
	content.seasons["1399/2"] = &catalog.SeasonDetails{SeasonNumber: 2, Episodes: []catalog.Episode{
		{EpisodeNumber: 1, AirDate: "2025-04-01"},
	}}
	// Season 3 is announced but nothing has aired yet.
	content.seasons["1399/3"] = &catalog.SeasonDetails{SeasonNumber: 3, Episodes: []catalog.Episode{
		{EpisodeNumber: 1, AirDate: "2027-01-01"},
		{EpisodeNumber: 2, AirDate: ""},
	}}

	item := newTestEnricher(content).Enrich(context.Background(), 1399, models.MediaKindSeries, "")
	if item == nil {
		t.Fatal("expected item, got nil")
	}

	if item.NumberOfSeasons != 2 {
		t.Errorf("numberOfSeasons = %d, want 2 (season 3 not started)", item.NumberOfSeasons)
	}
	if item.NumberOfEpisodes != 3 {
		t.Errorf("numberOfEpisodes = %d, want 3", item.NumberOfEpisodes)
	}
}

func TestEnrichSeriesCountsSeasonWithOneAiredEpisode(t *testing.T) {
	content := newFakeContent()
	content.series[10] = &catalog.SeriesDetails{
		ID:      10,
		Name:    "Mid-Season Show",
		Seasons: []catalog.SeasonSummary{{SeasonNumber: 1, EpisodeCount: 8}},
	}
	// One episode aired, the rest upcoming: the season counts.
	content.seasons["10/1"] = &catalog.SeasonDetails{SeasonNumber: 1, Episodes: []catalog.Episode{
		{EpisodeNumber: 1, AirDate: "2026-08-20"},
		{EpisodeNumber: 2, AirDate: "2026-09-03"},
	}}

	item := newTestEnricher(content).Enrich(context.Background(), 10, models.MediaKindSeries, "")
	if item == nil {
		t.Fatal("expected item, got nil")
	}
	if item.NumberOfSeasons != 1 {
		t.Errorf("numberOfSeasons = %d, want 1", item.NumberOfSeasons)
	}
}

func TestEnrichReturnsNilOnFetchFailure(t *testing.T) {
	content := newFakeContent() // nothing registered: every fetch fails

	if item := newTestEnricher(content).Enrich(context.Background(), 404, models.MediaKindMovie, ""); item != nil {
		t.Errorf("expected nil for failed enrichment, got %+v", item)
	}
}

func TestEnrichReturnsNilOnSeasonFetchFailure(t *testing.T) {
	content := newFakeContent()
	content.series[20] = &catalog.SeriesDetails{
		ID:      20,
		Name:    "Broken Seasons",
		Seasons: []catalog.SeasonSummary{{SeasonNumber: 1, EpisodeCount: 5}},
	}
	// No season record registered: the season fetch fails.

	if item := newTestEnricher(content).Enrich(context.Background(), 20, models.MediaKindSeries, ""); item != nil {
		t.Errorf("expected nil when season fetch fails, got %+v", item)
	}
}
