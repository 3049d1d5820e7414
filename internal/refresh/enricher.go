// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package refresh

import (
	"context"
	"time"

	"github.com/tomtom215/proscenium/internal/catalog"
	"github.com/tomtom215/proscenium/internal/logging"
	"github.com/tomtom215/proscenium/internal/metrics"
	"github.com/tomtom215/proscenium/internal/models"
)

const airDateLayout = "2006-01-02"

// ContentAPI is the content-metadata surface the enricher consumes.
// *catalog.Client satisfies it; tests substitute a mock.
type ContentAPI interface {
	MovieDetails(ctx context.Context, id int64) (*catalog.MovieDetails, error)
	SeriesDetails(ctx context.Context, id int64) (*catalog.SeriesDetails, error)
	SeasonDetails(ctx context.Context, seriesID int64, seasonNumber int) (*catalog.SeasonDetails, error)
	PosterURL(path string) string
	BackdropURL(path string) string
}

// Enricher turns a bare (externalId, mediaKind) reference into a normalized
// Item by fetching the full detail record from the content API. On any fetch
// failure it returns nil and logs; callers drop that entry from their batch
// rather than aborting. Per-item drops stay out of the invocation's error
// list.
//
// Pacing between enrichment calls comes from the shared catalog request
// queue, not from the enricher itself.
type Enricher struct {
	content ContentAPI
	now     func() time.Time
}

// NewEnricher creates an enricher over the given content API.
func NewEnricher(content ContentAPI) *Enricher {
	return &Enricher{content: content, now: time.Now}
}

// Enrich fetches and normalizes one item. providerID tags per-provider
// Top-10 entries and is empty everywhere else. Returns nil if the item could
// not be enriched.
func (e *Enricher) Enrich(ctx context.Context, externalID int64, kind models.MediaKind, providerID string) *models.Item {
	start := e.now()

	var item *models.Item
	var err error
	switch kind {
	case models.MediaKindMovie:
		item, err = e.enrichMovie(ctx, externalID)
	case models.MediaKindSeries:
		item, err = e.enrichSeries(ctx, externalID)
	default:
		logging.Warn().Int64("external_id", externalID).Str("media_kind", string(kind)).Msg("Unknown media kind, dropping item")
		metrics.RecordEnrichment(string(kind), false, e.now().Sub(start))
		return nil
	}

	if err != nil {
		logging.Warn().Err(err).Int64("external_id", externalID).Str("media_kind", string(kind)).Msg("Enrichment failed, dropping item")
		metrics.RecordEnrichment(string(kind), false, e.now().Sub(start))
		return nil
	}

	item.ProviderID = providerID
	metrics.RecordEnrichment(string(kind), true, e.now().Sub(start))
	return item
}

func (e *Enricher) enrichMovie(ctx context.Context, id int64) (*models.Item, error) {
	details, err := e.content.MovieDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.Item{
		ExternalID:  details.ID,
		MediaKind:   models.MediaKindMovie,
		Title:       details.Title,
		ReleaseDate: details.ReleaseDate,
		PosterURL:   e.content.PosterURL(details.PosterPath),
		BackdropURL: e.content.BackdropURL(details.BackdropPath),
		Rating:      details.VoteAverage,
		Genres:      genreNames(details.Genres),
		Overview:    details.Overview,
		Runtime:     details.Runtime,
	}, nil
}

func (e *Enricher) enrichSeries(ctx context.Context, id int64) (*models.Item, error) {
	details, err := e.content.SeriesDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	seasons, episodes, err := e.startedSeasonCounts(ctx, id, details.Seasons)
	if err != nil {
		return nil, err
	}

	return &models.Item{
		ExternalID:       details.ID,
		MediaKind:        models.MediaKindSeries,
		Title:            details.Name,
		ReleaseDate:      details.FirstAirDate,
		PosterURL:        e.content.PosterURL(details.PosterPath),
		BackdropURL:      e.content.BackdropURL(details.BackdropPath),
		Rating:           details.VoteAverage,
		Genres:           genreNames(details.Genres),
		Overview:         details.Overview,
		NumberOfSeasons:  seasons,
		NumberOfEpisodes: episodes,
	}, nil
}

// startedSeasonCounts counts only seasons with at least one already-aired
// episode. A season announced for a future date, with zero aired episodes,
// is excluded from both counts. This filter applies wherever series season
// counts are surfaced.
func (e *Enricher) startedSeasonCounts(ctx context.Context, seriesID int64, seasons []catalog.SeasonSummary) (int, int, error) {
	today := e.now()
	seasonCount := 0
	episodeCount := 0

	for _, summary := range seasons {
		if summary.SeasonNumber <= 0 {
			continue // specials
		}

		details, err := e.content.SeasonDetails(ctx, seriesID, summary.SeasonNumber)
		if err != nil {
			return 0, 0, err
		}

		if seasonStarted(details.Episodes, today) {
			seasonCount++
			episodeCount += len(details.Episodes)
		}
	}
	return seasonCount, episodeCount, nil
}

// seasonStarted reports whether any episode has already aired.
func seasonStarted(episodes []catalog.Episode, today time.Time) bool {
	for _, ep := range episodes {
		if ep.AirDate == "" {
			continue
		}
		aired, err := time.Parse(airDateLayout, ep.AirDate)
		if err != nil {
			continue
		}
		if !aired.After(today) {
			return true
		}
	}
	return false
}

func genreNames(genres []catalog.Genre) []string {
	if len(genres) == 0 {
		return nil
	}
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}
