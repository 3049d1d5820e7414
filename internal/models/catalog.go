// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

// Package models defines the shared data types for Proscenium: normalized
// catalog items, cache documents, and the API response envelope.
package models

// MediaKind identifies the kind of a catalog item.
type MediaKind string

// Supported media kinds.
const (
	MediaKindMovie  MediaKind = "movie"
	MediaKindSeries MediaKind = "series"
)

// Valid reports whether k is a known media kind.
func (k MediaKind) Valid() bool {
	return k == MediaKindMovie || k == MediaKindSeries
}

// Item is a normalized content record as stored in cache documents and served
// to clients. Identity is (ExternalID, MediaKind); duplicates across cache
// keys are expected and not deduplicated.
//
// Every optional field carries omitempty: absent values MUST be omitted from
// the stored document, never written as null placeholders. The cache store
// rejects undefined-valued fields, so this is a hard contract.
type Item struct {
	ExternalID int64     `json:"externalId"`
	MediaKind  MediaKind `json:"mediaKind"`
	Title      string    `json:"title"`

	ReleaseDate string   `json:"releaseDate,omitempty"`
	PosterURL   string   `json:"posterUrl,omitempty"`
	BackdropURL string   `json:"backdropUrl,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Overview    string   `json:"overview,omitempty"`

	// Rank is the 1-based position in ranked lists (Top-10s).
	Rank int `json:"rank,omitempty"`

	// Runtime in minutes; movies only.
	Runtime int `json:"runtime,omitempty"`

	// Season/episode counts; series only. Both respect the started-seasons
	// filter: a season with no already-aired episode is excluded.
	NumberOfSeasons  int `json:"numberOfSeasons,omitempty"`
	NumberOfEpisodes int `json:"numberOfEpisodes,omitempty"`

	// ProviderID identifies the streaming provider for per-provider Top-10
	// entries (e.g. "netflix").
	ProviderID string `json:"providerId,omitempty"`

	// SeasonInfo carries upcoming-release details for calendar entries.
	SeasonInfo *SeasonInfo `json:"seasonInfo,omitempty"`
}

// SeasonInfo describes the season/episode a calendar entry refers to.
type SeasonInfo struct {
	SeasonNumber  int    `json:"seasonNumber,omitempty"`
	EpisodeNumber int    `json:"episodeNumber,omitempty"`
	AirDate       string `json:"airDate,omitempty"`
}

// CacheEntry is one cache document, keyed by its cache instance key
// (e.g. "top10-netflix", "global-movies", "trending", "calendar-tv").
//
// Entries are created on first successful refresh and overwritten wholesale
// on every subsequent refresh; this subsystem never deletes them. Item order
// is significant: rank order for Top-10s, recency for calendars.
type CacheEntry struct {
	Key   string `json:"key"`
	Items []Item `json:"items"`

	// LastUpdated is the epoch-ms timestamp of the last successful write.
	LastUpdated int64 `json:"lastUpdated"`

	// ExpiresAt is LastUpdated + class TTL in epoch-ms. Advisory only:
	// staleness is always evaluated from LastUpdated against the class TTL.
	ExpiresAt int64 `json:"expiresAt"`

	// CacheType names the cache class ("top10-provider", "top10-global",
	// "carousel", "calendar").
	CacheType string `json:"cacheType"`
}

// CacheMeta is the metadata view of a CacheEntry, without the item payload.
// The staleness evaluator reads only this.
type CacheMeta struct {
	Key         string `json:"key"`
	LastUpdated int64  `json:"lastUpdated"`
	ExpiresAt   int64  `json:"expiresAt"`
	CacheType   string `json:"cacheType"`
	ItemCount   int    `json:"itemCount"`
}
