// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package rankings

// RankedEntry is one position in a provider or global top list. The rankings
// API identifies content by the same external id space the content-metadata
// API uses, so entries hand off directly to enrichment.
type RankedEntry struct {
	ID        int64  `json:"id"`
	MediaType string `json:"media_type"` // "movie" or "show"
	Rank      int    `json:"rank"`
}

// GlobalLists holds the cross-provider top lists, split by kind.
type GlobalLists struct {
	Movies []RankedEntry `json:"movies"`
	Series []RankedEntry `json:"shows"`
}

// QuickOverall is the single cross-provider payload. One fetch carries every
// provider's list plus the global lists; callers extract what they need.
type QuickOverall struct {
	Providers map[string][]RankedEntry `json:"providers"`
	Global    GlobalLists              `json:"global"`
}

// ExternalIDs maps a rankings entry onto other id spaces. Only the
// content-metadata id is used here; calendar entries that lack it cannot be
// enriched and are skipped.
type ExternalIDs struct {
	Catalog int64 `json:"tmdb"`
}

// CalendarEntry is one upcoming or recent release from the overall calendar
// feed. Series entries carry season/episode numbers; movie entries do not.
type CalendarEntry struct {
	IDs           ExternalIDs `json:"ids"`
	MediaType     string      `json:"media_type"`
	Title         string      `json:"title"`
	AirDate       string      `json:"air_date"`
	SeasonNumber  int         `json:"season_number,omitempty"`
	EpisodeNumber int         `json:"episode_number,omitempty"`
}

// Resolvable reports whether the entry carries a content-metadata id that
// downstream enrichment can use.
func (e CalendarEntry) Resolvable() bool {
	return e.IDs.Catalog > 0
}
