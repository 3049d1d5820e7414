// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package catalog

// Wire types for the content-metadata API. Field names follow the upstream
// JSON; everything is read-only from this service's perspective.

// Genre is one genre tag on a detail record.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MovieDetails is the full detail record for a movie.
type MovieDetails struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	Runtime      int     `json:"runtime"`
	Genres       []Genre `json:"genres"`
}

// SeasonSummary is the per-season stub embedded in a series detail record.
type SeasonSummary struct {
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date"`
}

// SeriesDetails is the full detail record for a series.
type SeriesDetails struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Overview     string          `json:"overview"`
	FirstAirDate string          `json:"first_air_date"`
	PosterPath   string          `json:"poster_path"`
	BackdropPath string          `json:"backdrop_path"`
	VoteAverage  float64         `json:"vote_average"`
	Genres       []Genre         `json:"genres"`
	Seasons      []SeasonSummary `json:"seasons"`
}

// Episode is one episode in a season listing.
type Episode struct {
	EpisodeNumber int    `json:"episode_number"`
	Name          string `json:"name"`
	AirDate       string `json:"air_date"`
}

// SeasonDetails is the episode listing for one season.
type SeasonDetails struct {
	SeasonNumber int       `json:"season_number"`
	Episodes     []Episode `json:"episodes"`
}

// ListingEntry is one row in a carousel listing (now-playing, popular,
// on-the-air, trending). Movie rows populate Title/ReleaseDate; series rows
// populate Name/FirstAirDate; trending rows also carry MediaType.
type ListingEntry struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	MediaType    string  `json:"media_type"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
}

// ListingPage is one page of a carousel listing.
type ListingPage struct {
	Page    int            `json:"page"`
	Results []ListingEntry `json:"results"`
}
