// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/proscenium/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	queue := NewRequestQueue(ctx, 50, 16)
	return NewClient(&config.CatalogConfig{
		BaseURL:      srv.URL,
		APIKey:       "test-api-key",
		ImageBaseURL: "https://img.example.com/t/p",
		PosterSize:   "w500",
		BackdropSize: "w780",
		Timeout:      5 * time.Second,
	}, queue)
}

func TestMovieDetailsRequest(t *testing.T) {
	var gotPath, gotKey string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api_key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 550, "title": "Fight Club", "vote_average": 8.4, "runtime": 139}`))
	}))

	details, err := client.MovieDetails(context.Background(), 550)
	if err != nil {
		t.Fatalf("MovieDetails: %v", err)
	}

	if gotPath != "/movie/550" {
		t.Errorf("path = %q, want /movie/550", gotPath)
	}
	if gotKey != "test-api-key" {
		t.Errorf("api_key = %q", gotKey)
	}
	if details.Title != "Fight Club" || details.Runtime != 139 {
		t.Errorf("unexpected details: %+v", details)
	}
}

func TestSeasonDetailsPath(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"season_number": 2, "episodes": [{"episode_number": 1, "air_date": "2026-01-10"}]}`))
	}))

	season, err := client.SeasonDetails(context.Background(), 1399, 2)
	if err != nil {
		t.Fatalf("SeasonDetails: %v", err)
	}
	if gotPath != "/tv/1399/season/2" {
		t.Errorf("path = %q, want /tv/1399/season/2", gotPath)
	}
	if len(season.Episodes) != 1 || season.Episodes[0].AirDate != "2026-01-10" {
		t.Errorf("unexpected season: %+v", season)
	}
}

func TestListingEndpoints(t *testing.T) {
	paths := make([]string, 0, 5)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"page": 1, "results": [{"id": 1, "title": "A"}]}`))
	}))

	ctx := context.Background()
	calls := []func() (*ListingPage, error){
		func() (*ListingPage, error) { return client.NowPlayingMovies(ctx) },
		func() (*ListingPage, error) { return client.PopularMovies(ctx) },
		func() (*ListingPage, error) { return client.PopularSeries(ctx) },
		func() (*ListingPage, error) { return client.OnTheAirSeries(ctx) },
		func() (*ListingPage, error) { return client.TrendingAll(ctx) },
	}
	for i, call := range calls {
		page, err := call()
		if err != nil {
			t.Fatalf("listing %d: %v", i, err)
		}
		if len(page.Results) != 1 {
			t.Errorf("listing %d: got %d results, want 1", i, len(page.Results))
		}
	}

	want := []string{
		"/movie/now_playing",
		"/movie/popular",
		"/tv/popular",
		"/tv/on_the_air",
		"/trending/all/week",
	}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("call %d path = %q, want %q", i, paths[i], p)
		}
	}
}

func TestGetReturnsErrorOnNon2xx(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message": "invalid key"}`, http.StatusUnauthorized)
	}))

	_, err := client.MovieDetails(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error %v does not mention status code", err)
	}
}

func TestImageURLResolution(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	if got := client.PosterURL("/abc.jpg"); got != "https://img.example.com/t/p/w500/abc.jpg" {
		t.Errorf("PosterURL = %q", got)
	}
	if got := client.BackdropURL("/abc.jpg"); got != "https://img.example.com/t/p/w780/abc.jpg" {
		t.Errorf("BackdropURL = %q", got)
	}
	// Absent paths stay absent so the field is omitted downstream.
	if got := client.PosterURL(""); got != "" {
		t.Errorf("PosterURL(\"\") = %q, want empty", got)
	}
}
