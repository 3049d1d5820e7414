// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

/*
client.go - Content-Metadata API Client

Read-only client for the third-party content-metadata API. All requests are
funneled through a shared RequestQueue (single in-flight worker, fixed
inter-call pacing) because the upstream is informally rate-limited.

Endpoints used:
  - /movie/{id}, /tv/{id}: full detail records for enrichment
  - /tv/{id}/season/{n}: episode listings for the started-seasons filter
  - /movie/now_playing, /movie/popular, /tv/popular, /tv/on_the_air,
    /trending/all/week: carousel listings (no per-item enrichment needed)

Authentication is an API key query parameter on every request.
*/

//nolint:staticcheck // File documentation, not package doc
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/proscenium/internal/config"
	"github.com/tomtom215/proscenium/internal/metrics"
)

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics.
const maxErrorBodySize = 16 * 1024 // 16KB

// Client handles communication with the content-metadata API.
//
// Thread Safety: safe for concurrent use; the queue serializes the actual
// HTTP calls.
type Client struct {
	baseURL      string
	apiKey       string
	imageBaseURL string
	posterSize   string
	backdropSize string
	httpClient   *http.Client
	queue        *RequestQueue
}

// NewClient creates a content API client that issues all requests through
// the given queue.
func NewClient(cfg *config.CatalogConfig, queue *RequestQueue) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		imageBaseURL: cfg.ImageBaseURL,
		posterSize:   cfg.PosterSize,
		backdropSize: cfg.BackdropSize,
		httpClient:   &http.Client{Timeout: timeout},
		queue:        queue,
	}
}

// MovieDetails fetches the full detail record for a movie.
func (c *Client) MovieDetails(ctx context.Context, id int64) (*MovieDetails, error) {
	var details MovieDetails
	path := "/movie/" + strconv.FormatInt(id, 10)
	if err := c.get(ctx, path, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// SeriesDetails fetches the full detail record for a series.
func (c *Client) SeriesDetails(ctx context.Context, id int64) (*SeriesDetails, error) {
	var details SeriesDetails
	path := "/tv/" + strconv.FormatInt(id, 10)
	if err := c.get(ctx, path, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// SeasonDetails fetches the episode listing for one season of a series.
func (c *Client) SeasonDetails(ctx context.Context, seriesID int64, seasonNumber int) (*SeasonDetails, error) {
	var details SeasonDetails
	path := fmt.Sprintf("/tv/%d/season/%d", seriesID, seasonNumber)
	if err := c.get(ctx, path, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// NowPlayingMovies fetches the now-playing movie listing.
func (c *Client) NowPlayingMovies(ctx context.Context) (*ListingPage, error) {
	return c.listing(ctx, "/movie/now_playing")
}

// PopularMovies fetches the popular movie listing.
func (c *Client) PopularMovies(ctx context.Context) (*ListingPage, error) {
	return c.listing(ctx, "/movie/popular")
}

// PopularSeries fetches the popular series listing.
func (c *Client) PopularSeries(ctx context.Context) (*ListingPage, error) {
	return c.listing(ctx, "/tv/popular")
}

// OnTheAirSeries fetches the currently-airing series listing.
func (c *Client) OnTheAirSeries(ctx context.Context) (*ListingPage, error) {
	return c.listing(ctx, "/tv/on_the_air")
}

// TrendingAll fetches the weekly cross-kind trending listing.
func (c *Client) TrendingAll(ctx context.Context) (*ListingPage, error) {
	return c.listing(ctx, "/trending/all/week")
}

// PosterURL resolves a poster path to a full image URL at the configured
// fixed resolution. An absent path resolves to "" so the field is omitted
// from stored documents.
func (c *Client) PosterURL(path string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + "/" + c.posterSize + path
}

// BackdropURL resolves a backdrop path to a full image URL.
func (c *Client) BackdropURL(path string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + "/" + c.backdropSize + path
}

func (c *Client) listing(ctx context.Context, path string) (*ListingPage, error) {
	var page ListingPage
	if err := c.get(ctx, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// get executes a GET through the request queue and decodes the JSON body.
func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	return c.queue.Do(ctx, func() error {
		if query == nil {
			query = url.Values{}
		}
		query.Set("api_key", c.apiKey)
		reqURL := c.baseURL + path + "?" + query.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.RecordUpstreamRequest("catalog", path, "transport_error")
			return fmt.Errorf("catalog request %s: %w", path, err)
		}
		defer resp.Body.Close()

		metrics.RecordUpstreamRequest("catalog", path, strconv.Itoa(resp.StatusCode))

		if resp.StatusCode != http.StatusOK {
			body := readBodyForError(resp.Body)
			return fmt.Errorf("catalog request %s: unexpected status %d: %s", path, resp.StatusCode, body)
		}

		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode catalog response %s: %w", path, err)
		}
		return nil
	})
}

// readBodyForError reads a bounded amount of the response body for error
// reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}
