// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

/*
client.go - Rankings/Listings API Client

Read-only client for the third-party rankings API. Two feeds are consumed:

  - /lists/quick-overall: every provider's top list plus the global
    movie/series lists in one payload. Cheap relative to per-item
    enrichment, so refreshers re-fetch the whole thing even when they
    only need one provider's slice.
  - /calendar/overall: upcoming and recent releases across all kinds.

Authentication is an X-Api-Key header. A token-bucket limiter paces calls
as a courtesy; the API publishes no hard limit.
*/

//nolint:staticcheck // File documentation, not package doc
package rankings

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/proscenium/internal/config"
	"github.com/tomtom215/proscenium/internal/metrics"
)

const maxErrorBodySize = 16 * 1024 // 16KB

// Source is the rankings surface the refreshers consume. *Client and
// *BreakerClient both satisfy it.
type Source interface {
	QuickOverall(ctx context.Context) (*QuickOverall, error)
	CalendarOverall(ctx context.Context) ([]CalendarEntry, error)
}

// Client handles communication with the rankings API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a rankings API client. MinRequestInterval throttles
// successive calls; zero disables the courtesy pacing.
func NewClient(cfg *config.RankingsConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	limit := rate.Inf
	if cfg.MinRequestInterval > 0 {
		limit = rate.Every(cfg.MinRequestInterval)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// QuickOverall fetches the cross-provider top-list payload.
func (c *Client) QuickOverall(ctx context.Context) (*QuickOverall, error) {
	var payload QuickOverall
	if err := c.get(ctx, "/lists/quick-overall", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// CalendarOverall fetches the combined release calendar.
func (c *Client) CalendarOverall(ctx context.Context) ([]CalendarEntry, error) {
	var entries []CalendarEntry
	if err := c.get(ctx, "/calendar/overall", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rankings rate wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest("rankings", path, "transport_error")
		return fmt.Errorf("rankings request %s: %w", path, err)
	}
	defer resp.Body.Close()

	metrics.RecordUpstreamRequest("rankings", path, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("rankings request %s: unexpected status %d: %s", path, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode rankings response %s: %w", path, err)
	}
	return nil
}
