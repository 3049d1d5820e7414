// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package models

import (
	"time"
)

// APIResponse represents the standardized response wrapper used by the read
// API and health endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError represents structured error details in an error response.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// RefreshResponse is the trigger endpoint's response body. Its shape is a
// wire contract with the periodic invoker and is NOT wrapped in APIResponse.
//
// On success, Processed is the refreshed cache key (empty when all caches
// were fresh), Updates lists human-readable write summaries, Errors lists
// refresher-level failures (per-item enrichment drops are not promoted
// here), and NextInQueue previews the next-most-urgent key or "none".
// Updates and NextInQueue are always serialized; a refresh that wrote
// nothing carries an empty updates array, never a missing key.
type RefreshResponse struct {
	Success     bool      `json:"success"`
	UpdateID    string    `json:"updateId"`
	Processed   string    `json:"processed,omitempty"`
	Updates     []string  `json:"updates"`
	Errors      []string  `json:"errors,omitempty"`
	NextInQueue string    `json:"nextInQueue"`
	Error       string    `json:"error,omitempty"`
	Duration    string    `json:"duration"`
	Timestamp   time.Time `json:"timestamp"`
}

// HealthStatus reports service health for the health endpoint.
type HealthStatus struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	StoreConnected bool   `json:"store_connected"`
	Uptime         float64 `json:"uptime"`
}

// CacheStatus is the staleness view of one cache instance served by the
// read API.
type CacheStatus struct {
	Key         string `json:"key"`
	CacheType   string `json:"cacheType"`
	ItemCount   int    `json:"itemCount"`
	LastUpdated int64  `json:"lastUpdated,omitempty"`
	ExpiresAt   int64  `json:"expiresAt,omitempty"`
	AgeSeconds  int64  `json:"ageSeconds,omitempty"`
	Stale       bool   `json:"stale"`
	Populated   bool   `json:"populated"`
}
