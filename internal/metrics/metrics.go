// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

// Package metrics provides Prometheus instrumentation for Proscenium:
// refresh scheduling outcomes, per-class cache staleness, enrichment
// throughput, upstream API calls, and HTTP endpoint latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Refresh Scheduler Metrics
	RefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "refresh_duration_seconds",
			Help:    "Duration of one scheduler invocation in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120}, // Enrichment-heavy refreshes can take tens of seconds
		},
		[]string{"cache_type"},
	)

	RefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_runs_total",
			Help: "Total number of scheduler invocations by outcome",
		},
		[]string{"outcome"}, // "refreshed", "all_fresh", "error"
	)

	RefreshErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_errors_total",
			Help: "Total number of refresher-level errors",
		},
		[]string{"cache_key"},
	)

	CacheAge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_age_seconds",
			Help: "Seconds since the last successful write of each cache key",
		},
		[]string{"cache_key"},
	)

	CacheItemsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_items_written_total",
			Help: "Total number of items written per cache key",
		},
		[]string{"cache_key"},
	)

	// Enrichment Metrics
	EnrichmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichments_total",
			Help: "Total number of per-item enrichment attempts",
		},
		[]string{"media_kind", "result"}, // result: "ok", "dropped"
	)

	EnrichmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enrichment_duration_seconds",
			Help:    "Duration of one item enrichment including queue wait",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// Upstream API Metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of upstream API requests",
		},
		[]string{"api", "endpoint", "status"}, // api: "catalog", "rankings"
	)

	CatalogQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_queue_depth",
			Help: "Current number of queued catalog API requests",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// WebSocket Metrics
	WSConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connected_clients",
			Help: "Current number of connected WebSocket clients",
		},
	)
)

// RecordAPIRequest records metrics for one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRefresh records the outcome and duration of one scheduler invocation.
func RecordRefresh(cacheType, outcome string, duration time.Duration) {
	RefreshesTotal.WithLabelValues(outcome).Inc()
	if cacheType != "" {
		RefreshDuration.WithLabelValues(cacheType).Observe(duration.Seconds())
	}
}

// RecordUpstreamRequest records one upstream API call.
func RecordUpstreamRequest(api, endpoint, status string) {
	UpstreamRequests.WithLabelValues(api, endpoint, status).Inc()
}

// RecordEnrichment records one enrichment attempt.
func RecordEnrichment(mediaKind string, ok bool, duration time.Duration) {
	result := "ok"
	if !ok {
		result = "dropped"
	}
	EnrichmentsTotal.WithLabelValues(mediaKind, result).Inc()
	EnrichmentDuration.Observe(duration.Seconds())
}
