// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/proscenium/internal/config"
	"github.com/tomtom215/proscenium/internal/middleware"
)

// healthRateLimit is deliberately permissive: health endpoints are polled
// by orchestrators and uptime monitors.
const healthRateLimit = 1000

// NewRouter wires the full HTTP surface: middleware stack, health
// endpoints, the cache read API, the refresh trigger, the websocket
// upgrade, and Prometheus metrics.
func NewRouter(handler *Handler, ws *WebSocketHandler, cfg *config.SecurityConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5, "application/json"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(healthRateLimit, time.Minute))
		r.Get("/", handler.Health)
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiRateLimit(cfg))
		r.Use(middleware.PrometheusMetrics)

		r.Get("/caches", handler.ListCaches)
		r.Get("/caches/{key}", handler.GetCache)
		r.Post("/refresh/run", handler.TriggerRefresh)
		if ws != nil {
			r.Get("/ws", ws.ServeWS)
		}
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func apiRateLimit(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		cfg.RateLimitReqs,
		cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)
}
