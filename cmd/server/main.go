// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

// Package main is the entry point for the Proscenium server.
//
// Proscenium keeps a media-discovery app's browse surfaces warm: streaming
// provider Top-10 lists, discovery carousels, and upcoming-release calendars
// are refreshed in the background and served from a local cache so the app
// never blocks on upstream metadata APIs.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered Koanf v2 sources (env > config file > defaults)
//  2. Cache store: BadgerDB, on-disk or in-memory
//  3. Upstream clients: catalog metadata API (paced request queue) and
//     rankings API (rate-limited, behind a circuit breaker)
//  4. Refresh pipeline: staleness evaluator, per-class refreshers, scheduler
//  5. WebSocket hub: pushes refresh_completed notifications
//  6. HTTP server: trigger endpoint, cache read API, health, metrics
//
// Refresh work runs when POST /api/v1/refresh/run is invoked (typically by an
// external cron hitting it once a minute). One stale cache is refreshed per
// invocation. The optional internal loop (REFRESH_LOOP_ENABLED=true) invokes
// the same scheduler on a ticker for deployments without an external cron.
//
// The server handles graceful shutdown on SIGINT and SIGTERM: the supervisor
// tree drains the HTTP server and websocket hub, then the badger store is
// closed.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/tomtom215/proscenium/internal/api"
	"github.com/tomtom215/proscenium/internal/catalog"
	"github.com/tomtom215/proscenium/internal/config"
	"github.com/tomtom215/proscenium/internal/logging"
	"github.com/tomtom215/proscenium/internal/rankings"
	"github.com/tomtom215/proscenium/internal/refresh"
	"github.com/tomtom215/proscenium/internal/store"
	"github.com/tomtom215/proscenium/internal/supervisor"
	ws "github.com/tomtom215/proscenium/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet, so this uses the default logger.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Bool("catalog_key_set", cfg.Catalog.APIKey != "").
		Bool("rankings_key_set", cfg.Rankings.APIKey != "").
		Bool("loop_enabled", cfg.Refresh.LoopEnabled).
		Msg("Starting Proscenium")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Shutdown complete")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(store.Options{Path: cfg.Store.Path, InMemory: cfg.Store.InMemory})
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache store")
		}
	}()
	logging.Info().Str("path", cfg.Store.Path).Bool("in_memory", cfg.Store.InMemory).Msg("Cache store opened")

	// Upstream clients. The shared request queue serializes catalog calls
	// and paces them; the rankings client sits behind a circuit breaker.
	queue := catalog.NewRequestQueue(ctx, cfg.Catalog.RequestsPerSecond, cfg.Catalog.QueueSize)
	catalogClient := catalog.NewClient(&cfg.Catalog, queue)
	rankingsClient := rankings.NewBreakerClient(rankings.NewClient(&cfg.Rankings))

	// Refresh pipeline.
	registry := refresh.NewRegistry(&cfg.Refresh)
	evaluator := refresh.NewEvaluator(st, registry)
	refreshers := refresh.NewRefreshers(refresh.Deps{
		Store:          st,
		Rankings:       rankingsClient,
		Listings:       catalogClient,
		Enricher:       refresh.NewEnricher(catalogClient),
		Registry:       registry,
		Cfg:            &cfg.Refresh,
		CatalogKeySet:  cfg.Catalog.APIKey != "",
		RankingsKeySet: cfg.Rankings.APIKey != "",
	})
	scheduler := refresh.NewScheduler(evaluator, refreshers, registry)

	hub := ws.NewHub()

	handler := api.NewHandler(st, scheduler, registry, hub, cfg.Security.RefreshToken, version)
	wsHandler := api.NewWebSocketHandler(hub, cfg.Security.CORSOrigins)
	router := api.NewRouter(handler, wsHandler, &cfg.Security)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(supervisor.DefaultTreeConfig())
	tree.AddMessagingService(hub)
	if cfg.Refresh.LoopEnabled {
		tree.AddMessagingService(refresh.NewLoopService(scheduler, cfg.Refresh.LoopInterval, hub))
		logging.Info().Dur("interval", cfg.Refresh.LoopInterval).Msg("Internal refresh loop enabled")
	}
	tree.AddAPIService(supervisor.NewHTTPServerService(server, supervisor.DefaultTreeConfig().ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("HTTP server starting")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
