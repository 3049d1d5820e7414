// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

// Package config defines the Proscenium configuration model and its layered
// loader (built-in defaults, optional YAML file, environment variables).
package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/proscenium/internal/validation"
)

// Config is the root configuration for the Proscenium server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Rankings RankingsConfig `koanf:"rankings"`
	Store    StoreConfig    `koanf:"store"`
	Refresh  RefreshConfig  `koanf:"refresh"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment" validate:"oneof=development production"`
}

// CatalogConfig configures the content-metadata API client.
//
// A missing APIKey is deliberately NOT a startup error: it surfaces as a
// per-invocation configuration error in the refresher that needs it, so the
// scheduler keeps reporting liveness.
type CatalogConfig struct {
	BaseURL      string        `koanf:"base_url" validate:"required,url"`
	APIKey       string        `koanf:"api_key"`
	ImageBaseURL string        `koanf:"image_base_url" validate:"required,url"`
	PosterSize   string        `koanf:"poster_size"`
	BackdropSize string        `koanf:"backdrop_size"`
	Timeout      time.Duration `koanf:"timeout"`

	// RequestsPerSecond paces the shared request queue; 10/s yields the
	// ~100ms inter-call delay the upstream tolerates.
	RequestsPerSecond int `koanf:"requests_per_second" validate:"min=1,max=50"`
	QueueSize         int `koanf:"queue_size" validate:"min=1"`
}

// RankingsConfig configures the top-lists/calendar API client.
type RankingsConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`

	// MinRequestInterval is the courtesy delay between rankings calls.
	MinRequestInterval time.Duration `koanf:"min_request_interval"`
}

// StoreConfig configures the badger cache store.
type StoreConfig struct {
	Path     string `koanf:"path" validate:"required"`
	InMemory bool   `koanf:"in_memory"`
}

// RefreshConfig configures cache classes and the optional in-process loop.
type RefreshConfig struct {
	// LoopEnabled runs the internal ticker that invokes the scheduler
	// without an external cron. Off by default: the HTTP trigger is the
	// primary entry point.
	LoopEnabled  bool          `koanf:"loop_enabled"`
	LoopInterval time.Duration `koanf:"loop_interval"`

	// Per-class TTLs.
	Top10TTL    time.Duration `koanf:"top10_ttl"`
	CarouselTTL time.Duration `koanf:"carousel_ttl"`
	CalendarTTL time.Duration `koanf:"calendar_ttl"`

	// Item caps per cache class.
	Top10ItemCap    int `koanf:"top10_item_cap" validate:"min=1,max=50"`
	CarouselItemCap int `koanf:"carousel_item_cap" validate:"min=1,max=100"`

	// Providers are the streaming providers with per-provider Top-10 caches.
	Providers []string `koanf:"providers" validate:"min=1"`
}

// SecurityConfig configures the trigger credential and HTTP protections.
type SecurityConfig struct {
	// RefreshToken is the shared-secret bearer credential required by the
	// refresh trigger endpoint.
	RefreshToken string `koanf:"refresh_token"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks tag rules plus the cross-field constraints the tags cannot
// express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if c.Server.Environment == "production" && c.Security.RefreshToken == "" {
		return fmt.Errorf("security.refresh_token is required in production")
	}
	if len(c.Security.RefreshToken) > 0 && len(c.Security.RefreshToken) < 16 {
		return fmt.Errorf("security.refresh_token must be at least 16 characters")
	}

	for _, ttl := range []struct {
		name string
		val  time.Duration
	}{
		{"refresh.top10_ttl", c.Refresh.Top10TTL},
		{"refresh.carousel_ttl", c.Refresh.CarouselTTL},
		{"refresh.calendar_ttl", c.Refresh.CalendarTTL},
	} {
		if ttl.val <= 0 {
			return fmt.Errorf("%s must be positive", ttl.name)
		}
	}

	if c.Refresh.LoopEnabled && c.Refresh.LoopInterval < 10*time.Second {
		return fmt.Errorf("refresh.loop_interval must be at least 10s when the loop is enabled")
	}

	return nil
}
