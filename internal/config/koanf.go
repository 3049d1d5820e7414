// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/proscenium/config.yaml",
	"/etc/proscenium/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all built-in defaults. These are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8994,
			Timeout:     60 * time.Second, // Trigger invocations can run tens of seconds
			Environment: "development",
		},
		Catalog: CatalogConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			APIKey:            "",
			ImageBaseURL:      "https://image.tmdb.org/t/p",
			PosterSize:        "w500",
			BackdropSize:      "w780",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 10, // 100ms fixed inter-call delay
			QueueSize:         64,
		},
		Rankings: RankingsConfig{
			BaseURL:            "https://api.toplists.example.com/v2",
			APIKey:             "",
			Timeout:            20 * time.Second,
			MinRequestInterval: 500 * time.Millisecond,
		},
		Store: StoreConfig{
			Path:     "/data/proscenium",
			InMemory: false,
		},
		Refresh: RefreshConfig{
			LoopEnabled:     false,
			LoopInterval:    time.Minute,
			Top10TTL:        30 * time.Minute,
			CarouselTTL:     time.Hour,
			CalendarTTL:     6 * time.Hour,
			Top10ItemCap:    10,
			CarouselItemCap: 20,
			Providers:       []string{"netflix", "prime", "disney", "hbo", "apple"},
		},
		Security: SecurityConfig{
			RefreshToken:      "",
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
//
// Precedence: ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Env vars come in as strings; convert known slice fields.
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches the env override and the default paths and returns
// the first file found, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are the config paths parsed as comma-separated slices
// when sourced from env vars.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"refresh.providers",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from defaults or the YAML file).
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config paths.
// Unknown variables are ignored so unrelated process env never leaks into
// the configuration.
var envMappings = map[string]string{
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"environment":      "server.environment",

	"catalog_base_url":            "catalog.base_url",
	"catalog_api_key":             "catalog.api_key",
	"catalog_image_base_url":      "catalog.image_base_url",
	"catalog_poster_size":         "catalog.poster_size",
	"catalog_backdrop_size":       "catalog.backdrop_size",
	"catalog_timeout":             "catalog.timeout",
	"catalog_requests_per_second": "catalog.requests_per_second",
	"catalog_queue_size":          "catalog.queue_size",

	"rankings_base_url":             "rankings.base_url",
	"rankings_api_key":              "rankings.api_key",
	"rankings_timeout":              "rankings.timeout",
	"rankings_min_request_interval": "rankings.min_request_interval",

	"store_path":      "store.path",
	"store_in_memory": "store.in_memory",

	"refresh_loop_enabled":      "refresh.loop_enabled",
	"refresh_loop_interval":     "refresh.loop_interval",
	"refresh_top10_ttl":         "refresh.top10_ttl",
	"refresh_carousel_ttl":      "refresh.carousel_ttl",
	"refresh_calendar_ttl":      "refresh.calendar_ttl",
	"refresh_top10_item_cap":    "refresh.top10_item_cap",
	"refresh_carousel_item_cap": "refresh.carousel_item_cap",
	"refresh_providers":         "refresh.providers",

	"refresh_token":       "security.refresh_token",
	"cors_origins":        "security.cors_origins",
	"rate_limit_reqs":     "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"rate_limit_disabled": "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf config paths.
// Returning "" drops the variable.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
