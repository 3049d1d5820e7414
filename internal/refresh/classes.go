// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

// Package refresh implements the background cache refresh scheduler: a
// staleness evaluator over a fixed set of cache keys, four class refreshers,
// and a control loop that refreshes at most one stale cache class per
// invocation.
package refresh

import (
	"strings"
	"time"

	"github.com/tomtom215/proscenium/internal/config"
)

// Cache class names, stored as CacheEntry.CacheType.
const (
	ClassTop10Provider = "top10-provider"
	ClassTop10Global   = "top10-global"
	ClassCarousel      = "carousel"
	ClassCalendar      = "calendar"
)

// Fixed cache keys outside the per-provider set.
const (
	KeyGlobalMovies    = "global-movies"
	KeyGlobalSeries    = "global-series"
	KeyNowPlaying      = "now-playing"
	KeyPopularMovies   = "popular-movies"
	KeyOnTheAir        = "on-the-air"
	KeyPopularTV       = "popular-tv"
	KeyTrending        = "trending"
	KeyCalendarMovies  = "calendar-movies"
	KeyCalendarTV      = "calendar-tv"
	KeyCalendarOverall = "calendar-overall"
)

// top10KeyPrefix prefixes per-provider keys, e.g. "top10-netflix".
const top10KeyPrefix = "top10-"

// Class describes one cache class: the keys it owns, how long entries stay
// fresh, and the urgency weight used to order stale candidates.
//
// Note the weight ordering is inverted relative to the TTLs: the classes
// with the LONGEST TTLs carry the HIGHEST weights, so a stale calendar
// preempts any overdue Top-10 no matter how overdue. Downstream consumers
// depend on this exact ordering; do not "fix" it.
type Class struct {
	Name   string
	TTL    time.Duration
	Weight int
	Keys   []string
}

// Registry is the fixed key universe: every cache key this service owns,
// grouped by class. No dynamic key creation happens anywhere.
type Registry struct {
	classes []Class
	byKey   map[string]*Class
}

// NewRegistry builds the key universe from configuration. With the default
// five providers this yields 5 + 2 + 5 + 3 = 15 keys.
func NewRegistry(cfg *config.RefreshConfig) *Registry {
	providerKeys := make([]string, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		providerKeys = append(providerKeys, top10KeyPrefix+p)
	}

	r := &Registry{
		classes: []Class{
			{Name: ClassTop10Provider, TTL: cfg.Top10TTL, Weight: 1, Keys: providerKeys},
			{Name: ClassTop10Global, TTL: cfg.Top10TTL, Weight: 1, Keys: []string{KeyGlobalMovies, KeyGlobalSeries}},
			{Name: ClassCarousel, TTL: cfg.CarouselTTL, Weight: 2, Keys: []string{
				KeyNowPlaying, KeyPopularMovies, KeyOnTheAir, KeyPopularTV, KeyTrending,
			}},
			{Name: ClassCalendar, TTL: cfg.CalendarTTL, Weight: 3, Keys: []string{
				KeyCalendarMovies, KeyCalendarTV, KeyCalendarOverall,
			}},
		},
	}

	r.byKey = make(map[string]*Class)
	for i := range r.classes {
		for _, key := range r.classes[i].Keys {
			r.byKey[key] = &r.classes[i]
		}
	}
	return r
}

// Keys returns every cache key in stable class order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.byKey))
	for i := range r.classes {
		keys = append(keys, r.classes[i].Keys...)
	}
	return keys
}

// ClassForKey looks up the class owning key.
func (r *Registry) ClassForKey(key string) (*Class, bool) {
	c, ok := r.byKey[key]
	return c, ok
}

// Classes returns the class table in declaration order.
func (r *Registry) Classes() []Class {
	return r.classes
}

// ProviderForKey extracts the provider name from a per-provider Top-10 key.
func ProviderForKey(key string) string {
	return strings.TrimPrefix(key, top10KeyPrefix)
}
