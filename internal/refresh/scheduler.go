// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/proscenium/internal/logging"
	"github.com/tomtom215/proscenium/internal/metrics"
)

// allFreshSummary is returned when no cache is due for refresh.
const allFreshSummary = "All caches fresh"

// NoneKey is the nextInQueue value when nothing else is stale.
const NoneKey = "none"

// Result summarizes one scheduler invocation.
type Result struct {
	UpdateID  string
	Processed string // cache key refreshed, "" when everything was fresh
	Updates   []string
	Errors    []string
	NextKey   string // next-most-urgent stale key, NoneKey if none
	Elapsed   time.Duration
}

// Scheduler is the control loop core: evaluate staleness, refresh exactly
// one stale class instance (with its co-scheduled siblings), report the
// rest. Refresher failures are downgraded to entries in Result.Errors; only
// an evaluator read failure propagates as an error.
//
// Overlapping invocations are not guarded against. Two concurrent calls may
// redundantly refresh the same candidate; the invocation cadence is assumed
// sparse relative to per-invocation duration, and writes are whole-document
// replacements, so the second write simply wins.
type Scheduler struct {
	evaluator  *Evaluator
	refreshers map[string]*Refresher
	registry   *Registry
	now        func() time.Time
}

// NewScheduler wires the evaluator and the four class refreshers.
func NewScheduler(evaluator *Evaluator, refreshers map[string]*Refresher, registry *Registry) *Scheduler {
	return &Scheduler{
		evaluator:  evaluator,
		refreshers: refreshers,
		registry:   registry,
		now:        time.Now,
	}
}

// RunOnce performs one scheduling pass. At most one candidate is refreshed,
// keeping each invocation's wall-clock cost bounded under the caller's
// execution budget. Even when an error is returned, the Result is non-nil
// and carries the invocation's UpdateID.
func (s *Scheduler) RunOnce(ctx context.Context) (*Result, error) {
	start := s.now()
	result := &Result{
		UpdateID: uuid.New().String(),
		NextKey:  NoneKey,
	}

	candidates, err := s.evaluator.Evaluate(ctx)
	if err != nil {
		// The result is returned alongside the error so callers can report
		// the invocation's updateId in the failure response.
		result.Elapsed = s.now().Sub(start)
		return result, fmt.Errorf("evaluate staleness: %w", err)
	}

	if len(candidates) == 0 || candidates[0].Priority == 0 {
		result.Updates = []string{allFreshSummary}
		result.Elapsed = s.now().Sub(start)
		metrics.RecordRefresh(NoneKey, "all_fresh", 0)
		logging.Debug().Str("update_id", result.UpdateID).Msg("All caches fresh, nothing to refresh")
		return result, nil
	}

	target := candidates[0]
	class, ok := s.registry.ClassForKey(target.Key)
	if !ok {
		// Unreachable with a fixed key universe, but fail loudly if the
		// registry and evaluator ever disagree.
		result.Elapsed = s.now().Sub(start)
		return result, fmt.Errorf("no cache class owns key %s", target.Key)
	}

	logging.Info().
		Str("update_id", result.UpdateID).
		Str("cache_key", target.Key).
		Str("cache_type", class.Name).
		Bool("never_populated", target.Missing()).
		Msg("Refreshing stale cache")

	updates, err := s.refreshers[class.Name].Refresh(ctx, target.Key)
	result.Processed = target.Key
	result.Updates = append(result.Updates, updates...)
	if err != nil {
		// Downgraded: a single class's failure must never block the
		// scheduler from reporting liveness.
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", target.Key, err))
		metrics.RefreshErrors.WithLabelValues(target.Key).Inc()
		logging.Error().Err(err).Str("cache_key", target.Key).Msg("Cache refresh failed")
	}

	for _, c := range candidates[1:] {
		if c.Key != target.Key && c.Priority > 0 {
			result.NextKey = c.Key
			break
		}
	}

	result.Elapsed = s.now().Sub(start)
	return result, nil
}
