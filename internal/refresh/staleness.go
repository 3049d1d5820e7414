// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package refresh

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/proscenium/internal/metrics"
	"github.com/tomtom215/proscenium/internal/models"
	"github.com/tomtom215/proscenium/internal/store"
)

// ageMissing marks a cache key that has never been populated. It sorts after
// any real age, so never-populated keys win every tie within a priority band.
const ageMissing = time.Duration(math.MaxInt64)

// Candidate is the per-key staleness snapshot computed for one invocation.
// Priority 0 means fresh (do not refresh); otherwise it is the class weight.
type Candidate struct {
	Key      string
	Age      time.Duration
	Priority int
}

// Missing reports whether the key has never been populated.
func (c Candidate) Missing() bool {
	return c.Age == ageMissing
}

// MetaReader is the read-only store surface the evaluator needs.
type MetaReader interface {
	Meta(ctx context.Context, key string) (*models.CacheMeta, error)
}

// Evaluator computes the staleness ordering across the full key universe.
// Read-only; it never writes to the store.
type Evaluator struct {
	store    MetaReader
	registry *Registry
	now      func() time.Time
}

// NewEvaluator creates an evaluator over the given store and key registry.
func NewEvaluator(st MetaReader, registry *Registry) *Evaluator {
	return &Evaluator{store: st, registry: registry, now: time.Now}
}

// Evaluate returns one candidate per cache key, sorted most-urgent-first:
// descending by priority, then descending by age. A store read failure is
// fatal to the whole invocation; it is the only error this subsystem does
// not downgrade.
func (e *Evaluator) Evaluate(ctx context.Context) ([]Candidate, error) {
	now := e.now()
	keys := e.registry.Keys()
	candidates := make([]Candidate, 0, len(keys))

	for _, key := range keys {
		class, _ := e.registry.ClassForKey(key)

		meta, err := e.store.Meta(ctx, key)
		switch {
		case errors.Is(err, store.ErrNotFound):
			// Never populated: always stale, infinitely old.
			candidates = append(candidates, Candidate{Key: key, Age: ageMissing, Priority: class.Weight})
			continue
		case err != nil:
			return nil, fmt.Errorf("read cache metadata for %s: %w", key, err)
		}

		age := now.Sub(time.UnixMilli(meta.LastUpdated))
		metrics.CacheAge.WithLabelValues(key).Set(age.Seconds())

		priority := 0
		if age > class.TTL {
			priority = class.Weight
		}
		candidates = append(candidates, Candidate{Key: key, Age: age, Priority: priority})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].Age > candidates[j].Age
	})
	return candidates, nil
}
